package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit your profile",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.requireUser(cmd.Context())
			if err != nil {
				return err
			}
			renderUser(cmd.OutOrStdout(), user)
			return nil
		},
	}

	var name, bio string
	update := &cobra.Command{
		Use:   "update",
		Short: "Change display name and bio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.requireUser(cmd.Context())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("name") {
				name = user.DisplayName
			}
			if !cmd.Flags().Changed("bio") {
				bio = user.Bio
			}

			updated, err := a.session.UpdateProfile(cmd.Context(), name, bio)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render("✗ Failed to update profile."))
				return reported(err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), successStyle.Render("✓ Profile updated!"))
			renderUser(cmd.OutOrStdout(), updated)
			return nil
		},
	}
	update.Flags().StringVar(&name, "name", "", "display name")
	update.Flags().StringVar(&bio, "bio", "", "short bio")

	avatar := &cobra.Command{
		Use:   "avatar FILE",
		Short: "Upload a profile photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(cmd.Context()); err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			fmt.Fprintln(cmd.ErrOrStderr(), mutedStyle.Render("Uploading photo..."))
			updated, err := a.session.UpdateAvatar(cmd.Context(), args[0], f)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render("✗ Failed to upload photo."))
				return reported(err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), successStyle.Render("✓ Profile photo updated!"))
			renderUser(cmd.OutOrStdout(), updated)
			return nil
		},
	}

	cmd.AddCommand(show, update, avatar)
	return cmd
}
