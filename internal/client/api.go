package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"

	"habit-tracker/internal/models"
)

// RegisterInput is the body of POST /auth/register
type RegisterInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// LoginInput is the body of POST /auth/login
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HabitInput is the body of POST /habits and PUT /habits/{id}
type HabitInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// ProfileInput is the body of PUT /profile
type ProfileInput struct {
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
}

// Register creates an account. The returned token is not stored; see session.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a token
func (c *Client) Login(ctx context.Context, in LoginInput) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the user the current token belongs to
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Habits lists the caller's habits
func (c *Client) Habits(ctx context.Context) ([]models.Habit, error) {
	var out []models.Habit
	if err := c.do(ctx, http.MethodGet, "/habits", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateHabit(ctx context.Context, in HabitInput) (*models.Habit, error) {
	var out models.Habit
	if err := c.do(ctx, http.MethodPost, "/habits", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateHabit(ctx context.Context, id string, in HabitInput) (*models.Habit, error) {
	var out models.Habit
	if err := c.do(ctx, http.MethodPut, "/habits/"+pathEscape(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteHabit(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/habits/"+pathEscape(id), nil, nil)
}

// ToggleCompletion flips the completion of habit id on date (YYYY-MM-DD)
func (c *Client) ToggleCompletion(ctx context.Context, id, date string) (*models.Habit, error) {
	var out models.Habit
	body := map[string]string{"date": date}
	if err := c.do(ctx, http.MethodPost, "/habits/"+pathEscape(id)+"/toggle-completion", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reminder asks the server for a recurring calendar link. clock is HH:MM and
// days are two-letter weekday codes; tz is an IANA zone name or "".
func (c *Client) Reminder(ctx context.Context, id, clock string, days []string, tz string) (*models.Reminder, error) {
	q := url.Values{}
	if clock != "" {
		q.Set("time", clock)
	}
	if len(days) > 0 {
		q.Set("days", strings.Join(days, ","))
	}
	if tz != "" {
		q.Set("tz", tz)
	}

	path := "/habits/" + pathEscape(id) + "/reminder"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out models.Reminder
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Analytics counts "today" in the client's time zone when one is set
func (c *Client) Analytics(ctx context.Context) (*models.Analytics, error) {
	path := "/analytics"
	if c.timeZone != "" {
		path += "?" + url.Values{"tz": {c.timeZone}}.Encode()
	}

	var out models.Analytics
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, in ProfileInput) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodPut, "/profile", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAvatar uploads an image as the multipart field "avatar". The part's
// content type is derived from filename.
func (c *Client) UpdateAvatar(ctx context.Context, filename string, image io.Reader) (*models.User, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="avatar"; filename=%q`, filepath.Base(filename)))
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPut, "/profile/avatar", &buf, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var out models.User
	if err := c.send(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePushToken registers a device token for push notifications
func (c *Client) UpdatePushToken(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPut, "/profile/push-token", map[string]string{"token": token}, nil)
}

// UserProfile returns another user's read-only profile
func (c *Client) UserProfile(ctx context.Context, userID string) (*models.FriendProfile, error) {
	var out models.FriendProfile
	if err := c.do(ctx, http.MethodGet, "/profile/"+pathEscape(userID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Friends returns accepted friends and incoming requests
func (c *Client) Friends(ctx context.Context) (*models.FriendsOverview, error) {
	var out models.FriendsOverview
	if err := c.do(ctx, http.MethodGet, "/friends", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SearchUsers(ctx context.Context, query string) ([]models.UserSummary, error) {
	var out []models.UserSummary
	path := "/friends/search?" + url.Values{"q": {query}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SendFriendRequest(ctx context.Context, recipientID string) (*models.Friendship, error) {
	var out models.Friendship
	body := map[string]string{"recipientId": recipientID}
	if err := c.do(ctx, http.MethodPost, "/friends/request", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RespondRequest accepts or declines a pending request addressed to the caller
func (c *Client) RespondRequest(ctx context.Context, requestID string, status models.FriendshipStatus) (*models.Friendship, error) {
	var out models.Friendship
	body := map[string]string{"status": string(status)}
	if err := c.do(ctx, http.MethodPut, "/friends/request/"+pathEscape(requestID), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveFriendship(ctx context.Context, friendshipID string) error {
	return c.do(ctx, http.MethodDelete, "/friends/"+pathEscape(friendshipID), nil, nil)
}
