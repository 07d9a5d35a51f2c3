package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habit-tracker/internal/models"
)

func TestFriendRequestAcceptFlow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ada := e.register(t, "ada@example.com", "Ada")
	bob := e.register(t, "bob@example.com", "Bob")

	f, err := e.friendService.SendRequest(ctx, ada.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipPending, f.Status)
	assert.Equal(t, []string{EventFriendRequest}, e.notifier.typesFor(bob.ID))

	overview, err := e.friendService.Overview(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, overview.IncomingRequests, 1)
	assert.Equal(t, "Ada", overview.IncomingRequests[0].Requester.DisplayName)
	assert.Empty(t, overview.Friends)

	// the requester does not see their own outgoing request as incoming
	overview, err = e.friendService.Overview(ctx, ada.ID)
	require.NoError(t, err)
	assert.Empty(t, overview.IncomingRequests)

	_, err = e.friendService.Respond(ctx, ada.ID, f.ID, models.FriendshipAccepted)
	assert.ErrorIs(t, err, ErrForbidden)

	f, err = e.friendService.Respond(ctx, bob.ID, f.ID, models.FriendshipAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipAccepted, f.Status)
	assert.Contains(t, e.notifier.typesFor(ada.ID), EventFriendRequestAccepted)

	_, err = e.friendService.Respond(ctx, bob.ID, f.ID, models.FriendshipDeclined)
	assert.ErrorIs(t, err, ErrConflict)

	for _, id := range []string{ada.ID, bob.ID} {
		overview, err := e.friendService.Overview(ctx, id)
		require.NoError(t, err)
		require.Len(t, overview.Friends, 1)
		assert.Equal(t, f.ID, overview.Friends[0].FriendshipID)
	}

	ok, err := e.friendService.AreFriends(ctx, bob.ID, ada.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSendRequestRules(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ada := e.register(t, "ada@example.com", "Ada")
	bob := e.register(t, "bob@example.com", "Bob")

	_, err := e.friendService.SendRequest(ctx, ada.ID, ada.ID)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.friendService.SendRequest(ctx, ada.ID, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.friendService.SendRequest(ctx, ada.ID, bob.ID)
	require.NoError(t, err)

	// either direction collides with the pending request
	_, err = e.friendService.SendRequest(ctx, ada.ID, bob.ID)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = e.friendService.SendRequest(ctx, bob.ID, ada.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestDeclinedRequestCanBeSentAgain(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ada := e.register(t, "ada@example.com", "Ada")
	bob := e.register(t, "bob@example.com", "Bob")

	f, err := e.friendService.SendRequest(ctx, ada.ID, bob.ID)
	require.NoError(t, err)
	_, err = e.friendService.Respond(ctx, bob.ID, f.ID, models.FriendshipDeclined)
	require.NoError(t, err)

	again, err := e.friendService.SendRequest(ctx, bob.ID, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ID, again.ID)
	assert.Equal(t, bob.ID, again.RequesterID)
	assert.Equal(t, models.FriendshipPending, again.Status)

	overview, err := e.friendService.Overview(ctx, ada.ID)
	require.NoError(t, err)
	require.Len(t, overview.IncomingRequests, 1)
	assert.Equal(t, "Bob", overview.IncomingRequests[0].Requester.DisplayName)
}

func TestFriendRequestPushesToRegisteredDevice(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ada := e.register(t, "ada@example.com", "Ada")
	bob := e.register(t, "bob@example.com", "Bob")
	require.NoError(t, e.userService.UpdatePushToken(ctx, bob.ID, "bob-device"))

	_, err := e.friendService.SendRequest(ctx, ada.ID, bob.ID)
	require.NoError(t, err)

	require.Len(t, e.pusher.pushes, 1)
	assert.Equal(t, "bob-device", e.pusher.pushes[0].Token)
	assert.Equal(t, "Ada wants to be your friend", e.pusher.pushes[0].Body)
}

func TestRemoveFriendship(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ada := e.register(t, "ada@example.com", "Ada")
	bob := e.register(t, "bob@example.com", "Bob")
	carol := e.register(t, "carol@example.com", "Carol")
	f := e.befriend(t, ada.ID, bob.ID)

	err := e.friendService.Remove(ctx, carol.ID, f.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, e.friendService.Remove(ctx, bob.ID, f.ID))
	assert.Contains(t, e.notifier.typesFor(ada.ID), EventFriendRemoved)

	ok, err := e.friendService.AreFriends(ctx, ada.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	err = e.friendService.Remove(ctx, bob.ID, f.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchUsers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ada := e.register(t, "ada@example.com", "Ada Lovelace")
	e.register(t, "grace@example.com", "Grace Hopper")
	e.register(t, "alan@example.com", "Alan Turing")

	results, err := e.friendService.Search(ctx, ada.ID, "a")
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NotEqual(t, ada.ID, r.ID)
	}

	results, err = e.friendService.Search(ctx, ada.ID, "HOPPER")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "grace@example.com", results[0].Email)

	results, err = e.friendService.Search(ctx, ada.ID, "  ")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSearchIsCappedAtTen(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ada := e.register(t, "ada@example.com", "Ada")
	for i := 0; i < 12; i++ {
		e.register(t, "user"+string(rune('a'+i))+"@example.com", "User")
	}

	results, err := e.friendService.Search(ctx, ada.ID, "user")
	require.NoError(t, err)
	assert.Len(t, results, 10)
}
