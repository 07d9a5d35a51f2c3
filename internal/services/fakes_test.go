package services

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"habit-tracker/internal/models"
	"habit-tracker/internal/repository/memory"
)

type sentEvent struct {
	UserID string
	Msg    WSMessage
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []sentEvent
}

func (n *recordingNotifier) Notify(userID string, msg WSMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{UserID: userID, Msg: msg})
}

func (n *recordingNotifier) typesFor(userID string) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var types []string
	for _, e := range n.events {
		if e.UserID == userID {
			types = append(types, e.Msg.Type)
		}
	}
	return types
}

type mapCache struct {
	mu          sync.Mutex
	entries     map[string]map[string]*models.Analytics
	invalidated []string
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]map[string]*models.Analytics)}
}

func (c *mapCache) Get(_ context.Context, userID, zone string) (*models.Analytics, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.entries[userID][zone]
	return a, ok, nil
}

func (c *mapCache) Set(_ context.Context, userID, zone string, a *models.Analytics, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries[userID] == nil {
		c.entries[userID] = make(map[string]*models.Analytics)
	}
	c.entries[userID][zone] = a
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	c.invalidated = append(c.invalidated, userID)
	return nil
}

type push struct {
	Token, Title, Body string
}

type recordingPusher struct {
	pushes []push
}

func (p *recordingPusher) Push(_ context.Context, token, title, body string) error {
	p.pushes = append(p.pushes, push{Token: token, Title: title, Body: body})
	return nil
}

type memStorage struct {
	objects map[string][]byte
}

func (s *memStorage) Upload(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	if s.objects == nil {
		s.objects = make(map[string][]byte)
	}
	s.objects[key] = data
	return "https://cdn.example.com/" + key, nil
}

// env wires every service over one in-memory database
type env struct {
	users       UserStore
	habits      HabitStore
	friendships FriendshipStore

	notifier *recordingNotifier
	cache    *mapCache
	pusher   *recordingPusher
	storage  *memStorage

	userService      *UserService
	habitService     *HabitService
	analyticsService *AnalyticsService
	friendService    *FriendService
	profileService   *ProfileService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := memory.New()
	e := &env{
		users:       memory.NewUserRepository(db),
		habits:      memory.NewHabitRepository(db),
		friendships: memory.NewFriendshipRepository(db),
		notifier:    &recordingNotifier{},
		cache:       newMapCache(),
		pusher:      &recordingPusher{},
		storage:     &memStorage{},
	}
	e.userService = NewUserService(e.users, "test-secret", 30)
	e.habitService = NewHabitService(e.habits, e.friendships, e.cache, e.notifier)
	e.analyticsService = NewAnalyticsService(e.habits, e.cache, time.Minute)
	e.friendService = NewFriendService(e.friendships, e.users, e.notifier, e.pusher)
	e.profileService = NewProfileService(e.users, e.habits, e.friendService, e.storage)
	return e
}

func (e *env) register(t *testing.T, email, name string) *models.AuthResponse {
	t.Helper()
	resp, err := e.userService.Register(context.Background(), RegisterRequest{
		Email:       email,
		Password:    "secret1",
		DisplayName: name,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return resp
}

// befriend makes a and b accepted friends
func (e *env) befriend(t *testing.T, a, b string) *models.Friendship {
	t.Helper()
	ctx := context.Background()
	f, err := e.friendService.SendRequest(ctx, a, b)
	if err != nil {
		t.Fatalf("send request: %v", err)
	}
	f, err = e.friendService.Respond(ctx, b, f.ID, models.FriendshipAccepted)
	if err != nil {
		t.Fatalf("accept request: %v", err)
	}
	return f
}
