package models

import "time"

// User represents a user in the system
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"displayName"`
	Bio          string    `json:"bio"`
	AvatarURL    string    `json:"avatarUrl"`
	PushToken    *string   `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AuthResponse is returned by register and login: the user plus a bearer token
type AuthResponse struct {
	User
	Token string `json:"token"`
}

// Habit represents a recurring activity a user tracks
type Habit struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userId"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Color       string       `json:"color"`
	Completions []Completion `json:"completions"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Completion records that a habit was performed on a calendar day.
// Date is always midnight UTC of that day.
type Completion struct {
	ID      string    `json:"id"`
	HabitID string    `json:"habitId"`
	Date    time.Time `json:"date"`
}

// Streak is the total number of completions of the habit
func (h *Habit) Streak() int {
	return len(h.Completions)
}

// FriendshipStatus is the state of a friend pairing
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipDeclined FriendshipStatus = "declined"
)

// Friendship pairs two users
type Friendship struct {
	ID          string           `json:"id"`
	RequesterID string           `json:"requesterId"`
	RecipientID string           `json:"recipientId"`
	Status      FriendshipStatus `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Involves reports whether userID is one side of the friendship
func (f *Friendship) Involves(userID string) bool {
	return f.RequesterID == userID || f.RecipientID == userID
}

// Other returns the user on the opposite side from userID
func (f *Friendship) Other(userID string) string {
	if f.RequesterID == userID {
		return f.RecipientID
	}
	return f.RequesterID
}

// UserSummary is the public subset of a user shown in friend lists and search
type UserSummary struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
}

// Summary converts a user into its public form
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
}

// Friend is an accepted friendship seen from one side
type Friend struct {
	FriendshipID string      `json:"friendshipId"`
	User         UserSummary `json:"user"`
	Since        time.Time   `json:"since"`
}

// FriendRequest is a pending friendship addressed to the viewer
type FriendRequest struct {
	ID        string      `json:"id"`
	Requester UserSummary `json:"requester"`
	CreatedAt time.Time   `json:"createdAt"`
}

// FriendsOverview is the payload of GET /friends
type FriendsOverview struct {
	Friends          []Friend        `json:"friends"`
	IncomingRequests []FriendRequest `json:"incomingRequests"`
}

// FriendProfile is a read-only view of another user's progress
type FriendProfile struct {
	User   User    `json:"user"`
	Habits []Habit `json:"habits"`
}

// Analytics is the server-computed snapshot shown on the analytics page
type Analytics struct {
	Stats   AnalyticsStats   `json:"stats"`
	Charts  AnalyticsCharts  `json:"charts"`
	Summary AnalyticsSummary `json:"summary"`
}

type AnalyticsStats struct {
	TotalCompletions int     `json:"totalCompletions"`
	AverageStreak    float64 `json:"averageStreak"`
	BestStreak       int     `json:"bestStreak"`
	CompletionsToday int     `json:"completionsToday"`
}

type AnalyticsCharts struct {
	DailyProgress     []DailyPoint        `json:"dailyProgress"`
	WeeklyProgress    []WeekdayPoint      `json:"weeklyProgress"`
	HabitStreaks      []HabitStreakPoint  `json:"habitStreaks"`
	HabitDistribution []DistributionSlice `json:"habitDistribution"`
}

type DailyPoint struct {
	Date        string `json:"date"`
	Completions int    `json:"completions"`
}

type WeekdayPoint struct {
	Day         string `json:"day"`
	Completions int    `json:"completions"`
}

type HabitStreakPoint struct {
	Name   string `json:"name"`
	Streak int    `json:"streak"`
}

type DistributionSlice struct {
	Name        string `json:"name"`
	Completions int    `json:"completions"`
	Fill        string `json:"fill"`
}

type AnalyticsSummary struct {
	TodaysCompletionRate  int `json:"todaysCompletionRate"`
	HabitsWith7DayStreak  int `json:"habitsWith7DayStreak"`
	HabitsWith30DayStreak int `json:"habitsWith30DayStreak"`
}

// Reminder is a calendar deep link for a habit
type Reminder struct {
	URL   string    `json:"url"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
