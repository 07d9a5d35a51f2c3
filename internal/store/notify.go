package store

// Level is the severity of a user-facing notification
type Level int

const (
	LevelSuccess Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "success"
}

// Notification is a transient message for the user
type Notification struct {
	Level   Level
	Message string
}

// Notifier shows notifications to the user
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Recorder collects notifications in memory
type Recorder struct {
	Notifications []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.Notifications = append(r.Notifications, n)
}
