package domain

import "time"

// Event subjects published on the event bus.
const (
	SubjectGuideCreated   = "guide.created"
	SubjectGuideOptimized = "guide.optimized"
	SubjectUserRegistered = "user.registered"
)

// GuideEvent is emitted whenever a guide is created or its content replaced.
// It also carries the full guide so subscribers and the archive can mirror it.
type GuideEvent struct {
	Subject   string       `json:"subject"`
	Guide     TripGuide    `json:"guide"`
	Request   *TripRequest `json:"request,omitempty"`
	Username  string       `json:"username,omitempty"`
	Persisted bool         `json:"persisted"`
	At        time.Time    `json:"at"`
}

type UserRegisteredEvent struct {
	Username string    `json:"username"`
	Status   string    `json:"status"`
	At       time.Time `json:"at"`
}
