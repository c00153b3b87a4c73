package workouts

import (
	"errors"
	"time"
)

var (
	ErrSessionNotFound = errors.New("workout session not found")
	ErrDetailNotFound  = errors.New("session detail not found")
)

// Session is one planned or done workout on a given date. Completed flips
// through the complete endpoint only, never on insert.
type Session struct {
	ID            int       `json:"id"`
	UserID        int       `json:"userId"`
	SessionType   string    `json:"sessionType,omitempty"`
	ScheduledDate time.Time `json:"scheduledDate"`
	Completed     bool      `json:"completed"`
	CreatedAt     time.Time `json:"createdAt"`
}

// SessionDetail is one planned exercise within a session.
type SessionDetail struct {
	ID         int `json:"id"`
	SessionID  int `json:"sessionId"`
	ExerciseID int `json:"exerciseId"`
	TargetSets int `json:"targetSets,omitempty"`
	TargetReps int `json:"targetReps,omitempty"`
}

// ExerciseLog records what was actually performed for one session detail.
type ExerciseLog struct {
	ID              int       `json:"id"`
	SessionDetailID int       `json:"sessionDetailId"`
	ActualSets      int       `json:"actualSets"`
	ActualReps      int       `json:"actualReps"`
	WeightKg        float64   `json:"weightKg"`
	DurationSeconds int       `json:"durationSeconds,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// DetailLogCount pairs a session detail with how many logs it has,
// for the completion check.
type DetailLogCount struct {
	DetailID int
	LogCount int
}
