package exercises

import (
	"errors"
	"time"
)

var ErrExerciseNotFound = errors.New("exercise not found")

// Exercise is a reference catalog entry. Category is free text, the
// well-known ones (Chest, Back, Legs, ...) influence progress scoring.
type Exercise struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
