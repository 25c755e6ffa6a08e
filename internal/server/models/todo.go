package models

import "time"

// Todo priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ValidPriority reports whether p is one of the known priority levels.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Todo is a single task owned by a user.
type Todo struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	Completed   bool
	Priority    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
