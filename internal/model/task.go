package model

import (
	"strings"
	"time"
)

// Priority is the ordinal ranking used for the default task ordering.
// The values are stored as upper-case strings, matching what the frontend sends.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Rank returns the sort weight of the priority: HIGH > MEDIUM > LOW.
// Unknown values rank below LOW.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether p is one of the enumerated priorities.
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// ParsePriority normalises user input ("high", " High ") to a Priority.
// The boolean is false when the input does not name a known priority.
func ParsePriority(s string) (Priority, bool) {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	return p, p.Valid()
}

// Status is the task lifecycle label. Any status may be set to any other status.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ParseStatus normalises user input to a Status.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	return st, st.Valid()
}

// Task is a to-do item owned by exactly one user.
//
// UserID is set once on creation and never changes: there is no transfer
// operation anywhere in the service.
type Task struct {
	ID          int64     `json:"taskId"      db:"id"`
	Title       string    `json:"title"       db:"title"`
	Description string    `json:"description" db:"description"`
	Priority    Priority  `json:"priority"    db:"priority"`
	Status      Status    `json:"status"      db:"status"`
	UserID      int64     `json:"userId"      db:"user_id"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`
}
