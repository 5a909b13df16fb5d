package todo

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the store.
var (
	ErrEmptyText = errors.New("task text is empty")
	ErrNotFound  = errors.New("task not found")
	ErrAmbiguous = errors.New("ambiguous task reference")
)

// Priority represents a task priority.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities returns all priorities from lowest to highest.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority parses a priority name, case-insensitively.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority %q, must be one of: low, medium, high", s)
	}
	return p, nil
}

// Category groups tasks. The set is open.
type Category string

const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
)

// DefaultCategories returns the categories offered when none are configured.
func DefaultCategories() []Category {
	return []Category{CategoryWork, CategoryPersonal}
}

// ParseCategory normalizes a category name. Only emptiness is rejected.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return "", fmt.Errorf("category is empty")
	}
	return c, nil
}

// Task represents a single entry in the collection.
type Task struct {
	ID        string   `json:"id,omitempty" yaml:"id,omitempty"`
	Text      string   `json:"text" yaml:"text"`
	Priority  Priority `json:"priority" yaml:"priority"`
	Category  Category `json:"category" yaml:"category"`
	Completed bool     `json:"completed" yaml:"completed"`
}

// ShortID returns the first 8 characters of the id for display.
func (t Task) ShortID() string {
	if len(t.ID) <= 8 {
		return t.ID
	}
	return t.ID[:8]
}

// Clone returns a copy of tasks that shares no backing array with it.
func Clone(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}

// IndexOf returns the position of the task with id, or -1.
func IndexOf(tasks []Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
