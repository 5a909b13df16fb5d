// Package filter selects the tasks shown by the list views.
package filter

import (
	"fmt"
	"strings"

	"github.com/nibzard/tasklist-go/internal/todo"
)

// All matches every value of a selector.
const All = "all"

// Status selects tasks by completion.
type Status string

const (
	StatusAll       Status = All
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Statuses returns the status selector values in display order.
func Statuses() []Status {
	return []Status{StatusAll, StatusActive, StatusCompleted}
}

// ParseStatus parses a status selector. Empty means all.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case "":
		return StatusAll, nil
	case StatusAll, StatusActive, StatusCompleted:
		return st, nil
	}
	return "", fmt.Errorf("invalid status %q, must be one of: all, active, completed", s)
}

// Criteria holds the three selectors. They combine with AND.
type Criteria struct {
	Priority string
	Category string
	Status   Status
}

// Default returns criteria that match every task.
func Default() Criteria {
	return Criteria{Priority: All, Category: All, Status: StatusAll}
}

// Parse validates selector values. Empty strings mean all; the category is
// free-form.
func Parse(priority, category, status string) (Criteria, error) {
	c := Default()

	if p := strings.ToLower(strings.TrimSpace(priority)); p != "" && p != All {
		parsed, err := todo.ParsePriority(p)
		if err != nil {
			return Criteria{}, err
		}
		c.Priority = string(parsed)
	}
	if cat := strings.ToLower(strings.TrimSpace(category)); cat != "" {
		c.Category = cat
	}
	st, err := ParseStatus(status)
	if err != nil {
		return Criteria{}, err
	}
	c.Status = st
	return c, nil
}

func isAll(s string) bool {
	return s == "" || s == All
}

// Match reports whether t passes all three selectors.
func (c Criteria) Match(t todo.Task) bool {
	if !isAll(c.Priority) && string(t.Priority) != c.Priority {
		return false
	}
	if !isAll(c.Category) && !strings.EqualFold(string(t.Category), c.Category) {
		return false
	}
	switch c.Status {
	case StatusActive:
		return !t.Completed
	case StatusCompleted:
		return t.Completed
	}
	return true
}

// IsAll reports whether c matches every task.
func (c Criteria) IsAll() bool {
	return isAll(c.Priority) && isAll(c.Category) && isAll(string(c.Status))
}

func (c Criteria) String() string {
	norm := func(s string) string {
		if s == "" {
			return All
		}
		return s
	}
	return fmt.Sprintf("priority=%s category=%s status=%s",
		norm(c.Priority), norm(c.Category), norm(string(c.Status)))
}

// Apply returns the tasks matching c in their original order. The input
// is not modified and the result never aliases it.
func Apply(tasks []todo.Task, c Criteria) []todo.Task {
	out := make([]todo.Task, 0, len(tasks))
	for _, t := range tasks {
		if c.Match(t) {
			out = append(out, t)
		}
	}
	return out
}
