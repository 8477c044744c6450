package model

import (
	"encoding/json"
	"strings"
	"time"
)

type Category string

const (
	CategoryWork     Category = "Work"
	CategoryPersonal Category = "Personal"
	CategoryHealth   Category = "Health"
	CategoryStudy    Category = "Study"
	CategoryOther    Category = "Other"
)

// Categories is the fixed, display-ordered category set.
var Categories = []Category{CategoryWork, CategoryPersonal, CategoryHealth, CategoryStudy, CategoryOther}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

var Statuses = []Status{StatusPending, StatusCompleted}

// FilterAll is the wildcard value for the category/status/priority filters.
const FilterAll = "all"

type Task struct {
	ID          string   `json:"_id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	DueDate     string   `json:"dueDate"`
	Category    Category `json:"category"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
	OwnerID     string   `json:"user,omitempty"`

	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// UnmarshalJSON accepts either "_id" or "id" as the task identity.
func (t *Task) UnmarshalJSON(b []byte) error {
	type wire Task
	var w struct {
		wire
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*t = Task(w.wire)
	if strings.TrimSpace(t.ID) == "" {
		t.ID = w.AltID
	}
	return nil
}

// TaskInput is a create/update body. Nil fields are omitted, so an update only replaces
// the fields that are set.
type TaskInput struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	DueDate     *string   `json:"dueDate,omitempty"`
	Category    *Category `json:"category,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Status      *Status   `json:"status,omitempty"`
}

// Apply returns a copy of t with the non-nil fields of in replaced.
func (in TaskInput) Apply(t Task) Task {
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.DueDate != nil {
		t.DueDate = *in.DueDate
	}
	if in.Category != nil {
		t.Category = *in.Category
	}
	if in.Priority != nil {
		t.Priority = *in.Priority
	}
	if in.Status != nil {
		t.Status = *in.Status
	}
	return t
}

// DueDay returns the due date as YYYY-MM-DD when it parses as a date or timestamp,
// otherwise the raw value.
func DueDay(dueDate string) string {
	s := strings.TrimSpace(dueDate)
	if s == "" {
		return ""
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC().Format("2006-01-02")
	}
	if len(s) >= 10 {
		if d, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return d.Format("2006-01-02")
		}
	}
	return s
}

type Session struct {
	UserID string `json:"_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

func (s *Session) Valid() bool {
	return s != nil && strings.TrimSpace(s.Token) != ""
}

type Profile struct {
	UserID string `json:"_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

type FilterSet struct {
	Category string `json:"category"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
	Search   string `json:"search"`
}

// AllFilters is the identity filter: every task passes.
func AllFilters() FilterSet {
	return FilterSet{Category: FilterAll, Status: FilterAll, Priority: FilterAll}
}

type Stats struct {
	Total      int              `json:"total"`
	Completed  int              `json:"completed"`
	Pending    int              `json:"pending"`
	Categories map[Category]int `json:"categories"`
}

// CompletionRate is the rounded completed percentage, 0 for an empty list.
func (s Stats) CompletionRate() int {
	if s.Total <= 0 {
		return 0
	}
	return int(float64(s.Completed)/float64(s.Total)*100 + 0.5)
}
