package cli

import (
	"fmt"
	"strings"
	"time"

	"taskpad/internal/model"
)

type statsView struct {
	model.Stats
	CompletionRate int `json:"completionRate"`
}

func newStatsView(st model.Stats) statsView {
	return statsView{Stats: st, CompletionRate: st.CompletionRate()}
}

func (s statsView) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total: %d  Completed: %d  Pending: %d  Completion: %d%%\n", s.Total, s.Completed, s.Pending, s.CompletionRate)
	parts := make([]string, 0, len(model.Categories))
	for _, c := range model.Categories {
		if n := s.Categories[c]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", c, n))
		}
	}
	if len(parts) > 0 {
		b.WriteString(strings.Join(parts, "  "))
		b.WriteByte('\n')
	}
	return b.String()
}

type taskListView struct {
	Tasks   []*model.Task   `json:"tasks"`
	Stats   statsView       `json:"stats"`
	Filters model.FilterSet `json:"filters"`
}

func (v taskListView) Text() string {
	var b strings.Builder
	if len(v.Tasks) == 0 {
		b.WriteString("No tasks found.\n")
	}
	for _, t := range v.Tasks {
		b.WriteString(taskLine(t))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(v.Stats.Text())
	return b.String()
}

func taskLine(t *model.Task) string {
	box := "[ ]"
	if t.Status == model.StatusCompleted {
		box = "[x]"
	}
	return fmt.Sprintf("%s %s  %s  %-6s  %-8s  %s", box, t.ID, model.DueDay(t.DueDate), t.Priority, t.Category, t.Title)
}

type taskView struct {
	*model.Task
	// Rendered is the terminal rendering of the description (tasks show --render).
	Rendered string `json:"rendered,omitempty"`
}

func (v taskView) Text() string {
	var b strings.Builder
	b.WriteString(taskLine(v.Task))
	b.WriteByte('\n')
	desc := v.Rendered
	if desc == "" {
		desc = v.Description
	}
	if strings.TrimSpace(desc) != "" {
		b.WriteByte('\n')
		b.WriteString(strings.TrimRight(desc, "\n"))
		b.WriteByte('\n')
	}
	return b.String()
}

type sessionView struct {
	UserID    string     `json:"_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func (v sessionView) Text() string {
	s := fmt.Sprintf("%s <%s>", v.Name, v.Email)
	if v.ExpiresAt != nil {
		s += "  (token expires " + v.ExpiresAt.Local().Format("2006-01-02 15:04") + ")"
	}
	return s
}

type messageView struct {
	Message string `json:"message"`
}

func (v messageView) Text() string { return v.Message }
