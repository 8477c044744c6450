package publish

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"taskpad/internal/model"
)

func TestTaskMarkdown_IncludesMetaAndDescription(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 4, 20, 8, 0, 0, 0, time.UTC)
	md := TaskMarkdown(model.Task{
		ID:          "665f1c2ab4d9a81e3c0f7d21",
		Title:       "Write report",
		Description: "Some **markdown**.",
		DueDate:     "2024-05-01T00:00:00.000Z",
		Category:    model.CategoryWork,
		Priority:    model.PriorityHigh,
		Status:      model.StatusPending,
		CreatedAt:   &created,
	})
	for _, want := range []string{
		"# Write report",
		"- Due: 2024-05-01",
		"- Category: Work",
		"- Priority: high",
		"- Created: 2024-04-20T08:00:00Z",
		"## Description",
		"Some **markdown**.",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in:\n%s", want, md)
		}
	}
	if strings.Contains(TaskMarkdown(model.Task{ID: "x", Title: "Bare"}), "## Description") {
		t.Fatalf("expected no description section for empty description")
	}
}

func TestIndexMarkdown_GroupsByCategory(t *testing.T) {
	t.Parallel()

	md := IndexMarkdown([]*model.Task{
		{ID: "b", Title: "Run", Category: model.CategoryHealth, Status: model.StatusCompleted},
		{ID: "a", Title: "Report", Category: model.CategoryWork, DueDate: "2024-05-01"},
		{ID: "c", Title: "Odd", Category: "Garden"},
	})
	work := strings.Index(md, "## Work")
	health := strings.Index(md, "## Health")
	garden := strings.Index(md, "## Garden")
	if work < 0 || health < 0 || garden < 0 || !(work < health && health < garden) {
		t.Fatalf("unexpected section order:\n%s", md)
	}
	if !strings.Contains(md, "- [x] [Run](tasks/b.md)") {
		t.Fatalf("expected completed checklist entry:\n%s", md)
	}
	if !strings.Contains(md, "- [ ] [Report](tasks/a.md) (due 2024-05-01)") {
		t.Fatalf("expected pending entry with due day:\n%s", md)
	}
}

func TestWriteTasks_WritesIndexAndPages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tasks := []*model.Task{
		{ID: "a1", Title: "One", Category: model.CategoryWork},
		{ID: "b2", Title: "Two", Category: model.CategoryStudy},
	}
	res, err := WriteTasks(tasks, dir, WriteOptions{})
	if err != nil {
		t.Fatalf("WriteTasks: %v", err)
	}
	if len(res.Written) != 3 {
		t.Fatalf("expected 3 files, got %v", res.Written)
	}
	b, err := os.ReadFile(filepath.Join(dir, "tasks", "b2.md"))
	if err != nil || !strings.Contains(string(b), "# Two") {
		t.Fatalf("expected task page, got %q (%v)", b, err)
	}

	if _, err := WriteTasks(tasks, dir, WriteOptions{}); err == nil || !strings.Contains(err.Error(), "file exists") {
		t.Fatalf("expected refusal to overwrite, got %v", err)
	}
	if _, err := WriteTasks(tasks, dir, WriteOptions{Overwrite: true}); err != nil {
		t.Fatalf("expected overwrite to succeed: %v", err)
	}
	if _, err := WriteTasks(tasks, " ", WriteOptions{}); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}
