package publish

import (
	"bytes"
	"strings"
	"time"

	"taskpad/internal/model"
)

// TaskMarkdown renders one task as a standalone markdown page.
func TaskMarkdown(t model.Task) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + strings.TrimSpace(t.Title))
	writeLn("")
	writeLn("## Meta")
	writeLn("")
	writeLn("- ID: " + t.ID)
	if d := model.DueDay(t.DueDate); d != "" {
		writeLn("- Due: " + d)
	}
	if t.Category != "" {
		writeLn("- Category: " + string(t.Category))
	}
	if t.Priority != "" {
		writeLn("- Priority: " + string(t.Priority))
	}
	if t.Status != "" {
		writeLn("- Status: " + string(t.Status))
	}
	if t.CreatedAt != nil {
		writeLn("- Created: " + t.CreatedAt.UTC().Format(time.RFC3339))
	}
	if t.UpdatedAt != nil {
		writeLn("- Updated: " + t.UpdatedAt.UTC().Format(time.RFC3339))
	}

	if desc := strings.TrimSpace(t.Description); desc != "" {
		writeLn("")
		writeLn("## Description")
		writeLn("")
		writeLn(desc)
	}
	return buf.String()
}

// IndexMarkdown renders a checklist of tasks grouped by category, linking each task page.
func IndexMarkdown(tasks []*model.Task) string {
	var buf bytes.Buffer
	buf.WriteString("# Tasks\n")

	byCat := map[model.Category][]*model.Task{}
	var extra []model.Category
	for _, t := range tasks {
		if t == nil {
			continue
		}
		if _, ok := byCat[t.Category]; !ok && !knownCategory(t.Category) {
			extra = append(extra, t.Category)
		}
		byCat[t.Category] = append(byCat[t.Category], t)
	}

	order := append(append([]model.Category{}, model.Categories...), extra...)
	for _, c := range order {
		list := byCat[c]
		if len(list) == 0 {
			continue
		}
		name := string(c)
		if name == "" {
			name = "Uncategorized"
		}
		buf.WriteString("\n## " + name + "\n\n")
		for _, t := range list {
			mark := " "
			if t.Status == model.StatusCompleted {
				mark = "x"
			}
			line := "- [" + mark + "] [" + strings.TrimSpace(t.Title) + "](tasks/" + t.ID + ".md)"
			if d := model.DueDay(t.DueDate); d != "" {
				line += " (due " + d + ")"
			}
			buf.WriteString(line + "\n")
		}
	}
	return buf.String()
}

func knownCategory(c model.Category) bool {
	for _, k := range model.Categories {
		if k == c {
			return true
		}
	}
	return false
}
