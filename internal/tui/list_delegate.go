package tui

import (
	"fmt"
	"io"
	"strings"

	"taskpad/internal/model"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type taskItem struct {
	task *model.Task
}

func (i taskItem) FilterValue() string { return i.task.Title }

func (i taskItem) Title() string {
	mark := "[ ]"
	if i.task.Status == model.StatusCompleted {
		mark = "[x]"
	}
	return mark + " " + i.task.Title
}

func (i taskItem) meta() string {
	parts := []string{}
	if d := model.DueDay(i.task.DueDate); d != "" {
		parts = append(parts, d)
	}
	if i.task.Category != "" {
		parts = append(parts, string(i.task.Category))
	}
	return strings.Join(parts, "  ")
}

type taskDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	muted    lipgloss.Style
}

func newTaskDelegate() taskDelegate {
	return taskDelegate{
		normal:   lipgloss.NewStyle(),
		selected: styleSelected(),
		muted:    styleMuted(),
	}
}

func (d taskDelegate) Height() int                             { return 1 }
func (d taskDelegate) Spacing() int                            { return 0 }
func (d taskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		return
	}
	it, ok := item.(taskItem)
	if !ok || it.task == nil {
		fmt.Fprint(w, xansi.Truncate(fmt.Sprint(item), contentW, "…"))
		return
	}

	title := it.Title()
	meta := it.meta()
	pri := string(it.task.Priority)

	// Right-hand columns are dropped before the title is truncated.
	right := ""
	if meta != "" || pri != "" {
		right = strings.TrimSpace(meta + "  " + pri)
	}
	rightW := xansi.StringWidth(right)
	if rightW > 0 && rightW+12 > contentW {
		right, rightW = "", 0
	}
	titleW := contentW
	if rightW > 0 {
		titleW = contentW - rightW - 2
	}
	if xansi.StringWidth(title) > titleW {
		title = xansi.Truncate(title, titleW, "…")
	}

	if index == m.Index() {
		line := title
		if rightW > 0 {
			line += strings.Repeat(" ", titleW-xansi.StringWidth(title)+2) + right
		}
		if lineW := xansi.StringWidth(line); lineW < contentW {
			line += strings.Repeat(" ", contentW-lineW)
		}
		fmt.Fprint(w, d.selected.Render(line))
		return
	}

	line := d.normal.Render(title)
	if rightW > 0 {
		pad := strings.Repeat(" ", titleW-xansi.StringWidth(title)+2)
		rendered := d.muted.Render(meta)
		if pri != "" {
			if meta != "" {
				rendered += "  "
			}
			rendered += stylePriority(it.task.Priority).Render(pri)
		}
		line += pad + rendered
	}
	fmt.Fprint(w, line)
}

func taskItems(tasks []*model.Task) []list.Item {
	items := make([]list.Item, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, taskItem{task: t})
	}
	return items
}
