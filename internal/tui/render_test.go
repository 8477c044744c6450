package tui

import (
	"bytes"
	"strings"
	"testing"

	"taskpad/internal/model"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
)

func TestMarkdownStyle_Precedence(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("COLORFGBG", "")
	t.Setenv(envMDStyle, "")

	t.Setenv(envTheme, "light")
	if got := markdownStyle("default"); got != "light" {
		t.Fatalf("expected light; got %q", got)
	}
	t.Setenv(envMDStyle, "dark")
	if got := markdownStyle("default"); got != "dark" {
		t.Fatalf("expected md style override; got %q", got)
	}
	if got := markdownStyle(ProfileMono); got != "notty" {
		t.Fatalf("expected mono to win; got %q", got)
	}
	t.Setenv(envMDStyle, "")
	t.Setenv("NO_COLOR", "1")
	if got := markdownStyle("default"); got != "notty" {
		t.Fatalf("expected NO_COLOR to force notty; got %q", got)
	}
}

func TestRenderMarkdown_MonoIsPlain(t *testing.T) {
	out := RenderMarkdown("# Groceries\n\n- eggs\n- *milk*", 40, ProfileMono)
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no escape sequences, got %q", out)
	}
	for _, want := range []string{"Groceries", "eggs", "milk"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
	if RenderMarkdown("   ", 40, ProfileMono) != "" {
		t.Fatalf("expected empty output for blank input")
	}
}

func TestRenderMarkdown_WrapsToWidth(t *testing.T) {
	t.Setenv(envMDStyle, "dark")
	md := strings.Repeat("word ", 40)
	for _, line := range strings.Split(RenderMarkdown(md, 30, "default"), "\n") {
		if w := xansi.StringWidth(line); w > 30 {
			t.Fatalf("line wider than 30 (%d): %q", w, line)
		}
	}
}

func TestThemeDarkOverride(t *testing.T) {
	t.Setenv(envTheme, "")
	t.Setenv("COLORFGBG", "15;0")
	if dark, ok := themeDarkOverride(); !ok || !dark {
		t.Fatalf("expected dark from COLORFGBG")
	}
	t.Setenv("COLORFGBG", "0;15")
	if dark, ok := themeDarkOverride(); !ok || dark {
		t.Fatalf("expected light from COLORFGBG")
	}
	t.Setenv(envTheme, "dark")
	if dark, ok := themeDarkOverride(); !ok || !dark {
		t.Fatalf("expected explicit theme to win")
	}
	t.Setenv(envTheme, "")
	t.Setenv("COLORFGBG", "")
	if _, ok := themeDarkOverride(); ok {
		t.Fatalf("expected no override")
	}
}

func TestApplyColorProfile_NoColor(t *testing.T) {
	prev := lipgloss.ColorProfile()
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })

	t.Setenv("NO_COLOR", "1")
	applyColorProfilePreference("default")
	if lipgloss.ColorProfile() != termenv.Ascii {
		t.Fatalf("expected ascii profile with NO_COLOR")
	}
	t.Setenv("NO_COLOR", "")
	lipgloss.SetColorProfile(termenv.ANSI256)
	applyColorProfilePreference(ProfileMono)
	if lipgloss.ColorProfile() != termenv.Ascii {
		t.Fatalf("expected ascii profile for mono")
	}
}

func TestTaskDelegate_TruncatesToWidth(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI256)
	tasks := []*model.Task{
		{ID: "a", Title: strings.Repeat("very long title ", 8), DueDate: "2024-05-01", Category: model.CategoryWork, Priority: model.PriorityHigh},
		{ID: "b", Title: "short", Status: model.StatusCompleted, Priority: model.PriorityLow},
	}
	d := newTaskDelegate()
	l := list.New(taskItems(tasks), d, 40, 5)

	for i, it := range l.Items() {
		var buf bytes.Buffer
		d.Render(&buf, l, i, it)
		if w := xansi.StringWidth(buf.String()); w > 40 {
			t.Fatalf("row %d wider than list (%d): %q", i, w, buf.String())
		}
	}

	var buf bytes.Buffer
	d.Render(&buf, l, 1, l.Items()[1])
	if !strings.Contains(xansi.Strip(buf.String()), "[x] short") {
		t.Fatalf("expected completed marker, got %q", xansi.Strip(buf.String()))
	}
}
