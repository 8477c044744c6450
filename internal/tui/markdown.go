package tui

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	mdRendererMu sync.Mutex
	// Renderers are cached by style and wrap width. WithAutoStyle can block on terminal
	// queries, so a fixed style is resolved up front.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

// RenderMarkdown renders a task description for the terminal, wrapped to width.
// The mono profile (or NO_COLOR) renders without ANSI styling. On any renderer error
// the trimmed source is returned.
func RenderMarkdown(md string, width int, profile string) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	style := markdownStyle(profile)
	key := style + ":" + strconv.Itoa(width)

	mdRendererMu.Lock()
	r := mdRenderers[key]
	mdRendererMu.Unlock()

	if r == nil {
		opts := []glamour.TermRendererOption{
			glamour.WithStyles(markdownStyleConfig(style)),
			glamour.WithWordWrap(width),
		}
		if style == "notty" {
			opts = append(opts, glamour.WithColorProfile(termenv.Ascii))
		}
		rr, err := glamour.NewTermRenderer(opts...)
		if err != nil {
			return md
		}
		mdRendererMu.Lock()
		if existing := mdRenderers[key]; existing != nil {
			r = existing
		} else {
			mdRenderers[key] = rr
			r = rr
		}
		mdRendererMu.Unlock()
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

func markdownStyleConfig(name string) ansi.StyleConfig {
	var cfg ansi.StyleConfig
	switch name {
	case "notty":
		cfg = styles.NoTTYStyleConfig
	case "light":
		cfg = styles.LightStyleConfig
	default:
		cfg = styles.DarkStyleConfig
	}
	// The detail pane has its own padding.
	zero := uint(0)
	cfg.Document.Margin = &zero
	return cfg
}

func markdownStyle(profile string) string {
	if colorDisabled(profile) {
		return "notty"
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(envMDStyle))) {
	case "light":
		return "light"
	case "dark":
		return "dark"
	case "notty":
		return "notty"
	}
	if dark, ok := themeDarkOverride(); ok {
		if dark {
			return "dark"
		}
		return "light"
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
