package tui

import (
	"os"
	"strconv"
	"strings"

	"taskpad/internal/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ProfileMono disables colors in the TUI and renders markdown without styling.
const ProfileMono = "mono"

const (
	envTheme   = "TASKPAD_TUI_THEME"
	envMDStyle = "TASKPAD_TUI_MD_STYLE"
)

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorAccent     lipgloss.TerminalColor = ac("25", "75")
	colorMuted      lipgloss.TerminalColor = ac("244", "245")
	colorError      lipgloss.TerminalColor = ac("160", "203")
	colorSuccess    lipgloss.TerminalColor = ac("28", "78")
	colorWarn       lipgloss.TerminalColor = ac("136", "221")
	colorBorder     lipgloss.TerminalColor = ac("250", "240")
	colorSelectedBg lipgloss.TerminalColor = ac("254", "236")
	colorSelectedFg lipgloss.TerminalColor = ac("235", "255")
)

func styleTitle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
}

func styleMuted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorMuted)
}

func styleError() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorError)
}

func styleNotice() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorSuccess)
}

func styleSelected() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
}

func styleCard() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)
}

func stylePanel() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)
}

func stylePriority(p model.Priority) lipgloss.Style {
	switch p {
	case model.PriorityHigh:
		return lipgloss.NewStyle().Foreground(colorError)
	case model.PriorityMedium:
		return lipgloss.NewStyle().Foreground(colorWarn)
	default:
		return lipgloss.NewStyle().Foreground(colorSuccess)
	}
}

// colorDisabled reports whether the TUI should render without colors.
func colorDisabled(profile string) bool {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(profile), ProfileMono)
}

// applyColorProfilePreference sets Lip Gloss's color profile for the interactive TUI.
//
// termenv.EnvColorProfile also honors CLICOLOR, which can switch colors off inside a
// full-screen program; only NO_COLOR and the mono profile do that here.
func applyColorProfilePreference(profile string) {
	if colorDisabled(profile) {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	p := termenv.ColorProfile()
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if p != termenv.Ascii {
			p = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") && (p == termenv.Ascii || p == termenv.ANSI) {
		p = termenv.ANSI256
	}
	lipgloss.SetColorProfile(p)
}

// applyThemePreference configures background detection for adaptive colors.
//
// Priority:
// 1) TASKPAD_TUI_THEME=light|dark|auto
// 2) COLORFGBG heuristic ("fg;bg")
func applyThemePreference() {
	if dark, ok := themeDarkOverride(); ok {
		lipgloss.SetHasDarkBackground(dark)
	}
}

func themeDarkOverride() (dark bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(envTheme))) {
	case "light":
		return false, true
	case "dark":
		return true, true
	}
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			return bg < 7, true
		}
	}
	return false, false
}
