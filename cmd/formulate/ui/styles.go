// Package ui provides the visual styling for the formulate editor.
// Light and dark palettes share one set of component styles.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	// Light Mode Colors (Default)
	LightForeground = lipgloss.Color("#1b2430")
	LightPrimary    = lipgloss.Color("#1f4e79") // Ink blue
	LightAccent     = lipgloss.Color("#2e7d32") // Ledger green
	LightChip       = lipgloss.Color("#dbe8f5")
	LightMuted      = lipgloss.Color("#8a94a3")
	LightBorder     = lipgloss.Color("#c9d1db")
	LightSelected   = lipgloss.Color("#fff3c4")

	// Dark Mode Colors
	DarkForeground = lipgloss.Color("#eceff4")
	DarkPrimary    = lipgloss.Color("#88c0d0")
	DarkAccent     = lipgloss.Color("#a3be8c")
	DarkChip       = lipgloss.Color("#2f3b4f")
	DarkMuted      = lipgloss.Color("#6b7689")
	DarkBorder     = lipgloss.Color("#3b4658")
	DarkSelected   = lipgloss.Color("#4c566a")

	// Semantic Colors (same in both modes)
	Destructive = lipgloss.Color("#e53935")
	Warning     = lipgloss.Color("#FFC107")
)

// Theme holds the current color scheme
type Theme struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Chip       lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Selected   lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Chip:       LightChip,
		Muted:      LightMuted,
		Border:     LightBorder,
		Selected:   LightSelected,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Chip:       DarkChip,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		Selected:   DarkSelected,
		IsDark:     true,
	}
}

// DetectTheme picks dark when forced or when the terminal reports a dark
// background, light otherwise.
func DetectTheme(forceDark bool) Theme {
	if forceDark || os.Getenv("FORMULATE_DARK_MODE") == "1" {
		return DarkTheme()
	}

	// Format is usually "foreground;background"
	if colorTerm := os.Getenv("COLORFGBG"); colorTerm != "" {
		parts := strings.Split(colorTerm, ";")
		if bgIdx, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			// 0-6 and 8 (dark grey) are dark backgrounds
			if (bgIdx >= 0 && bgIdx <= 6) || bgIdx == 8 {
				return DarkTheme()
			}
		}
	}

	return LightTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	// Editor box
	Editor        lipgloss.Style
	EditorFocused lipgloss.Style
	Prefix        lipgloss.Style
	Text          lipgloss.Style

	// Chips
	Chip         lipgloss.Style
	ChipSelected lipgloss.Style
	ChipRemove   lipgloss.Style

	// Suggestion panel
	Panel          lipgloss.Style
	CategoryHeader lipgloss.Style
	Option         lipgloss.Style
	OptionActive   lipgloss.Style
	OptionValue    lipgloss.Style

	// Result line
	ResultLabel lipgloss.Style
	ResultValue lipgloss.Style
	ResultState lipgloss.Style

	// Chrome
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Spinner lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Editor: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		EditorFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Primary).
			Padding(0, 1),

		Prefix: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Text: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Chip: lipgloss.NewStyle().
			Background(theme.Chip).
			Foreground(theme.Primary).
			Padding(0, 1),

		ChipSelected: lipgloss.NewStyle().
			Background(theme.Selected).
			Foreground(theme.Primary).
			Bold(true).
			Padding(0, 1),

		ChipRemove: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		CategoryHeader: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		Option: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			PaddingLeft(2),

		OptionActive: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Background(theme.Selected).
			Bold(true).
			PaddingLeft(2),

		OptionValue: lipgloss.NewStyle().
			Foreground(theme.Muted),

		ResultLabel: lipgloss.NewStyle().
			Foreground(theme.Muted),

		ResultValue: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		ResultState: lipgloss.NewStyle().
			Foreground(Warning),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(Warning),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),
	}
}

// DefaultStyles returns styles for the detected theme
func DefaultStyles() Styles {
	return NewStyles(DetectTheme(false))
}

// GlamourStyle names the glamour palette that matches the theme.
func (t Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

// RenderChip draws a variable reference as "[Name ×]".
func (s Styles) RenderChip(name string, selected bool) string {
	style := s.Chip
	if selected {
		style = s.ChipSelected
	}
	return style.Render("[" + name + " " + s.ChipRemove.Render("×") + "]")
}

// RenderCategory draws a panel section header.
func (s Styles) RenderCategory(category string) string {
	return s.CategoryHeader.Render("◉ " + strings.ToUpper(category))
}

// RenderOption draws a panel entry as "Name (value)", omitting an empty value.
func (s Styles) RenderOption(name, value string, active bool) string {
	label := name
	if value != "" {
		label += " " + s.OptionValue.Render("("+value+")")
	}
	if active {
		return s.OptionActive.Render(label)
	}
	return s.Option.Render(label)
}

// RenderResult draws the result line. Numeric results use the value style
// and state messages the warning style.
func (s Styles) RenderResult(text string, numeric bool) string {
	style := s.ResultState
	if numeric {
		style = s.ResultValue
	}
	return s.ResultLabel.Render("Result: ") + style.Render(text)
}
