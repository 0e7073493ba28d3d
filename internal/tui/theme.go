package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/akyairhashvil/problemtracker/internal/models"
)

type Theme struct {
	Name       string
	Base       lipgloss.Style
	Border     lipgloss.Color
	Header     lipgloss.Style
	Counter    lipgloss.Style
	StatusNew  lipgloss.Style
	StatusWIP  lipgloss.Style
	StatusDone lipgloss.Style
	Panel      lipgloss.Style
	Modal      lipgloss.Style
	Input      lipgloss.Style
	Focused    lipgloss.Style
	Dim        lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
}

var Themes = map[string]Theme{
	"default": {
		Name:       "Default",
		Base:       lipgloss.NewStyle().Margin(0, 1),
		Border:     lipgloss.Color("63"),
		Header:     lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		Counter:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		StatusNew:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		StatusWIP:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		StatusDone: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Panel:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("208")).Padding(0, 1),
		Modal:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("205")).Padding(1, 2),
		Input:      lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1).Width(50),
		Focused:    lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		Dim:        lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Success:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Warning:    lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
	},
	"dracula": {
		Name:       "Dracula",
		Base:       lipgloss.NewStyle().Margin(0, 1),
		Border:     lipgloss.Color("62"),
		Header:     lipgloss.NewStyle().Foreground(lipgloss.Color("50")).Bold(true),
		Counter:    lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		StatusNew:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		StatusWIP:  lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true),
		StatusDone: lipgloss.NewStyle().Foreground(lipgloss.Color("120")),
		Panel:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("215")).Padding(0, 1),
		Modal:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("212")).Padding(1, 2),
		Input:      lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("60")).Padding(0, 1).Width(50),
		Focused:    lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
		Dim:        lipgloss.NewStyle().Foreground(lipgloss.Color("60")),
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("210")).Bold(true),
		Success:    lipgloss.NewStyle().Foreground(lipgloss.Color("84")),
		Warning:    lipgloss.NewStyle().Foreground(lipgloss.Color("215")).Bold(true),
	},
}

// CurrentTheme holds the currently active theme.
var CurrentTheme = Themes["default"]

func SetTheme(name string) {
	if t, ok := Themes[name]; ok {
		CurrentTheme = t
	}
}

func (t Theme) StatusStyle(s models.Status) lipgloss.Style {
	switch s {
	case models.StatusNew:
		return t.StatusNew
	case models.StatusInProgress:
		return t.StatusWIP
	case models.StatusCompleted:
		return t.StatusDone
	}
	return t.Dim
}

func (t Theme) TableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(t.Border).
		Bold(false)
	return s
}
