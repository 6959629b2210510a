package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorBar       = lipgloss.Color("235")
	colorTab       = lipgloss.Color("223")
	colorSource    = lipgloss.Color("2")
	colorTime      = lipgloss.Color("8")
	colorSelected  = lipgloss.Color("15")
	colorAlertBg   = lipgloss.Color("12")
	colorAlertFg   = lipgloss.Color("15")
	colorGutter    = lipgloss.Color("8")
	colorGutterHit = lipgloss.Color("15")
)

// CategoryTab style for inactive category tabs.
var CategoryTab = lipgloss.NewStyle().
	Foreground(colorTab).
	Background(colorBar)

// CategoryTabActive style for the active category tab.
var CategoryTabActive = lipgloss.NewStyle().
	Foreground(colorBar).
	Background(colorTab)

// CategoryBar style for the bar background between tabs.
var CategoryBar = lipgloss.NewStyle().
	Background(colorBar)

// AlertStyle for the transient top-right strip (loading, translating,
// summarizing).
var AlertStyle = lipgloss.NewStyle().
	Foreground(colorAlertFg).
	Background(colorAlertBg).
	Bold(true)

// SelectedRow style for the selected entry row.
var SelectedRow = lipgloss.NewStyle().
	Foreground(lipgloss.Color("0")).
	Background(colorSelected)

// SourceStyle for the source name field.
var SourceStyle = lipgloss.NewStyle().
	Foreground(colorSource)

// TimeStyle for the right-aligned date field.
var TimeStyle = lipgloss.NewStyle().
	Foreground(colorTime)

// GutterStyle for number-jump row indices.
var GutterStyle = lipgloss.NewStyle().
	Foreground(colorGutter)

// GutterHitStyle for the row index matching the typed number.
var GutterHitStyle = lipgloss.NewStyle().
	Foreground(colorGutterHit).
	Bold(true)

// ModalStyle for the summary modal box.
var ModalStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorTab).
	Background(colorBar).
	Foreground(colorTab).
	Padding(0, 1)

// ModalLabel for the modal's bottom key hints.
var ModalLabel = lipgloss.NewStyle().
	Foreground(colorBar).
	Background(colorTab)

// HelpStyle for the help overlay.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorAlertFg).
	Background(colorAlertBg).
	Padding(1, 3)

// EmptyStyle for the "no entries" message.
var EmptyStyle = lipgloss.NewStyle().
	Foreground(colorTime)
