package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/rreader/internal/feed"
)

// Fixed layout columns: the source field starts at column 1 and the
// title at column 20; number-jump mode shifts both right past the
// 3-column index gutter.
const (
	sourceCol = 1
	titleCol  = 20
	jumpShift = 4
	alertPad  = 3
	tabGap    = 2
)

// View renders the whole frame. It runs every tick.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	switch m.mode {
	case modeHelp:
		return m.helpView()
	case modeModal:
		return m.modalView()
	}

	lines := make([]string, 0, m.height)
	lines = append(lines, m.categoryBar())

	visible := m.visibleEntries()
	if len(visible) == 0 {
		return lines[0] + "\n" + m.emptyView()
	}

	for i := range visible {
		lines = append(lines, m.rowView(i, visible[i]))
	}
	for len(lines) < m.height {
		lines = append(lines, "")
	}
	return joinLines(lines)
}

// titleBudget is the column budget of the title field for one entry:
// terminal width minus the fixed offsets and the rendered date width.
func (m Model) titleBudget(e feed.Entry) int {
	col := titleCol
	if m.mode == modeNumberJump {
		col += jumpShift
	}
	b := m.width - col - displayWidth(e.PubDate) - 1
	if b < 1 {
		b = 1
	}
	return b
}

// rowView lays one entry out in exactly the terminal width. Zones left
// to right: optional index gutter, source field, title field, date.
func (m Model) rowView(i int, e feed.Entry) string {
	jump := m.mode == modeNumberJump
	selected := i == m.selected && m.mode == modeNormal

	col := titleCol
	prefixW := sourceCol
	if jump {
		col += jumpShift
		prefixW += jumpShift
	}

	srcW := col - prefixW - 1
	budget := m.titleBudget(e)

	source := truncatePad(e.SourceName, srcW)
	date := e.PubDate

	var title string
	if selected && displayWidth(e.Title) > budget {
		title = sliceShift(e.Title, budget, m.mq.offset(displayWidth(e.Title), budget))
	} else {
		title = truncatePad(e.Title, budget)
	}

	if selected {
		row := " " + source + " " + title + " " + date
		return SelectedRow.Render(truncatePad(row, m.width))
	}

	prefix := " "
	if jump {
		gutter := fmt.Sprintf("%3d", i+1)
		style := GutterStyle
		if n, err := strconv.Atoi(m.jumpDigits); err == nil && n == i+1 {
			style = GutterHitStyle
		}
		prefix = " " + style.Render(gutter) + " "
	}

	return prefix + SourceStyle.Render(source) + " " + title + " " + TimeStyle.Render(date)
}

// categoryBar renders the tab row with the transient alert strip
// overlaid top-right.
func (m Model) categoryBar() string {
	var b strings.Builder
	used := 0

	b.WriteString(CategoryBar.Render(" "))
	used++

	for i, c := range m.categories {
		tab := " " + c.Title + " "
		if i == m.category {
			b.WriteString(CategoryTabActive.Render(tab))
		} else {
			b.WriteString(CategoryTab.Render(tab))
		}
		used += displayWidth(tab)

		if i < len(m.categories)-1 {
			b.WriteString(CategoryBar.Render(strings.Repeat(" ", tabGap)))
			used += tabGap
		}
	}

	alert := m.alertText()
	alertW := 0
	rendered := ""
	if alert != "" {
		padded := strings.Repeat(" ", alertPad) + alert + strings.Repeat(" ", alertPad)
		alertW = displayWidth(padded)
		rendered = AlertStyle.Render(padded)
	}

	gap := m.width - used - alertW
	if gap < 0 {
		gap = 0
	}
	b.WriteString(CategoryBar.Render(strings.Repeat(" ", gap)))
	b.WriteString(rendered)
	return b.String()
}

// alertText picks the transient strip content by urgency.
func (m Model) alertText() string {
	if m.summarizing {
		return "SUMMARIZING..."
	}
	if st := m.agg.Loading(); st.IsLoading {
		return fmt.Sprintf("LOADING (%d/%d)", st.Current, st.Total)
	}
	if m.translator.InFlight() {
		return "Translating..."
	}
	return m.notice
}

func (m Model) emptyView() string {
	msg := "No entries available. Press 'r' to refresh."
	if m.refreshing || m.agg.Loading().IsLoading {
		msg = "Loading..."
	}
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center,
		EmptyStyle.Render(msg))
}

func (m Model) helpView() string {
	help := joinLines([]string{
		"    [Up] [Down] [W] [S] [J] [K] : Select from list",
		"[Shift]+[Up] [Shift]+[Down]     : Quickly select from list",
		"[G] / [Shift]+[G]               : Jump to top / bottom",
		"[O] [Enter] [Space]             : Open or summarize entry",
		"[:]                             : Select by typing a number",
		"[Tab] [Shift]+[Tab] [1]-[9]     : Change the category tab",
		"[R]                             : Refresh current category",
		"[Q] [Ctrl]+[C]                  : Quit",
	})
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		HelpStyle.Render(help))
}

func (m Model) modalView() string {
	w, h := m.modalSize()
	contentW := w - 4

	label := "[ESC] Close   [O] Open URL"
	labelLine := lipgloss.PlaceHorizontal(contentW, lipgloss.Center, ModalLabel.Render(label))

	body := m.modalVP.View() + "\n" + labelLine

	box := ModalStyle.Width(w - 2).Height(h - 2).Render(body)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
