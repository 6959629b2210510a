package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func TestViewBeforeReady(t *testing.T) {
	m := newTestModel(t, 3)
	m.ready = false
	if got := m.View(); got != "Loading..." {
		t.Errorf("View = %q before the first resize", got)
	}
}

func TestRowViewExactTerminalWidth(t *testing.T) {
	m := newTestModel(t, 3)

	for i, e := range m.visibleEntries() {
		row := m.rowView(i, e)
		if lipgloss.Width(row) != m.width {
			t.Errorf("row %d is %d columns, want %d", i, lipgloss.Width(row), m.width)
		}
	}

	m.selected = 1
	row := m.rowView(1, m.visibleEntries()[1])
	if lipgloss.Width(row) != m.width {
		t.Errorf("selected row is %d columns, want %d", lipgloss.Width(row), m.width)
	}
}

func TestRowViewWideTitleStaysOnBudget(t *testing.T) {
	m := newTestModel(t, 1)
	m.entries["news"][0].Title = strings.Repeat("아주 긴 한글 제목 ", 20)
	m.selected = 0

	for i := 0; i < 300; i++ {
		e := m.visibleEntries()[0]
		m.mq.step(displayWidth(e.Title), m.titleBudget(e))
		row := m.rowView(0, e)
		if lipgloss.Width(row) != m.width {
			t.Fatalf("selected row drifted to %d columns at tick %d", lipgloss.Width(row), i)
		}
	}
}

func TestCategoryBarWidth(t *testing.T) {
	m := newTestModel(t, 3)
	if got := lipgloss.Width(m.categoryBar()); got != m.width {
		t.Errorf("category bar is %d columns, want %d", got, m.width)
	}

	m.notice = "Update failed"
	if got := lipgloss.Width(m.categoryBar()); got != m.width {
		t.Errorf("category bar with alert is %d columns, want %d", got, m.width)
	}
}

func TestAlertPrecedence(t *testing.T) {
	m := newTestModel(t, 3)
	m.notice = "Update failed"

	if got := m.alertText(); got != "Update failed" {
		t.Errorf("alert = %q", got)
	}

	m.summarizing = true
	if got := m.alertText(); got != "SUMMARIZING..." {
		t.Errorf("alert = %q, want summarization to outrank the notice", got)
	}
}

func TestEmptyViewHintsRefresh(t *testing.T) {
	m := newTestModel(t, 0)
	view := m.View()
	if !strings.Contains(view, "Press 'r' to refresh") {
		t.Errorf("empty view missing refresh hint:\n%s", view)
	}

	m.refreshing = true
	if view := m.View(); !strings.Contains(view, "Loading...") {
		t.Errorf("refreshing empty view missing loading text:\n%s", view)
	}
}

func TestJumpModeGutter(t *testing.T) {
	m := newTestModel(t, 12)
	m.mode = modeNumberJump
	m.jumpDigits = "3"

	view := m.View()
	if !strings.Contains(view, "12") {
		t.Errorf("gutter missing row numbers:\n%s", view)
	}
}

func TestTickExpiresNotice(t *testing.T) {
	m := newTestModel(t, 3)
	m.notice = "Update failed"
	m.noticeUntil = time.Now().Add(-time.Second)

	next, cmd := m.handleTick()
	m = next.(Model)
	if m.notice != "" {
		t.Errorf("notice = %q, want expired", m.notice)
	}
	if cmd == nil {
		t.Error("tick did not reschedule itself")
	}
}
