// Package ui is the bubbletea front end: the interaction state machine
// (normal, number-jump, help, modal) and the render engine with its
// marquee animation.
package ui

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/rreader/internal/config"
	"github.com/abelbrown/rreader/internal/enrich"
	"github.com/abelbrown/rreader/internal/feed"
	"github.com/abelbrown/rreader/internal/logging"
)

// tickInterval is the redraw cadence. The screen repaints every tick
// whether or not state changed.
const tickInterval = 50 * time.Millisecond

// pageStride is the selection jump for shift+up/down.
const pageStride = 10

// maxVisibleRows caps the row-limited view.
const maxVisibleRows = 999

type mode int

const (
	modeNormal mode = iota
	modeNumberJump
	modeHelp
	modeModal
)

// Options wires the collaborators into the UI at construction.
type Options struct {
	Categories []config.Category
	Aggregator *feed.Aggregator
	Translator *enrich.Translator
	Summarizer *enrich.Summarizer
	OpenURL    func(url string) error
	// BackendReady routes "open" to summarization instead of the browser.
	BackendReady bool
}

// Model is the root bubbletea model.
type Model struct {
	categories []config.Category
	agg        *feed.Aggregator
	translator *enrich.Translator
	summarizer *enrich.Summarizer
	openURL    func(string) error
	backend    bool

	keys KeyMap

	width  int
	height int
	ready  bool

	mode     mode
	category int
	entries  map[string][]feed.Entry

	selected       int
	selectedID     int64
	savedSelection int
	jumpDigits     string

	mq marquee

	modalRaw   string
	modalURL   string
	modalWidth int
	modalVP    viewport.Model

	summarizing bool
	refreshing  bool
	lastRefresh time.Time

	notice      string
	noticeUntil time.Time
}

// New creates the root model.
func New(opts Options) Model {
	return Model{
		categories: opts.Categories,
		agg:        opts.Aggregator,
		translator: opts.Translator,
		summarizer: opts.Summarizer,
		openURL:    opts.OpenURL,
		backend:    opts.BackendReady,
		keys:       DefaultKeyMap(),
		entries:    make(map[string][]feed.Entry),
		selected:   -1,
	}
}

func (m Model) currentCategory() config.Category {
	return m.categories[m.category]
}

// rowLimit is the number of selectable rows: bounded by the entry
// count, the rows the terminal can show, and a hard cap of 999.
func (m Model) rowLimit() int {
	limit := m.height - 2
	if n := len(m.entries[m.currentCategory().Key]); n < limit {
		limit = n
	}
	if limit > maxVisibleRows {
		limit = maxVisibleRows
	}
	if limit < 0 {
		limit = 0
	}
	return limit
}

func (m Model) visibleEntries() []feed.Entry {
	return m.entries[m.currentCategory().Key][:m.rowLimit()]
}

// Init loads the initial category (cache first) and starts the tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(m.currentCategory(), false, false), tick())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// loadCmd runs one aggregation. bypassCache forces a network fetch;
// auto marks a background refresh that must preserve the selection.
func (m Model) loadCmd(cat config.Category, bypassCache, auto bool) tea.Cmd {
	agg := m.agg
	return func() tea.Msg {
		ctx := context.Background()
		var entries []feed.Entry
		var err error
		if bypassCache {
			entries, err = agg.FetchFeeds(ctx, cat)
		} else {
			entries, err = agg.LoadOrRefresh(ctx, cat)
		}
		if err != nil {
			logging.Error("aggregation failed", "category", cat.Key, "err", err)
		}
		return entriesLoadedMsg{Category: cat.Key, Entries: entries, Auto: auto}
	}
}

func (m Model) summarizeCmd(url string) tea.Cmd {
	s := m.summarizer
	return func() tea.Msg {
		text, err := s.Summarize(context.Background(), url)
		return summaryMsg{Text: text, URL: url, Err: err}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		if m.mode == modeModal {
			m.layoutModal()
		}
		if m.selected >= m.rowLimit() {
			m.selected = -1
			m.mq.reset()
		}
		return m, nil

	case tickMsg:
		return m.handleTick()

	case entriesLoadedMsg:
		return m.handleEntriesLoaded(msg), nil

	case summaryMsg:
		return m.handleSummary(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	now := time.Now()
	var cmds []tea.Cmd

	// Drain completed translations once per tick.
	if pending := m.translator.TakePending(); pending != nil {
		m.applyTranslations(pending)
	}

	// Advance the marquee for the selected row.
	if m.mode == modeNormal && m.selected >= 0 && m.selected < m.rowLimit() {
		entry := m.visibleEntries()[m.selected]
		m.mq.step(displayWidth(entry.Title), m.titleBudget(entry))
	}

	// Automatic background refresh of the active category.
	if m.ready && !m.refreshing && !m.summarizing &&
		!m.lastRefresh.IsZero() && now.Sub(m.lastRefresh) >= feed.RefreshInterval {
		m.refreshing = true
		cmds = append(cmds, m.loadCmd(m.currentCategory(), true, true))
	}

	if m.notice != "" && now.After(m.noticeUntil) {
		m.notice = ""
	}

	cmds = append(cmds, tick())
	return m, tea.Batch(cmds...)
}

func (m Model) handleEntriesLoaded(msg entriesLoadedMsg) Model {
	m.refreshing = false
	m.lastRefresh = time.Now()

	if msg.Auto && len(msg.Entries) == 0 {
		// Keep the stale list; retry after the next full interval.
		m.notice = "Update failed"
		m.noticeUntil = time.Now().Add(time.Second)
		return m
	}

	m.entries[msg.Category] = msg.Entries

	if msg.Category != m.currentCategory().Key {
		return m
	}

	if msg.Auto && m.selected >= 0 {
		// The list mutated underneath the cursor; follow the entry id.
		m.selected = -1
		for i, e := range m.visibleEntries() {
			if e.ID == m.selectedID {
				m.selected = i
				break
			}
		}
		if m.selected < 0 {
			m.mq.reset()
		}
	} else {
		m.selected = -1
		m.mq.reset()
	}

	m.triggerTranslation()
	return m
}

func (m Model) handleSummary(msg summaryMsg) (tea.Model, tea.Cmd) {
	m.summarizing = false

	var fetchErr *enrich.FetchError
	switch {
	case msg.Err == nil && msg.Text == "":
		// Nothing came back; fall through to the browser.
		if m.openURL != nil {
			_ = m.openURL(msg.URL)
		}
		return m, nil
	case errors.As(msg.Err, &fetchErr):
		m.openModal(fetchErr.Error(), msg.URL)
	case msg.Err != nil:
		m.openModal("An error occurred: "+msg.Err.Error(), msg.URL)
	default:
		m.openModal(msg.Text, msg.URL)
	}
	return m, nil
}

// applyTranslations mutates the live entries: the canonical title is
// captured into TitleOriginal before the translation overwrites Title,
// so a later re-trigger resubmits the original text.
func (m *Model) applyTranslations(pending map[string]map[string]string) {
	for category, translations := range pending {
		entries := m.entries[category]
		for i := range entries {
			canonical := entries[i].TitleOriginal
			if canonical == "" {
				canonical = entries[i].Title
			}
			if translated, ok := translations[canonical]; ok {
				if entries[i].TitleOriginal == "" {
					entries[i].TitleOriginal = canonical
				}
				entries[i].Title = translated
			}
		}
	}
}

// triggerTranslation submits the canonical titles of the visible
// entries. A no-op without a configured backend or while a job runs.
func (m *Model) triggerTranslation() {
	if !m.backend {
		return
	}
	visible := m.visibleEntries()
	titles := make([]string, 0, len(visible))
	for _, e := range visible {
		if e.TitleOriginal != "" {
			titles = append(titles, e.TitleOriginal)
		} else if e.Title != "" {
			titles = append(titles, e.Title)
		}
	}
	m.translator.Trigger(m.currentCategory().Key, titles)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Everything else is deliberately dead while a summary is in flight.
	if m.summarizing {
		return m, nil
	}

	switch m.mode {
	case modeModal:
		return m.handleModalKey(msg)
	case modeHelp:
		m.mode = modeNormal
		return m, nil
	case modeNumberJump:
		return m.handleJumpKey(msg)
	}
	return m.handleNormalKey(msg)
}

func (m Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.closeModal()
		return m, nil
	case key.Matches(msg, m.keys.Open):
		if m.modalURL != "" && m.openURL != nil {
			_ = m.openURL(m.modalURL)
		}
		m.closeModal()
		return m, nil
	}
	var cmd tea.Cmd
	m.modalVP, cmd = m.modalVP.Update(msg)
	return m, cmd
}

func (m Model) handleJumpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := msg.String()
	switch {
	case s >= "0" && s <= "9":
		if len(m.jumpDigits) < 3 {
			m.jumpDigits += s
		}
		return m, nil

	case msg.Type == tea.KeyEnter:
		n, err := strconv.Atoi(m.jumpDigits)
		if err == nil && n >= 1 && n <= m.rowLimit() {
			m.selected = n - 1
		} else {
			m.selected = m.savedSelection
		}
		m.exitJumpMode()
		return m, nil

	case msg.Type == tea.KeyBackspace:
		if m.jumpDigits != "" {
			m.jumpDigits = m.jumpDigits[:len(m.jumpDigits)-1]
		} else {
			m.selected = m.savedSelection
			m.exitJumpMode()
		}
		return m, nil

	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Jump):
		m.selected = m.savedSelection
		m.exitJumpMode()
		return m, nil
	}
	return m, nil
}

func (m *Model) exitJumpMode() {
	m.mode = modeNormal
	m.jumpDigits = ""
	m.mq.reset()
	m.rememberSelectedID()
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	limit := m.rowLimit()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Down):
		if limit == 0 {
			return m, nil
		}
		m.mq.reset()
		m.selected++
		if m.selected >= limit {
			m.selected = 0
		}
		m.rememberSelectedID()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if limit == 0 {
			return m, nil
		}
		m.mq.reset()
		m.selected--
		if m.selected < 0 {
			m.selected = limit - 1
		}
		m.rememberSelectedID()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		if limit == 0 {
			return m, nil
		}
		m.mq.reset()
		m.selected += pageStride
		if m.selected >= limit {
			m.selected = 0
		}
		m.rememberSelectedID()
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		if limit == 0 {
			return m, nil
		}
		m.mq.reset()
		m.selected -= pageStride
		if m.selected < 0 {
			m.selected = limit - 1
		}
		m.rememberSelectedID()
		return m, nil

	case key.Matches(msg, m.keys.Top):
		if limit == 0 {
			return m, nil
		}
		m.mq.reset()
		m.selected = 0
		m.rememberSelectedID()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		if limit == 0 {
			return m, nil
		}
		m.mq.reset()
		m.selected = limit - 1
		m.rememberSelectedID()
		return m, nil

	case key.Matches(msg, m.keys.NextCategory):
		return m.switchCategory((m.category + 1) % len(m.categories))

	case key.Matches(msg, m.keys.PrevCategory):
		return m.switchCategory((m.category - 1 + len(m.categories)) % len(m.categories))

	case key.Matches(msg, m.keys.Refresh):
		m.selected = -1
		m.mq.reset()
		m.refreshing = true
		return m, m.loadCmd(m.currentCategory(), true, false)

	case key.Matches(msg, m.keys.Jump):
		m.mode = modeNumberJump
		m.savedSelection = m.selected
		m.selected = -1
		m.jumpDigits = ""
		m.mq.reset()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.mode = modeHelp
		return m, nil

	case key.Matches(msg, m.keys.Open):
		return m.openSelected()

	case key.Matches(msg, m.keys.Escape):
		m.selected = -1
		m.mq.reset()
		return m, nil
	}

	// Digit keys select a category directly.
	if s := msg.String(); len(s) == 1 && s >= "1" && s <= "9" {
		if idx := int(s[0] - '1'); idx < len(m.categories) {
			return m.switchCategory(idx)
		}
	}

	return m, nil
}

func (m Model) switchCategory(idx int) (tea.Model, tea.Cmd) {
	m.category = idx
	m.selected = -1
	m.savedSelection = -1
	m.mq.reset()
	m.refreshing = true
	return m, m.loadCmd(m.currentCategory(), false, false)
}

func (m Model) openSelected() (tea.Model, tea.Cmd) {
	if m.selected < 0 || m.selected >= m.rowLimit() {
		return m, nil
	}
	entry := m.visibleEntries()[m.selected]
	if entry.URL == "" {
		return m, nil
	}

	if m.backend {
		m.summarizing = true
		return m, m.summarizeCmd(entry.URL)
	}

	if m.openURL != nil {
		if err := m.openURL(entry.URL); err != nil {
			logging.Warn("failed to open link", "url", entry.URL, "err", err)
		}
	}
	return m, nil
}

func (m *Model) rememberSelectedID() {
	if m.selected >= 0 && m.selected < m.rowLimit() {
		m.selectedID = m.visibleEntries()[m.selected].ID
	}
}

func (m *Model) openModal(text, url string) {
	m.mode = modeModal
	m.modalRaw = text
	m.modalURL = url
	m.layoutModal()
}

func (m *Model) closeModal() {
	m.mode = modeNormal
	m.modalRaw = ""
	m.modalURL = ""
	m.modalVP.SetContent("")
}

// layoutModal (re)wraps the modal text for the current terminal width
// and clamps the scroll position to the new content length.
func (m *Model) layoutModal() {
	w, h := m.modalSize()
	contentW := w - 4
	contentH := h - 4
	if contentW < 1 {
		contentW = 1
	}
	if contentH < 1 {
		contentH = 1
	}

	offset := m.modalVP.YOffset
	m.modalVP = viewport.New(contentW, contentH)
	m.modalVP.SetContent(joinLines(wrapParagraphs(m.modalRaw, contentW)))
	m.modalVP.SetYOffset(offset)
	m.modalWidth = m.width
}

func (m Model) modalSize() (int, int) {
	return m.width * 8 / 10, m.height * 8 / 10
}
