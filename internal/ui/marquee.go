package ui

// Marquee constants, in ticks and columns. At the 50 ms tick rate the
// leftward scroll moves one column per tick (~20 columns/second) and
// the return snap moves twenty.
const (
	marqueeHoldStart = 40  // ticks the text holds before it starts moving
	marqueeHoldEnd   = 120 // trailing margin of raw shift before the flip
	marqueeRightStep = 20  // columns per tick while snapping back
)

// marquee tracks the raw shift of the selected title. The raw shift
// keeps advancing past the rendered clamp so the trailing margin turns
// into an end-of-scroll hold; offset derives what is actually drawn.
type marquee struct {
	shift    int
	backward bool
}

func (m *marquee) reset() {
	m.shift = 0
	m.backward = false
}

// step advances the marquee one tick for a title of textWidth columns
// inside a viewport columns wide. The flip to the return leg happens
// only once the raw shift has eaten the trailing margin.
func (m *marquee) step(textWidth, viewport int) {
	if textWidth <= viewport || viewport <= 0 {
		m.reset()
		return
	}

	if m.backward {
		m.shift -= marqueeRightStep
		if m.shift <= 0 {
			m.shift = 0
			m.backward = false
		}
		return
	}

	m.shift++
	if textWidth-m.shift+marqueeHoldEnd < viewport {
		m.backward = true
	}
}

// offset is the column offset actually rendered. On the left leg the
// first marqueeHoldStart ticks are a hold at the origin; either leg is
// clamped so the window never runs more than viewport/4 columns past
// the end of the text.
func (m *marquee) offset(textWidth, viewport int) int {
	shift := m.shift
	if !m.backward {
		if shift < marqueeHoldStart {
			shift = 0
		} else {
			shift -= marqueeHoldStart
		}
	}
	if max := textWidth - viewport + viewport/4; shift > max {
		shift = max
	}
	if shift < 0 {
		shift = 0
	}
	return shift
}
