package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// All layout math in this package works in display columns, never rune
// counts: CJK glyphs take two columns, combining marks take none.

func displayWidth(s string) int {
	return runewidth.StringWidth(s)
}

// truncatePad returns s laid out in exactly w columns. A double-width
// glyph that would be bisected at the right edge is replaced by one
// blank column.
func truncatePad(s string, w int) string {
	if w <= 0 {
		return ""
	}
	var b strings.Builder
	cols := 0
	for _, r := range s {
		cw := runewidth.RuneWidth(r)
		if cols+cw > w {
			if cw == 2 && w-cols == 1 {
				b.WriteByte(' ')
				cols++
			}
			break
		}
		b.WriteRune(r)
		cols += cw
	}
	if cols < w {
		b.WriteString(strings.Repeat(" ", w-cols))
	}
	return b.String()
}

// sliceShift returns the w-column window of s starting shift columns
// in, padded to exactly w columns. Wide glyphs straddling either edge
// of the window are replaced by blank columns.
func sliceShift(s string, w, shift int) string {
	if shift <= 0 {
		return truncatePad(s, w)
	}
	if w <= 0 {
		return ""
	}
	var b strings.Builder
	cols := 0
	taken := 0
	for _, r := range s {
		cw := runewidth.RuneWidth(r)
		if cols+cw <= shift {
			cols += cw
			continue
		}
		if cols < shift {
			// wide glyph cut by the left edge
			b.WriteByte(' ')
			taken += cols + cw - shift
			cols += cw
			continue
		}
		if taken+cw > w {
			if cw == 2 && w-taken == 1 {
				b.WriteByte(' ')
				taken++
			}
			break
		}
		b.WriteRune(r)
		taken += cw
		cols += cw
	}
	if taken < w {
		b.WriteString(strings.Repeat(" ", w-taken))
	}
	return b.String()
}

// wrapText word-wraps one paragraph to width w, breaking words wider
// than a whole line at glyph boundaries.
func wrapText(s string, w int) []string {
	if w <= 0 {
		return []string{s}
	}
	var lines []string
	var line []string
	lineWidth := 0

	flush := func() {
		if len(line) > 0 {
			lines = append(lines, strings.Join(line, " "))
			line = nil
			lineWidth = 0
		}
	}

	for _, word := range strings.Split(s, " ") {
		wordWidth := displayWidth(word)

		if wordWidth > w {
			flush()
			// break the oversized word at column boundaries
			var piece strings.Builder
			pieceWidth := 0
			for _, r := range word {
				cw := runewidth.RuneWidth(r)
				if pieceWidth+cw > w {
					lines = append(lines, piece.String())
					piece.Reset()
					pieceWidth = 0
				}
				piece.WriteRune(r)
				pieceWidth += cw
			}
			if piece.Len() > 0 {
				line = append(line, piece.String())
				lineWidth = pieceWidth
			}
			continue
		}

		gap := 0
		if len(line) > 0 {
			gap = 1
		}
		if lineWidth+gap+wordWidth > w {
			flush()
			line = append(line, word)
			lineWidth = wordWidth
		} else {
			line = append(line, word)
			lineWidth += gap + wordWidth
		}
	}
	flush()
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

// wrapParagraphs wraps multi-paragraph text, preserving blank lines.
func wrapParagraphs(s string, w int) []string {
	var out []string
	for _, para := range strings.Split(s, "\n") {
		if strings.TrimSpace(para) == "" {
			out = append(out, "")
			continue
		}
		out = append(out, wrapText(para, w)...)
	}
	return out
}
