package console

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/danbezerra/mpv/schema"
)

// frameState is everything a render pass needs; the renderer keeps no
// state of its own between calls.
type frameState struct {
	prompt      string
	line        string
	cursor      int
	suggestions []string
	logs        []logEntry
}

// renderOptions selects overlay typography.
type renderOptions struct {
	Font     string
	FontSize int
}

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiInvert = "\x1b[7m"

	ansiRed     = "\x1b[31m"
	ansiYellow  = "\x1b[33m"
	ansiGreen   = "\x1b[32m"
	ansiGray    = "\x1b[90m"
	ansiMagenta = "\x1b[35m"
)

// assStyles maps log styles to ASS color overrides (colors are &HBBGGRR&).
var assStyles = map[logStyle]string{
	styleInfo:    "{\\1c&Heeeeee&}",
	styleWarn:    "{\\1c&H66ffff&}",
	styleError:   "{\\1c&H7a77f2&}",
	styleFatal:   "{\\1c&H5791f9&\\b1}",
	styleVerbose: "{\\1c&H99cc99&}",
	styleDebug:   "{\\1c&Ha09f93&}",
}

// ansiStyles is the terminal counterpart of assStyles.
var ansiStyles = map[logStyle]string{
	styleInfo:    "",
	styleWarn:    ansiYellow,
	styleError:   ansiRed,
	styleFatal:   ansiBold + ansiRed,
	styleVerbose: ansiGreen,
	styleDebug:   ansiGray,
}

const assSuggestionStyle = "{\\1c&Hcc99cc&}"
const assDefaultStyle = "{\\r}{\\1c&Heeeeee&}"

// assEscape neutralizes ASS control characters in user text. A word
// joiner after each backslash keeps it from starting an override tag.
var assEscaper = strings.NewReplacer(
	"\\", "\\⁠",
	"{", "\\{",
	"}", "\\}",
	"\n", "\\N",
)

func assEscape(text string) string {
	return assEscaper.Replace(text)
}

// cursorGlyph is a thin block drawn with ASS vector commands; it is
// rendered a second time over alpha'd-out text so it occludes the glyph
// beneath it instead of being occluded.
func cursorGlyph(fontSize int) string {
	height := fontSize * 8
	return fmt.Sprintf(
		"{\\p4\\pbo24\\shad0\\alpha&H2b&\\1c&Hffffff&}m 0 0 l 1 0 l 1 %d l 0 %d{\\p0\\r}",
		height, height)
}

// renderOverlay projects the frame into ASS markup: two events separated
// by a newline, the second being the cursor redraw pass with invisible
// text.
func renderOverlay(st frameState, geom schema.Geometry, opts renderOptions) string {
	size := opts.FontSize
	if size <= 0 {
		size = 16
	}
	font := opts.Font
	if font == "" {
		font = "monospace"
	}
	cols := geom.Columns(size / 2)
	rows := geom.Rows(size)

	header := fmt.Sprintf("{\\an1\\fn%s\\fs%d\\bord1\\q2}", font, size)

	table := formatTable(st.suggestions, cols, rows-1)
	logBudget := rows - 1 - len(table)
	visible := tailEntries(st.logs, logBudget)

	var b strings.Builder
	b.WriteString(header)
	for _, entry := range visible {
		b.WriteString(assStyles[entry.style])
		b.WriteString(assEscape(entry.text))
		b.WriteString("\\N")
	}
	for _, row := range table {
		b.WriteString(assSuggestionStyle)
		b.WriteString(assEscape(row))
		b.WriteString("\\N")
	}

	before := assEscape(st.line[:st.cursor])
	after := assEscape(st.line[st.cursor:])
	glyph := cursorGlyph(size)
	b.WriteString(assDefaultStyle)
	b.WriteString(assEscape(st.prompt))
	b.WriteString(before)
	b.WriteString(glyph)
	b.WriteString(assDefaultStyle)
	b.WriteString(after)

	// Second pass: same input line with the text invisible, so the
	// cursor draws on top of the glyph beneath it.
	b.WriteString("\n")
	b.WriteString(header)
	b.WriteString(assDefaultStyle)
	b.WriteString("{\\alpha&HFF&}")
	b.WriteString(assEscape(st.prompt))
	b.WriteString(before)
	b.WriteString(glyph)
	b.WriteString(assDefaultStyle)
	b.WriteString("{\\alpha&HFF&}")
	b.WriteString(after)
	return b.String()
}

// renderTerminal flattens the frame into one string for the plain-text
// fallback; the cursor cell is marked with inverted video.
func renderTerminal(st frameState, width, height int) string {
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	table := formatTable(st.suggestions, width, height-1)
	logBudget := height - 1 - len(table)
	visible := tailEntries(st.logs, logBudget)

	var b strings.Builder
	for _, entry := range visible {
		style := ansiStyles[entry.style]
		b.WriteString(style)
		b.WriteString(entry.text)
		if style != "" {
			b.WriteString(ansiReset)
		}
		b.WriteString("\n")
	}
	for _, row := range table {
		b.WriteString(ansiMagenta)
		b.WriteString(row)
		b.WriteString(ansiReset)
		b.WriteString("\n")
	}

	cell := " "
	after := ""
	if st.cursor < len(st.line) {
		r, size := utf8.DecodeRuneInString(st.line[st.cursor:])
		if r != utf8.RuneError || size > 1 {
			cell = st.line[st.cursor : st.cursor+size]
			after = st.line[st.cursor+size:]
		} else {
			cell = st.line[st.cursor : st.cursor+1]
			after = st.line[st.cursor+1:]
		}
	}
	b.WriteString(st.prompt)
	b.WriteString(st.line[:st.cursor])
	b.WriteString(ansiInvert)
	b.WriteString(cell)
	b.WriteString(ansiReset)
	b.WriteString(after)
	return b.String()
}

// tailEntries returns the most recent n entries, oldest first.
func tailEntries(entries []logEntry, n int) []logEntry {
	if n <= 0 {
		return nil
	}
	if n > len(entries) {
		n = len(entries)
	}
	return entries[len(entries)-n:]
}

// formatTable packs items into columns. Columns are filled top to bottom
// (column-major); the packing prefers as many columns as fit widthMax,
// with inter-column spacing clamped to [2,8] cells. When the row budget
// forces more columns than fit, every item is still emitted exactly once
// and the overflow is left to clip.
func formatTable(items []string, widthMax, rowsMax int) []string {
	n := len(items)
	if n == 0 {
		return nil
	}
	if rowsMax < 1 {
		rowsMax = 1
	}
	const spacingMin, spacingMax = 2, 8

	widths := make([]int, n)
	for i, item := range items {
		widths[i] = runewidth.StringWidth(item)
	}

	cols := 1
	for try := n; try >= 1; try-- {
		rows := (n + try - 1) / try
		colWidths := columnWidths(widths, rows, try)
		total := spacingMin * (try - 1)
		for _, w := range colWidths {
			total += w
		}
		if total <= widthMax || try == 1 {
			cols = try
			break
		}
	}
	rows := (n + cols - 1) / cols
	if rows > rowsMax {
		rows = rowsMax
		cols = (n + rows - 1) / rows
	}
	colWidths := columnWidths(widths, rows, cols)

	spacing := spacingMin
	if cols > 1 {
		used := 0
		for _, w := range colWidths {
			used += w
		}
		extra := (widthMax - used) / (cols - 1)
		if extra > spacingMax {
			extra = spacingMax
		}
		if extra > spacing {
			spacing = extra
		}
	}
	gap := strings.Repeat(" ", spacing)

	out := make([]string, 0, rows)
	for row := 0; row < rows; row++ {
		var b strings.Builder
		for col := 0; col < cols; col++ {
			idx := col*rows + row
			if idx >= n {
				break
			}
			if col > 0 {
				b.WriteString(gap)
			}
			if col == cols-1 || (col+1)*rows+row >= n {
				b.WriteString(items[idx])
			} else {
				b.WriteString(runewidth.FillRight(items[idx], colWidths[col]))
			}
		}
		out = append(out, b.String())
	}
	return out
}

// columnWidths computes per-column widths for a column-major layout.
func columnWidths(widths []int, rows, cols int) []int {
	out := make([]int, 0, cols)
	for col := 0; col < cols; col++ {
		max := 0
		for row := 0; row < rows; row++ {
			idx := col*rows + row
			if idx >= len(widths) {
				break
			}
			if widths[idx] > max {
				max = widths[idx]
			}
		}
		out = append(out, max)
	}
	return out
}
