package csvview

import (
	"fmt"
	"io"
	"strings"
)

const tabSpaces = "    "

// Renderer writes records as lines of text laid out against a fixed set of
// column widths. Record issues exactly one write per line.
type Renderer struct {
	measure Measure
	style   Style
	widths  []int
	aligns  []Alignment
	frame   frame
	buf     strings.Builder
}

// NewRenderer returns a Renderer for the given frozen column widths.
func NewRenderer(m Measure, style Style, widths []int, aligns []Alignment) (*Renderer, error) {
	if style == "" {
		style = StyleQuoted
	}
	if _, err := ParseStyle(string(style)); err != nil {
		return nil, err
	}
	r := &Renderer{
		measure: m,
		style:   style,
		widths:  append([]int(nil), widths...),
		aligns:  padAligns(aligns, len(widths)),
		frame:   frames[style],
	}
	if style == StyleMarkdown {
		r.frame.vertical = "|"
		for i, w := range r.widths {
			// Room for alignment markers.
			r.widths[i] = max(w, 3)
		}
	}
	return r, nil
}

// Widths returns a copy of the column widths the renderer pads to.
func (r *Renderer) Widths() []int {
	return append([]int(nil), r.widths...)
}

// Begin writes anything that precedes the header, such as the top border.
func (r *Renderer) Begin(w io.Writer) error {
	if !r.style.bordered() {
		return nil
	}
	return r.hline(w, r.frame.top)
}

// Header writes the header record followed by the style's header rule.
func (r *Renderer) Header(w io.Writer, header []string) error {
	if err := r.Record(w, header); err != nil {
		return err
	}
	switch {
	case r.style == StylePlain:
		return r.plainRule(w)
	case r.style == StyleMarkdown:
		return r.markdownRule(w)
	case r.style.bordered():
		return r.hline(w, r.frame.mid)
	}
	return nil
}

// Record writes a single record as one line.
func (r *Renderer) Record(w io.Writer, record []string) error {
	r.buf.Reset()
	switch {
	case r.style == StylePlain:
		r.plainRow(record)
	case r.style.bordered(), r.style == StyleMarkdown:
		r.borderedRow(record)
	default:
		r.quotedRow(record)
	}
	r.buf.WriteByte('\n')
	_, err := io.WriteString(w, r.buf.String())
	return err
}

// End writes anything that follows the last record, such as the bottom
// border.
func (r *Renderer) End(w io.Writer) error {
	if !r.style.bordered() {
		return nil
	}
	return r.hline(w, r.frame.bottom)
}

func (r *Renderer) quotedRow(record []string) {
	for i, field := range record {
		r.buf.WriteByte('"')
		writeExpanded(&r.buf, field)
		r.buf.WriteByte('"')
		if i < len(r.widths) {
			writeSpaces(&r.buf, r.widths[i]+2-r.measure.StringWidth(field))
		}
	}
}

func (r *Renderer) plainRow(record []string) {
	n := max(len(r.widths), len(record))
	for i := 0; i < n; i++ {
		if i > 0 {
			r.buf.WriteString("  ")
		}
		r.cell(record, i)
	}
	line := strings.TrimRight(r.buf.String(), " ")
	r.buf.Reset()
	r.buf.WriteString(line)
}

func (r *Renderer) borderedRow(record []string) {
	vert := r.frame.vertical
	r.buf.WriteString(vert)
	n := max(len(r.widths), len(record))
	for i := 0; i < n; i++ {
		r.buf.WriteByte(' ')
		r.cell(record, i)
		r.buf.WriteByte(' ')
		r.buf.WriteString(vert)
	}
}

// cell writes field i of record aligned within its column. Missing fields
// render blank; fields past the known columns render unpadded.
func (r *Renderer) cell(record []string, i int) {
	field := ""
	if i < len(record) {
		field = record[i]
	}
	if i >= len(r.widths) {
		writeExpanded(&r.buf, field)
		return
	}
	pad := r.widths[i] - r.measure.StringWidth(field)
	if pad <= 0 {
		writeExpanded(&r.buf, field)
		return
	}
	switch r.aligns[i] {
	case AlignRight:
		writeSpaces(&r.buf, pad)
		writeExpanded(&r.buf, field)
	case AlignCenter:
		left := pad / 2
		writeSpaces(&r.buf, left)
		writeExpanded(&r.buf, field)
		writeSpaces(&r.buf, pad-left)
	default:
		writeExpanded(&r.buf, field)
		writeSpaces(&r.buf, pad)
	}
}

func (r *Renderer) plainRule(w io.Writer) error {
	sep := make([]string, len(r.widths))
	for i, width := range r.widths {
		sep[i] = strings.Repeat("-", width)
	}
	_, err := fmt.Fprintln(w, strings.Join(sep, "  "))
	return err
}

func (r *Renderer) markdownRule(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString("|")
	for i, width := range r.widths {
		sb.WriteByte(' ')
		switch r.aligns[i] {
		case AlignRight:
			sb.WriteString(strings.Repeat("-", width-1) + ":")
		case AlignCenter:
			sb.WriteString(":" + strings.Repeat("-", width-2) + ":")
		default:
			sb.WriteString(strings.Repeat("-", width))
		}
		sb.WriteString(" |")
	}
	_, err := fmt.Fprintln(w, sb.String())
	return err
}

// hline writes a horizontal rule across all columns. rule holds the left
// end, the fill, the joint between columns and the right end.
func (r *Renderer) hline(w io.Writer, rule [4]string) error {
	var sb strings.Builder
	sb.WriteString(rule[0])
	for i, width := range r.widths {
		if i > 0 {
			sb.WriteString(rule[2])
		}
		sb.WriteString(strings.Repeat(rule[1], width+2))
	}
	sb.WriteString(rule[3])
	_, err := fmt.Fprintln(w, sb.String())
	return err
}

// padAligns returns exactly n alignments. Columns without one are left
// aligned and surplus alignments are dropped.
func padAligns(aligns []Alignment, n int) []Alignment {
	out := make([]Alignment, n)
	copy(out, aligns)
	return out
}

// writeExpanded writes s with every tab replaced by four spaces.
func writeExpanded(sb *strings.Builder, s string) {
	if !strings.ContainsRune(s, '\t') {
		sb.WriteString(s)
		return
	}
	sb.WriteString(strings.ReplaceAll(s, "\t", tabSpaces))
}

func writeSpaces(sb *strings.Builder, n int) {
	for ; n > 0; n-- {
		sb.WriteByte(' ')
	}
}
