package csvview

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Sentinel errors for programmatic error handling.
var (
	ErrUnsupportedStyle = errors.New("unsupported style")
	ErrInvalidAlignment = errors.New("invalid alignment")
	ErrWidthTable       = errors.New("invalid width table")
	ErrHeader           = errors.New("cannot read header")
	ErrDecode           = errors.New("cannot decode record")
	ErrWrite            = errors.New("cannot write output")
	ErrPager            = errors.New("pager failed")
)

// DefaultLookahead is the number of records buffered to estimate column
// widths before anything is written.
const DefaultLookahead = 1000

// Style selects how records are laid out.
type Style string

const (
	// StyleQuoted wraps every field in double quotes and pads it to the
	// column width plus a two-column gap.
	StyleQuoted Style = "quoted"
	// StylePlain separates padded columns with two spaces and rules the
	// header with dashes.
	StylePlain Style = "plain"
	// StyleMarkdown writes a GitHub-flavored Markdown table.
	StyleMarkdown Style = "markdown"

	// The bordered styles draw a box around every cell.
	StyleRounded Style = "rounded"
	StyleASCII   Style = "ascii"
	StyleHeavy   Style = "heavy"
	StyleDouble  Style = "double"
)

// frame is the box-drawing set of a bordered style.
type frame struct {
	top, mid, bottom [4]string
	vertical         string
}

// newFrame builds a frame from three four-character rules (left end, fill,
// column joint, right end) and the vertical bar.
func newFrame(top, mid, bottom, vertical string) frame {
	return frame{top: rule(top), mid: rule(mid), bottom: rule(bottom), vertical: vertical}
}

func rule(s string) [4]string {
	var out [4]string
	copy(out[:], strings.Split(s, ""))
	return out
}

var frames = map[Style]frame{
	StyleRounded: newFrame("╭─┬╮", "├─┼┤", "╰─┴╯", "│"),
	StyleASCII:   newFrame("+-++", "+-++", "+-++", "|"),
	StyleHeavy:   newFrame("┏━┳┓", "┣━╋┫", "┗━┻┛", "┃"),
	StyleDouble:  newFrame("╔═╦╗", "╠═╬╣", "╚═╩╝", "║"),
}

var styles = []Style{StyleQuoted, StylePlain, StyleMarkdown, StyleRounded, StyleASCII, StyleHeavy, StyleDouble}

// String returns the style name.
func (s Style) String() string { return string(s) }

// Styles returns all supported style names.
func Styles() []Style {
	out := make([]Style, len(styles))
	copy(out, styles)
	return out
}

// ParseStyle parses a style name. The empty string is [StyleQuoted].
func ParseStyle(s string) (Style, error) {
	if s == "" {
		return StyleQuoted, nil
	}
	for _, st := range styles {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedStyle, s)
}

func (s Style) bordered() bool {
	_, ok := frames[s]
	return ok
}

// Alignment controls column text alignment. It has no effect on
// [StyleQuoted], which is always left aligned.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// ParseAlignments parses a comma separated list of column alignments, one
// of "l", "c" or "r" (or "left", "center", "right") per column.
func ParseAlignments(s string) ([]Alignment, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]Alignment, len(parts))
	for i, p := range parts {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "l", "left", "":
			out[i] = AlignLeft
		case "c", "center":
			out[i] = AlignCenter
		case "r", "right":
			out[i] = AlignRight
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidAlignment, p)
		}
	}
	return out, nil
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
