package csvview

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// MaxCodePoint is one past the largest Unicode scalar value.
const MaxCodePoint = 0x110000

// Category is an East Asian Width property as defined by Unicode TR11.
type Category uint8

const (
	Ambiguous Category = iota // A
	Fullwidth                 // F
	Halfwidth                 // H
	Neutral                   // N
	Narrow                    // Na
	Wide                      // W
)

var categoryNames = [...]string{
	Ambiguous: "A",
	Fullwidth: "F",
	Halfwidth: "H",
	Neutral:   "N",
	Narrow:    "Na",
	Wide:      "W",
}

// String returns the abbreviation used in EastAsianWidth.txt.
func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", c)
}

// ParseCategory parses an EastAsianWidth.txt abbreviation.
func ParseCategory(s string) (Category, error) {
	for i, name := range categoryNames {
		if name == s {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown category %q", ErrWidthTable, s)
}

// Classifier maps a code point to its East Asian Width category.
type Classifier interface {
	Classify(r rune) Category
}

// Unicode classifies runes with the tables from golang.org/x/text/width.
type Unicode struct{}

// Classify implements [Classifier].
func (Unicode) Classify(r rune) Category {
	mustCodePoint(r)
	switch width.LookupRune(r).Kind() {
	case width.EastAsianFullwidth:
		return Fullwidth
	case width.EastAsianWide:
		return Wide
	case width.EastAsianHalfwidth:
		return Halfwidth
	case width.EastAsianNarrow:
		return Narrow
	case width.Neutral:
		return Neutral
	default:
		return Ambiguous
	}
}

// Table is an immutable, total mapping from code point to [Category] built
// from data in the EastAsianWidth.txt format. Unassigned points are Ambiguous.
type Table struct {
	cats []Category
}

// NewTable returns a table with every code point set to Ambiguous.
func NewTable() *Table {
	return &Table{cats: make([]Category, MaxCodePoint)}
}

// ParseTable reads EastAsianWidth.txt formatted data. Each non-blank line,
// after stripping a trailing "#" comment, is "XXXX;Cat" or "XXXX..YYYY;Cat".
// Entries are applied in order, so later lines override earlier ones.
func ParseTable(r io.Reader) (*Table, error) {
	t := NewTable()
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line, _, _ := strings.Cut(sc.Text(), "#")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		points, value, ok := strings.Cut(line, ";")
		if !ok {
			return nil, fmt.Errorf("%w: line %d: missing value after ';'", ErrWidthTable, lineNo)
		}
		cat, err := ParseCategory(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		lo, hi, err := parseRange(strings.TrimSpace(points))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrWidthTable, lineNo, err)
		}
		t.Set(lo, hi, cat)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWidthTable, err)
	}
	return t, nil
}

// MustParseTable is like [ParseTable] but panics on error. It is meant for
// bundled data, where a parse failure is a build defect.
func MustParseTable(r io.Reader) *Table {
	t, err := ParseTable(r)
	if err != nil {
		panic(err)
	}
	return t
}

func parseRange(s string) (rune, rune, error) {
	first, last, isRange := strings.Cut(s, "..")
	lo, err := parseCodePoint(first)
	if err != nil {
		return 0, 0, err
	}
	if !isRange {
		return lo, lo, nil
	}
	hi, err := parseCodePoint(last)
	if err != nil {
		return 0, 0, err
	}
	if hi < lo {
		return 0, 0, fmt.Errorf("inverted range %s", s)
	}
	return lo, hi, nil
}

func parseCodePoint(s string) (rune, error) {
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("bad code point %q", s)
	}
	if v >= MaxCodePoint {
		return 0, fmt.Errorf("code point %q out of range", s)
	}
	return rune(v), nil
}

// Set assigns cat to every code point in lo..hi inclusive. It is used while
// building a table; a table must not be modified once it is shared.
func (t *Table) Set(lo, hi rune, cat Category) {
	mustCodePoint(lo)
	mustCodePoint(hi)
	for i := lo; i <= hi; i++ {
		t.cats[i] = cat
	}
}

// Classify implements [Classifier].
func (t *Table) Classify(r rune) Category {
	mustCodePoint(r)
	return t.cats[r]
}

func mustCodePoint(r rune) {
	if r < 0 || r >= MaxCodePoint {
		panic(fmt.Sprintf("csvview: code point %#x outside 0..%#x", r, MaxCodePoint-1))
	}
}
