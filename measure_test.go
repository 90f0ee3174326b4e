package csvview_test

import (
	"testing"

	"github.com/bjaus/csvview"
	"github.com/stretchr/testify/assert"
)

// categoryTable assigns one code point per category so widths can be checked
// independently of the Unicode data.
func categoryTable() *csvview.Table {
	t := csvview.NewTable()
	t.Set('a', 'a', csvview.Ambiguous)
	t.Set('f', 'f', csvview.Fullwidth)
	t.Set('h', 'h', csvview.Halfwidth)
	t.Set('n', 'n', csvview.Neutral)
	t.Set('r', 'r', csvview.Narrow)
	t.Set('w', 'w', csvview.Wide)
	return t
}

func TestRuneWidthByCategory(t *testing.T) {
	t.Parallel()
	m := csvview.NewMeasure(categoryTable())
	tests := map[string]struct {
		r    rune
		want int
	}{
		"ambiguous":  {'a', 1},
		"fullwidth":  {'f', 2},
		"halfwidth":  {'h', 1},
		"neutral":    {'n', 1},
		"narrow":     {'r', 1},
		"wide":       {'w', 2},
		"unassigned": {'z', 1},
		"tab":        {'\t', 4},
	}
	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, m.RuneWidth(tt.r))
		})
	}
}

func TestStringWidth(t *testing.T) {
	t.Parallel()
	m := csvview.NewMeasure(nil)
	tests := map[string]struct {
		s    string
		want int
	}{
		"empty":            {"", 0},
		"ascii":            {"hello", 5},
		"tab alone":        {"\t", 4},
		"tab in text":      {"a\tb", 6},
		"tabs do not stop": {"abc\t", 7},
		"fullwidth":        {"Ａ", 2},
		"mixed cjk":        {"a日本b", 6},
		"combining mark":   {"e\u0301", 2},
		"invalid utf8":     {"\xff", 1},
	}
	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, m.StringWidth(tt.s))
		})
	}
}

func TestStringWidthZeroMeasure(t *testing.T) {
	t.Parallel()
	var m csvview.Measure
	assert.Equal(t, 2, m.StringWidth("Ａ"))
}

func TestAmbiguousWide(t *testing.T) {
	t.Parallel()
	m := csvview.NewMeasure(categoryTable())
	assert.Equal(t, 1, m.RuneWidth('a'))
	assert.Equal(t, 2, m.WithAmbiguousWide(true).RuneWidth('a'))
	assert.Equal(t, 1, m.WithAmbiguousWide(true).RuneWidth('n'))
	assert.Equal(t, 4, m.WithAmbiguousWide(true).RuneWidth('\t'))
}
