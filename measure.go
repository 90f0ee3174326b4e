package csvview

// TabWidth is the number of columns a tab contributes. Tabs do not align to
// stops; each one always adds exactly this many columns.
const TabWidth = 4

// Measure computes terminal display widths from a [Classifier].
type Measure struct {
	classifier    Classifier
	ambiguousWide bool
}

// NewMeasure returns a Measure backed by c. A nil c uses [Unicode].
func NewMeasure(c Classifier) Measure {
	if c == nil {
		c = Unicode{}
	}
	return Measure{classifier: c}
}

// WithAmbiguousWide returns a copy of m that counts Ambiguous code points as
// two columns, as CJK-locale terminals render them.
func (m Measure) WithAmbiguousWide(wide bool) Measure {
	m.ambiguousWide = wide
	return m
}

// RuneWidth returns the display width of r: 4 for a tab, 2 for Fullwidth and
// Wide code points, 1 for everything else.
func (m Measure) RuneWidth(r rune) int {
	if r == '\t' {
		return TabWidth
	}
	c := m.classifier
	if c == nil {
		c = Unicode{}
	}
	switch c.Classify(r) {
	case Fullwidth, Wide:
		return 2
	case Ambiguous:
		if m.ambiguousWide {
			return 2
		}
		return 1
	default:
		return 1
	}
}

// StringWidth returns the total display width of s.
func (m Measure) StringWidth(s string) int {
	n := 0
	for _, r := range s {
		n += m.RuneWidth(r)
	}
	return n
}
