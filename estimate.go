package csvview

// Estimator tracks the running maximum display width of each column over a
// prefix of records. Widths only grow while records are added.
type Estimator struct {
	measure Measure
	widths  []int
}

// NewEstimator seeds column widths from the header record.
func NewEstimator(m Measure, header []string) *Estimator {
	e := &Estimator{measure: m, widths: make([]int, len(header))}
	for i, field := range header {
		e.widths[i] = m.StringWidth(field)
	}
	return e
}

// Add widens columns to fit record, extending the column set with zero-width
// entries when record has more fields than any record seen so far.
func (e *Estimator) Add(record []string) {
	for len(e.widths) < len(record) {
		e.widths = append(e.widths, 0)
	}
	for i, field := range record {
		if w := e.measure.StringWidth(field); w > e.widths[i] {
			e.widths[i] = w
		}
	}
}

// Widths returns a copy of the current column widths.
func (e *Estimator) Widths() []int {
	out := make([]int, len(e.widths))
	copy(out, e.widths)
	return out
}

// Width returns the width of column i, or 0 when i is beyond the known
// columns.
func (e *Estimator) Width(i int) int {
	if i < 0 || i >= len(e.widths) {
		return 0
	}
	return e.widths[i]
}
