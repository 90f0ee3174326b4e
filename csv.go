package csvview

import (
	"encoding/csv"
	"io"
)

// NewCSVReader returns a reader for RFC 4180 input separated by comma. Records
// may have differing field counts; quoting errors are reported, not
// tolerated. A zero comma means ','.
func NewCSVReader(r io.Reader, comma rune) *csv.Reader {
	cr := csv.NewReader(r)
	if comma != 0 {
		cr.Comma = comma
	}
	cr.FieldsPerRecord = -1
	return cr
}
