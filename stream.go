package csvview

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// RecordReader yields decoded records one at a time and returns io.EOF when
// the source is exhausted. *csv.Reader satisfies it.
type RecordReader interface {
	Read() ([]string, error)
}

// State is a phase of [Formatter.Format].
type State int

const (
	StateInit State = iota
	StateEstimating
	StateFlushing
	StateStreaming
	StateDone
)

var stateNames = [...]string{
	StateInit:       "init",
	StateEstimating: "estimating",
	StateFlushing:   "flushing",
	StateStreaming:  "streaming",
	StateDone:       "done",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Options configures a [Formatter].
type Options struct {
	// Lookahead is the number of records, after the header, buffered to
	// estimate column widths. Zero or negative means DefaultLookahead.
	Lookahead int
	// Style defaults to StyleQuoted.
	Style      Style
	Alignments []Alignment
	// Measure defaults to the Unicode classifier.
	Measure Measure
	// Logger receives debug output about phase changes. Nil discards.
	Logger logrus.FieldLogger
}

// Stats describes a completed (or aborted) run.
type Stats struct {
	// State is the phase the run ended in. It is StateDone on success.
	State State
	// Buffered counts records rendered from the lookahead buffer.
	Buffered int
	// Streamed counts records rendered after the buffer was drained.
	Streamed int
	// Widths are the frozen column widths.
	Widths []int
}

// Records returns the number of records written, header included.
func (s Stats) Records() int {
	if s.State == StateInit {
		return 0
	}
	return 1 + s.Buffered + s.Streamed
}

// Formatter renders a header and records as an aligned table. Column widths
// are estimated from the header and the first Lookahead records; records
// after that are written at those widths as they arrive, so wider fields
// later in the input are not accounted for.
type Formatter struct {
	opts Options
	log  logrus.FieldLogger
}

// NewFormatter validates opts and returns a Formatter.
func NewFormatter(opts Options) (*Formatter, error) {
	style, err := ParseStyle(string(opts.Style))
	if err != nil {
		return nil, err
	}
	opts.Style = style
	if opts.Lookahead <= 0 {
		opts.Lookahead = DefaultLookahead
	}
	log := opts.Logger
	if log == nil {
		log = discardLogger()
	}
	return &Formatter{opts: opts, log: log}, nil
}

// Format reads records from src and writes them to w. A header that cannot
// be read fails the run before anything is written. A record that cannot be
// decoded aborts the run; lines already written stay written, and records
// buffered before the failure are flushed first.
//
// When w has a Flush method, as *bufio.Writer and *Sink do, it is called
// after the buffered records and after every streamed record, so output
// from a slow source shows up as it arrives.
func (f *Formatter) Format(ctx context.Context, w io.Writer, src RecordReader) (Stats, error) {
	st := Stats{State: StateInit}

	header, err := ReadHeader(src)
	if err != nil {
		return st, err
	}

	st.State = StateEstimating
	est := NewEstimator(f.opts.Measure, header)
	buffer := make([][]string, 0, min(f.opts.Lookahead, 4096))
	var readErr error
	for len(buffer) < f.opts.Lookahead {
		if err := ctx.Err(); err != nil {
			readErr = err
			break
		}
		record, err := src.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			readErr = decodeError(len(buffer)+1, err)
			break
		}
		record = append([]string(nil), record...)
		est.Add(record)
		buffer = append(buffer, record)
	}
	st.Widths = est.Widths()
	f.log.WithFields(logrus.Fields{
		"buffered": len(buffer),
		"columns":  len(st.Widths),
	}).Debug("Estimated column widths.")

	st.State = StateFlushing
	r, err := NewRenderer(f.opts.Measure, f.opts.Style, st.Widths, f.opts.Alignments)
	if err != nil {
		return st, err
	}
	if err := r.Begin(w); err != nil {
		return st, writeError(err)
	}
	if err := r.Header(w, header); err != nil {
		return st, writeError(err)
	}
	for i, record := range buffer {
		if err := r.Record(w, record); err != nil {
			return st, writeError(err)
		}
		st.Buffered++
		buffer[i] = nil
	}
	buffer = nil
	if err := flush(w); err != nil {
		return st, writeError(err)
	}
	if readErr != nil {
		return st, readErr
	}

	st.State = StateStreaming
	n := st.Buffered
	for {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		record, err := src.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		n++
		if err != nil {
			return st, decodeError(n, err)
		}
		if err := r.Record(w, record); err != nil {
			return st, writeError(err)
		}
		// The next Read may block on a slow source.
		if err := flush(w); err != nil {
			return st, writeError(err)
		}
		st.Streamed++
	}
	if st.Streamed > 0 {
		f.log.WithField("streamed", st.Streamed).Debug("Streamed records past lookahead.")
	}

	if err := r.End(w); err != nil {
		return st, writeError(err)
	}
	if err := flush(w); err != nil {
		return st, writeError(err)
	}
	st.State = StateDone
	return st, nil
}

// Format renders src to w using a Formatter configured with opts.
func Format(ctx context.Context, w io.Writer, src RecordReader, opts Options) (Stats, error) {
	f, err := NewFormatter(opts)
	if err != nil {
		return Stats{}, err
	}
	return f.Format(ctx, w, src)
}

// ReadHeader reads the header record from src. It fails with [ErrHeader]
// when src is empty or the record cannot be decoded.
func ReadHeader(src RecordReader) ([]string, error) {
	header, err := src.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrHeader)
		}
		return nil, fmt.Errorf("%w: %w", ErrHeader, err)
	}
	return append([]string(nil), header...), nil
}

// WithHeader returns a RecordReader that yields header and then the rest of
// src. It lets a caller check the header with [ReadHeader] before committing
// to an output.
func WithHeader(header []string, src RecordReader) RecordReader {
	return &headerReader{header: header, src: src}
}

type headerReader struct {
	header []string
	src    RecordReader
	done   bool
}

func (r *headerReader) Read() ([]string, error) {
	if r.done {
		return r.src.Read()
	}
	r.done = true
	return r.header, nil
}

// flush pushes w's buffered output, if it buffers, to its destination.
func flush(w io.Writer) error {
	if f, ok := w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// decodeError wraps err with the 1-based index of the data record (header
// excluded) that failed.
func decodeError(n int, err error) error {
	return fmt.Errorf("%w: record %d: %w", ErrDecode, n, err)
}

func writeError(err error) error {
	return fmt.Errorf("%w: %w", ErrWrite, err)
}
