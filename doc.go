// Package csvview renders CSV records as a column-aligned table, measuring
// every field by its terminal display width.
//
// # Display width
//
// A [Classifier] maps each code point to its Unicode East Asian Width
// [Category]. [Unicode] uses the tables in golang.org/x/text/width; a [Table]
// is parsed from a file in the EastAsianWidth.txt format:
//
//	t, err := csvview.ParseTable(f)
//	m := csvview.NewMeasure(t)
//
// A [Measure] turns categories into columns: Fullwidth and Wide code points
// take two columns, a tab always takes four, and everything else takes one.
//
// # Streaming
//
// [Format] reads the header and up to Options.Lookahead records, sizes the
// columns with an [Estimator], writes the buffered records, and then writes
// each remaining record as soon as it is read. Memory use is bounded by the
// lookahead no matter how long the input is. A wide field after the
// lookahead does not widen its column, so such rows may not line up.
//
//	src := csvview.NewCSVReader(os.Stdin, ',')
//	stats, err := csvview.Format(ctx, os.Stdout, src, csvview.Options{})
//
// # Styles
//
// [StyleQuoted], the default, prints each field in double quotes padded to
// its column width plus two. [StylePlain] and the bordered styles
// ([StyleRounded], [StyleASCII], [StyleHeavy], [StyleDouble]) print padded
// cells with optional per-column [Alignment].
//
// # Output
//
// [OpenSink] picks the destination: a pager (default "less -S") when output
// is a terminal, otherwise a buffered writer. Always [Sink.Close] it so the
// pager is waited for. [IsClosedPipe] tells a pager the user quit early from
// a real write failure.
//
// # Errors
//
// The package exports sentinel errors for programmatic handling:
//
//   - [ErrHeader]: the header record is missing or malformed
//   - [ErrDecode]: a later record is malformed
//   - [ErrWrite]: the destination rejected output
//   - [ErrPager]: the pager could not be started or failed
//   - [ErrWidthTable]: a width table file is malformed
//   - [ErrUnsupportedStyle], [ErrInvalidAlignment]: bad options
package csvview
