package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bjaus/csvview"
)

var errUsage = errors.New("no input: pass a FILE or pipe CSV to standard input")

// Replaced in tests.
var (
	stdinIsTerminal  = csvview.IsTerminal
	stdoutIsTerminal = csvview.IsTerminal
)

type rootCommandParams struct {
	lookahead     int
	style         string
	align         string
	delimiter     string
	pager         string
	noPager       bool
	strictPager   bool
	widthTable    string
	ambiguousWide bool
	verbose       bool
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var params rootCommandParams

	cmd := &cobra.Command{
		Use:   "csvview [FILE]",
		Short: "Display CSV as an aligned table",
		Long: `Display CSV as an aligned table.

Reads FILE, or standard input when no FILE is given, and prints every record
with columns padded to a common display width. Column widths are taken from
the header and the first --lookahead records; later records are printed as
they arrive at those widths. Full-width East Asian characters count as two
columns and tabs as four.

When standard output is a terminal the table is shown in a pager with line
wrapping disabled.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return view(cmd, args, &params, stdin, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.IntVarP(&params.lookahead, "lookahead", "n", csvview.DefaultLookahead, "number of records used to estimate column widths")
	flags.StringVar(&params.style, "style", string(csvview.StyleQuoted), fmt.Sprintf("table style %v", csvview.Styles()))
	flags.StringVar(&params.align, "align", "", `comma separated column alignments, e.g. "l,r,c" (non-quoted styles)`)
	flags.StringVarP(&params.delimiter, "delimiter", "d", ",", `field delimiter, a single character or "tab"`)
	flags.StringVar(&params.pager, "pager", strings.Join(csvview.DefaultPager, " "), "pager command used when output is a terminal")
	flags.BoolVar(&params.noPager, "no-pager", false, "never use a pager")
	flags.BoolVar(&params.strictPager, "strict-pager", false, "fail instead of writing directly when the pager cannot start")
	flags.StringVar(&params.widthTable, "width-table", "", "EastAsianWidth.txt file to classify characters with")
	flags.BoolVar(&params.ambiguousWide, "ambiguous-wide", false, "count East Asian ambiguous characters as two columns")
	flags.BoolVarP(&params.verbose, "verbose", "v", false, "log debug output to standard error")

	return cmd
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stdin, stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stderr, "csvview:", err)
		return 1
	}
	return 0
}

func view(cmd *cobra.Command, args []string, params *rootCommandParams, stdin io.Reader, stdout, stderr io.Writer) error {
	log := newLogger(stderr, params.verbose)

	opts, comma, err := params.options(log)
	if err != nil {
		return err
	}

	in := stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("error opening file '%s': %w", args[0], err)
		}
		defer f.Close()
		in = f
	} else if stdinIsTerminal(stdin) {
		cmd.SetOut(stderr)
		_ = cmd.Usage()
		return errUsage
	}

	// Check the header before a pager takes over the screen.
	src := csvview.NewCSVReader(in, comma)
	header, err := csvview.ReadHeader(src)
	if err != nil {
		return err
	}

	sink, err := csvview.OpenSink(csvview.SinkConfig{
		Out:        stdout,
		Pager:      strings.Fields(params.pager),
		NoPager:    params.noPager,
		Strict:     params.strictPager,
		IsTerminal: stdoutIsTerminal,
		Stderr:     stderr,
		Logger:     log,
	})
	if err != nil {
		return err
	}
	if sink.Paged() {
		// The pager owns the terminal; interrupts are its to handle.
		signal.Ignore(os.Interrupt)
		defer signal.Reset(os.Interrupt)
	}

	stats, formatErr := csvview.Format(cmd.Context(), sink, csvview.WithHeader(header, src), opts)
	closeErr := sink.Close()
	if formatErr != nil && !csvview.IsClosedPipe(formatErr) {
		return formatErr
	}
	if closeErr != nil {
		return closeErr
	}
	log.WithFields(logrus.Fields{
		"state":    stats.State,
		"records":  stats.Records(),
		"streamed": stats.Streamed,
	}).Debug("Finished.")
	return nil
}

func (p *rootCommandParams) options(log logrus.FieldLogger) (csvview.Options, rune, error) {
	var opts csvview.Options

	style, err := csvview.ParseStyle(p.style)
	if err != nil {
		return opts, 0, err
	}
	aligns, err := csvview.ParseAlignments(p.align)
	if err != nil {
		return opts, 0, err
	}
	comma, err := parseDelimiter(p.delimiter)
	if err != nil {
		return opts, 0, err
	}

	var classifier csvview.Classifier
	if p.widthTable != "" {
		classifier, err = loadWidthTable(p.widthTable)
		if err != nil {
			return opts, 0, err
		}
	}

	opts = csvview.Options{
		Lookahead:  p.lookahead,
		Style:      style,
		Alignments: aligns,
		Measure:    csvview.NewMeasure(classifier).WithAmbiguousWide(p.ambiguousWide),
		Logger:     log,
	}
	return opts, comma, nil
}

func loadWidthTable(path string) (*csvview.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening width table '%s': %w", path, err)
	}
	defer f.Close()
	return csvview.ParseTable(f)
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "tab", `\t`:
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) || r == utf8.RuneError || r == '"' || r == '\n' || r == '\r' {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.WarnLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}
