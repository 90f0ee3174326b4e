package csvview

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// DefaultPager is run when output goes to a terminal. -S chops long lines
// instead of wrapping them so rows scroll horizontally.
var DefaultPager = []string{"less", "-S"}

// SinkConfig configures [OpenSink].
type SinkConfig struct {
	// Out is the final destination. Nil means os.Stdout.
	Out io.Writer
	// Pager is the command and arguments to page through. Nil means
	// DefaultPager.
	Pager []string
	// NoPager always writes directly to Out.
	NoPager bool
	// Strict makes a pager that cannot be started an error instead of
	// falling back to direct output.
	Strict bool
	// IsTerminal reports whether Out is interactive. Nil checks whether Out
	// is an *os.File attached to a terminal.
	IsTerminal func(any) bool
	// Stderr receives the pager's standard error. Nil means os.Stderr.
	Stderr io.Writer
	Logger logrus.FieldLogger
}

// Sink is the destination for rendered output: either Out through a buffer,
// or the standard input of a pager process writing to Out. Close must be
// called on every path so the pager is waited for.
type Sink struct {
	w      *bufio.Writer
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	log    logrus.FieldLogger
	closed bool
}

// OpenSink decides once whether Out is interactive and, if so, starts the
// pager.
func OpenSink(cfg SinkConfig) (*Sink, error) {
	log := cfg.Logger
	if log == nil {
		log = discardLogger()
	}
	isTerminal := cfg.IsTerminal
	if isTerminal == nil {
		isTerminal = IsTerminal
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	s := &Sink{log: log}
	if cfg.NoPager || !isTerminal(cfg.Out) {
		s.w = bufio.NewWriter(cfg.Out)
		return s, nil
	}

	args := cfg.Pager
	if len(args) == 0 {
		args = DefaultPager
	}
	err := s.startPager(args, cfg)
	if err == nil {
		return s, nil
	}
	if cfg.Strict {
		return nil, err
	}
	log.WithError(err).Warn("Pager unavailable, writing directly.")
	s.w = bufio.NewWriter(cfg.Out)
	return s, nil
}

func (s *Sink) startPager(args []string, cfg SinkConfig) error {
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdout = cfg.Out
	cmd.Stderr = cfg.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPager, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPager, args[0], err)
	}
	s.log.WithField("pager", args).Debug("Started pager.")
	s.cmd = cmd
	s.stdin = stdin
	s.w = bufio.NewWriter(stdin)
	return nil
}

// Paged reports whether output is going through a pager.
func (s *Sink) Paged() bool { return s.cmd != nil }

// Write implements io.Writer.
func (s *Sink) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

// Flush writes any buffered output.
func (s *Sink) Flush() error {
	return s.w.Flush()
}

// Close flushes buffered output and, when paging, closes the pager's input
// and waits for it to exit. A pager that was quit before reading everything
// is not an error.
func (s *Sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	flushErr := s.w.Flush()
	if IsClosedPipe(flushErr) {
		flushErr = nil
	}
	if s.cmd == nil {
		return flushErr
	}
	closeErr := s.stdin.Close()
	if IsClosedPipe(closeErr) {
		closeErr = nil
	}
	if err := s.cmd.Wait(); err != nil {
		return errors.Join(fmt.Errorf("%w: %w", ErrPager, err), flushErr, closeErr)
	}
	s.log.Debug("Pager exited.")
	return errors.Join(flushErr, closeErr)
}

// IsClosedPipe reports whether err means the reading end of the output went
// away, as happens when the user quits the pager early.
func IsClosedPipe(err error) bool {
	return err != nil && (errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe))
}

// IsTerminal reports whether v is a file attached to a terminal.
func IsTerminal(v any) bool {
	f, ok := v.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}
