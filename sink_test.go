package csvview_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"testing"

	"github.com/bjaus/csvview"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func interactive(any) bool { return true }

func requireCommand(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
}

func TestSinkDirectWhenNotTerminal(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	sink, err := csvview.OpenSink(csvview.SinkConfig{Out: &out})
	require.NoError(t, err)
	assert.False(t, sink.Paged())

	_, err = io.WriteString(sink, "hello\n")
	require.NoError(t, err)
	assert.Empty(t, out.String(), "output is buffered until flushed")

	require.NoError(t, sink.Close())
	assert.Equal(t, "hello\n", out.String())
	require.NoError(t, sink.Close(), "close is idempotent")
}

func TestSinkFlush(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	sink, err := csvview.OpenSink(csvview.SinkConfig{Out: &out})
	require.NoError(t, err)
	_, err = io.WriteString(sink, "x")
	require.NoError(t, err)
	require.NoError(t, sink.Flush())
	assert.Equal(t, "x", out.String())
	require.NoError(t, sink.Close())
}

// snapshotReader records what has reached out each time a record is read.
type snapshotReader struct {
	records [][]string
	out     *bytes.Buffer
	seen    []string
}

func (r *snapshotReader) Read() ([]string, error) {
	r.seen = append(r.seen, r.out.String())
	if len(r.records) == 0 {
		return nil, io.EOF
	}
	record := r.records[0]
	r.records = r.records[1:]
	return record, nil
}

func TestSinkReceivesStreamedRecordsAsRead(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	sink, err := csvview.OpenSink(csvview.SinkConfig{Out: &out})
	require.NoError(t, err)

	src := &snapshotReader{records: [][]string{{"h"}, {"1"}, {"2"}, {"3"}}, out: &out}
	stats, err := csvview.Format(context.Background(), sink, src, csvview.Options{Lookahead: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Streamed)

	require.Len(t, src.seen, 5)
	assert.Empty(t, src.seen[1], "nothing is written while estimating")
	assert.Equal(t, "\"h\"  \n\"1\"  \n", src.seen[2], "buffered records are flushed before streaming")
	assert.Equal(t, "\"h\"  \n\"1\"  \n\"2\"  \n", src.seen[3])
	assert.Equal(t, "\"h\"  \n\"1\"  \n\"2\"  \n\"3\"  \n", src.seen[4])
	require.NoError(t, sink.Close())
}

func TestSinkNoPager(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	sink, err := csvview.OpenSink(csvview.SinkConfig{
		Out:        &out,
		IsTerminal: interactive,
		NoPager:    true,
		Pager:      []string{"csvview-test-no-such-pager"},
	})
	require.NoError(t, err)
	assert.False(t, sink.Paged())
	require.NoError(t, sink.Close())
}

func TestSinkPipesThroughPager(t *testing.T) {
	t.Parallel()
	requireCommand(t, "cat")
	var out bytes.Buffer
	sink, err := csvview.OpenSink(csvview.SinkConfig{
		Out:        &out,
		IsTerminal: interactive,
		Pager:      []string{"cat"},
	})
	require.NoError(t, err)
	require.True(t, sink.Paged())

	stats, err := csvview.Format(context.Background(), sink,
		csvview.NewCSVReader(strings.NewReader("a,b\n1,22\n"), ','), csvview.Options{})
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	assert.Equal(t, 2, stats.Records())
	assert.Equal(t, "\"a\"  \"b\"   \n\"1\"  \"22\"  \n", out.String())
}

func TestSinkPagerExitsEarly(t *testing.T) {
	t.Parallel()
	requireCommand(t, "head")
	var out bytes.Buffer
	sink, err := csvview.OpenSink(csvview.SinkConfig{
		Out:        &out,
		IsTerminal: interactive,
		Pager:      []string{"head", "-n", "1"},
	})
	require.NoError(t, err)

	// Far more output than a pipe buffer holds.
	_, err = csvview.Format(context.Background(), sink,
		csvview.NewCSVReader(strings.NewReader(numberedCSV(100000)), ','), csvview.Options{Lookahead: 10})
	require.Error(t, err)
	assert.True(t, csvview.IsClosedPipe(err), "got %v", err)
	assert.True(t, errors.Is(err, csvview.ErrWrite))

	require.NoError(t, sink.Close())
	assert.Equal(t, "\"n\"   \"sq\"   \n", out.String())
}

func TestSinkPagerFailureFallsBack(t *testing.T) {
	t.Parallel()
	logger, hook := test.NewNullLogger()
	var out bytes.Buffer
	sink, err := csvview.OpenSink(csvview.SinkConfig{
		Out:        &out,
		IsTerminal: interactive,
		Pager:      []string{"csvview-test-no-such-pager"},
		Logger:     logger,
	})
	require.NoError(t, err)
	assert.False(t, sink.Paged())

	_, err = io.WriteString(sink, "direct\n")
	require.NoError(t, err)
	require.NoError(t, sink.Close())
	assert.Equal(t, "direct\n", out.String())

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.True(t, errors.Is(hook.LastEntry().Data[logrus.ErrorKey].(error), csvview.ErrPager))
}

func TestSinkPagerFailureStrict(t *testing.T) {
	t.Parallel()
	_, err := csvview.OpenSink(csvview.SinkConfig{
		Out:        &bytes.Buffer{},
		IsTerminal: interactive,
		Pager:      []string{"csvview-test-no-such-pager"},
		Strict:     true,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, csvview.ErrPager))
	assert.True(t, errors.Is(err, exec.ErrNotFound))
}

func TestSinkPagerExitStatus(t *testing.T) {
	t.Parallel()
	requireCommand(t, "false")
	sink, err := csvview.OpenSink(csvview.SinkConfig{
		Out:        &bytes.Buffer{},
		IsTerminal: interactive,
		Pager:      []string{"false"},
	})
	require.NoError(t, err)
	err = sink.Close()
	require.Error(t, err)
	assert.True(t, errors.Is(err, csvview.ErrPager))
	var exitErr *exec.ExitError
	assert.True(t, errors.As(err, &exitErr))
}

func TestIsClosedPipe(t *testing.T) {
	t.Parallel()
	assert.False(t, csvview.IsClosedPipe(nil))
	assert.False(t, csvview.IsClosedPipe(errWrite))
	assert.True(t, csvview.IsClosedPipe(syscall.EPIPE))
	assert.True(t, csvview.IsClosedPipe(&os.PathError{Op: "write", Path: "|1", Err: syscall.EPIPE}))
	assert.True(t, csvview.IsClosedPipe(io.ErrClosedPipe))
	assert.True(t, csvview.IsClosedPipe(os.ErrClosed))
}

func TestIsTerminal(t *testing.T) {
	t.Parallel()
	assert.False(t, csvview.IsTerminal(&bytes.Buffer{}))
	assert.False(t, csvview.IsTerminal(strings.NewReader("")))

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, csvview.IsTerminal(f))
}
