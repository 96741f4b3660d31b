package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lepinkainen/rowterm/terminal"
)

type call struct {
	offset int
	line   string
}

// recorder is a Renderer that records calls and flags overlapping ones
type recorder struct {
	lines   int
	mu      sync.Mutex
	busy    bool
	overlap bool
	calls   []call
	events  []string
}

func (r *recorder) enter() {
	r.mu.Lock()
	if r.busy {
		r.overlap = true
	}
	r.busy = true
	r.mu.Unlock()
}

func (r *recorder) leave(event string, c *call) {
	r.mu.Lock()
	r.busy = false
	r.events = append(r.events, event)
	if c != nil {
		r.calls = append(r.calls, *c)
	}
	r.mu.Unlock()
}

func (r *recorder) Lines() int { return r.lines }

func (r *recorder) WriteText(offset int, line string, _ bool) {
	r.enter()
	r.leave("text", &call{offset: offset, line: line})
}

func (r *recorder) Write(bool) {
	r.enter()
	r.leave("write", nil)
}

func (r *recorder) Cursor(hide bool) {
	r.enter()
	r.leave(fmt.Sprintf("cursor:%v", hide), nil)
}

func (r *recorder) Finish() {
	r.enter()
	r.leave("finish", nil)
}

func (r *recorder) linesFor(offset int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, c := range r.calls {
		if c.offset == offset {
			out = append(out, c.line)
		}
	}
	return out
}

func TestDispatcher_StartAndFinish(t *testing.T) {
	rec := &recorder{lines: 2}
	d := New(rec)

	d.Start()
	d.Finish()

	assert.Equal(t, []string{"cursor:true", "write", "finish"}, rec.events)
}

func TestLineWriter_SplitsLines(t *testing.T) {
	rec := &recorder{lines: 2}
	d := New(rec)
	w := d.LineWriter(1)

	_, err := w.Write([]byte("first\nsec"))
	require.NoError(t, err)
	_, err = w.Write([]byte("ond\r\nthi"))
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, rec.linesFor(1))

	require.NoError(t, w.Sync())
	assert.Equal(t, []string{"first", "second", "thi"}, rec.linesFor(1))

	require.NoError(t, w.Sync())
	assert.Len(t, rec.linesFor(1), 3, "an empty buffer sends nothing")
}

func TestWorkerLogger_MessageOnly(t *testing.T) {
	rec := &recorder{lines: 1}
	d := New(rec)

	log := d.WorkerLogger(0, nil)
	log.Debug("processor id abc")
	log.Info("processed 12")

	assert.Equal(t, []string{"processor id abc", "processed 12"}, rec.linesFor(0))
}

func TestWorkerLogger_TeesToFile(t *testing.T) {
	rec := &recorder{lines: 3}
	d := New(rec)
	var file bytes.Buffer

	log := d.WorkerLogger(2, zapcore.AddSync(&file))
	log.Info("processing total of 40")

	assert.Equal(t, []string{"processing total of 40"}, rec.linesFor(2))
	assert.Contains(t, file.String(), "processing total of 40")
	assert.Contains(t, file.String(), `"row": 2`)
	assert.Contains(t, file.String(), "info")
}

func TestRun_SerialisesWorkers(t *testing.T) {
	rec := &recorder{lines: 8}
	d := New(rec)

	workers := make([]Worker, rec.lines)
	for i := range workers {
		workers[i] = func(ctx context.Context, log *zap.Logger) (int, error) {
			for n := 0; n < 200; n++ {
				log.Info(fmt.Sprintf("processed %d", n))
			}
			return 200, nil
		}
	}

	results := d.Run(context.Background(), workers, nil)

	require.Len(t, results, 8)
	assert.False(t, rec.overlap, "renderer calls must never overlap")
	for i, result := range results {
		assert.Equal(t, i, result.Offset)
		assert.Equal(t, 200, result.Value)
		assert.NoError(t, result.Err)
		assert.Len(t, rec.linesFor(i), 200)
	}
}

func TestRun_CollectsErrorsAndCallsHook(t *testing.T) {
	rec := &recorder{lines: 2}
	var mu sync.Mutex
	var seen []int
	d := New(rec, WithResultHook(func(r Result) {
		mu.Lock()
		seen = append(seen, r.Offset)
		mu.Unlock()
	}))

	boom := errors.New("boom")
	results := d.Run(context.Background(), []Worker{
		func(context.Context, *zap.Logger) (int, error) { return 1, nil },
		func(context.Context, *zap.Logger) (int, error) { return 0, boom },
	}, nil)

	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.ElementsMatch(t, []int{0, 1}, seen)
}

func TestRun_DrivesTerminal(t *testing.T) {
	var out bytes.Buffer
	cfg := &terminal.Config{
		IDRegex: `^processor id (?P<value>.*)$`,
		ProgressBar: &terminal.ProgressBarConfig{
			Total:      `^processing total of (?P<value>\d+)$`,
			CountRegex: `^processed (?P<value>\d+)$`,
		},
	}
	trmnl, err := terminal.New(3, cfg, terminal.WithOutput(&out))
	require.NoError(t, err)

	d := New(trmnl)
	d.Start()
	workers := make([]Worker, 3)
	for i := range workers {
		i := i
		workers[i] = func(ctx context.Context, log *zap.Logger) (int, error) {
			log.Info(fmt.Sprintf("processor id w%d", i))
			log.Info("processing total of 100")
			for n := 1; n <= 100; n++ {
				log.Info(fmt.Sprintf("processed %d", n))
			}
			return 100, nil
		}
	}
	d.Run(context.Background(), workers, nil)
	d.Finish()

	for i, row := range trmnl.Rows() {
		assert.Equal(t, fmt.Sprintf("w%d", i), row.ID)
		assert.Equal(t, 100, row.Count)
		assert.Contains(t, row.Text, "100/100")
	}
	assert.True(t, strings.HasSuffix(out.String(), "\x1b[?25h"))
}
