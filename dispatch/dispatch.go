// Package dispatch feeds log lines from concurrently running workers into a
// row renderer, one line at a time.
package dispatch

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Renderer is the row display the dispatcher drives. It is not expected to
// be safe for concurrent use.
type Renderer interface {
	Lines() int
	WriteText(offset int, line string, ignoreProgress bool)
	Write(ignoreProgress bool)
	Cursor(hide bool)
	Finish()
}

// Worker does one unit of work, reporting progress through log. The
// returned value is collected into the worker's Result.
type Worker func(ctx context.Context, log *zap.Logger) (int, error)

// Result is the outcome of a single worker
type Result struct {
	Offset int
	Value  int
	Err    error
}

// Dispatcher serialises every call into its Renderer
type Dispatcher struct {
	mu       sync.Mutex
	renderer Renderer
	logger   *zap.Logger
	onResult func(Result)
}

// Option customises a Dispatcher
type Option func(*Dispatcher)

// WithLogger sets the logger used for dispatcher diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithResultHook registers fn to be called as each worker finishes.
// fn runs on the worker goroutine and must be safe for concurrent use.
func WithResultHook(fn func(Result)) Option {
	return func(d *Dispatcher) {
		d.onResult = fn
	}
}

// New creates a Dispatcher for renderer
func New(renderer Renderer, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		renderer: renderer,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Send processes one line for the row at offset
func (d *Dispatcher) Send(offset int, line string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.renderer.WriteText(offset, line, false)
}

// Start hides the cursor and draws the empty row block
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.renderer.Cursor(true)
	d.renderer.Write(true)
}

// Finish moves the cursor below the row block and restores it
func (d *Dispatcher) Finish() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.renderer.Finish()
}

// Run starts one goroutine per worker, each owning the row matching its
// index, and waits for all of them. Results are returned in row order.
// When file is not nil every worker log entry is also written there.
func (d *Dispatcher) Run(ctx context.Context, workers []Worker, file zapcore.WriteSyncer) []Result {
	results := make(chan Result, len(workers))
	var wg sync.WaitGroup

	for i, work := range workers {
		wg.Add(1)
		go func(offset int, work Worker) {
			defer wg.Done()
			log := d.WorkerLogger(offset, file)
			value, err := work(ctx, log)
			_ = log.Sync()
			if err != nil {
				d.logger.Warn("worker failed", zap.Int("offset", offset), zap.Error(err))
			}
			result := Result{Offset: offset, Value: value, Err: err}
			if d.onResult != nil {
				d.onResult(result)
			}
			results <- result
		}(i, work)
	}

	wg.Wait()
	close(results)

	ordered := make([]Result, len(workers))
	for result := range results {
		ordered[result.Offset] = result
	}
	return ordered
}
