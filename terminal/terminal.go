// Package terminal renders the log output of several concurrently running
// workers as a fixed block of terminal rows, one row per worker.
//
// Each row is fed free-form log lines. Configured patterns pick an
// identifier for the row and, optionally, a running count against a total
// that is drawn as a progress bar. Rows are redrawn in place using relative
// cursor movement, and only when their text actually changes.
//
// A Terminal is not safe for concurrent use. Callers feeding it from several
// goroutines must serialise every call themselves (see package dispatch).
package terminal

import (
	"io"
	"os"

	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"
)

const (
	// MaxLines is the largest number of rows a Terminal manages
	MaxLines = 75
	// ProgressBarWidth is the number of cells in a progress bar
	ProgressBarWidth = 50
	// MaxChars is the widest line written to a row
	MaxChars = 150
	// IDWidth is the default (and maximum) identifier column width
	IDWidth = 30
	// Ellipsis marks truncated text
	Ellipsis = "..."
	// CompleteMessage replaces the progress bar once a row reaches its total
	CompleteMessage = "Processing complete"
)

// Row is the display state of a single terminal row
type Row struct {
	ID           string
	IDMatched    bool
	Text         string
	Count        int
	Total        int
	HasTotal     bool
	Modulus      int
	ModulusCount int
}

// Terminal owns a fixed block of rows and the cursor position within it
type Terminal struct {
	cfg    *compiled
	rows   []Row
	out    io.Writer
	logger *zap.Logger

	// current is the row the physical cursor sits on; valid only when positioned
	current    int
	positioned bool
}

// Option customises a Terminal
type Option func(*Terminal)

// WithOutput sends rendered rows to w instead of os.Stdout
func WithOutput(w io.Writer) Option {
	return func(t *Terminal) {
		t.out = w
	}
}

// Headless keeps all row and cursor bookkeeping but discards output
func Headless() Option {
	return WithOutput(io.Discard)
}

// WithLogger sets the logger used for debug diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(t *Terminal) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// New validates cfg and returns a Terminal managing the given number of rows.
// A nil cfg displays raw lines without identifiers or progress bars.
func New(lines int, cfg *Config, opts ...Option) (*Terminal, error) {
	if err := validateLines(lines); err != nil {
		return nil, err
	}
	c, err := compileConfig(cfg)
	if err != nil {
		return nil, err
	}

	t := &Terminal{
		cfg:    c,
		out:    os.Stdout,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.rows = t.create(lines)
	return t, nil
}

// create builds the initial row states
func (t *Terminal) create(lines int) []Row {
	rows := make([]Row, lines)
	for i := range rows {
		rows[i].IDMatched = !t.cfg.hasID
		if t.cfg.literal {
			// a literal total always extracts
			total, _, _ := extractInt(t.cfg.total, "")
			t.setTotal(&rows[i], total)
		}
	}
	return rows
}

// Lines returns the number of rows
func (t *Terminal) Lines() int {
	return len(t.rows)
}

// Row returns a copy of the row at offset
func (t *Terminal) Row(offset int) Row {
	return t.rows[offset]
}

// Rows returns a copy of every row in offset order
func (t *Terminal) Rows() []Row {
	return append([]Row(nil), t.rows...)
}

// WriteText processes one log line for the row at offset and redraws the
// row when its text changes. With ignoreProgress the line is shown as
// plain text even when a progress bar is configured.
func (t *Terminal) WriteText(offset int, line string, ignoreProgress bool) {
	row := &t.rows[offset]
	if line == "" || line == row.Text {
		t.WriteLine(offset, "", "")
		return
	}

	if !row.IDMatched {
		t.AssignID(offset, line)
		return
	}

	var text string
	if !ignoreProgress && t.cfg.progress {
		progress, ok := t.ProgressText(offset, line)
		if !ok {
			return
		}
		text = progress
	} else {
		if t.cfg.text != nil && !t.cfg.text.MatchString(line) {
			return
		}
		text = Sanitize(line)
	}

	if text == row.Text {
		t.WriteLine(offset, "", "")
		return
	}
	row.Text = text
	t.WriteLine(offset, row.ID, text)
}

// WriteLine moves the cursor to offset and writes the row. An empty text
// only repositions the cursor and leaves the row's content alone.
func (t *Terminal) WriteLine(offset int, id, text string) {
	move := t.MoveSequence(offset)
	payload := move
	if text != "" {
		payload += ansi.EraseEntireLine
		if t.cfg.hasID {
			payload += id + ": " + text
		} else {
			payload += text
		}
	}
	_, _ = io.WriteString(t.out, payload+"\n")
	// the line feed leaves the cursor on the next row
	t.current++
}

// Write walks every row in offset order, feeding each its stored text. This
// re-anchors the cursor at the top of the block on first use and leaves
// already drawn rows untouched.
func (t *Terminal) Write(ignoreProgress bool) {
	if !t.positioned {
		t.current = 0
		t.positioned = true
	}
	for offset := range t.rows {
		t.WriteText(offset, t.rows[offset].Text, ignoreProgress)
	}
}

// MoveSequence returns the cursor movement needed to reach target and
// records target as the current row.
func (t *Terminal) MoveSequence(target int) string {
	switch {
	case !t.positioned:
		t.current = target
		t.positioned = true
		return ""
	case t.current > target:
		return t.MoveUp(target)
	case t.current < target:
		return t.MoveDown(target)
	default:
		return ""
	}
}

// MoveUp returns the sequence moving the cursor up to target
func (t *Terminal) MoveUp(target int) string {
	diff := t.current - target
	t.current = target
	return ansi.CursorUp(diff)
}

// MoveDown returns the sequence moving the cursor down to target
func (t *Terminal) MoveDown(target int) string {
	diff := target - t.current
	t.current = target
	return ansi.CursorDown(diff)
}

// Cursor hides or shows the terminal cursor
func (t *Terminal) Cursor(hide bool) {
	seq := ansi.ShowCursor
	if hide {
		seq = ansi.HideCursor
	}
	_, _ = io.WriteString(t.out, seq)
}

// Finish parks the cursor just below the row block and shows it again
func (t *Terminal) Finish() {
	if t.positioned {
		_, _ = io.WriteString(t.out, t.MoveSequence(len(t.rows)))
	}
	t.Cursor(false)
}
