package dispatch

import (
	"bytes"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LineWriter turns a byte stream into complete lines for a single row
type LineWriter struct {
	mu     sync.Mutex
	d      *Dispatcher
	offset int
	buf    bytes.Buffer
}

// LineWriter returns a writer whose complete lines are sent to the row at offset
func (d *Dispatcher) LineWriter(offset int) *LineWriter {
	return &LineWriter{d: d, offset: offset}
}

// Write buffers p and sends every complete line it contains
func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := string(w.buf.Next(i + 1))
		w.d.Send(w.offset, strings.TrimRight(line, "\r\n"))
	}
	return len(p), nil
}

// Sync sends any buffered partial line
func (w *LineWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() > 0 {
		line := w.buf.String()
		w.buf.Reset()
		w.d.Send(w.offset, strings.TrimRight(line, "\r"))
	}
	return nil
}

// rowEncoderConfig renders just the message, so row patterns see the raw text
var rowEncoderConfig = zapcore.EncoderConfig{
	MessageKey:     "msg",
	LineEnding:     zapcore.DefaultLineEnding,
	EncodeDuration: zapcore.StringDurationEncoder,
}

// WorkerLogger returns a logger whose messages become lines of the row at
// offset. With a non-nil file the same entries are also written there,
// timestamped and tagged with the row.
func (d *Dispatcher) WorkerLogger(offset int, file zapcore.WriteSyncer) *zap.Logger {
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(rowEncoderConfig), d.LineWriter(offset), zapcore.DebugLevel)
	if file != nil {
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.TimeKey = "ts"
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		fileCore := zapcore.NewCore(zapcore.NewConsoleEncoder(fileCfg), file, zapcore.DebugLevel).
			With([]zapcore.Field{zap.Int("row", offset)})
		core = zapcore.NewTee(core, fileCore)
	}
	return zap.New(core)
}
