package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"wordclock.ai/internal/clock"
)

// JSONLZstdWriter appends JSON lines to hourly zstd files named
// <prefix>-YYYY-MM-DD-HH.jsonl.zst. Hours are UTC.
type JSONLZstdWriter struct {
	baseDir string
	prefix  string
	now     func() time.Time
	onClose func(path string)

	mu      sync.Mutex
	curHour string
	curPath string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

// LoggerOptions tunes a JSONLZstdWriter. OnClose runs with the writer lock
// held after a file is closed (on rotation or Close) and must not block.
type LoggerOptions struct {
	OnClose func(path string)
}

func NewJSONLZstdWriter(baseDir, prefix string) *JSONLZstdWriter {
	return NewJSONLZstdWriterWithOptions(baseDir, prefix, LoggerOptions{})
}

func NewJSONLZstdWriterWithOptions(baseDir, prefix string, opts LoggerOptions) *JSONLZstdWriter {
	return &JSONLZstdWriter{
		baseDir: baseDir,
		prefix:  prefix,
		now:     time.Now,
		onClose: opts.OnClose,
	}
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	hour := w.now().UTC().Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *JSONLZstdWriter) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	path := w.pathForHour(hour)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 64*1024)
	w.curHour = hour
	w.curPath = path
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	closed := ""
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
		closed = w.curPath
	}
	w.w = nil
	w.curHour = ""
	w.curPath = ""
	if closed != "" && w.onClose != nil {
		w.onClose(closed)
	}
	return err1
}

func (w *JSONLZstdWriter) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

const MinutePrefix = "minutes"

// MinuteLogger writes one JSONL entry per rendered minute (compressed).
type MinuteLogger struct{ w *JSONLZstdWriter }

func NewMinuteLogger(dataDir string) *MinuteLogger {
	return NewMinuteLoggerWithOptions(dataDir, LoggerOptions{})
}

func NewMinuteLoggerWithOptions(dataDir string, opts LoggerOptions) *MinuteLogger {
	return &MinuteLogger{w: NewJSONLZstdWriterWithOptions(MinuteDir(dataDir), MinutePrefix, opts)}
}

// MinuteDir is where NewMinuteLogger puts its files.
func MinuteDir(dataDir string) string { return filepath.Join(dataDir, "minutes") }

func (l *MinuteLogger) WriteMinute(e clock.MinuteEntry) error { return l.w.Write(e) }
func (l *MinuteLogger) Close() error                          { return l.w.Close() }
