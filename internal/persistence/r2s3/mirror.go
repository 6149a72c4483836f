package r2s3

import (
	"context"
	"fmt"
	"log"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Uploader is satisfied by *Client.
type Uploader interface {
	PutFile(ctx context.Context, objectKey, localPath string) error
}

type MirrorStats struct {
	QueueDepth         int
	QueueCapacity      int
	DroppedTotal       uint64
	UploadSuccessTotal uint64
	UploadFailTotal    uint64
	LastSuccessUnix    int64
}

// Mirror copies closed minute log files to object storage. Keys are the
// file path relative to the data dir, under an optional prefix.
type Mirror struct {
	up      Uploader
	dataDir string
	prefix  string
	logger  *log.Logger

	attempts int
	backoff  func(attempt int) time.Duration

	jobs chan string
	wg   sync.WaitGroup

	dropped   atomic.Uint64
	succeeded atomic.Uint64
	failed    atomic.Uint64
	lastOK    atomic.Int64
}

func NewMirror(up Uploader, dataDir, prefix string, workers int, logger *log.Logger) *Mirror {
	if workers <= 0 {
		workers = 1
	}
	m := &Mirror{
		up:       up,
		dataDir:  dataDir,
		prefix:   strings.Trim(filepath.ToSlash(prefix), "/"),
		logger:   logger,
		attempts: 4,
		backoff: func(attempt int) time.Duration {
			return time.Duration(attempt*attempt) * 250 * time.Millisecond
		},
		jobs: make(chan string, 256),
	}
	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			for p := range m.jobs {
				m.upload(p)
			}
		}()
	}
	return m
}

// Enqueue never blocks. A full queue drops the file; it stays on disk.
func (m *Mirror) Enqueue(localPath string) {
	if m == nil {
		return
	}
	select {
	case m.jobs <- localPath:
	default:
		n := m.dropped.Add(1)
		m.printf("mirror drop %s (queue full, dropped_total=%d)", localPath, n)
	}
}

// Close drains the queue and waits for in-flight uploads.
func (m *Mirror) Close() {
	if m == nil {
		return
	}
	close(m.jobs)
	m.wg.Wait()
}

func (m *Mirror) Stats() MirrorStats {
	if m == nil {
		return MirrorStats{}
	}
	return MirrorStats{
		QueueDepth:         len(m.jobs),
		QueueCapacity:      cap(m.jobs),
		DroppedTotal:       m.dropped.Load(),
		UploadSuccessTotal: m.succeeded.Load(),
		UploadFailTotal:    m.failed.Load(),
		LastSuccessUnix:    m.lastOK.Load(),
	}
}

func (m *Mirror) upload(localPath string) {
	key, err := m.ObjectKey(localPath)
	if err != nil {
		m.failed.Add(1)
		m.printf("mirror skip %s: %v", localPath, err)
		return
	}
	for attempt := 1; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err = m.up.PutFile(ctx, key, localPath)
		cancel()
		if err == nil {
			m.succeeded.Add(1)
			m.lastOK.Store(time.Now().Unix())
			m.printf("mirror uploaded %s", key)
			return
		}
		if attempt >= m.attempts {
			break
		}
		time.Sleep(m.backoff(attempt))
	}
	m.failed.Add(1)
	m.printf("mirror upload %s failed: %v", key, err)
}

// ObjectKey maps a file inside the data dir to its object key.
func (m *Mirror) ObjectKey(localPath string) (string, error) {
	base, err := filepath.Abs(m.dataDir)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(localPath)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s is outside %s", abs, base)
	}
	if m.prefix == "" {
		return rel, nil
	}
	return path.Join(m.prefix, rel), nil
}

func (m *Mirror) printf(format string, args ...any) {
	if m.logger != nil {
		m.logger.Printf(format, args...)
	}
}
