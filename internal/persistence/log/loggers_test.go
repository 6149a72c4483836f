package log

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"wordclock.ai/internal/clock"
)

func TestMinuteLogger_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewMinuteLogger(dir)
	l.w.now = func() time.Time { return time.Date(2026, 10, 17, 13, 5, 0, 0, time.UTC) }

	in := []clock.MinuteEntry{
		{Time: "2026-10-17T15:04:00+02:00", BootID: "b", Hour: 3, Minute: 4, Text: "ES IST VIER MINUTEN NACH DREI", Words: []string{"ES", "IST", "VIER", "MINUTEN", "NACH", "DREI"}, Active: true, WordColor: "05CBFF"},
		{Time: "2026-10-17T15:05:00+02:00", BootID: "b", Hour: 3, Minute: 5, Text: "ES IST FÜNF NACH DREI", Words: []string{"ES", "IST", "FÜNF", "NACH", "DREI"}, Active: true, WordColor: "05CBFF"},
	}
	for _, e := range in {
		if err := l.WriteMinute(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := ListFiles(MinuteDir(dir), MinutePrefix)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "minutes-2026-10-17-13.jsonl.zst" {
		t.Fatalf("files: %v", files)
	}

	var out []clock.MinuteEntry
	if err := ReadMinutes(files[0], func(e clock.MinuteEntry) error {
		out = append(out, e)
		return nil
	}); err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(out) != 2 || out[1].Text != in[1].Text || out[0].Minute != 4 || len(out[1].Words) != 5 {
		t.Fatalf("entries: %+v", out)
	}
}

func TestJSONLZstdWriter_RotatesHourly(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONLZstdWriter(dir, "minutes")
	now := time.Date(2026, 10, 17, 9, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	if err := w.Write(map[string]int{"minute": 59}); err != nil {
		t.Fatalf("write: %v", err)
	}
	now = now.Add(time.Minute)
	if err := w.Write(map[string]int{"minute": 0}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := ListFiles(dir, "minutes")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %v", files)
	}
	if filepath.Base(files[0]) != "minutes-2026-10-17-09.jsonl.zst" || filepath.Base(files[1]) != "minutes-2026-10-17-10.jsonl.zst" {
		t.Fatalf("names: %v", files)
	}
}

func TestJSONLZstdWriter_AppendsAcrossRestarts(t *testing.T) {
	dir := t.TempDir()
	fixed := func() time.Time { return time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC) }
	for i := 0; i < 2; i++ {
		l := NewMinuteLogger(dir)
		l.w.now = fixed
		if err := l.WriteMinute(clock.MinuteEntry{Minute: i}); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := l.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
	path := filepath.Join(MinuteDir(dir), "minutes-2026-01-02-03.jsonl.zst")
	n := 0
	if err := ReadMinutes(path, func(e clock.MinuteEntry) error {
		if e.Minute != n {
			t.Fatalf("entry %d: minute %d", n, e.Minute)
		}
		n++
		return nil
	}); err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 2 {
		t.Fatalf("entries: %d", n)
	}
}

func TestListFiles_IgnoresOthers(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"minutes-2026-01-01-00.jsonl.zst", "audit-2026-01-01-00.jsonl.zst", "minutes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "minutes-dir.jsonl.zst"), 0o755); err != nil {
		t.Fatal(err)
	}
	files, err := ListFiles(dir, "minutes")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("files: %v", files)
	}
}

func TestJSONLZstdWriter_OnCloseReportsClosedFiles(t *testing.T) {
	dir := t.TempDir()
	var closed []string
	w := NewJSONLZstdWriterWithOptions(dir, "minutes", LoggerOptions{OnClose: func(p string) { closed = append(closed, p) }})
	now := time.Date(2026, 10, 17, 9, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	if err := w.Write(map[string]int{"minute": 59}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(closed) != 0 {
		t.Fatalf("nothing closed yet: %v", closed)
	}
	now = now.Add(time.Minute)
	if err := w.Write(map[string]int{"minute": 0}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(closed) != 1 || filepath.Base(closed[0]) != "minutes-2026-10-17-09.jsonl.zst" {
		t.Fatalf("after rotation: %v", closed)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if len(closed) != 2 || filepath.Base(closed[1]) != "minutes-2026-10-17-10.jsonl.zst" {
		t.Fatalf("after close: %v", closed)
	}
}
