package main

import (
	"strings"
	"testing"
	"time"

	"wordclock.ai/internal/observerproto"
	"wordclock.ai/internal/wordframe"
)

func TestFormatFrame(t *testing.T) {
	f := wordframe.FromTime(2, 30)
	m := observerproto.NewFrame(4, time.Unix(0, 0), 2, 30, f, false, "05CBFF")
	got := formatFrame(m)
	if got != "#4  2:30 [off #05CBFF] ES IST HALB DREI\n" {
		t.Fatalf("plain: %q", got)
	}

	got = formatFrame(m.WithASCII(f))
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 1+wordframe.Height {
		t.Fatalf("lines: %d", len(lines))
	}
}
