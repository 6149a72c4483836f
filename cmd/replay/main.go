package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"wordclock.ai/internal/clock"
	persistlog "wordclock.ai/internal/persistence/log"
	"wordclock.ai/internal/wordframe"
)

func main() {
	var (
		dataDir = flag.String("data", "./data", "runtime data directory")
		dir     = flag.String("minutes", "", "minute log dir containing minutes-*.jsonl.zst (default: <data>/minutes)")
		boot    = flag.String("boot", "", "only verify entries from this boot id (optional)")
	)
	flag.Parse()

	d := strings.TrimSpace(*dir)
	if d == "" {
		d = persistlog.MinuteDir(*dataDir)
	}
	files, err := persistlog.ListFiles(d, persistlog.MinutePrefix)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list minutes:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no minute files found in", d)
		os.Exit(1)
	}

	v := &verifier{boot: *boot}
	for _, path := range files {
		if err := persistlog.ReadMinutes(path, v.check); err != nil {
			fmt.Fprintln(os.Stderr, "replay:", err)
			os.Exit(1)
		}
	}
	fmt.Printf("replay ok: checked=%d entries boots=%d files=%d\n", v.checked, len(v.boots), len(files))
}

// verifier re-renders every logged minute and compares it with what was
// logged. Within one boot, consecutive entries must show different faces.
type verifier struct {
	boot string

	checked int
	boots   map[string]struct{}
	last    map[string][2]int
}

func (v *verifier) check(e clock.MinuteEntry) error {
	if v.boot != "" && e.BootID != v.boot {
		return nil
	}
	if v.boots == nil {
		v.boots = map[string]struct{}{}
		v.last = map[string][2]int{}
	}
	if err := wordframe.CheckTime(e.Hour, e.Minute); err != nil {
		return fmt.Errorf("entry %s: %w", e.Time, err)
	}

	f := wordframe.FromTime(e.Hour, e.Minute)
	if got := f.Text(); got != e.Text {
		return fmt.Errorf("text mismatch at %s (%d:%02d): got=%q want=%q", e.Time, e.Hour, e.Minute, got, e.Text)
	}
	ws := f.Words()
	if len(ws) != len(e.Words) {
		return fmt.Errorf("word count mismatch at %s: got=%d want=%d", e.Time, len(ws), len(e.Words))
	}
	for i, w := range ws {
		if w.String() != e.Words[i] {
			return fmt.Errorf("word %d mismatch at %s: got=%s want=%s", i, e.Time, w, e.Words[i])
		}
	}
	if e.Lit != 0 && e.Lit != f.Lit() {
		return fmt.Errorf("lit mismatch at %s: got=%d want=%d", e.Time, f.Lit(), e.Lit)
	}

	face := [2]int{e.Hour, e.Minute}
	if prev, ok := v.last[e.BootID]; ok && prev == face {
		return fmt.Errorf("duplicate face %d:%02d at %s (boot %s)", e.Hour, e.Minute, e.Time, e.BootID)
	}
	v.last[e.BootID] = face
	v.boots[e.BootID] = struct{}{}
	v.checked++
	return nil
}
