package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"wordclock.ai/internal/clock"
	"wordclock.ai/internal/observerproto"
	persistlog "wordclock.ai/internal/persistence/log"
	"wordclock.ai/internal/wordframe"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "render":
			renderCmd(os.Args[2:])
			return
		case "log":
			logCmd(os.Args[2:])
			return
		case "db":
			dbCmd(os.Args[2:])
			return
		case "catalog":
			catalogCmd(os.Args[2:])
			return
		case "state":
			stateCmd(os.Args[2:])
			return
		case "settings":
			settingsCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

// listCmd prints the minute log files with their sizes.
func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	_ = fs.Parse(args)

	files, err := persistlog.ListFiles(persistlog.MinuteDir(*dataDir), persistlog.MinutePrefix)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	var total uint64
	for _, p := range files {
		st, err := os.Stat(p)
		if err != nil {
			continue
		}
		total += uint64(st.Size())
		fmt.Printf("%-40s %10s  %s\n", filepath.Base(p), humanize.Bytes(uint64(st.Size())), humanize.Time(st.ModTime()))
	}
	fmt.Printf("%d files, %s\n", len(files), humanize.Bytes(total))
}

func renderCmd(args []string) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	at := fs.String("time", "", "clock time HH:MM (default: now)")
	asJSON := fs.Bool("json", false, "print a FRAME message instead of the plate")
	dark := fs.String("dark", "·", "character for unlit cells")
	_ = fs.Parse(args)

	now := time.Now()
	h, m := clock.ClockFace(now)
	if strings.TrimSpace(*at) != "" {
		var err error
		h, m, err = parseClock(*at)
		if err != nil {
			fmt.Fprintln(os.Stderr, "bad -time:", err)
			os.Exit(2)
		}
	}

	f := wordframe.FromTime(h, m)
	if *asJSON {
		printJSON(observerproto.NewFrame(0, now, h, m, f, true, "").WithASCII(f))
		return
	}
	d := []rune(*dark)
	if len(d) == 0 {
		d = []rune{' '}
	}
	fmt.Printf("%d:%02d  %s\n\n", h, m, f.Text())
	fmt.Print(wordframe.RenderASCII(f, d[0]))
	fmt.Println()
	for y, row := range f.Rows() {
		fmt.Printf("row %2d  %013b  0x%04X\n", y, reverse13(row), row)
	}
}

// reverse13 mirrors a row mask so the binary print reads left to right.
func reverse13(v uint16) uint16 {
	var out uint16
	for i := 0; i < wordframe.Width; i++ {
		if v&(1<<i) != 0 {
			out |= 1 << (wordframe.Width - 1 - i)
		}
	}
	return out
}

// parseClock accepts H:MM or HH:MM on a 24 hour clock and reduces the hour
// to the twelve hour plate.
func parseClock(s string) (hour, minute int, err error) {
	hs, ms, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("want HH:MM, got %q", s)
	}
	hour, err = strconv.Atoi(hs)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("hour out of range: %q", hs)
	}
	minute, err = strconv.Atoi(ms)
	if err != nil || len(ms) != 2 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("minute out of range: %q", ms)
	}
	return hour % 12, minute, nil
}

func logCmd(args []string) {
	fs := flag.NewFlagSet("log", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	dir := fs.String("dir", "", "minute log dir (default: <data>/minutes)")
	boot := fs.String("boot", "", "only entries from this boot id")
	limit := fs.Int("limit", 0, "print at most the last N entries (0 = all)")
	_ = fs.Parse(args)

	d := strings.TrimSpace(*dir)
	if d == "" {
		d = persistlog.MinuteDir(*dataDir)
	}
	files, err := persistlog.ListFiles(d, persistlog.MinutePrefix)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list:", err)
		os.Exit(1)
	}

	var out []clock.MinuteEntry
	for _, p := range files {
		err := persistlog.ReadMinutes(p, func(e clock.MinuteEntry) error {
			if *boot != "" && e.BootID != *boot {
				return nil
			}
			out = append(out, e)
			if *limit > 0 && len(out) > *limit {
				out = out[1:]
			}
			return nil
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "read:", err)
			os.Exit(1)
		}
	}
	for _, e := range out {
		printJSON(e)
	}
}

func catalogCmd(args []string) {
	fs := flag.NewFlagSet("catalog", flag.ExitOnError)
	plate := fs.Bool("plate", false, "print the plate letters instead")
	_ = fs.Parse(args)

	if *plate {
		for _, row := range wordframe.Plate() {
			fmt.Println(row)
		}
		return
	}
	for _, e := range observerproto.CatalogEntries() {
		printJSON(e)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
