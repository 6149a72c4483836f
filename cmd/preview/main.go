package main

import (
	"context"
	"errors"
	"flag"
	"image/color"
	"log"
	"os"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"wordclock.ai/internal/clock"
	"wordclock.ai/internal/config"
	"wordclock.ai/internal/overlay"
	"wordclock.ai/internal/wordframe"
)

const (
	cellSize = 36
	margin   = 24
	footer   = 28
)

func main() {
	var (
		configPath = flag.String("config", "./configs/wordclock.yaml", "path to wordclock.yaml")
		start      = flag.String("time", "", "start time HH:MM (default: now)")
		speed      = flag.Float64("speed", 1, "clock speed factor (60 = one minute per second)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[preview] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Fatalf("load config: %v", err)
		}
		cfg = config.Defaults()
		cfg.Normalize()
	}
	loc, err := cfg.Location()
	if err != nil {
		logger.Fatalf("timezone: %v", err)
	}

	src, err := newScaledSource(time.Now().In(loc), *start, *speed)
	if err != nil {
		logger.Fatalf("bad -time: %v", err)
	}

	display := overlay.NewDisplay(overlay.Settings{Active: cfg.Clock.Active, Color: config.ColorOrDefault(cfg.Clock.WordColor)}, cfg.Display.OffsetX, cfg.Display.OffsetY)
	poll := cfg.PollInterval()
	if *speed > 1 {
		poll = time.Duration(float64(poll) / *speed)
		if poll < 10*time.Millisecond {
			poll = 10 * time.Millisecond
		}
	}
	runner := clock.New(clock.Config{PollInterval: poll, BootID: "preview"}, src, display, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = runner.Run(ctx) }()

	g := &game{
		display: display,
		canvas:  overlay.NewCanvas(cfg.Display.Width, cfg.Display.Height),
		offX:    cfg.Display.OffsetX,
		offY:    cfg.Display.OffsetY,
	}
	w, h := g.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("wordclock preview")
	ebiten.SetTPS(cfg.Display.FrameRateHz)
	if err := ebiten.RunGame(g); err != nil {
		logger.Fatalf("run: %v", err)
	}
}

// scaledSource runs a clock from start at factor times real speed.
type scaledSource struct {
	start  time.Time
	begin  time.Time
	factor float64
}

func newScaledSource(now time.Time, hhmm string, factor float64) (*scaledSource, error) {
	if factor <= 0 {
		factor = 1
	}
	start := now
	if s := strings.TrimSpace(hhmm); s != "" {
		t, err := time.ParseInLocation("15:04", s, now.Location())
		if err != nil {
			return nil, err
		}
		start = time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	}
	return &scaledSource{start: start, begin: time.Now(), factor: factor}, nil
}

func (s *scaledSource) Now() time.Time {
	return s.at(time.Now())
}

func (s *scaledSource) at(real time.Time) time.Time {
	elapsed := real.Sub(s.begin)
	return s.start.Add(time.Duration(float64(elapsed) * s.factor))
}

type game struct {
	display *overlay.Display
	canvas  *overlay.Canvas

	offX, offY int
}

func (g *game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	return nil
}

var (
	background = color.RGBA{R: 0x10, G: 0x10, B: 0x14, A: 0xFF}
	unlit      = color.RGBA{R: 0x26, G: 0x26, B: 0x2C, A: 0xFF}
)

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(background)

	g.canvas.Fill(overlay.RGB{})
	g.display.Draw(g.canvas)

	for y := 0; y < g.canvas.H; y++ {
		for x := 0; x < g.canvas.W; x++ {
			px := float32(margin + x*cellSize)
			py := float32(margin + y*cellSize)
			p := g.canvas.At(x, y)
			clr := color.RGBA{R: p.R, G: p.G, B: p.B, A: 0xFF}
			if p == (overlay.RGB{}) {
				clr = unlit
			}
			vector.FillRect(screen, px+2, py+2, cellSize-4, cellSize-4, clr, false)

			lx, ly := x-g.offX, y-g.offY
			if lx >= 0 && lx < wordframe.Width && ly >= 0 && ly < wordframe.Height {
				ebitenutil.DebugPrintAt(screen, letterLabel(wordframe.Letter(lx, ly)), int(px)+cellSize/2-3, int(py)+cellSize/2-8)
			}
		}
	}

	h, m, ok := g.display.Time()
	status := "waiting for clock"
	if ok {
		status = strings.ReplaceAll(g.display.Frame().Text(), "Ü", "UE")
		status = strings.ReplaceAll(status, "Ö", "OE")
		status = time.Date(0, 1, 1, h, m, 0, 0, time.UTC).Format("3:04") + "  " + status
	}
	if !g.display.Settings().Active {
		status += "  (inactive)"
	}
	ebitenutil.DebugPrintAt(screen, status, margin, margin+g.canvas.H*cellSize+8)
}

// letterLabel maps plate letters onto the debug font, which is ASCII only.
func letterLabel(r rune) string {
	switch r {
	case 'Ö':
		return "O"
	case 'Ü':
		return "U"
	}
	return string(r)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return 2*margin + g.canvas.W*cellSize, 2*margin + g.canvas.H*cellSize + footer
}
