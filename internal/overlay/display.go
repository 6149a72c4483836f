package overlay

import (
	"sync"

	"wordclock.ai/internal/config"
	"wordclock.ai/internal/wordframe"
)

type Settings struct {
	Active bool
	Color  config.Color
}

func DefaultSettings() Settings {
	return Settings{Active: true, Color: config.DefaultWordColor}
}

// Display owns the plate shown by the clock. One lock covers both a full
// rebuild (SetTime) and a full compositing pass (Draw), so a renderer never
// sees a half-cleared plate.
type Display struct {
	mu       sync.RWMutex
	frame    wordframe.Frame
	hour     int
	minute   int
	hasTime  bool
	settings Settings

	offX, offY int
}

// NewDisplay places the plate at (offX, offY) of the target matrix.
func NewDisplay(s Settings, offX, offY int) *Display {
	return &Display{settings: s, offX: offX, offY: offY}
}

// SetTime rebuilds the plate for hour (0..11) and minute (0..59).
func (d *Display) SetTime(hour, minute int) wordframe.Frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frame.SetTime(hour, minute)
	d.hour, d.minute, d.hasTime = hour, minute, true
	return d.frame
}

// Frame returns a copy of the current plate.
func (d *Display) Frame() wordframe.Frame {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.frame
}

// Time returns the last time passed to SetTime. ok is false before the first
// call.
func (d *Display) Time() (hour, minute int, ok bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.hour, d.minute, d.hasTime
}

func (d *Display) Settings() Settings {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.settings
}

func (d *Display) Apply(s Settings) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.settings = s
}

// Draw paints every lit cell with the word color and returns the number of
// pixels written. Unlit cells keep whatever the canvas already holds. Nothing
// is painted while the overlay is inactive.
func (d *Display) Draw(c *Canvas) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.settings.Active {
		return 0
	}
	col := FromColor(d.settings.Color)
	n := 0
	for y := 0; y < wordframe.Height; y++ {
		for x := 0; x < wordframe.Width; x++ {
			if d.frame.IsSet(x, y) {
				c.Set(x+d.offX, y+d.offY, col)
				n++
			}
		}
	}
	return n
}
