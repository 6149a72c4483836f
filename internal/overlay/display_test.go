package overlay

import (
	"sync"
	"testing"

	"wordclock.ai/internal/config"
	"wordclock.ai/internal/wordframe"
)

func TestDisplay_DrawPaintsLitCellsOnly(t *testing.T) {
	d := NewDisplay(Settings{Active: true, Color: 0xFF0000}, 0, 0)
	f := d.SetTime(3, 0)

	bg := RGB{R: 1, G: 2, B: 3}
	c := NewCanvas(wordframe.Width, wordframe.Height)
	c.Fill(bg)

	n := d.Draw(c)
	if n != f.Lit() {
		t.Fatalf("painted %d cells, frame has %d lit", n, f.Lit())
	}
	red := RGB{R: 0xFF}
	for y := 0; y < wordframe.Height; y++ {
		for x := 0; x < wordframe.Width; x++ {
			want := bg
			if f.IsSet(x, y) {
				want = red
			}
			if got := c.At(x, y); got != want {
				t.Fatalf("(%d,%d): got %+v want %+v", x, y, got, want)
			}
		}
	}
}

func TestDisplay_InactivePaintsNothing(t *testing.T) {
	d := NewDisplay(Settings{Active: false, Color: config.DefaultWordColor}, 0, 0)
	d.SetTime(10, 10)
	c := NewCanvas(wordframe.Width, wordframe.Height)
	if n := d.Draw(c); n != 0 {
		t.Fatalf("inactive overlay painted %d cells", n)
	}
	for _, p := range c.Pix {
		if p != (RGB{}) {
			t.Fatalf("canvas modified while inactive")
		}
	}

	d.Apply(Settings{Active: true, Color: config.DefaultWordColor})
	if n := d.Draw(c); n == 0 {
		t.Fatalf("expected cells after activation")
	}
	if got := c.At(0, 0); got != (RGB{R: 0x05, G: 0xCB, B: 0xFF}) {
		t.Fatalf("ES cell: got %+v", got)
	}
}

func TestDisplay_Offset(t *testing.T) {
	d := NewDisplay(DefaultSettings(), 3, 2)
	d.SetTime(0, 0)
	c := NewCanvas(20, 16)
	d.Draw(c)
	if c.At(3, 2) == (RGB{}) {
		t.Fatalf("E of ES should land at (3,2)")
	}
	if c.At(0, 0) != (RGB{}) {
		t.Fatalf("(0,0) is outside the plate and must stay dark")
	}
}

func TestDisplay_TimeBeforeFirstSet(t *testing.T) {
	d := NewDisplay(DefaultSettings(), 0, 0)
	if _, _, ok := d.Time(); ok {
		t.Fatalf("time should be unset")
	}
	d.SetTime(4, 44)
	if h, m, ok := d.Time(); !ok || h != 4 || m != 44 {
		t.Fatalf("time: %d:%d ok=%v", h, m, ok)
	}
}

// A renderer scanning concurrently with rebuilds must always see a complete
// plate: ES and IST are part of every frame.
func TestDisplay_ConcurrentDrawSeesWholeFrames(t *testing.T) {
	d := NewDisplay(DefaultSettings(), 0, 0)
	d.SetTime(0, 0)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			d.SetTime(i%12, i%60)
		}
	}()
	for i := 0; i < 2000; i++ {
		c := NewCanvas(wordframe.Width, wordframe.Height)
		d.Draw(c)
		for x := 0; x < 2; x++ {
			if c.At(x, 0) == (RGB{}) {
				t.Fatalf("observed a half-built frame")
			}
		}
	}
	wg.Wait()
}

func TestCanvas_SetOutOfBoundsIsDropped(t *testing.T) {
	c := NewCanvas(2, 2)
	c.Set(5, 5, RGB{R: 9})
	c.Set(-1, 0, RGB{R: 9})
	for _, p := range c.Pix {
		if p != (RGB{}) {
			t.Fatalf("out-of-bounds write leaked")
		}
	}
	img := c.Image()
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
		t.Fatalf("image bounds: %v", img.Bounds())
	}
}

func TestCanvas_ScaledImage(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(1, 0, RGB{G: 0x80})
	img := c.ScaledImage(3)
	if b := img.Bounds(); b.Dx() != 6 || b.Dy() != 3 {
		t.Fatalf("bounds: %v", b)
	}
	if got := img.RGBAAt(5, 2); got.G != 0x80 || got.A != 0xFF {
		t.Fatalf("scaled pixel: %+v", got)
	}
	if got := img.RGBAAt(2, 2); got.G != 0 {
		t.Fatalf("dark pixel: %+v", got)
	}
	if b := c.Image().Bounds(); b.Dx() != 2 || b.Dy() != 1 {
		t.Fatalf("unscaled bounds: %v", b)
	}
}
