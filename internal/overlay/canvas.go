package overlay

import (
	"image"
	"image/color"

	"wordclock.ai/internal/config"
)

type RGB struct {
	R, G, B uint8
}

func FromColor(c config.Color) RGB {
	r, g, b := c.RGB()
	return RGB{R: r, G: g, B: b}
}

// Canvas is the frame buffer of a W×H LED matrix, row-major. Effects draw the
// background; the word overlay is painted on top right before the frame is
// shown.
type Canvas struct {
	W, H int
	Pix  []RGB
}

func NewCanvas(w, h int) *Canvas {
	return &Canvas{W: w, H: h, Pix: make([]RGB, w*h)}
}

func (c *Canvas) InBounds(x, y int) bool {
	return x >= 0 && x < c.W && y >= 0 && y < c.H
}

// Set writes one pixel. Writes outside the matrix are dropped.
func (c *Canvas) Set(x, y int, col RGB) {
	if !c.InBounds(x, y) {
		return
	}
	c.Pix[y*c.W+x] = col
}

func (c *Canvas) At(x, y int) RGB {
	if !c.InBounds(x, y) {
		return RGB{}
	}
	return c.Pix[y*c.W+x]
}

func (c *Canvas) Fill(col RGB) {
	for i := range c.Pix {
		c.Pix[i] = col
	}
}

// Image converts the canvas to an RGBA image with one pixel per LED.
func (c *Canvas) Image() *image.RGBA { return c.ScaledImage(1) }

// ScaledImage draws every LED as a scale×scale block.
func (c *Canvas) ScaledImage(scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, c.W*scale, c.H*scale))
	for y := 0; y < c.H; y++ {
		for x := 0; x < c.W; x++ {
			p := c.Pix[y*c.W+x]
			col := color.RGBA{R: p.R, G: p.G, B: p.B, A: 0xFF}
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					img.SetRGBA(x*scale+dx, y*scale+dy, col)
				}
			}
		}
	}
	return img
}
