package wordframe

import (
	"fmt"
	"strings"
)

// Letters printed on the front plate. Cells not covered by any catalog word
// carry filler letters.
var plateRows = [Height]string{
	"ESKISTADREINE",
	"ZWANZIGZWEINS",
	"SIEBENEUNACHT",
	"ZWÖLFÜNFSECHS",
	"VIERTELFOZEHN",
	"RMINUTENXVORM",
	"NACHTHALBQELF",
	"EINSECHSIEBEN",
	"FÜNFZWEIDREIP",
	"TZEHNEUNACHTL",
	"VIERZWÖLFOUHR",
}

var plate [Height][Width]rune

func init() {
	for y, row := range plateRows {
		rs := []rune(row)
		if len(rs) != Width {
			panic(fmt.Sprintf("wordframe: plate row %d has %d letters", y, len(rs)))
		}
		copy(plate[y][:], rs)
	}
}

// Letter returns the letter printed at (x, y). It panics outside the plate.
func Letter(x, y int) rune {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		panic(fmt.Sprintf("wordframe: cell (%d,%d) outside %dx%d plate", x, y, Width, Height))
	}
	return plate[y][x]
}

// Plate returns the plate rows as strings.
func Plate() []string {
	out := make([]string, Height)
	copy(out, plateRows[:])
	return out
}

// Spell returns the letters under r.
func Spell(r Region) string {
	return string(plate[r.Y][r.X : r.X+r.Len])
}

// RenderASCII draws f as Height lines of Width letters. Dark cells are
// replaced by dark.
func RenderASCII(f Frame, dark rune) string {
	var b strings.Builder
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if f.IsSet(x, y) {
				b.WriteRune(plate[y][x])
			} else {
				b.WriteRune(dark)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
