package wordframe

import (
	"fmt"
	"math/bits"
	"sort"
	"strings"
)

// Frame is the lit state of the plate: one bitmask per row plus the set of
// words that produced it. The zero value is a dark plate.
//
// Frame is a value type. Copies are independent snapshots.
type Frame struct {
	mask  [Height]uint16
	words uint64
}

// FromTime returns the frame for hour (0..11) and minute (0..59).
func FromTime(hour, minute int) Frame {
	var f Frame
	f.SetTime(hour, minute)
	return f
}

// SetTime clears f and lights the words for hour (0..11) and minute (0..59).
// Out-of-range input panics; hours must already be reduced mod 12.
func (f *Frame) SetTime(hour, minute int) {
	p := Translate(hour, minute)
	f.Clear()
	for _, w := range p.Words() {
		f.Add(w)
	}
}

// Clear darkens every cell.
func (f *Frame) Clear() {
	*f = Frame{}
}

// Add lights w. Adding an already lit word is a no-op. Adding a word whose
// cells are already taken by a different lit word panics: overlapping
// entries are alternate readings of the same letters and never combine.
func (f *Frame) Add(w Word) {
	r := w.Region()
	if f.Has(w) {
		return
	}
	b := r.bits()
	if f.mask[r.Y]&b != 0 {
		panic(fmt.Sprintf("wordframe: %s at (%d,%d) overlaps a lit word", w, r.X, r.Y))
	}
	f.mask[r.Y] |= b
	f.words |= 1 << w
}

// Has reports whether w is lit.
func (f Frame) Has(w Word) bool {
	return w.Valid() && f.words&(1<<w) != 0
}

// IsSet reports whether cell (x, y) is lit. It panics outside the plate.
func (f Frame) IsSet(x, y int) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		panic(fmt.Sprintf("wordframe: cell (%d,%d) outside %dx%d plate", x, y, Width, Height))
	}
	return (f.mask[y]>>x)&1 == 1
}

// IsLit is IsSet.
func (f Frame) IsLit(x, y int) bool { return f.IsSet(x, y) }

// Rows returns a copy of the row masks. Bit x of Rows()[y] is cell (x, y).
func (f Frame) Rows() [Height]uint16 { return f.mask }

// Lit returns the number of lit cells.
func (f Frame) Lit() int {
	n := 0
	for _, m := range f.mask {
		n += bits.OnesCount16(m)
	}
	return n
}

// Words returns the lit words in reading order (top to bottom, left to right).
func (f Frame) Words() []Word {
	var out []Word
	for w := R0Es; w < numWords; w++ {
		if f.Has(w) {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := catalog[out[i]].Region, catalog[out[j]].Region
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	return out
}

// Text spells the lit words in reading order, e.g. "ES IST DREI UHR".
func (f Frame) Text() string {
	ws := f.Words()
	names := make([]string, len(ws))
	for i, w := range ws {
		names[i] = w.String()
	}
	return strings.Join(names, " ")
}
