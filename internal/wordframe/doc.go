// Package wordframe turns a time of day into the lit cells of a 13x11 German
// word clock plate.
//
// The plate carries a fixed catalog of words. FromTime picks the words that
// spell the time ("ES IST FÜNF VOR HALB DREI") at one-minute resolution and
// composes them into one bitmask per row:
//
//	f := wordframe.FromTime(2, 25)
//	f.Text()       // "ES IST FÜNF VOR HALB DREI"
//	f.IsSet(4, 3)  // true, the F of FÜNF
//
// Hours are 0..11 and must be reduced by the caller. Minutes past :20 are
// spoken relative to the next hour.
package wordframe
