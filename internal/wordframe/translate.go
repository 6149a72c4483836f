package wordframe

import (
	"errors"
	"fmt"
)

var (
	// ErrHourRange is the panic value (wrapped) for hours outside 0..11.
	ErrHourRange = errors.New("wordframe: hour must be in [0,11]")
	// ErrMinuteRange is the panic value (wrapped) for minutes outside 0..59.
	ErrMinuteRange = errors.New("wordframe: minute must be in [0,59]")
)

// CheckTime validates a time before it reaches FromTime or SetTime.
func CheckTime(hour, minute int) error {
	if hour < 0 || hour > 11 {
		return fmt.Errorf("%w: got %d", ErrHourRange, hour)
	}
	if minute < 0 || minute > 59 {
		return fmt.Errorf("%w: got %d", ErrMinuteRange, minute)
	}
	return nil
}

// minuteWords maps a folded minute to the words that count it. Fold 0 lights
// nothing. Fold 30 is past the end of the table and also lights nothing; the
// half hour is spelled by HALB alone.
var minuteWords = [21][2]Word{
	0:  {None, None},
	1:  {R0Eine},
	2:  {R1Zwei},
	3:  {R0Drei},
	4:  {R4Vier},
	5:  {R3Fuenf},
	6:  {R3Sechs},
	7:  {R2Sieben},
	8:  {R2Acht},
	9:  {R2Neun},
	10: {R4Zehn},
	11: {R4Elf},
	12: {R3Zwoelf},
	13: {R0Drei, R4Zehn},
	14: {R4Vier, R4Zehn},
	15: {R4Viertel},
	16: {R3Sech, R4Zehn},
	17: {R2Sieb, R4Zehn},
	18: {R2Acht, R4Zehn},
	19: {R2Neun, R4Zehn},
	20: {R1Zwanzig},
}

// hourWords maps the spoken hour to its word. Hour 1 reads "EIN" on the full
// hour and is swapped in by Translate.
var hourWords = [12]Word{
	0:  R10Zwoelf,
	1:  R7Eins,
	2:  R8Zwei,
	3:  R8Drei,
	4:  R10Vier,
	5:  R8Fuenf,
	6:  R7Sechs,
	7:  R7Sieben,
	8:  R9Acht,
	9:  R9Neun,
	10: R9Zehn,
	11: R6Elf,
}

// Fold expresses minute as a distance from the closest anchor that German
// phrasing counts from: the full hour up to :20, the half hour from :21 to
// :39 and the next hour from :40. Minute 30 is returned unchanged.
func Fold(minute int) int {
	switch {
	case minute >= 21 && minute <= 29:
		return 30 - minute
	case minute >= 31 && minute <= 39:
		return minute - 30
	case minute >= 40 && minute <= 59:
		return 60 - minute
	}
	return minute
}

// HourPhase returns the hour that is spoken. From :21 on the phrase is
// anchored on the next hour ("zehn vor halb drei" at 2:20+).
func HourPhase(hour, minute int) int {
	if minute >= 21 {
		return (hour + 1) % 12
	}
	return hour
}

// Phrase is the word chosen for every slot of the sentence
// "ES IST <minutes> <unit> <preposition> <half> <hour> <oclock>".
// Empty slots hold None.
type Phrase struct {
	Minutes     [2]Word
	Unit        Word
	Preposition Word
	Half        Word
	Hour        Word
	Oclock      Word
}

// Translate selects the words for hour (0..11) and minute (0..59).
// Out-of-range input panics.
func Translate(hour, minute int) Phrase {
	if err := CheckTime(hour, minute); err != nil {
		panic(err)
	}

	var p Phrase
	fold := Fold(minute)
	if fold < len(minuteWords) {
		p.Minutes = minuteWords[fold]
	}

	if fold == 1 {
		p.Unit = R5Minute
	} else if minute%5 != 0 {
		p.Unit = R5Minuten
	}

	switch {
	case (minute >= 1 && minute <= 20) || (minute >= 31 && minute <= 39):
		p.Preposition = R6Nach
	case (minute >= 21 && minute <= 29) || (minute >= 40 && minute <= 59):
		p.Preposition = R5Vor
	}

	if minute >= 21 && minute <= 39 {
		p.Half = R6Halb
	}

	phase := HourPhase(hour, minute)
	p.Hour = hourWords[phase]
	if phase == 1 && minute == 0 {
		p.Hour = R7Ein
	}

	if minute == 0 {
		p.Oclock = R10Uhr
	}
	return p
}

// Words lists the lit words of the phrase in slot order, ES and IST first.
func (p Phrase) Words() []Word {
	out := []Word{R0Es, R0Ist}
	for _, w := range []Word{p.Minutes[0], p.Minutes[1], p.Unit, p.Preposition, p.Half, p.Hour, p.Oclock} {
		if w != None {
			out = append(out, w)
		}
	}
	return out
}
