package wordframe

// Plate dimensions (LEDs per row, LEDs per column).
const (
	Width  = 13
	Height = 11
)

// Region is a horizontal run of Len cells starting at column X on row Y.
type Region struct {
	X   int `json:"x"`
	Y   int `json:"y"`
	Len int `json:"len"`
}

func (r Region) bits() uint16 {
	return uint16(1<<r.Len-1) << r.X
}

// Overlaps reports whether r and o share at least one cell.
func (r Region) Overlaps(o Region) bool {
	return r.Y == o.Y && r.X < o.X+o.Len && o.X < r.X+r.Len
}

// Word identifies one entry of the catalog. The row number is part of the
// name because several words appear on more than one row.
type Word uint8

const (
	None Word = iota

	R0Es
	R0Ist
	R0Drei
	R0Ein
	R0Eine

	R1Zwanzig
	R1Zwei
	R1Ein
	R1Eins

	R2Sieb
	R2Sieben
	R2Neun
	R2Nach
	R2Nacht
	R2Acht

	R3Zwoelf
	R3Fuenf
	R3Sech
	R3Sechs

	R4Vier
	R4Viertel
	R4Elf
	R4Zehn

	R5Minute
	R5Minuten
	R5Vor

	R6Nach
	R6Nacht
	R6Acht
	R6Halb
	R6Elf

	R7Ein
	R7Eins
	R7Sechs
	R7Sieben

	R8Fuenf
	R8Zwei
	R8Drei

	R9Zehn
	R9Neun
	R9Nacht
	R9Acht

	R10Vier
	R10Zwoelf
	R10Uhr

	numWords
)

// Entry is the catalog record of a word.
//
// Reserved entries are alternate readings of cells that the translation never
// selects. They are kept so the catalog describes every word printed on the
// plate, not only the ones the clock currently uses.
type Entry struct {
	Word     Word   `json:"-"`
	Name     string `json:"name"`
	Region   Region `json:"region"`
	Reserved bool   `json:"reserved,omitempty"`
}

var catalog = [numWords]Entry{
	//                              x   y  len
	R0Es:   {Name: "ES", Region: Region{0, 0, 2}},
	R0Ist:  {Name: "IST", Region: Region{3, 0, 3}},
	R0Drei: {Name: "DREI", Region: Region{7, 0, 4}},
	R0Ein:  {Name: "EIN", Region: Region{9, 0, 3}, Reserved: true},
	R0Eine: {Name: "EINE", Region: Region{9, 0, 4}},

	R1Zwanzig: {Name: "ZWANZIG", Region: Region{0, 1, 7}},
	R1Zwei:    {Name: "ZWEI", Region: Region{7, 1, 4}},
	R1Ein:     {Name: "EIN", Region: Region{9, 1, 3}, Reserved: true},
	R1Eins:    {Name: "EINS", Region: Region{9, 1, 4}, Reserved: true},

	R2Sieb:   {Name: "SIEB", Region: Region{0, 2, 4}},
	R2Sieben: {Name: "SIEBEN", Region: Region{0, 2, 6}},
	R2Neun:   {Name: "NEUN", Region: Region{5, 2, 4}},
	R2Nach:   {Name: "NACH", Region: Region{8, 2, 4}, Reserved: true},
	R2Nacht:  {Name: "NACHT", Region: Region{8, 2, 5}, Reserved: true},
	R2Acht:   {Name: "ACHT", Region: Region{9, 2, 4}},

	R3Zwoelf: {Name: "ZWÖLF", Region: Region{0, 3, 5}},
	R3Fuenf:  {Name: "FÜNF", Region: Region{4, 3, 4}},
	R3Sech:   {Name: "SECH", Region: Region{8, 3, 4}},
	R3Sechs:  {Name: "SECHS", Region: Region{8, 3, 5}},

	R4Vier:    {Name: "VIER", Region: Region{0, 4, 4}},
	R4Viertel: {Name: "VIERTEL", Region: Region{0, 4, 7}},
	R4Elf:     {Name: "ELF", Region: Region{5, 4, 3}},
	R4Zehn:    {Name: "ZEHN", Region: Region{9, 4, 4}},

	R5Minute:  {Name: "MINUTE", Region: Region{1, 5, 6}},
	R5Minuten: {Name: "MINUTEN", Region: Region{1, 5, 7}},
	R5Vor:     {Name: "VOR", Region: Region{9, 5, 3}},

	R6Nach:  {Name: "NACH", Region: Region{0, 6, 4}},
	R6Nacht: {Name: "NACHT", Region: Region{0, 6, 5}, Reserved: true},
	R6Acht:  {Name: "ACHT", Region: Region{1, 6, 4}, Reserved: true},
	R6Halb:  {Name: "HALB", Region: Region{5, 6, 4}},
	R6Elf:   {Name: "ELF", Region: Region{10, 6, 3}},

	R7Ein:    {Name: "EIN", Region: Region{0, 7, 3}},
	R7Eins:   {Name: "EINS", Region: Region{0, 7, 4}},
	R7Sechs:  {Name: "SECHS", Region: Region{3, 7, 5}},
	R7Sieben: {Name: "SIEBEN", Region: Region{7, 7, 6}},

	R8Fuenf: {Name: "FÜNF", Region: Region{0, 8, 4}},
	R8Zwei:  {Name: "ZWEI", Region: Region{4, 8, 4}},
	R8Drei:  {Name: "DREI", Region: Region{8, 8, 4}},

	R9Zehn:  {Name: "ZEHN", Region: Region{1, 9, 4}},
	R9Neun:  {Name: "NEUN", Region: Region{4, 9, 4}},
	R9Nacht: {Name: "NACHT", Region: Region{7, 9, 5}, Reserved: true},
	R9Acht:  {Name: "ACHT", Region: Region{8, 9, 4}},

	R10Vier:   {Name: "VIER", Region: Region{0, 10, 4}},
	R10Zwoelf: {Name: "ZWÖLF", Region: Region{4, 10, 5}},
	R10Uhr:    {Name: "UHR", Region: Region{10, 10, 3}},
}

func init() {
	for i := range catalog {
		catalog[i].Word = Word(i)
	}
}

// Valid reports whether w names a catalog entry.
func (w Word) Valid() bool {
	return w > None && w < numWords
}

// Entry returns the catalog record of w. It panics if w is not Valid.
func (w Word) Entry() Entry {
	if !w.Valid() {
		panic("wordframe: unknown word")
	}
	return catalog[w]
}

// Region returns the cells covered by w.
func (w Word) Region() Region { return w.Entry().Region }

func (w Word) String() string {
	if !w.Valid() {
		return "NONE"
	}
	return catalog[w].Name
}

// Catalog returns every word on the plate in declaration order, reserved
// alternates included.
func Catalog() []Entry {
	out := make([]Entry, 0, numWords-1)
	for w := R0Es; w < numWords; w++ {
		out = append(out, catalog[w])
	}
	return out
}
