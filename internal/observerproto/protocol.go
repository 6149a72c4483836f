package observerproto

import (
	"time"

	"wordclock.ai/internal/wordframe"
)

// Version is the observer protocol version (separate from the settings API).
const Version = "0.1"

const (
	TypeSubscribe = "SUBSCRIBE"
	TypeFrame     = "FRAME"
)

// Client -> Server. First message on the observer WS connection, and can be re-sent to update options.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`

	// Optional: include an ASCII rendering of the plate with each frame.
	ASCII bool `json:"ascii,omitempty"`
}

// HTTP response for GET /v1/observer/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string         `json:"protocol_version"`
	BootID          string         `json:"boot_id"`
	Width           int            `json:"width"`
	Height          int            `json:"height"`
	Plate           []string       `json:"plate"`
	Catalog         []CatalogEntry `json:"catalog"`
	Active          bool           `json:"active"`
	WordColor       string         `json:"word_color"`
}

type CatalogEntry struct {
	Name     string `json:"name"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Len      int    `json:"len"`
	Reserved bool   `json:"reserved,omitempty"`
}

// CatalogEntries lists the word catalog in wire form.
func CatalogEntries() []CatalogEntry {
	es := wordframe.Catalog()
	out := make([]CatalogEntry, 0, len(es))
	for _, e := range es {
		out = append(out, CatalogEntry{
			Name:     e.Name,
			X:        e.Region.X,
			Y:        e.Region.Y,
			Len:      e.Region.Len,
			Reserved: e.Reserved,
		})
	}
	return out
}

// Server -> Client. Sent on subscribe, on every minute change and on every settings change.
type FrameMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	BootID          string `json:"boot_id,omitempty"`
	Seq             uint64 `json:"seq"`
	Time            string `json:"time"`

	Hour   int      `json:"hour"`
	Minute int      `json:"minute"`
	Text   string   `json:"text"`
	Words  []string `json:"words"`
	Rows   []uint16 `json:"rows"`
	Lit    int      `json:"lit"`

	Active    bool   `json:"active"`
	WordColor string `json:"word_color"`

	ASCII string `json:"ascii,omitempty"`
}

// NewFrame fills a FRAME from a rendered frame.
func NewFrame(seq uint64, now time.Time, hour, minute int, f wordframe.Frame, active bool, color string) FrameMsg {
	ws := f.Words()
	names := make([]string, len(ws))
	for i, w := range ws {
		names[i] = w.String()
	}
	rows := f.Rows()
	return FrameMsg{
		Type:            TypeFrame,
		ProtocolVersion: Version,
		Seq:             seq,
		Time:            now.Format(time.RFC3339),
		Hour:            hour,
		Minute:          minute,
		Text:            f.Text(),
		Words:           names,
		Rows:            rows[:],
		Lit:             f.Lit(),
		Active:          active,
		WordColor:       color,
	}
}

// WithASCII returns a copy of m carrying the plate rendering of f.
func (m FrameMsg) WithASCII(f wordframe.Frame) FrameMsg {
	m.ASCII = wordframe.RenderASCII(f, '.')
	return m
}
