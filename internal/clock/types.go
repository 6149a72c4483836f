package clock

import "wordclock.ai/internal/overlay"

// MinuteLogger receives one entry per rendered minute.
type MinuteLogger interface {
	WriteMinute(entry MinuteEntry) error
}

// MinuteIndex records rendered minutes for later queries.
type MinuteIndex interface {
	RecordMinute(entry MinuteEntry)
}

type MinuteEntry struct {
	Time      string   `json:"time"`
	BootID    string   `json:"boot_id,omitempty"`
	Hour      int      `json:"hour"`
	Minute    int      `json:"minute"`
	Text      string   `json:"text"`
	Words     []string `json:"words"`
	Lit       int      `json:"lit"`
	Active    bool     `json:"active"`
	WordColor string   `json:"word_color"`
}

// ObserverJoinRequest registers a read-only observer session that receives a
// FRAME for the current plate and every later change.
//
// All observer state is maintained by the runner goroutine.
type ObserverJoinRequest struct {
	SessionID string
	FrameOut  chan []byte
	ASCII     bool
}

// ObserverSubscribeRequest updates an existing observer session.
type ObserverSubscribeRequest struct {
	SessionID string
	ASCII     bool
}

type settingsReq struct {
	settings overlay.Settings
	done     chan struct{}
}

type observerClient struct {
	id       string
	frameOut chan []byte
	ascii    bool
}
