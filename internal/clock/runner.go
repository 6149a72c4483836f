package clock

import (
	"context"
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"wordclock.ai/internal/observerproto"
	"wordclock.ai/internal/overlay"
	"wordclock.ai/internal/wordframe"
)

type Config struct {
	PollInterval time.Duration
	BootID       string
}

// Runner polls a Source and rebuilds the display whenever the shown minute
// changes. It owns the observer sessions; everything else talks to it over
// channels.
type Runner struct {
	cfg     Config
	src     Source
	display *overlay.Display
	logger  *log.Logger

	minuteLog MinuteLogger
	index     MinuteIndex

	observerJoin  chan ObserverJoinRequest
	observerSub   chan ObserverSubscribeRequest
	observerLeave chan string
	settings      chan settingsReq
	stop          chan struct{}

	observers map[string]*observerClient

	// Loop goroutine only.
	now     time.Time
	hour    int
	minute  int
	hasTime bool
	seq     uint64

	framesRendered atomic.Uint64
	framesSent     atomic.Uint64
	framesDropped  atomic.Uint64
	observerCount  atomic.Int64
	logErrors      atomic.Uint64
}

func New(cfg Config, src Source, display *overlay.Display, logger *log.Logger) *Runner {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[clock] ", log.LstdFlags)
	}
	return &Runner{
		cfg:     cfg,
		src:     src,
		display: display,
		logger:  logger,

		observerJoin:  make(chan ObserverJoinRequest, 16),
		observerSub:   make(chan ObserverSubscribeRequest, 16),
		observerLeave: make(chan string, 16),
		settings:      make(chan settingsReq),
		stop:          make(chan struct{}),

		observers: map[string]*observerClient{},
	}
}

func (r *Runner) SetMinuteLogger(l MinuteLogger) { r.minuteLog = l }
func (r *Runner) SetMinuteIndex(ix MinuteIndex)  { r.index = ix }

func (r *Runner) ObserverJoin() chan<- ObserverJoinRequest           { return r.observerJoin }
func (r *Runner) ObserverSubscribe() chan<- ObserverSubscribeRequest { return r.observerSub }
func (r *Runner) ObserverLeave() chan<- string                       { return r.observerLeave }

func (r *Runner) Display() *overlay.Display { return r.display }
func (r *Runner) BootID() string            { return r.cfg.BootID }

func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()
	defer r.closeObservers()

	r.Step()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.stop:
			return nil
		case req := <-r.observerJoin:
			r.handleObserverJoin(req)
		case req := <-r.observerSub:
			r.handleObserverSubscribe(req)
		case id := <-r.observerLeave:
			r.handleObserverLeave(id)
		case req := <-r.settings:
			r.handleSettings(req)
		case <-ticker.C:
			r.Step()
		}
	}
}

func (r *Runner) Stop() { close(r.stop) }

// ApplySettings hands s to the loop and waits until observers have been
// sent the recoloured frame.
func (r *Runner) ApplySettings(ctx context.Context, s overlay.Settings) error {
	req := settingsReq{settings: s, done: make(chan struct{})}
	select {
	case r.settings <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-req.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Step reads the source once and rebuilds the plate if the shown minute
// moved. It reports whether a new frame was rendered. Step must only be
// called from the goroutine running the loop (or instead of Run, in tests).
func (r *Runner) Step() bool {
	now := r.src.Now()
	h, m := ClockFace(now)
	if r.hasTime && h == r.hour && m == r.minute {
		return false
	}
	r.now, r.hour, r.minute, r.hasTime = now, h, m, true

	f := r.display.SetTime(h, m)
	r.framesRendered.Add(1)
	s := r.display.Settings()

	r.recordMinute(now, h, m, f, s)
	r.broadcast(f, s)
	return true
}

func (r *Runner) handleSettings(req settingsReq) {
	r.display.Apply(req.settings)
	if r.hasTime {
		r.broadcast(r.display.Frame(), req.settings)
	}
	close(req.done)
}

func (r *Runner) recordMinute(now time.Time, h, m int, f wordframe.Frame, s overlay.Settings) {
	if r.minuteLog == nil && r.index == nil {
		return
	}
	ws := f.Words()
	names := make([]string, len(ws))
	for i, w := range ws {
		names[i] = w.String()
	}
	e := MinuteEntry{
		Time:      now.Format(time.RFC3339),
		BootID:    r.cfg.BootID,
		Hour:      h,
		Minute:    m,
		Text:      f.Text(),
		Words:     names,
		Lit:       f.Lit(),
		Active:    s.Active,
		WordColor: s.Color.Hex(),
	}
	if r.minuteLog != nil {
		if err := r.minuteLog.WriteMinute(e); err != nil {
			r.logErrors.Add(1)
			r.logger.Printf("minute log: %v", err)
		}
	}
	if r.index != nil {
		r.index.RecordMinute(e)
	}
}

func (r *Runner) frameMsg(f wordframe.Frame, s overlay.Settings) observerproto.FrameMsg {
	r.seq++
	msg := observerproto.NewFrame(r.seq, r.now, r.hour, r.minute, f, s.Active, s.Color.Hex())
	msg.BootID = r.cfg.BootID
	return msg
}

func (r *Runner) broadcast(f wordframe.Frame, s overlay.Settings) {
	if len(r.observers) == 0 {
		return
	}
	msg := r.frameMsg(f, s)
	var plain, ascii []byte
	for _, c := range r.observers {
		var b []byte
		if c.ascii {
			if ascii == nil {
				ascii = mustMarshal(msg.WithASCII(f))
			}
			b = ascii
		} else {
			if plain == nil {
				plain = mustMarshal(msg)
			}
			b = plain
		}
		r.send(c, b)
	}
}

func (r *Runner) sendCurrent(c *observerClient) {
	if !r.hasTime {
		return
	}
	f := r.display.Frame()
	msg := r.frameMsg(f, r.display.Settings())
	if c.ascii {
		msg = msg.WithASCII(f)
	}
	r.send(c, mustMarshal(msg))
}

func (r *Runner) send(c *observerClient, b []byte) {
	if sendLatest(c.frameOut, b) {
		r.framesSent.Add(1)
	} else {
		r.framesDropped.Add(1)
	}
}

func (r *Runner) handleObserverJoin(req ObserverJoinRequest) {
	if req.SessionID == "" || req.FrameOut == nil {
		return
	}
	// Replace existing session id if any.
	if old := r.observers[req.SessionID]; old != nil {
		close(old.frameOut)
	}
	c := &observerClient{id: req.SessionID, frameOut: req.FrameOut, ascii: req.ASCII}
	r.observers[req.SessionID] = c
	r.observerCount.Store(int64(len(r.observers)))
	r.sendCurrent(c)
}

func (r *Runner) handleObserverSubscribe(req ObserverSubscribeRequest) {
	c := r.observers[req.SessionID]
	if c == nil {
		return
	}
	c.ascii = req.ASCII
	r.sendCurrent(c)
}

func (r *Runner) handleObserverLeave(sessionID string) {
	c := r.observers[sessionID]
	if c == nil {
		return
	}
	delete(r.observers, sessionID)
	close(c.frameOut)
	r.observerCount.Store(int64(len(r.observers)))
}

func (r *Runner) closeObservers() {
	for id, c := range r.observers {
		close(c.frameOut)
		delete(r.observers, id)
	}
	r.observerCount.Store(0)
}

// sendLatest enqueues b, dropping the oldest queued frame when the observer
// is behind. Only the newest plate matters.
func sendLatest(ch chan []byte, b []byte) bool {
	select {
	case ch <- b:
		return true
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
		return true
	default:
		return false
	}
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
