package settings

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"wordclock.ai/internal/config"
	"wordclock.ai/internal/overlay"
	"wordclock.ai/internal/protocol"
)

// Store persists settings. A nil Store keeps changes in memory only.
type Store interface {
	SaveSettings(ctx context.Context, s overlay.Settings) error
}

// Clock applies settings to the running display.
type Clock interface {
	ApplySettings(ctx context.Context, s overlay.Settings) error
	Display() *overlay.Display
}

const maxBody = 4 * 1024

type Server struct {
	clock Clock
	store Store
	log   *log.Logger

	// AllowRemote lifts the loopback-only restriction on PUT.
	AllowRemote bool

	// Serializes read-modify-write of partial updates.
	mu sync.Mutex
}

func NewServer(c Clock, store Store, logger *log.Logger) *Server {
	return &Server{clock: c, store: store, log: logger}
}

// Handler serves GET and PUT /v1/settings.
func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(rw, http.StatusOK, toMsg(s.clock.Display().Settings()))
		case http.MethodPut, http.MethodPost:
			if !s.AllowRemote && !isLoopbackRemote(r.RemoteAddr) {
				writeError(rw, http.StatusForbidden, protocol.ErrForbidden, "settings are writable from loopback only")
				return
			}
			s.put(rw, r)
		default:
			rw.Header().Set("Allow", "GET, PUT")
			rw.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) put(rw http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
	if err != nil {
		writeError(rw, http.StatusBadRequest, protocol.ErrBadRequest, "read body: "+err.Error())
		return
	}
	if len(body) > maxBody {
		writeError(rw, http.StatusRequestEntityTooLarge, protocol.ErrBadRequest, "body too large")
		return
	}
	if err := protocol.ValidateJSON(protocol.SchemaSettings, body); err != nil {
		writeError(rw, http.StatusBadRequest, protocol.ErrProtoBadRequest, err.Error())
		return
	}
	var msg protocol.SettingsMsg
	if err := json.Unmarshal(body, &msg); err != nil {
		writeError(rw, http.StatusBadRequest, protocol.ErrProtoBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.clock.Display().Settings()
	if msg.Active != nil {
		next.Active = *msg.Active
	}
	if msg.WordColor != "" {
		c, err := config.ParseColor(msg.WordColor)
		if err != nil {
			writeError(rw, http.StatusBadRequest, protocol.ErrBadColor, err.Error())
			return
		}
		next.Color = c
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if s.store != nil {
		if err := s.store.SaveSettings(ctx, next); err != nil {
			if s.log != nil {
				s.log.Printf("save settings: %v", err)
			}
			writeError(rw, http.StatusInternalServerError, protocol.ErrInternal, "save settings failed")
			return
		}
	}
	if err := s.clock.ApplySettings(ctx, next); err != nil {
		writeError(rw, http.StatusServiceUnavailable, protocol.ErrBusy, err.Error())
		return
	}
	if s.log != nil {
		s.log.Printf("settings updated: active=%t word_color=%s", next.Active, next.Color.Hex())
	}
	writeJSON(rw, http.StatusOK, toMsg(next))
}

func toMsg(st overlay.Settings) protocol.SettingsMsg {
	active := st.Active
	return protocol.SettingsMsg{
		Type:            protocol.TypeSettings,
		ProtocolVersion: protocol.Version,
		Active:          &active,
		WordColor:       st.Color.Hex(),
	}
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

func writeError(rw http.ResponseWriter, status int, code, message string) {
	writeJSON(rw, status, protocol.NewError(code, message))
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
