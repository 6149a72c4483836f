package observer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"wordclock.ai/internal/clock"
	"wordclock.ai/internal/observerproto"
	"wordclock.ai/internal/overlay"
	"wordclock.ai/internal/protocol"
	"wordclock.ai/internal/wordframe"
)

// Clock is the part of clock.Runner the observer endpoints need.
type Clock interface {
	ObserverJoin() chan<- clock.ObserverJoinRequest
	ObserverSubscribe() chan<- clock.ObserverSubscribeRequest
	ObserverLeave() chan<- string
	Display() *overlay.Display
	BootID() string
}

type Server struct {
	clock Clock
	log   *log.Logger

	// AllowRemote lifts the loopback-only restriction.
	AllowRemote bool

	upgrader websocket.Upgrader
	nextID   atomic.Uint64
}

func NewServer(c Clock, logger *log.Logger) *Server {
	return &Server{
		clock: c,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) allowed(r *http.Request) bool {
	return s.AllowRemote || isLoopbackRemote(r.RemoteAddr)
}

func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !s.allowed(r) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		st := s.clock.Display().Settings()
		resp := observerproto.BootstrapResponse{
			ProtocolVersion: observerproto.Version,
			BootID:          s.clock.BootID(),
			Width:           wordframe.Width,
			Height:          wordframe.Height,
			Plate:           wordframe.Plate(),
			Catalog:         observerproto.CatalogEntries(),
			Active:          st.Active,
			WordColor:       st.Color.Hex(),
		}

		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !s.allowed(r) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send SUBSCRIBE first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		sub, err := decodeSubscribe(msg)
		if err != nil {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()), time.Now().Add(time.Second))
			return
		}

		sid := fmt.Sprintf("O%d", s.nextID.Add(1))
		frameOut := make(chan []byte, 8)

		joinReq := clock.ObserverJoinRequest{
			SessionID: sid,
			FrameOut:  frameOut,
			ASCII:     sub.ASCII,
		}
		select {
		case s.clock.ObserverJoin() <- joinReq:
		default:
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server busy"), time.Now().Add(time.Second))
			return
		}
		if s.log != nil {
			s.log.Printf("observer %s joined from %s", sid, r.RemoteAddr)
		}
		defer func() {
			select {
			case s.clock.ObserverLeave() <- sid:
			default:
				// Runner is stopping; nothing else to do.
			}
		}()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case b, ok := <-frameOut:
					if !ok {
						writeErr <- nil
						_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"), time.Now().Add(time.Second))
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		// Reader loop: allow SUBSCRIBE updates.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			sub, err := decodeSubscribe(msg)
			if err != nil {
				continue
			}
			req := clock.ObserverSubscribeRequest{SessionID: sid, ASCII: sub.ASCII}
			select {
			case s.clock.ObserverSubscribe() <- req:
			default:
				// Drop updates under load; the client may resend.
			}
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		// Best-effort wait for the writer to stop so it doesn't outlive conn.
		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func decodeSubscribe(msg []byte) (observerproto.SubscribeMsg, error) {
	var sub observerproto.SubscribeMsg
	if err := protocol.ValidateJSON(protocol.SchemaSubscribe, msg); err != nil {
		return sub, fmt.Errorf("bad subscribe")
	}
	if err := json.Unmarshal(msg, &sub); err != nil {
		return sub, fmt.Errorf("bad subscribe")
	}
	if sub.Type != observerproto.TypeSubscribe || sub.ProtocolVersion != observerproto.Version {
		return sub, fmt.Errorf("expected SUBSCRIBE")
	}
	return sub, nil
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
