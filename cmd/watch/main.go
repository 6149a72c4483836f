package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/gorilla/websocket"

	"wordclock.ai/internal/observerproto"
)

func main() {
	var (
		url   = flag.String("url", "ws://localhost:8080/v1/observer/ws", "observer ws url")
		ascii = flag.Bool("ascii", true, "print the plate with every frame")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[watch] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	sub := observerproto.SubscribeMsg{
		Type:            observerproto.TypeSubscribe,
		ProtocolVersion: observerproto.Version,
		ASCII:           *ascii,
	}
	if err := conn.WriteJSON(sub); err != nil {
		logger.Fatalf("send SUBSCRIBE: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	go func() {
		<-stop
		_ = conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Printf("server closed the stream")
			}
			return
		}
		var base struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &base); err != nil {
			continue
		}
		if base.Type != observerproto.TypeFrame {
			continue
		}
		var f observerproto.FrameMsg
		if err := json.Unmarshal(msg, &f); err != nil {
			continue
		}
		fmt.Print(formatFrame(f))
	}
}

func formatFrame(f observerproto.FrameMsg) string {
	var b strings.Builder
	state := "on"
	if !f.Active {
		state = "off"
	}
	fmt.Fprintf(&b, "#%d %2d:%02d [%s #%s] %s\n", f.Seq, f.Hour, f.Minute, state, f.WordColor, f.Text)
	if f.ASCII != "" {
		b.WriteString(f.ASCII)
		b.WriteByte('\n')
	}
	return b.String()
}
