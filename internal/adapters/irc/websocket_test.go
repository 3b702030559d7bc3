package irc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	irclib "gopkg.in/irc.v4"

	"github.com/gcibot/gcibot/internal/comms"
)

func TestDial_WebSocketGateway(t *testing.T) {
	received := make(chan string, 8)
	upgrader := websocket.Upgrader{Subprotocols: []string{wsSubprotocol}}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		if conn.Subprotocol() != wsSubprotocol {
			t.Errorf("subprotocol = %q", conn.Subprotocol())
		}

		for i := 0; i < 2; i++ {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- string(data)
		}
		_ = conn.WriteMessage(websocket.TextMessage, []byte(":gw.test 001 gcibot :Welcome"))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(":alice!a@h PRIVMSG #gci :hi over ws\r\n"))

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- string(data)
		}
	}))
	defer srv.Close()

	d := NewDialer(&Config{
		WebSocketURL:    "ws" + strings.TrimPrefix(srv.URL, "http"),
		Nick:            "gcibot",
		RegisterTimeout: 2 * time.Second,
	})
	s, err := d.Dial(context.Background())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	sess := s.(*Session)
	defer sess.Close()

	for _, want := range []string{"NICK", "USER"} {
		select {
		case line := <-received:
			m, err := irclib.ParseMessage(line)
			if err != nil || m.Command != want {
				t.Errorf("frame = %q, want %s", line, want)
			}
			if strings.HasSuffix(line, "\r\n") {
				t.Errorf("frame %q carries CRLF", line)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("no %s frame", want)
		}
	}

	events := make(chan comms.Event, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = sess.Run(ctx, func(ev comms.Event) { events <- ev }) }()

	select {
	case ev := <-events:
		if ev.Room != "#gci" || ev.Text != "hi over ws" {
			t.Errorf("event = %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event over websocket")
	}

	if err := sess.SendText(ctx, "#gci", "reply"); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	select {
	case line := <-received:
		m, err := irclib.ParseMessage(line)
		if err != nil || m.Command != "PRIVMSG" || m.Param(0) != "#gci" || m.Trailing() != "reply" {
			t.Errorf("frame = %q", line)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no PRIVMSG frame")
	}
}
