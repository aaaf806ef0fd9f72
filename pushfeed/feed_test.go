package pushfeed_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	client "driftmap/client"
	"driftmap/client/pushfeed"
)

var upgrader = websocket.Upgrader{}

func newFeedSession(t *testing.T) *client.Session {
	t.Helper()
	cfg := client.DefaultConfig()
	cfg.Tenant = 1
	s := client.NewSession(cfg, nil)
	s.SwitchMap(context.Background(), 5)
	return s
}

func serveFrames(t *testing.T, frames ...string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for _, frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				t.Errorf("write frame: %v", err)
				return
			}
		}
		deadline := time.Now().Add(time.Second)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		conn.ReadMessage()
	}))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestFeedIngestsFramesUntilClose(t *testing.T) {
	server := serveFrames(t,
		`{"ver":1,"type":"snapshot","tenant":1,"sequence":1,"kinds":["character"],"characters":[{"id":1,"tenant":1,"map":5,"name":"c1"}]}`,
		`{"ver":1,"type":"delta","tenant":1,"sequence":2,"characters":[{"id":2,"tenant":1,"map":5,"name":"c2"}]}`,
	)
	session := newFeedSession(t)
	feed := pushfeed.New(dial(t, server), session, pushfeed.Config{})

	if err := feed.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, ok := session.Character(1); !ok {
		t.Fatalf("snapshot frame must reach the session")
	}
	if _, ok := session.Character(2); !ok {
		t.Fatalf("delta frame must reach the session")
	}
}

func TestFeedSkipsUndecodableFramesAndSurfacesHint(t *testing.T) {
	server := serveFrames(t,
		`this is not json`,
		`{"ver":1,"type":"delta","tenant":1,"sequence":1,"characters":[{"id":1,"tenant":1,"map":5}]}`,
	)
	session := newFeedSession(t)

	var hints []client.RefreshHint
	feed := pushfeed.New(dial(t, server), session, pushfeed.Config{
		OnRefreshNeeded: func(hint client.RefreshHint) { hints = append(hints, hint) },
	})
	if err := feed.Run(context.Background()); err != nil {
		t.Fatalf("a malformed frame must not kill the feed: %v", err)
	}
	if _, ok := session.Character(1); !ok {
		t.Fatalf("the well-formed frame after garbage must still apply")
	}
	if len(hints) == 0 {
		t.Fatalf("lost frame must surface a refresh hint")
	}
}

func TestFeedStopsOnContextCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.ReadMessage()
	}))
	t.Cleanup(server.Close)

	session := newFeedSession(t)
	feed := pushfeed.New(dial(t, server), session, pushfeed.Config{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- feed.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("expected context cancellation error")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("feed did not stop after cancel")
	}
}
