package reload

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitForSubscribers(t *testing.T, b *Broadcaster, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for b.Subscribers() < want {
		if time.Now().After(deadline) {
			t.Fatalf("never reached %d subscribers", want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestReloadSessionReceivesOneMessage(t *testing.T) {
	t.Parallel()

	b := NewBroadcaster()
	srv := httptest.NewServer(&Handler{Broadcaster: b, Logger: discardLogger()})
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(t.Context(), wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	waitForSubscribers(t, b, 1)
	b.Notify()

	typ, data, err := conn.Read(t.Context())
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if typ != websocket.MessageText {
		t.Errorf("expected a text frame, got %v", typ)
	}
	if string(data) != "reload" {
		t.Errorf("expected payload %q, got %q", "reload", data)
	}

	// the server closes after the single message
	if _, _, err := conn.Read(t.Context()); err == nil {
		t.Error("expected the session to close after the reload message")
	}
}

func TestReloadFansOutToEverySession(t *testing.T) {
	t.Parallel()

	b := NewBroadcaster()
	srv := httptest.NewServer(&Handler{Broadcaster: b, Logger: discardLogger()})
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	const sessions = 3
	conns := make([]*websocket.Conn, sessions)
	for i := range conns {
		conn, _, err := websocket.Dial(t.Context(), wsURL, nil)
		if err != nil {
			t.Fatalf("dial %d failed: %v", i, err)
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		conns[i] = conn
	}

	waitForSubscribers(t, b, sessions)
	b.Notify()

	for i, conn := range conns {
		_, data, err := conn.Read(t.Context())
		if err != nil {
			t.Fatalf("session %d read failed: %v", i, err)
		}
		if string(data) != "reload" {
			t.Errorf("session %d got payload %q", i, data)
		}
	}
}

func TestDisconnectedSessionUnsubscribes(t *testing.T) {
	t.Parallel()

	b := NewBroadcaster()
	srv := httptest.NewServer(&Handler{Broadcaster: b, Logger: discardLogger()})
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(t.Context(), wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}

	waitForSubscribers(t, b, 1)
	conn.Close(websocket.StatusNormalClosure, "")

	deadline := time.Now().Add(2 * time.Second)
	for b.Subscribers() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("handler leaked its subscription after client disconnect")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
