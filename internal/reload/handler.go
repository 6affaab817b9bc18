package reload

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

const writeTimeout = 10 * time.Second

// Handler upgrades a browser session to WebSocket, waits for one change
// signal, sends the single "reload" frame and closes. The client script
// reloads the page on receipt.
type Handler struct {
	Broadcaster *Broadcaster
	Logger      *slog.Logger
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// the reload endpoint carries no state worth protecting
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.Logger.Debug("websocket upgrade failed", "err", err)
		return
	}

	ch := h.Broadcaster.Subscribe()
	defer h.Broadcaster.Unsubscribe(ch)

	// CloseRead gives us a context that ends when the client goes away.
	ctx := conn.CloseRead(r.Context())

	select {
	case <-ctx.Done():
		// client disconnected before any change happened
		conn.Close(websocket.StatusNormalClosure, "")
		return
	case <-ch:
	}

	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := conn.Write(wctx, websocket.MessageText, []byte("reload")); err != nil {
		h.Logger.Debug("client disconnected before reload message could be sent", "err", err)
		return
	}

	conn.Close(websocket.StatusNormalClosure, "")
}
