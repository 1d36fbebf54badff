package httpserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/lazy-eggplant/vs.logger/internal/broker"
	logpkg "github.com/lazy-eggplant/vs.logger/pkg/log"
)

// sendTimeout bounds one websocket write. A viewer that cannot drain within
// it is treated as dead and removed by the broker.
const sendTimeout = 5 * time.Second

// wsSubscriber adapts one websocket connection to the broker's subscriber
// contract. Each payload goes out as one text frame, bytes unmodified.
type wsSubscriber struct {
	conn      *websocket.Conn
	closeOnce sync.Once
}

func (w *wsSubscriber) Send(payload []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	return w.conn.Write(ctx, websocket.MessageText, payload)
}

func (w *wsSubscriber) Close() error {
	w.closeOnce.Do(func() {
		_ = w.conn.Close(websocket.StatusNormalClosure, "")
	})
	return nil
}

// handleSubscribe upgrades the connection, optionally replays the history
// tail (?replay=N), then registers the viewer with the broker (?filter=expr
// attaches a CEL filter). Replayed payloads precede any live delivery; a
// viewer never receives events relayed before it connected unless it asked
// for them.
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.diag.Debug("websocket accept failed", logpkg.Err(err))
		return
	}
	sub := &wsSubscriber{conn: conn}

	if n := replayCount(r); n > 0 {
		if h := s.broker.History(); h != nil {
			if err := h.ReplayRecent(n, sub.Send); err != nil {
				_ = sub.Close()
				return
			}
		}
	}

	var opts []broker.SubscribeOption
	if expr := r.URL.Query().Get("filter"); expr != "" {
		opts = append(opts, broker.WithFilter(expr))
	}
	id, err := s.broker.Register(sub, opts...)
	if err != nil {
		s.diag.Debug("subscription rejected", logpkg.Err(err))
		_ = conn.Close(websocket.StatusPolicyViolation, "bad subscription")
		return
	}

	// Inbound frames are ignored; the read loop only detects disconnect.
	ctx := r.Context()
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			break
		}
	}
	s.broker.Unregister(id)
}
