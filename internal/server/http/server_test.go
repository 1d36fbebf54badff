package httpserver

import (
	"compress/gzip"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/lazy-eggplant/vs.logger/internal/broker"
	logpkg "github.com/lazy-eggplant/vs.logger/pkg/log"
)

func newTestServer(t *testing.T, history *broker.History) (*Server, string) {
	t.Helper()
	addr := filepath.Join(t.TempDir(), "relay.0")
	b := broker.New(broker.Options{Address: addr, History: history, Diag: logpkg.NewNopLogger()})
	if err := b.Start(); err != nil {
		t.Fatalf("start broker: %v", err)
	}
	t.Cleanup(b.Stop)
	return New(b, logpkg.NewNopLogger()), addr
}

func wsURL(ts *httptest.Server, suffix string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + suffix
}

func dialWS(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readWS(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return string(data)
}

func sendRelay(t *testing.T, addr string, payload string) {
	t.Helper()
	conn, err := net.DialUnix("unixgram", nil, &net.UnixAddr{Name: addr, Net: "unixgram"})
	if err != nil {
		t.Fatalf("dial relay: %v", err)
	}
	defer conn.Close()
	if _, err := conn.Write([]byte(payload)); err != nil {
		t.Fatalf("send: %v", err)
	}
}

func waitSubscribers(t *testing.T, s *Server, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.broker.Subscribers() == n {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d subscribers, have %d", n, s.broker.Subscribers())
}

func TestHealthHandler(t *testing.T) {
	s, _ := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("status: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("body: %s", w.Body.String())
	}
}

func TestViewerPageServed(t *testing.T) {
	s, _ := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("status: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<title>") {
		t.Fatal("viewer page not served")
	}
}

func TestWebSocketDeliversRelayedPayloads(t *testing.T) {
	s, relay := newTestServer(t, nil)
	ts := httptest.NewServer(s.srv.Handler)
	defer ts.Close()

	conn := dialWS(t, wsURL(ts, "/ws"))
	// Registration is asynchronous relative to Dial returning; wait for it.
	waitSubscribers(t, s, 1)

	payload := `{"seq_id":1,"type":"INFO","message":"hello"}`
	sendRelay(t, relay, payload)
	if got := readWS(t, conn); got != payload {
		t.Fatalf("payload modified in transit: %q", got)
	}
}

func TestWebSocketFilter(t *testing.T) {
	s, relay := newTestServer(t, nil)
	ts := httptest.NewServer(s.srv.Handler)
	defer ts.Close()

	conn := dialWS(t, wsURL(ts, "/ws?filter=type%20%3D%3D%20%22ERROR%22"))
	waitSubscribers(t, s, 1)

	sendRelay(t, relay, `{"seq_id":1,"type":"INFO","message":"skip me"}`)
	want := `{"seq_id":2,"type":"ERROR","message":"keep me"}`
	sendRelay(t, relay, want)
	if got := readWS(t, conn); got != want {
		t.Fatalf("filter let the wrong payload through: %q", got)
	}
}

func TestWebSocketBadFilterClosesConnection(t *testing.T) {
	s, _ := newTestServer(t, nil)
	ts := httptest.NewServer(s.srv.Handler)
	defer ts.Close()

	conn := dialWS(t, wsURL(ts, "/ws?filter=type%20%3D%3D"))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, _, err := conn.Read(ctx); err == nil {
		t.Fatal("expected the server to close a badly filtered subscription")
	}
	if s.broker.Subscribers() != 0 {
		t.Fatalf("rejected subscription left residue: %d", s.broker.Subscribers())
	}
}

func TestWebSocketReplay(t *testing.T) {
	h, err := broker.OpenHistory(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	for _, p := range []string{`{"seq_id":1}`, `{"seq_id":2}`, `{"seq_id":3}`} {
		if err := h.Append([]byte(p)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	s, _ := newTestServer(t, h)
	ts := httptest.NewServer(s.srv.Handler)
	defer ts.Close()

	conn := dialWS(t, wsURL(ts, "/ws?replay=2"))
	if got := readWS(t, conn); got != `{"seq_id":2}` {
		t.Fatalf("replay[0] = %q", got)
	}
	if got := readWS(t, conn); got != `{"seq_id":3}` {
		t.Fatalf("replay[1] = %q", got)
	}
}

func TestHistoryExport(t *testing.T) {
	h, err := broker.OpenHistory(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	for _, p := range []string{`{"seq_id":1}`, `{"seq_id":2}`} {
		if err := h.Append([]byte(p)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	s, _ := newTestServer(t, h)
	req := httptest.NewRequest(http.MethodGet, "/v1/history/export", nil)
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("status: %d", w.Code)
	}
	gz, err := gzip.NewReader(w.Body)
	if err != nil {
		t.Fatalf("gzip: %v", err)
	}
	raw, err := io.ReadAll(gz)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 2 || lines[0] != `{"seq_id":1}` || lines[1] != `{"seq_id":2}` {
		t.Fatalf("export lines: %q", lines)
	}
}

func TestHistoryExportDisabled(t *testing.T) {
	s, _ := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/v1/history/export", nil)
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status: %d", w.Code)
	}
}
