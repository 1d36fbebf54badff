package httpserver

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/klauspost/compress/gzip"

	"github.com/lazy-eggplant/vs.logger/internal/broker"
	"github.com/lazy-eggplant/vs.logger/internal/ui"
	logpkg "github.com/lazy-eggplant/vs.logger/pkg/log"
)

// Server serves the live viewer over HTTP. Subscriptions arrive on /ws and
// are handed to the broker; everything else is static or read-only.
type Server struct {
	broker *broker.Broker
	diag   logpkg.Logger
	srv    *http.Server
	lis    net.Listener
}

func New(b *broker.Broker, diag logpkg.Logger) *Server {
	if diag == nil {
		diag = logpkg.NewNopLogger()
	}
	s := &Server{broker: b, diag: diag.With(logpkg.Component("http"))}
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Get("/ws", s.handleSubscribe)
	r.Get("/v1/history/export", s.handleHistoryExport)
	r.Handle("/*", http.FileServer(ui.FS()))
	s.srv = &http.Server{Handler: cors(r)}
	return s
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	s.diag.Info("listening", logpkg.Str("address", l.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

// Addr reports the bound listen address, empty before ListenAndServe.
func (s *Server) Addr() string {
	if s.lis == nil {
		return ""
	}
	return s.lis.Addr().String()
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":      "ok",
		"subscribers": s.broker.Subscribers(),
	})
}

// handleHistoryExport streams the retained payloads as gzip-compressed
// NDJSON, oldest first.
func (s *Server) handleHistoryExport(w http.ResponseWriter, r *http.Request) {
	h := s.broker.History()
	if h == nil {
		http.Error(w, "history disabled", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Content-Encoding", "gzip")
	w.Header().Set("Content-Disposition", `attachment; filename="history.ndjson.gz"`)

	gz := gzip.NewWriter(w)
	err := h.Export(func(payload []byte) error {
		if _, werr := gz.Write(payload); werr != nil {
			return werr
		}
		_, werr := gz.Write([]byte("\n"))
		return werr
	})
	if err != nil {
		s.diag.Warn("history export aborted", logpkg.Err(err))
	}
	if err := gz.Close(); err != nil {
		s.diag.Warn("history export flush failed", logpkg.Err(err))
	}
}

// replayCount parses the optional replay query parameter; absent or invalid
// values mean no replay.
func replayCount(r *http.Request) int {
	raw := r.URL.Query().Get("replay")
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
