package serverrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/lazy-eggplant/vs.logger/internal/broker"
	cfgpkg "github.com/lazy-eggplant/vs.logger/internal/config"
	httpserver "github.com/lazy-eggplant/vs.logger/internal/server/http"
	logpkg "github.com/lazy-eggplant/vs.logger/pkg/log"
)

// small wrapper to allow testing; replaced by os.Getenv at build time
var getenv = func(key string) string { return os.Getenv(key) }

func getenvDefault(key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

type Options struct {
	// Config drives everything; zero values fall back to package defaults.
	Config cfgpkg.Config
	// HTTPAddr overrides Config.ServerPort when non-empty, mainly for tests
	// that need an ephemeral port.
	HTTPAddr string
}

// newProcessLogger builds the process-wide diagnostic logger from
// VSLOG_LOG_LEVEL and VSLOG_LOG_FORMAT; defaults: level=info, format=text.
func newProcessLogger() logpkg.Logger {
	level := logpkg.InfoLevel
	if l, err := logpkg.ParseLevel(getenvDefault("VSLOG_LOG_LEVEL", "info")); err == nil {
		level = l
	}
	var formatter logpkg.Formatter = &logpkg.TextFormatter{}
	if getenvDefault("VSLOG_LOG_FORMAT", "text") == "json" {
		formatter = &logpkg.JSONFormatter{}
	}
	return logpkg.NewLogger(
		logpkg.WithLevel(level),
		logpkg.WithFormatter(formatter),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)
}

// Run starts the relay broker and the viewer HTTP server and blocks until
// ctx is cancelled or a termination signal arrives. A relay address that
// cannot be bound is fatal.
func Run(ctx context.Context, opts Options) error {
	// Layer a local signal context over the provided one so callers without
	// a signal-aware context still shut down cleanly.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := opts.Config
	if cfg.RelayAddress == "" {
		cfg.RelayAddress = cfgpkg.DefaultRelayAddress()
	}
	if cfg.ServerPort == 0 {
		cfg.ServerPort = cfgpkg.DefaultServerPort
	}

	procLogger := newProcessLogger()
	// Redirect stdlib logs (e.g., Pebble) to our logger
	logpkg.RedirectStdLog(procLogger)

	if !cfg.EnableRelayServer {
		procLogger.Info("relay server disabled; nothing to serve")
		return nil
	}

	var history *broker.History
	if cfg.HistoryDir != "" {
		h, err := broker.OpenHistory(cfg.HistoryDir, cfg.HistoryMaxBytes)
		if err != nil {
			return fmt.Errorf("open history at %s: %w", cfg.HistoryDir, err)
		}
		history = h
	}

	b := broker.New(broker.Options{
		Address: cfg.RelayAddress,
		History: history,
		Diag:    procLogger,
	})
	if err := b.Start(); err != nil {
		_ = history.Close()
		return err
	}

	httpAddr := opts.HTTPAddr
	if httpAddr == "" {
		httpAddr = fmt.Sprintf(":%d", cfg.ServerPort)
	}
	hsrv := httpserver.New(b, procLogger)

	procLogger.Info("starting relay server",
		logpkg.Str("relay", cfg.RelayAddress),
		logpkg.Str("http", httpAddr),
		logpkg.Str("history", cfg.HistoryDir),
	)

	// An HTTP serve failure takes the whole process down rather than leaving
	// a broker without a viewer surface.
	hctx, cancel := context.WithCancel(sctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := hsrv.ListenAndServe(hctx, httpAddr); err != nil && hctx.Err() == nil {
			procLogger.Error("http server failed", logpkg.Err(err))
			cancel()
		}
	}()

	<-hctx.Done()
	hsrv.Close()
	wg.Wait()
	b.Stop()
	return nil
}
