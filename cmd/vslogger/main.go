package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	clientcmd "github.com/lazy-eggplant/vs.logger/internal/cmd/client"
	serverrun "github.com/lazy-eggplant/vs.logger/internal/cmd/server"
	cfgpkg "github.com/lazy-eggplant/vs.logger/internal/config"
	logpkg "github.com/lazy-eggplant/vs.logger/pkg/log"
)

func main() {
	// Respect VSLOG_LOG_LEVEL for both CLI and server start output
	level := os.Getenv("VSLOG_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)

	// Redirect standard library logs (used by Pebble) to our logger
	logpkg.RedirectStdLog(logger)

	rootCmd := &cobra.Command{
		Use:   "vslogger",
		Short: "Causally tagged logging relay",
		Long:  "vslogger relays causally tagged log entries from producers to live viewers. This CLI manages the relay server and a test producer.",
	}

	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the relay server (broker and viewer HTTP)",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			relay, _ := cmd.Flags().GetString("relay")
			port, _ := cmd.Flags().GetUint16("port")
			historyDir, _ := cmd.Flags().GetString("history-dir")
			historyMaxBytes, _ := cmd.Flags().GetInt64("history-max-bytes")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")

			cfg, err := cfgpkg.Load(configPath)
			if err != nil {
				return err
			}
			cfgpkg.FromEnv(&cfg)
			if relay != "" {
				cfg.RelayAddress = relay
			}
			if port != 0 {
				cfg.ServerPort = port
			}
			if historyDir != "" {
				cfg.HistoryDir = historyDir
			}
			if historyMaxBytes != 0 {
				cfg.HistoryMaxBytes = historyMaxBytes
			}
			if logLevel != "" {
				_ = os.Setenv("VSLOG_LOG_LEVEL", logLevel)
			}
			if logFormat != "" {
				_ = os.Setenv("VSLOG_LOG_FORMAT", logFormat)
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if err := serverrun.Run(ctx, serverrun.Options{Config: cfg}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
	serverStartCmd.Flags().String("config", os.Getenv("VSLOG_CONFIG"), "JSON config file (optional)")
	serverStartCmd.Flags().String("relay", "", "Rendezvous socket path (default per-OS temp dir)")
	serverStartCmd.Flags().Uint16("port", 0, "Viewer HTTP listen port")
	serverStartCmd.Flags().String("history-dir", "", "Replay history directory (empty disables history)")
	serverStartCmd.Flags().Int64("history-max-bytes", 0, "History size budget in bytes (0 = unbounded)")
	serverStartCmd.Flags().String("log-level", os.Getenv("VSLOG_LOG_LEVEL"), "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", os.Getenv("VSLOG_LOG_FORMAT"), "Log format: text|json (default text)")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	rootCmd.AddCommand(clientcmd.NewEmitCommand(logger))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
