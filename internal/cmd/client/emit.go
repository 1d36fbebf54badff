package client

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lazy-eggplant/vs.logger/internal/entry"
	"github.com/lazy-eggplant/vs.logger/internal/logger"
	idpkg "github.com/lazy-eggplant/vs.logger/pkg/id"
	logpkg "github.com/lazy-eggplant/vs.logger/pkg/log"
)

// NewEmitCommand returns the emit command: a small producer that pushes a
// burst of entries through the file and relay sinks. Useful for exercising a
// running relay server and its viewers.
func NewEmitCommand(diag logpkg.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emit [message]",
		Short: "Emit log entries through the configured sinks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			relay, _ := cmd.Flags().GetString("relay")
			kindName, _ := cmd.Flags().GetString("kind")
			severityName, _ := cmd.Flags().GetString("severity")
			count, _ := cmd.Flags().GetInt("count")
			intervalMs, _ := cmd.Flags().GetInt("interval-ms")
			activity, _ := cmd.Flags().GetUint64("activity")
			parent, _ := cmd.Flags().GetUint64("parent")
			newActivity, _ := cmd.Flags().GetBool("new-activity")
			withProducer, _ := cmd.Flags().GetBool("producer-id")

			if file == "" && relay == "" {
				return fmt.Errorf("nothing to emit to; set --file and/or --relay")
			}
			kind, err := entry.ParseKind(kindName)
			if err != nil {
				return err
			}
			severity, err := entry.ParseSeverity(severityName)
			if err != nil {
				return err
			}

			if newActivity && activity == 0 {
				minted := idpkg.NewGenerator().Next()
				activity = minted.Uint64()
				fmt.Fprintln(cmd.OutOrStdout(), "activity:", minted)
			}

			message := "Test log message number"
			if len(args) == 1 {
				message = args[0]
			}
			var producerID string
			if withProducer {
				producerID = logger.NewProducerID()
			}

			l := logger.New(logger.Options{
				FilePath:     file,
				RelayAddress: relay,
				ProducerID:   producerID,
				Diag:         diag,
			})
			defer l.Close()

			for i := 1; i <= count; i++ {
				text := message
				if count > 1 {
					text = fmt.Sprintf("%s %d", message, i)
				}
				l.Log(kind, severity, text, activity, parent)
				if intervalMs > 0 && i < count {
					time.Sleep(time.Duration(intervalMs) * time.Millisecond)
				}
			}
			return nil
		},
	}
	cmd.Flags().String("file", "", "Append-only log file target (empty disables the file sink)")
	cmd.Flags().String("relay", "", "Rendezvous socket path (empty disables the publish sink)")
	cmd.Flags().String("kind", "INFO", "Entry kind: OK|INFO|WARNING|ERROR|PANIC")
	cmd.Flags().String("severity", "MID", "Entry severity: NONE|LOW|MID|HIGH")
	cmd.Flags().Int("count", 1, "Number of entries to emit")
	cmd.Flags().Int("interval-ms", 0, "Delay between entries in ms")
	cmd.Flags().Uint64("activity", 0, "Activity id attached to every entry")
	cmd.Flags().Bool("new-activity", false, "Mint a fresh activity id for this run")
	cmd.Flags().Uint64("parent", 0, "Parent id attached to every entry")
	cmd.Flags().Bool("producer-id", false, "Mint a producer id and carry it in relay payloads")
	return cmd
}
