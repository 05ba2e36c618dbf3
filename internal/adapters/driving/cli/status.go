package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
)

// recentTicks is how many scheduled scans status lists.
const recentTicks = 5

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show synchronisation state",
	Long: `Shows the monitored directory and the number of descriptor files with a
recorded state. Records only survive between runs with the sqlite state
backend.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) (err error) {
	settings, err := effectiveSettings(cmd)
	if err != nil {
		return err
	}
	engine, err := openEngine(settings)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, closeEngine(engine))
	}()

	status, err := engine.SyncOrchestrator.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	cmd.Printf("Source directory:      %s\n", status.SourceDir)
	cmd.Printf("Descriptors directory: %s\n", settings.Monitor.DescriptorsDir)
	cmd.Printf("Providers directory:   %s\n", settings.Monitor.SharedProvidersDir)
	cmd.Printf("State backend:         %s\n", settings.State.Backend)
	cmd.Printf("Tracked files:         %d\n", status.TrackedFiles)
	if status.LastScan != nil {
		cmd.Printf("Last pass:             %s at %s\n", status.LastScan.ID, status.LastScan.EndedAt.Format("2006-01-02 15:04:05"))
	}

	if engine.Scheduler == nil {
		return nil
	}
	ticks, err := engine.Scheduler.History(cmd.Context(), recentTicks)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}
	if len(ticks) > 0 {
		cmd.Println()
		cmd.Println("Recent scheduled scans:")
		for _, t := range ticks {
			cmd.Printf("  %s  %-6s %d file(s), %d artifact(s) written, %s\n",
				t.StartedAt.Format("2006-01-02 15:04:05"), tickOutcome(t),
				t.FilesProcessed, t.ArtifactsWritten, t.Duration().Round(time.Millisecond))
			if !t.Succeeded() {
				cmd.Printf("    %s\n", t.Error)
			}
		}
	}
	return nil
}

func tickOutcome(t domain.Tick) string {
	if t.Succeeded() {
		return "ok"
	}
	return "failed"
}
