package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Process every changed descriptor file once",
	Long: `Runs a single pass over the source directory. Files whose size and
modification time match their last recorded state are skipped. Every other
file is parsed and its artifacts are written if their content changed.`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, _ []string) (err error) {
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

	cmd.Printf("Scanning %s...\n", settings.Monitor.EffectiveSourceDir())

	report, err := engine.SyncOrchestrator.ScanAll(cmd.Context(), domain.TriggerManual)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	printReport(cmd, report)
	return failures(report)
}
