package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
)

var processTopology string

var processCmd = &cobra.Command{
	Use:   "process <file>",
	Short: "Process a single descriptor file",
	Long: `Parses one descriptor file and writes any artifacts whose content
changed. With --topology only that descriptor and the providers it
references are written.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVar(&processTopology, "topology", "", "only process this topology")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) (err error) {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve %s: %w", args[0], err)
	}

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

	report := engine.SyncOrchestrator.ProcessFile(cmd.Context(), path, domain.ParseOptions{Topology: processTopology})
	printFileReport(cmd, &report)

	if report.Err != nil {
		return fmt.Errorf("process failed: %w", report.Err)
	}
	if n := report.FailedArtifacts(); n > 0 {
		return fmt.Errorf("%d artifact(s) failed", n)
	}
	return nil
}
