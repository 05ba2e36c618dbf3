package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
)

// printReport writes a scan report summary followed by any failures.
func printReport(cmd *cobra.Command, report *domain.ScanReport) {
	label := string(report.Trigger)
	if report.Topology != "" {
		label = fmt.Sprintf("%s, topology %s", label, report.Topology)
	}
	cmd.Printf("Pass %s (%s) finished in %s\n", report.ID, label, report.Duration())
	cmd.Printf("  Files: %d seen, %d processed, %d skipped, %d failed\n",
		report.FilesSeen, report.FilesProcessed, report.FilesSkipped, report.FilesFailed)
	cmd.Printf("  Artifacts: %d created, %d updated, %d unchanged, %d failed\n",
		report.Created, report.Updated, report.Unchanged, report.Failed)

	for i := range report.Files {
		printFileFailures(cmd, &report.Files[i])
	}
}

// printFileReport writes the outcome of every artifact in a file.
func printFileReport(cmd *cobra.Command, report *domain.FileReport) {
	cmd.Printf("Processed %s\n", report.Path)
	if report.Err != nil {
		cmd.Printf("  error: %v\n", report.Err)
		return
	}
	for _, a := range report.Artifacts {
		if a.Err != nil {
			cmd.Printf("  %s %s: %s (%v)\n", a.Kind, a.Name, a.Outcome, a.Err)
			continue
		}
		cmd.Printf("  %s %s: %s\n", a.Kind, a.Name, a.Outcome)
	}
}

func printFileFailures(cmd *cobra.Command, report *domain.FileReport) {
	if report.Err != nil {
		cmd.Printf("  %s: %v\n", report.Path, report.Err)
		return
	}
	for _, a := range report.Artifacts {
		if a.Outcome == domain.OutcomeFailed {
			cmd.Printf("  %s: %s %s: %v\n", report.Path, a.Kind, a.Name, a.Err)
		}
	}
}

// failures returns an error when a report carries any failure, so the
// process exits non-zero.
func failures(report *domain.ScanReport) error {
	if report.FilesFailed == 0 && report.Failed == 0 {
		return nil
	}
	return fmt.Errorf("%d file(s) and %d artifact(s) failed", report.FilesFailed, report.Failed)
}
