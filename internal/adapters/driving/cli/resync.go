package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
)

var resyncCmd = &cobra.Command{
	Use:   "resync <topology> [key=value...]",
	Short: "Resynchronise one topology",
	Long: `Reprocesses every descriptor file for one topology regardless of file
records, as if a change notification had been received.

Extra arguments are notification properties, for example
gateway.auto.discovery.enabled.HIVE=false to drop a service.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResync,
}

func init() {
	rootCmd.AddCommand(resyncCmd)
}

func runResync(cmd *cobra.Command, args []string) (err error) {
	props, err := notificationProperties(args[0], args[1:])
	if err != nil {
		return err
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
	if engine.ChangeListener == nil {
		return errors.New("change listener not configured")
	}

	report, err := engine.ChangeListener.OnConfigurationChange(cmd.Context(), props)
	if err != nil {
		return fmt.Errorf("resync failed: %w", err)
	}

	printReport(cmd, report)
	return failures(report)
}

// notificationProperties builds a property set from key=value arguments.
func notificationProperties(topology string, pairs []string) (map[string]string, error) {
	props := make(map[string]string, len(pairs)+1)
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: property %q is not key=value", domain.ErrInvalidInput, pair)
		}
		props[key] = value
	}
	props[domain.PropertyTopologyName] = topology
	return props, nil
}
