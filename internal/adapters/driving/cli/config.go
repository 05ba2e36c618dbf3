package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage settings",
	Long: `View and change settings stored in config.toml under the home directory.

Command-line flags such as --descriptors-dir override stored values for a
single invocation.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a stored setting so its default applies",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List supported setting keys",
	Args:  cobra.NoArgs,
	RunE:  runConfigKeys,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configKeysCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	svc, err := loadSettings()
	if err != nil {
		return err
	}

	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Printf("Stored in %s\n", svc.Location())
	cmd.Println()

	cmd.Println("[Monitor]")
	if settings.Monitor.Interval > 0 {
		cmd.Printf("  Interval: %s\n", settings.Monitor.Interval)
	} else {
		cmd.Println("  Interval: disabled")
	}
	cmd.Printf("  Source directory: %s\n", orUnset(settings.Monitor.EffectiveSourceDir()))
	cmd.Printf("  Descriptors directory: %s\n", orUnset(settings.Monitor.DescriptorsDir))
	cmd.Printf("  Shared providers directory: %s\n", orUnset(settings.Monitor.SharedProvidersDir))
	cmd.Printf("  Extension: %s\n", settings.Monitor.Extension)
	cmd.Println()

	cmd.Println("[State]")
	cmd.Printf("  Backend: %s\n", settings.State.Backend)
	if settings.State.DataDir != "" {
		cmd.Printf("  Data directory: %s\n", settings.State.DataDir)
	}
	cmd.Println()

	cmd.Println("[Server]")
	if settings.Server.Addr != "" {
		cmd.Printf("  Address: %s\n", settings.Server.Addr)
		cmd.Printf("  Metrics: %s\n", yesNo(settings.Server.Metrics))
	} else {
		cmd.Println("  Address: disabled")
	}
	cmd.Println()

	cmd.Println("[Watch]")
	cmd.Printf("  Enabled: %s\n", yesNo(settings.Watch.Enabled))
	if settings.Watch.Enabled {
		cmd.Printf("  Events per second: %d\n", settings.Watch.EventsPerSecond)
		cmd.Printf("  Debounce: %s\n", settings.Watch.Debounce)
	}
	cmd.Println()

	cmd.Println("[Log]")
	cmd.Printf("  Verbose: %s\n", yesNo(settings.Log.Verbose))
	cmd.Printf("  Format: %s\n", settings.Log.Format)
	cmd.Println()

	if err := settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'gateway-sync config set <key> <value>' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	svc, err := loadSettings()
	if err != nil {
		return err
	}
	if err := svc.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	svc, err := loadSettings()
	if err != nil {
		return err
	}
	if err := svc.Reset(args[0]); err != nil {
		return err
	}
	cmd.Printf("Unset %s\n", args[0])
	return nil
}

func runConfigKeys(cmd *cobra.Command, _ []string) error {
	svc, err := loadSettings()
	if err != nil {
		return err
	}
	cmd.Println(strings.Join(svc.Keys(), "\n"))
	return nil
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
