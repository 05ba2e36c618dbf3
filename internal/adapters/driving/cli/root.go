package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
	"github.com/custodia-labs/gateway-sync/internal/core/ports/driving"
	"github.com/custodia-labs/gateway-sync/internal/logger"
)

// HomeEnv overrides the default home directory.
const HomeEnv = "GATEWAY_SYNC_HOME"

// Engine bundles the services behind the engine commands.
type Engine struct {
	SyncOrchestrator driving.SyncOrchestrator
	Scheduler        driving.Scheduler
	ChangeListener   driving.ChangeListener

	// Metrics serves /metrics. Nil when metrics are disabled.
	Metrics http.Handler

	// Close releases state storage. Optional.
	Close func() error
}

// SettingsLoader opens the settings stored under a home directory.
type SettingsLoader func(home string) (driving.SettingsService, error)

// EngineFactory builds an Engine from validated settings.
type EngineFactory func(settings *domain.AppSettings) (*Engine, error)

// Config wires the CLI to the application.
type Config struct {
	Version  string
	Settings SettingsLoader
	Engine   EngineFactory
}

var (
	version = "dev"

	settingsLoader  SettingsLoader
	engineFactory   EngineFactory
	settingsService driving.SettingsService
)

// Flags shared by every command.
var (
	homeDir            string
	verbose            bool
	sourceDir          string
	descriptorsDir     string
	sharedProvidersDir string
)

var rootCmd = &cobra.Command{
	Use:   "gateway-sync",
	Short: "Synchronise gateway topology descriptors",
	Long: `gateway-sync keeps rendered gateway configuration in step with Hadoop-XML
descriptor files.

Each descriptor file is parsed into shared provider configurations and
topology descriptors, which are rendered to JSON and written only when
their content changed.`,
	SilenceUsage: true,
}

// Configure sets the application wiring used by the commands.
func Configure(cfg Config) {
	if cfg.Version != "" {
		version = cfg.Version
	}
	settingsLoader = cfg.Settings
	engineFactory = cfg.Engine
}

// Execute runs the root command. Cancelling ctx stops long-running
// commands.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&homeDir, "home", "", "configuration directory (default $"+HomeEnv+" or ~/.gateway-sync)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&sourceDir, "source-dir", "", "directory scanned for descriptor files")
	flags.StringVar(&descriptorsDir, "descriptors-dir", "", "output directory for rendered descriptors")
	flags.StringVar(&sharedProvidersDir, "shared-providers-dir", "", "output directory for rendered provider configurations")
}

// resolveHome returns the --home flag, then $GATEWAY_SYNC_HOME, then
// ~/.gateway-sync.
func resolveHome() (string, error) {
	if homeDir != "" {
		return homeDir, nil
	}
	if env := os.Getenv(HomeEnv); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".gateway-sync"), nil
}

// loadSettings returns the settings service, opening the store under the
// resolved home directory on first use.
func loadSettings() (driving.SettingsService, error) {
	if verbose {
		logger.SetVerbose(true)
	}
	if settingsService != nil {
		return settingsService, nil
	}
	if settingsLoader == nil {
		return nil, errors.New("settings service not configured")
	}

	home, err := resolveHome()
	if err != nil {
		return nil, err
	}
	svc, err := settingsLoader(home)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	settingsService = svc
	return svc, nil
}

// effectiveSettings returns stored settings with command-line overrides
// applied and validated. The logger is configured from the result.
func effectiveSettings(cmd *cobra.Command) (*domain.AppSettings, error) {
	svc, err := loadSettings()
	if err != nil {
		return nil, err
	}

	settings, err := svc.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("source-dir") {
		settings.Monitor.SourceDir = sourceDir
	}
	if flags.Changed("descriptors-dir") {
		settings.Monitor.DescriptorsDir = descriptorsDir
	}
	if flags.Changed("shared-providers-dir") {
		settings.Monitor.SharedProvidersDir = sharedProvidersDir
	}
	if flags.Changed("interval-ms") {
		settings.Monitor.Interval = time.Duration(runIntervalMS) * time.Millisecond
	}
	if flags.Changed("addr") {
		settings.Server.Addr = runAddr
	}
	if flags.Changed("watch") {
		settings.Watch.Enabled = runWatch
	}
	if settings.State.Backend == domain.StateBackendSQLite && settings.State.DataDir == "" {
		home, err := resolveHome()
		if err != nil {
			return nil, err
		}
		settings.State.DataDir = filepath.Join(home, "data")
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	logger.SetFormat(settings.Log.Format)
	logger.SetVerbose(verbose || settings.Log.Verbose)
	return settings, nil
}

// openEngine builds the engine for settings. Callers must call closeEngine.
func openEngine(settings *domain.AppSettings) (*Engine, error) {
	if engineFactory == nil {
		return nil, errors.New("sync engine not configured")
	}
	engine, err := engineFactory(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to start sync engine: %w", err)
	}
	if engine.SyncOrchestrator == nil {
		return nil, errors.Join(errors.New("sync service not configured"), closeEngine(engine))
	}
	return engine, nil
}

func closeEngine(engine *Engine) error {
	if engine == nil || engine.Close == nil {
		return nil
	}
	return engine.Close()
}
