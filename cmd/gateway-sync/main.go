// Command gateway-sync keeps rendered gateway configuration in step with
// Hadoop-XML topology descriptor files.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/gateway-sync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/gateway-sync/internal/adapters/driven/metrics/prometheus"
	"github.com/custodia-labs/gateway-sync/internal/adapters/driven/parser/hadoopxml"
	"github.com/custodia-labs/gateway-sync/internal/adapters/driven/renderer/jsonrender"
	"github.com/custodia-labs/gateway-sync/internal/adapters/driven/storage/filesystem"
	"github.com/custodia-labs/gateway-sync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/gateway-sync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/gateway-sync/internal/adapters/driving/cli"
	"github.com/custodia-labs/gateway-sync/internal/core/domain"
	"github.com/custodia-labs/gateway-sync/internal/core/ports/driven"
	"github.com/custodia-labs/gateway-sync/internal/core/ports/driving"
	"github.com/custodia-labs/gateway-sync/internal/core/services"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.Configure(cli.Config{
		Version:  version,
		Settings: openSettings,
		Engine:   buildEngine,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openSettings loads config.toml from the home directory.
func openSettings(home string) (driving.SettingsService, error) {
	store, err := file.NewConfigStore(home)
	if err != nil {
		return nil, fmt.Errorf("open config store: %w", err)
	}
	return services.NewSettingsService(store), nil
}

// buildEngine wires the driven adapters into the core services.
func buildEngine(settings *domain.AppSettings) (*cli.Engine, error) {
	engine := &cli.Engine{}

	var (
		records   driven.FileRecordStore
		schedules driven.ScheduleStore
	)
	switch settings.State.Backend {
	case domain.StateBackendSQLite:
		store, err := sqlite.NewStore(settings.State.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open state store: %w", err)
		}
		records = store.FileRecordStore()
		schedules = store.ScheduleStore()
		engine.Close = store.Close
	default:
		records = memory.NewFileRecordStore()
		schedules = memory.NewScheduleStore()
	}

	var metrics driven.SyncMetrics
	if settings.Server.Metrics {
		m := prometheus.New()
		metrics = m
		engine.Metrics = m.Handler()
	}

	syncOrch := services.NewSyncOrchestrator(
		settings.Monitor,
		filesystem.NewSourceReader(),
		hadoopxml.New(),
		jsonrender.New(),
		filesystem.NewArtifactStore(),
		records,
		metrics,
	)

	engine.SyncOrchestrator = syncOrch
	engine.Scheduler = services.NewScheduler(schedules, syncOrch)
	engine.ChangeListener = services.NewResyncListener(syncOrch)
	return engine, nil
}
