package cli

import (
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/gateway-sync/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/gateway-sync/internal/adapters/driving/watcher"
	"github.com/custodia-labs/gateway-sync/internal/logger"
)

// Flags for the run command.
var (
	runIntervalMS int64
	runAddr       string
	runWatch      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Keep artifacts in sync until interrupted",
	Long: `Starts the periodic scanner and, when configured, the filesystem
watcher and the HTTP notification API. Runs until interrupted with
SIGINT or SIGTERM.

Setting the interval to zero or less disables periodic scanning; the watcher
and the HTTP API keep working.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	flags := runCmd.Flags()
	flags.Int64Var(&runIntervalMS, "interval-ms", 0, "scan interval in milliseconds, zero or less disables scanning")
	flags.StringVar(&runAddr, "addr", "", "HTTP API listen address, empty disables the API")
	flags.BoolVar(&runWatch, "watch", false, "process files as soon as they change")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) (err error) {
	settings, err := effectiveSettings(cmd)
	if err != nil {
		return err
	}
	if settings.Monitor.Interval <= 0 && !settings.Watch.Enabled && settings.Server.Addr == "" {
		return errors.New("nothing to run: periodic scanning is disabled and neither the watcher nor the HTTP API is enabled")
	}

	engine, err := openEngine(settings)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, closeEngine(engine))
	}()

	if settings.Server.Addr != "" && engine.ChangeListener == nil {
		return errors.New("change listener not configured")
	}

	g, ctx := errgroup.WithContext(cmd.Context())

	if engine.Scheduler != nil && engine.Scheduler.Setup(ctx, settings.Monitor.Interval) {
		defer func() {
			err = errors.Join(err, engine.Scheduler.Stop())
		}()
	}

	if settings.Watch.Enabled {
		w := watcher.New(engine.SyncOrchestrator, settings.Monitor.EffectiveSourceDir(), watcher.Options{
			Extension:       settings.Monitor.Extension,
			EventsPerSecond: settings.Watch.EventsPerSecond,
			Debounce:        settings.Watch.Debounce,
		})
		g.Go(func() error {
			return w.Run(ctx)
		})
	}

	if settings.Server.Addr != "" {
		var metrics http.Handler
		if settings.Server.Metrics {
			metrics = engine.Metrics
		}
		srv := httpapi.NewServer(settings.Server.Addr, engine.SyncOrchestrator, engine.ChangeListener, metrics)
		g.Go(func() error {
			return srv.ListenAndServe(ctx)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		return nil
	})

	cmd.Println("gateway-sync running. Press Ctrl+C to stop.")
	started := time.Now()
	err = g.Wait()
	logger.Info("Stopped after %s", time.Since(started).Round(time.Second))
	return err
}
