package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
	"github.com/custodia-labs/gateway-sync/internal/core/ports/driving"
	"github.com/custodia-labs/gateway-sync/internal/core/services"
	"github.com/custodia-labs/gateway-sync/internal/logger"
)

type mockSyncOrchestrator struct {
	mu         sync.Mutex
	scans      []domain.Trigger
	processed  []string
	opts       []domain.ParseOptions
	resyncReqs []domain.ResyncRequest

	scanReport *domain.ScanReport
	scanErr    error
	fileReport *domain.FileReport
}

func (m *mockSyncOrchestrator) ProcessFile(_ context.Context, path string, opts domain.ParseOptions) domain.FileReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processed = append(m.processed, path)
	m.opts = append(m.opts, opts)
	if m.fileReport != nil {
		report := *m.fileReport
		report.Path = path
		return report
	}
	return domain.FileReport{
		Path: path,
		Artifacts: []domain.ArtifactResult{
			{Kind: domain.ArtifactDescriptor, Name: "sandbox", Outcome: domain.OutcomeCreated},
		},
	}
}

func (m *mockSyncOrchestrator) ScanAll(_ context.Context, trigger domain.Trigger) (*domain.ScanReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans = append(m.scans, trigger)
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	if m.scanReport != nil {
		return m.scanReport, nil
	}
	report := &domain.ScanReport{ID: "scan-1", Trigger: trigger}
	report.Add(domain.FileReport{
		Path: "/src/a.hxr",
		Artifacts: []domain.ArtifactResult{
			{Kind: domain.ArtifactDescriptor, Name: "a", Outcome: domain.OutcomeCreated},
		},
	})
	return report, nil
}

func (m *mockSyncOrchestrator) Resync(_ context.Context, req domain.ResyncRequest) (*domain.ScanReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resyncReqs = append(m.resyncReqs, req)
	return &domain.ScanReport{ID: "resync-1", Trigger: domain.TriggerNotification, Topology: req.Topology}, nil
}

func (m *mockSyncOrchestrator) Status(_ context.Context) (*driving.SyncStatus, error) {
	return &driving.SyncStatus{SourceDir: "/src", TrackedFiles: 4}, nil
}

type mockScheduler struct {
	mu       sync.Mutex
	interval time.Duration
	started  chan struct{}
	stopped  bool
	ticks    []domain.Tick
}

func (m *mockScheduler) Setup(_ context.Context, interval time.Duration) bool {
	if interval <= 0 {
		return false
	}
	m.mu.Lock()
	m.interval = interval
	m.mu.Unlock()
	close(m.started)
	return true
}

func (m *mockScheduler) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	return nil
}

func (m *mockScheduler) History(_ context.Context, limit int) ([]domain.Tick, error) {
	if limit < len(m.ticks) {
		return m.ticks[:limit], nil
	}
	return m.ticks, nil
}

type mockSettingsService struct {
	mu       sync.Mutex
	settings domain.AppSettings
	set      map[string]string
	reset    []string
	setErr   error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Reset(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset = append(m.reset, key)
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"monitor.descriptors_dir", "monitor.interval_ms"}
}

func (m *mockSettingsService) Location() string {
	return "/home/test/.gateway-sync/config.toml"
}

// cliTest holds the doubles wired into the package for one test.
type cliTest struct {
	orch      *mockSyncOrchestrator
	scheduler *mockScheduler
	settings  *mockSettingsService

	mu          sync.Mutex
	engineCalls []domain.AppSettings
	closed      int
}

func (c *cliTest) closeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// setupCLITest wires mocks into the package vars and restores them on cleanup.
func setupCLITest(t *testing.T) *cliTest {
	t.Helper()
	resetCLI(t)

	settings := domain.DefaultAppSettings()
	settings.Monitor.DescriptorsDir = "/out/descriptors"
	settings.Monitor.SharedProvidersDir = "/out/shared"

	c := &cliTest{
		orch:      &mockSyncOrchestrator{},
		scheduler: &mockScheduler{started: make(chan struct{})},
		settings:  &mockSettingsService{settings: settings, set: map[string]string{}},
	}

	settingsService = c.settings
	engineFactory = func(s *domain.AppSettings) (*Engine, error) {
		c.mu.Lock()
		c.engineCalls = append(c.engineCalls, *s)
		c.mu.Unlock()
		return &Engine{
			SyncOrchestrator: c.orch,
			Scheduler:        c.scheduler,
			ChangeListener:   services.NewResyncListener(c.orch),
			Close: func() error {
				c.mu.Lock()
				c.closed++
				c.mu.Unlock()
				return nil
			},
		}, nil
	}
	return c
}

// resetCLI clears package wiring and flag state, now and after the test.
func resetCLI(t *testing.T) {
	t.Helper()
	restore := func() {
		settingsService = nil
		settingsLoader = nil
		engineFactory = nil
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
		logger.SetVerbose(false)
		logger.SetFormat("text")
	}
	restore()
	t.Cleanup(restore)
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func setContext(cmd *cobra.Command, ctx context.Context) {
	cmd.SetContext(ctx)
	for _, c := range cmd.Commands() {
		setContext(c, ctx)
	}
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	}()

	setContext(rootCmd, ctx)
	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}
