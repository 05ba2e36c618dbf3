package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gateway-sync/internal/adapters/driven/parser/hadoopxml"
	"github.com/custodia-labs/gateway-sync/internal/adapters/driven/renderer/jsonrender"
	"github.com/custodia-labs/gateway-sync/internal/adapters/driven/storage/filesystem"
	"github.com/custodia-labs/gateway-sync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/gateway-sync/internal/core/domain"
	"github.com/custodia-labs/gateway-sync/internal/core/ports/driven"
)

const descriptorA = `<configuration>
  <property>
    <name>providerConfigs:prov1</name>
    <value>role=authentication#authentication.name=ShiroProvider#authentication.param.sessionTimeout=30</value>
  </property>
  <property>
    <name>desc1</name>
    <value>discoveryType=ClouderaManager#discoveryAddress=http://cm:7180#providerConfigRef=prov1#HIVE:url=http://hive:10001#WEBHDFS</value>
  </property>
</configuration>`

const descriptorB = `<configuration>
  <property>
    <name>desc2</name>
    <value>providerConfigRef=prov1#HDFSUI:url=http://nn:9870</value>
  </property>
</configuration>`

// --- Mock implementations for sync testing ---

// recordingMetrics implements driven.SyncMetrics for testing.
type recordingMetrics struct {
	mu        sync.Mutex
	artifacts map[domain.WriteOutcome]int
	failures  map[string]int
	scans     map[domain.Trigger]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		artifacts: make(map[domain.WriteOutcome]int),
		failures:  make(map[string]int),
		scans:     make(map[domain.Trigger]int),
	}
}

func (m *recordingMetrics) ObserveArtifact(_ domain.ArtifactKind, outcome domain.WriteOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifacts[outcome]++
}

func (m *recordingMetrics) ObserveFailure(stage string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[stage]++
}

func (m *recordingMetrics) ObserveScan(trigger domain.Trigger, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans[trigger]++
}

// failingRenderer fails for one resource name and delegates the rest.
type failingRenderer struct {
	driven.Renderer
	failName string
}

func (r *failingRenderer) RenderProviderConfig(cfg domain.ProviderConfig) ([]byte, error) {
	if cfg.Name == r.failName {
		return nil, errors.New("render exploded")
	}
	return r.Renderer.RenderProviderConfig(cfg)
}

func (r *failingRenderer) RenderDescriptor(desc domain.DescriptorConfig) ([]byte, error) {
	if desc.Name == r.failName {
		return nil, errors.New("render exploded")
	}
	return r.Renderer.RenderDescriptor(desc)
}

var _ driven.SyncMetrics = (*recordingMetrics)(nil)

// countingSource counts reads and fails Stat for the base names in statErrs.
type countingSource struct {
	driven.SourceReader
	reads    atomic.Int32
	statErrs map[string]error
}

func (s *countingSource) Stat(ctx context.Context, path string) (domain.SourceFile, error) {
	if err, ok := s.statErrs[filepath.Base(path)]; ok {
		return domain.SourceFile{}, err
	}
	return s.SourceReader.Stat(ctx, path)
}

func (s *countingSource) Read(ctx context.Context, path string) ([]byte, error) {
	s.reads.Add(1)
	return s.SourceReader.Read(ctx, path)
}

// testEngine wires a SyncOrchestrator to real adapters under t.TempDir().
type testEngine struct {
	orch       *SyncOrchestrator
	sourceDir  string
	descDir    string
	sharedDir  string
	records    *memory.FileRecordStore
	metrics    *recordingMetrics
	sourceRead *filesystem.SourceReader
}

func newTestEngine(t *testing.T, renderer driven.Renderer) *testEngine {
	t.Helper()

	root := t.TempDir()
	e := &testEngine{
		sourceDir:  filepath.Join(root, "descriptors"),
		descDir:    filepath.Join(root, "descriptors"),
		sharedDir:  filepath.Join(root, "shared-providers"),
		records:    memory.NewFileRecordStore(),
		metrics:    newRecordingMetrics(),
		sourceRead: filesystem.NewSourceReader(),
	}
	require.NoError(t, os.MkdirAll(e.sourceDir, 0755))

	if renderer == nil {
		renderer = jsonrender.New()
	}
	cfg := domain.MonitorSettings{
		Interval:           time.Second,
		DescriptorsDir:     e.descDir,
		SharedProvidersDir: e.sharedDir,
	}
	e.orch = NewSyncOrchestrator(cfg, e.sourceRead, hadoopxml.New(), renderer,
		filesystem.NewArtifactStore(), e.records, e.metrics)
	return e
}

func (e *testEngine) writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.sourceDir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func (e *testEngine) readArtifact(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name+domain.ArtifactExtension))
	require.NoError(t, err)
	return string(data)
}

func (e *testEngine) artifactModTime(t *testing.T, dir, name string) time.Time {
	t.Helper()
	info, err := os.Stat(filepath.Join(dir, name+domain.ArtifactExtension))
	require.NoError(t, err)
	return info.ModTime()
}

// backdate sets an artifact's mtime into the past so a rewrite is visible.
func (e *testEngine) backdate(t *testing.T, dir, name string) time.Time {
	t.Helper()
	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(filepath.Join(dir, name+domain.ArtifactExtension), past, past))
	return past
}

func outcomesByName(report domain.FileReport) map[string]domain.WriteOutcome {
	out := make(map[string]domain.WriteOutcome)
	for _, a := range report.Artifacts {
		out[a.Name] = a.Outcome
	}
	return out
}

// ==================== ProcessFile Tests ====================

func TestSyncOrchestrator_ProcessFile_WritesArtifacts(t *testing.T) {
	e := newTestEngine(t, nil)
	path := e.writeSource(t, "a.hxr", descriptorA)

	report := e.orch.ProcessFile(context.Background(), path, domain.ParseOptions{})

	require.NoError(t, report.Err)
	assert.True(t, report.Succeeded())
	require.Len(t, report.Artifacts, 2)
	assert.Equal(t, domain.ArtifactSharedProvider, report.Artifacts[0].Kind)
	assert.Equal(t, "prov1", report.Artifacts[0].Name)
	assert.Equal(t, filepath.Join(e.sharedDir, "prov1.json"), report.Artifacts[0].Path)
	assert.Equal(t, domain.ArtifactDescriptor, report.Artifacts[1].Kind)
	assert.Equal(t, "desc1", report.Artifacts[1].Name)
	assert.Equal(t, domain.OutcomeCreated, report.Artifacts[0].Outcome)
	assert.Equal(t, domain.OutcomeCreated, report.Artifacts[1].Outcome)

	assert.Contains(t, e.readArtifact(t, e.sharedDir, "prov1"), `"name": "ShiroProvider"`)
	desc := e.readArtifact(t, e.descDir, "desc1")
	assert.Contains(t, desc, `"provider-config-ref": "prov1"`)
	assert.Contains(t, desc, `"name": "HIVE"`)

	rec, err := e.records.Get(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rec.Digest, "sha256:"))
}

func TestSyncOrchestrator_ProcessFile_Idempotent(t *testing.T) {
	e := newTestEngine(t, nil)
	path := e.writeSource(t, "a.hxr", descriptorA)
	ctx := context.Background()

	first := e.orch.ProcessFile(ctx, path, domain.ParseOptions{})
	require.True(t, first.Succeeded())
	before := e.readArtifact(t, e.descDir, "desc1")
	past := e.backdate(t, e.descDir, "desc1")

	second := e.orch.ProcessFile(ctx, path, domain.ParseOptions{})

	require.True(t, second.Succeeded())
	for _, a := range second.Artifacts {
		assert.Equal(t, domain.OutcomeUnchanged, a.Outcome, a.Name)
	}
	assert.Equal(t, before, e.readArtifact(t, e.descDir, "desc1"))
	assert.True(t, past.Equal(e.artifactModTime(t, e.descDir, "desc1")), "unchanged artifact must not be rewritten")
}

func TestSyncOrchestrator_ProcessFile_OnlyChangedResourceRewritten(t *testing.T) {
	e := newTestEngine(t, nil)
	path := e.writeSource(t, "a.hxr", descriptorA)
	ctx := context.Background()

	require.True(t, e.orch.ProcessFile(ctx, path, domain.ParseOptions{}).Succeeded())

	e.writeSource(t, "a.hxr", strings.Replace(descriptorA, "http://hive:10001", "http://hive:20002", 1))
	report := e.orch.ProcessFile(ctx, path, domain.ParseOptions{})

	outcomes := outcomesByName(report)
	assert.Equal(t, domain.OutcomeUnchanged, outcomes["prov1"])
	assert.Equal(t, domain.OutcomeUpdated, outcomes["desc1"])
	assert.Contains(t, e.readArtifact(t, e.descDir, "desc1"), "http://hive:20002")
}

func TestSyncOrchestrator_ProcessFile_Unreadable(t *testing.T) {
	e := newTestEngine(t, nil)

	report := e.orch.ProcessFile(context.Background(), filepath.Join(e.sourceDir, "gone.hxr"), domain.ParseOptions{})

	require.Error(t, report.Err)
	assert.ErrorIs(t, report.Err, domain.ErrUnreadable)
	assert.Empty(t, report.Artifacts)
	assert.Equal(t, 1, e.metrics.failures[driven.StageRead])
}

func TestSyncOrchestrator_ProcessFile_ParseFailure(t *testing.T) {
	e := newTestEngine(t, nil)
	path := e.writeSource(t, "bad.hxr", "<configuration><property>")

	report := e.orch.ProcessFile(context.Background(), path, domain.ParseOptions{})

	require.Error(t, report.Err)
	assert.ErrorIs(t, report.Err, domain.ErrParse)
	assert.Empty(t, report.Artifacts)
	assert.Equal(t, 1, e.metrics.failures[driven.StageParse])

	_, err := e.records.Get(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSyncOrchestrator_ProcessFile_RenderFailureIsolated(t *testing.T) {
	e := newTestEngine(t, &failingRenderer{Renderer: jsonrender.New(), failName: "prov1"})
	path := e.writeSource(t, "a.hxr", descriptorA)

	report := e.orch.ProcessFile(context.Background(), path, domain.ParseOptions{})

	assert.False(t, report.Succeeded())
	outcomes := outcomesByName(report)
	assert.Equal(t, domain.OutcomeFailed, outcomes["prov1"])
	assert.Equal(t, domain.OutcomeCreated, outcomes["desc1"])
	assert.ErrorIs(t, report.Artifacts[0].Err, domain.ErrRender)
	assert.NoFileExists(t, filepath.Join(e.sharedDir, "prov1.json"))
	assert.FileExists(t, filepath.Join(e.descDir, "desc1.json"))

	// A partial failure is not recorded, so the next scan retries the file.
	_, err := e.records.Get(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSyncOrchestrator_ProcessFile_RejectsEscapingNames(t *testing.T) {
	e := newTestEngine(t, nil)
	content := `<configuration>
  <property><name>../escape</name><value>HIVE</value></property>
  <property><name>safe</name><value>HIVE</value></property>
</configuration>`
	path := e.writeSource(t, "a.hxr", content)

	report := e.orch.ProcessFile(context.Background(), path, domain.ParseOptions{})

	outcomes := outcomesByName(report)
	assert.Equal(t, domain.OutcomeFailed, outcomes["../escape"])
	assert.Equal(t, domain.OutcomeCreated, outcomes["safe"])
	assert.NoFileExists(t, filepath.Join(filepath.Dir(e.descDir), "escape.json"))
}

func TestSyncOrchestrator_ProcessFile_Targeted(t *testing.T) {
	e := newTestEngine(t, nil)
	content := strings.Replace(descriptorA, "</configuration>", `  <property>
    <name>other</name>
    <value>WEBHDFS</value>
  </property>
</configuration>`, 1)
	path := e.writeSource(t, "a.hxr", content)

	report := e.orch.ProcessFile(context.Background(), path, domain.ParseOptions{Topology: "desc1"})

	require.True(t, report.Succeeded())
	outcomes := outcomesByName(report)
	assert.Len(t, outcomes, 2)
	assert.Contains(t, outcomes, "prov1")
	assert.Contains(t, outcomes, "desc1")
	assert.NoFileExists(t, filepath.Join(e.descDir, "other.json"))

	// Targeted runs never record the file.
	_, err := e.records.Get(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ==================== ScanAll Tests ====================

func TestSyncOrchestrator_ScanAll_ProcessesEveryFile(t *testing.T) {
	e := newTestEngine(t, nil)
	e.writeSource(t, "a.hxr", descriptorA)
	e.writeSource(t, "b.hxr", descriptorB)
	e.writeSource(t, "ignored.xml", descriptorB)

	report, err := e.orch.ScanAll(context.Background(), domain.TriggerManual)

	require.NoError(t, err)
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, domain.TriggerManual, report.Trigger)
	assert.Equal(t, 2, report.FilesSeen)
	assert.Equal(t, 2, report.FilesProcessed)
	assert.Equal(t, 3, report.Created)
	assert.Zero(t, report.Failed)
	assert.False(t, report.EndedAt.Before(report.StartedAt))
	assert.FileExists(t, filepath.Join(e.descDir, "desc2.json"))
	assert.Equal(t, 1, e.metrics.scans[domain.TriggerManual])
	assert.Equal(t, 3, e.metrics.artifacts[domain.OutcomeCreated])
}

func TestSyncOrchestrator_ScanAll_SkipsUnchangedFiles(t *testing.T) {
	e := newTestEngine(t, nil)
	path := e.writeSource(t, "a.hxr", descriptorA)
	ctx := context.Background()

	_, err := e.orch.ScanAll(ctx, domain.TriggerScheduled)
	require.NoError(t, err)

	report, err := e.orch.ScanAll(ctx, domain.TriggerScheduled)
	require.NoError(t, err)
	assert.Equal(t, 1, report.FilesSkipped)
	assert.Zero(t, report.FilesProcessed)

	// Touching the file without changing content is caught by the digest.
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	report, err = e.orch.ScanAll(ctx, domain.TriggerScheduled)
	require.NoError(t, err)
	assert.Equal(t, 1, report.FilesSkipped)

	rec, err := e.records.Get(ctx, path)
	require.NoError(t, err)
	assert.True(t, rec.ModTime.Equal(later.Truncate(0)) || rec.ModTime.Unix() == later.Unix())
}

func TestSyncOrchestrator_ScanAll_PicksUpEdits(t *testing.T) {
	e := newTestEngine(t, nil)
	path := e.writeSource(t, "a.hxr", descriptorA)
	ctx := context.Background()

	_, err := e.orch.ScanAll(ctx, domain.TriggerScheduled)
	require.NoError(t, err)

	e.writeSource(t, "a.hxr", strings.Replace(descriptorA, "#WEBHDFS", "#WEBHDFS#HDFSUI", 1))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	report, err := e.orch.ScanAll(ctx, domain.TriggerScheduled)
	require.NoError(t, err)
	assert.Equal(t, 1, report.FilesProcessed)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 1, report.Unchanged)
	assert.Contains(t, e.readArtifact(t, e.descDir, "desc1"), "HDFSUI")
}

func TestSyncOrchestrator_ScanAll_FileFailureIsolated(t *testing.T) {
	e := newTestEngine(t, nil)
	bad := e.writeSource(t, "a-bad.hxr", "not xml at all")
	e.writeSource(t, "b.hxr", descriptorB)
	ctx := context.Background()

	report, err := e.orch.ScanAll(ctx, domain.TriggerScheduled)

	require.NoError(t, err)
	assert.Equal(t, 1, report.FilesFailed)
	assert.Equal(t, 1, report.Created)
	assert.FileExists(t, filepath.Join(e.descDir, "desc2.json"))

	// The failed file is retried on the next scan.
	report, err = e.orch.ScanAll(ctx, domain.TriggerScheduled)
	require.NoError(t, err)
	assert.Equal(t, 1, report.FilesFailed)
	assert.Equal(t, 1, report.FilesSkipped)
	assert.Equal(t, bad, report.Files[0].Path)
}

func TestSyncOrchestrator_ScanAll_ResourceParseFailureIsolated(t *testing.T) {
	e := newTestEngine(t, nil)
	path := e.writeSource(t, "a.hxr", `<configuration>
  <property><name>desc1</name><value>HIVE:url=http://hive:10001</value></property>
  <property><name>desc2</name><value>bogusKey=1</value></property>
</configuration>`)
	ctx := context.Background()

	report, err := e.orch.ScanAll(ctx, domain.TriggerScheduled)

	require.NoError(t, err)
	assert.Zero(t, report.FilesFailed)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Failed)
	assert.Contains(t, e.readArtifact(t, e.descDir, "desc1"), "http://hive:10001")
	assert.NoFileExists(t, filepath.Join(e.descDir, "desc2.json"))
	assert.Equal(t, 1, e.metrics.failures[driven.StageParse])

	require.Len(t, report.Files, 1)
	file := report.Files[0]
	assert.False(t, file.Succeeded())
	assert.Equal(t, map[string]domain.WriteOutcome{
		"desc1": domain.OutcomeCreated,
		"desc2": domain.OutcomeFailed,
	}, outcomesByName(file))
	for _, a := range file.Artifacts {
		if a.Name == "desc2" {
			assert.ErrorIs(t, a.Err, domain.ErrParse)
		}
	}

	// Not recorded, so the file is retried next scan.
	_, err = e.records.Get(ctx, path)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSyncOrchestrator_ScanAll_RecoversAfterFix(t *testing.T) {
	e := newTestEngine(t, nil)
	path := e.writeSource(t, "a.hxr", "<configuration><property>")
	ctx := context.Background()

	_, err := e.orch.ScanAll(ctx, domain.TriggerScheduled)
	require.NoError(t, err)

	e.writeSource(t, "a.hxr", descriptorA)
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	report, err := e.orch.ScanAll(ctx, domain.TriggerScheduled)
	require.NoError(t, err)
	assert.Zero(t, report.FilesFailed)
	assert.Equal(t, 2, report.Created)
}

func TestSyncOrchestrator_ScanAll_MissingSourceDir(t *testing.T) {
	e := newTestEngine(t, nil)
	require.NoError(t, os.RemoveAll(e.sourceDir))

	report, err := e.orch.ScanAll(context.Background(), domain.TriggerScheduled)

	require.Error(t, err)
	require.NotNil(t, report)
	assert.Zero(t, report.FilesSeen)
	assert.Equal(t, 1, e.metrics.failures[driven.StageList])
}

func TestSyncOrchestrator_ScanAll_ForgetsRemovedFiles(t *testing.T) {
	e := newTestEngine(t, nil)
	path := e.writeSource(t, "a.hxr", descriptorA)
	ctx := context.Background()

	_, err := e.orch.ScanAll(ctx, domain.TriggerScheduled)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	_, err = e.orch.ScanAll(ctx, domain.TriggerScheduled)
	require.NoError(t, err)

	records, err := e.records.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
	// Artifacts of removed files are left in place.
	assert.FileExists(t, filepath.Join(e.descDir, "desc1.json"))
}

func TestSyncOrchestrator_ScanAll_Cancelled(t *testing.T) {
	e := newTestEngine(t, nil)
	e.writeSource(t, "a.hxr", descriptorA)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.orch.ScanAll(ctx, domain.TriggerScheduled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(e.descDir, "desc1.json"))
}

func TestSyncOrchestrator_ScanAll_SeparateSourceDir(t *testing.T) {
	root := t.TempDir()
	sourceDir := filepath.Join(root, "incoming")
	require.NoError(t, os.MkdirAll(sourceDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, "a.hxr"), []byte(descriptorA), 0644))

	cfg := domain.MonitorSettings{
		SourceDir:          sourceDir,
		DescriptorsDir:     filepath.Join(root, "descriptors"),
		SharedProvidersDir: filepath.Join(root, "shared"),
	}
	orch := NewSyncOrchestrator(cfg, filesystem.NewSourceReader(), hadoopxml.New(), jsonrender.New(),
		filesystem.NewArtifactStore(), memory.NewFileRecordStore(), nil)

	report, err := orch.ScanAll(context.Background(), domain.TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Created)
	assert.FileExists(t, filepath.Join(root, "descriptors", "desc1.json"))
	assert.FileExists(t, filepath.Join(root, "shared", "prov1.json"))
}

// ==================== Resync Tests ====================

func TestSyncOrchestrator_Resync_TargetsOneTopology(t *testing.T) {
	e := newTestEngine(t, nil)
	e.writeSource(t, "a.hxr", descriptorA)
	e.writeSource(t, "b.hxr", descriptorB)
	ctx := context.Background()

	req, err := domain.NewResyncRequest(map[string]string{domain.PropertyTopologyName: "desc1"})
	require.NoError(t, err)

	report, err := e.orch.Resync(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, domain.TriggerNotification, report.Trigger)
	assert.Equal(t, "desc1", report.Topology)
	assert.Equal(t, 2, report.FilesProcessed)
	assert.Equal(t, 2, report.Created)
	assert.FileExists(t, filepath.Join(e.descDir, "desc1.json"))
	assert.NoFileExists(t, filepath.Join(e.descDir, "desc2.json"))

	records, err := e.records.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records, "resync must not touch file records")
}

func TestSyncOrchestrator_Resync_IgnoresRecords(t *testing.T) {
	e := newTestEngine(t, nil)
	e.writeSource(t, "a.hxr", descriptorA)
	ctx := context.Background()

	_, err := e.orch.ScanAll(ctx, domain.TriggerScheduled)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(e.descDir, "desc1.json")))

	req, err := domain.NewResyncRequest(map[string]string{domain.PropertyTopologyName: "desc1"})
	require.NoError(t, err)
	report, err := e.orch.Resync(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Unchanged)
	assert.FileExists(t, filepath.Join(e.descDir, "desc1.json"))
}

func TestSyncOrchestrator_Resync_DisabledServices(t *testing.T) {
	e := newTestEngine(t, nil)
	e.writeSource(t, "a.hxr", descriptorA)

	req, err := domain.NewResyncRequest(map[string]string{
		domain.PropertyTopologyName:                  "desc1",
		domain.PropertyServiceEnabledPrefix + "HIVE": "false",
	})
	require.NoError(t, err)

	_, err = e.orch.Resync(context.Background(), req)
	require.NoError(t, err)

	desc := e.readArtifact(t, e.descDir, "desc1")
	assert.NotContains(t, desc, "HIVE")
	assert.Contains(t, desc, "WEBHDFS")
}

func TestSyncOrchestrator_Resync_ChecksReadabilityWithoutReading(t *testing.T) {
	e := newTestEngine(t, nil)
	e.writeSource(t, "a.hxr", descriptorA)
	e.writeSource(t, "b.hxr", descriptorB)
	source := &countingSource{
		SourceReader: e.sourceRead,
		statErrs:     map[string]error{"b.hxr": domain.ErrUnreadable},
	}
	cfg := domain.MonitorSettings{DescriptorsDir: e.descDir, SharedProvidersDir: e.sharedDir}
	orch := NewSyncOrchestrator(cfg, source, hadoopxml.New(), jsonrender.New(),
		filesystem.NewArtifactStore(), e.records, e.metrics)

	req, err := domain.NewResyncRequest(map[string]string{domain.PropertyTopologyName: "desc1"})
	require.NoError(t, err)
	report, err := orch.Resync(context.Background(), req)

	require.NoError(t, err)
	assert.Zero(t, source.reads.Load())
	assert.Equal(t, 1, report.FilesFailed)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 1, e.metrics.failures[driven.StageRead])
	assert.FileExists(t, filepath.Join(e.descDir, "desc1.json"))
}

func TestSyncOrchestrator_Resync_BlankTopology(t *testing.T) {
	e := newTestEngine(t, nil)

	report, err := e.orch.Resync(context.Background(), domain.ResyncRequest{Topology: "  "})

	assert.Nil(t, report)
	assert.ErrorIs(t, err, domain.ErrInvalidNotification)
}

func TestSyncOrchestrator_Resync_UnknownTopology(t *testing.T) {
	e := newTestEngine(t, nil)
	e.writeSource(t, "a.hxr", descriptorA)

	req, err := domain.NewResyncRequest(map[string]string{domain.PropertyTopologyName: "nope"})
	require.NoError(t, err)
	report, err := e.orch.Resync(context.Background(), req)

	require.NoError(t, err)
	assert.Zero(t, report.Written())
	assert.NoFileExists(t, filepath.Join(e.descDir, "desc1.json"))
}

// ==================== Status Tests ====================

func TestSyncOrchestrator_Status(t *testing.T) {
	e := newTestEngine(t, nil)
	e.writeSource(t, "a.hxr", descriptorA)
	ctx := context.Background()

	status, err := e.orch.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, e.sourceDir, status.SourceDir)
	assert.Nil(t, status.LastScan)
	assert.Zero(t, status.TrackedFiles)

	_, err = e.orch.ScanAll(ctx, domain.TriggerManual)
	require.NoError(t, err)

	status, err = e.orch.Status(ctx)
	require.NoError(t, err)
	require.NotNil(t, status.LastScan)
	assert.Equal(t, domain.TriggerManual, status.LastScan.Trigger)
	assert.Equal(t, 1, status.TrackedFiles)
	assert.Zero(t, status.Running)
}

func TestSyncOrchestrator_ConcurrentScansAndResyncs(t *testing.T) {
	e := newTestEngine(t, nil)
	e.writeSource(t, "a.hxr", descriptorA)
	e.writeSource(t, "b.hxr", descriptorB)
	ctx := context.Background()

	req, err := domain.NewResyncRequest(map[string]string{domain.PropertyTopologyName: "desc1"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := e.orch.ScanAll(ctx, domain.TriggerScheduled)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := e.orch.Resync(ctx, req)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, e.metrics.artifacts[domain.OutcomeCreated], "each artifact is created exactly once")
	assert.Contains(t, e.readArtifact(t, e.descDir, "desc1"), "HIVE")
}
