package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opencontainers/go-digest"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
	"github.com/custodia-labs/gateway-sync/internal/core/ports/driven"
	"github.com/custodia-labs/gateway-sync/internal/core/ports/driving"
	"github.com/custodia-labs/gateway-sync/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncOrchestrator = (*SyncOrchestrator)(nil)

// SyncOrchestrator turns descriptor files into provider config and
// descriptor artifacts. Each file, and each resource within a file, fails
// independently: one bad resource never blocks its siblings and one bad
// file never blocks the rest of the directory.
type SyncOrchestrator struct {
	cfg      domain.MonitorSettings
	source   driven.SourceReader
	parser   driven.DescriptorParser
	renderer driven.Renderer
	gate     *ChangeGate
	records  driven.FileRecordStore
	metrics  driven.SyncMetrics

	// Status tracking
	mu       sync.RWMutex
	running  int
	lastScan *domain.ScanReport

	now func() time.Time
}

// NewSyncOrchestrator creates a new sync orchestrator.
// The metrics sink is optional - if nil, nothing is observed.
func NewSyncOrchestrator(
	cfg domain.MonitorSettings,
	source driven.SourceReader,
	parser driven.DescriptorParser,
	renderer driven.Renderer,
	artifacts driven.ArtifactStore,
	records driven.FileRecordStore,
	metrics driven.SyncMetrics,
) *SyncOrchestrator {
	if cfg.Extension == "" {
		cfg.Extension = domain.DefaultDescriptorExtension
	}
	return &SyncOrchestrator{
		cfg:      cfg,
		source:   source,
		parser:   parser,
		renderer: renderer,
		gate:     NewChangeGate(artifacts),
		records:  records,
		metrics:  metrics,
		now:      time.Now,
	}
}

// ProcessFile synchronises a single descriptor file.
func (o *SyncOrchestrator) ProcessFile(ctx context.Context, path string, opts domain.ParseOptions) domain.FileReport {
	file, err := o.source.Stat(ctx, path)
	if err != nil {
		return o.unreadable(path, err)
	}
	content, err := o.source.Read(ctx, path)
	if err != nil {
		return o.unreadable(path, err)
	}

	report := o.process(ctx, path, opts)
	if !opts.Targeted() && report.Succeeded() {
		o.record(ctx, file, digest.FromBytes(content).String())
	}
	return report
}

// ScanAll processes every descriptor file whose content changed since it
// was last recorded.
func (o *SyncOrchestrator) ScanAll(ctx context.Context, trigger domain.Trigger) (*domain.ScanReport, error) {
	report := o.begin(trigger, "")
	defer o.finish(report)

	files, err := o.list(ctx)
	if err != nil {
		return report, err
	}

	seen := make(map[string]bool, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		seen[file.Path] = true
		report.Add(o.scanFile(ctx, file))
	}

	o.forgetMissing(ctx, seen)
	return report, nil
}

// Resync reprocesses every descriptor file, restricted to one topology.
// File records are neither consulted nor updated.
func (o *SyncOrchestrator) Resync(ctx context.Context, req domain.ResyncRequest) (*domain.ScanReport, error) {
	if strings.TrimSpace(req.Topology) == "" {
		return nil, fmt.Errorf("%w: topology name is missing", domain.ErrInvalidNotification)
	}

	report := o.begin(domain.TriggerNotification, req.Topology)
	defer o.finish(report)

	files, err := o.list(ctx)
	if err != nil {
		return report, err
	}

	opts := req.ParseOptions()
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if _, err := o.source.Stat(ctx, file.Path); err != nil {
			report.Add(o.unreadable(file.Path, err))
			continue
		}
		report.Add(o.process(ctx, file.Path, opts))
	}
	return report, nil
}

// Status returns the current state of the orchestrator.
func (o *SyncOrchestrator) Status(ctx context.Context) (*driving.SyncStatus, error) {
	records, err := o.records.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list file records: %w", err)
	}

	o.mu.RLock()
	defer o.mu.RUnlock()

	status := &driving.SyncStatus{
		SourceDir:    o.cfg.EffectiveSourceDir(),
		Running:      o.running,
		TrackedFiles: len(records),
	}
	if o.lastScan != nil {
		// Return a copy to avoid race conditions
		last := *o.lastScan
		status.LastScan = &last
	}
	return status, nil
}

// scanFile applies the record shortcut before processing a file.
func (o *SyncOrchestrator) scanFile(ctx context.Context, file domain.SourceFile) domain.FileReport {
	rec, err := o.records.Get(ctx, file.Path)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.Warn("Failed to load record for %s, processing anyway: %v", file.Path, err)
	}
	if rec.Unchanged(file) {
		logger.Debug("Skipping unchanged %s", file.Path)
		return domain.FileReport{Path: file.Path, Skipped: true}
	}

	content, err := o.source.Read(ctx, file.Path)
	if err != nil {
		return o.unreadable(file.Path, err)
	}
	sum := digest.FromBytes(content).String()

	// Touched but identical content: refresh the stat so the next tick
	// can skip without reading.
	if rec != nil && rec.Digest == sum {
		logger.Debug("Skipping %s, content digest unchanged", file.Path)
		o.record(ctx, file, sum)
		return domain.FileReport{Path: file.Path, Skipped: true}
	}

	report := o.process(ctx, file.Path, domain.ParseOptions{})
	if report.Succeeded() {
		o.record(ctx, file, sum)
	}
	return report
}

// process parses one file and synchronises every resource in it.
func (o *SyncOrchestrator) process(ctx context.Context, path string, opts domain.ParseOptions) domain.FileReport {
	report := domain.FileReport{Path: path}

	result, err := o.parser.Parse(ctx, path, opts)
	if err != nil {
		logger.With(logger.Fields{"path": path, "error": err}).Error("failed to parse descriptor file")
		o.observeFailure(driven.StageParse)
		report.Err = err
		return report
	}

	names := make([]string, 0, len(result.Providers))
	for name := range result.Providers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cfg := result.Providers[name]
		report.Artifacts = append(report.Artifacts, o.syncArtifact(ctx,
			domain.ArtifactSharedProvider, name, o.cfg.SharedProvidersDir,
			func() ([]byte, error) { return o.renderer.RenderProviderConfig(cfg) }))
	}

	for _, desc := range result.Descriptors {
		report.Artifacts = append(report.Artifacts, o.syncArtifact(ctx,
			domain.ArtifactDescriptor, desc.Name, o.cfg.DescriptorsDir,
			func() ([]byte, error) { return o.renderer.RenderDescriptor(desc) }))
	}

	for _, failure := range result.Failures {
		logger.With(logger.Fields{
			"path":     path,
			"kind":     failure.Kind.String(),
			"resource": failure.Name,
		}).WithError(failure.Err).Error("failed to produce resource")
		o.observeFailure(driven.StageParse)
		report.Artifacts = append(report.Artifacts, domain.ArtifactResult{
			Kind:    failure.Kind,
			Name:    failure.Name,
			Outcome: domain.OutcomeFailed,
			Err:     failure.Err,
		})
	}

	return report
}

// syncArtifact renders one resource and passes it through the change gate.
func (o *SyncOrchestrator) syncArtifact(
	ctx context.Context,
	kind domain.ArtifactKind,
	name, dir string,
	render func() ([]byte, error),
) domain.ArtifactResult {
	result := domain.ArtifactResult{Kind: kind, Name: name}
	fields := logger.Fields{"kind": kind.String(), "resource": name}

	if !validResourceName(name) {
		result.Outcome = domain.OutcomeFailed
		result.Err = fmt.Errorf("%w: resource name %q", domain.ErrInvalidInput, name)
		logger.With(fields).WithError(result.Err).Error("failed to produce resource")
		o.observeFailure(driven.StageRender)
		return result
	}
	result.Path = filepath.Join(dir, name+domain.ArtifactExtension)
	fields["path"] = result.Path

	content, err := render()
	if err != nil {
		result.Outcome = domain.OutcomeFailed
		result.Err = fmt.Errorf("%w: %s %s: %w", domain.ErrRender, kind, name, err)
		logger.With(fields).WithError(err).Error("failed to produce resource")
		o.observeFailure(driven.StageRender)
		return result
	}

	outcome, err := o.gate.WriteIfChanged(ctx, domain.Artifact{
		Kind:    kind,
		Name:    name,
		Path:    result.Path,
		Content: content,
	})
	result.Outcome = outcome
	if err != nil {
		result.Err = err
		logger.With(fields).WithError(err).Error("failed to produce resource")
		o.observeFailure(driven.StageWrite)
		return result
	}

	if o.metrics != nil {
		o.metrics.ObserveArtifact(kind, outcome)
	}
	return result
}

// validResourceName rejects names that would escape the output directory.
func validResourceName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

func (o *SyncOrchestrator) list(ctx context.Context) ([]domain.SourceFile, error) {
	dir := o.cfg.EffectiveSourceDir()
	files, err := o.source.List(ctx, dir, o.cfg.Extension)
	if err != nil {
		logger.With(logger.Fields{"dir": dir, "error": err}).Error("failed to list descriptor files")
		o.observeFailure(driven.StageList)
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	return files, nil
}

func (o *SyncOrchestrator) unreadable(path string, err error) domain.FileReport {
	logger.With(logger.Fields{"path": path, "error": err}).Warn("failed to monitor descriptor file")
	o.observeFailure(driven.StageRead)
	if !errors.Is(err, domain.ErrUnreadable) {
		err = fmt.Errorf("%w: %w", domain.ErrUnreadable, err)
	}
	return domain.FileReport{Path: path, Err: err}
}

func (o *SyncOrchestrator) record(ctx context.Context, file domain.SourceFile, sum string) {
	rec := domain.FileRecord{
		Path:        file.Path,
		ModTime:     file.ModTime,
		Size:        file.Size,
		Digest:      sum,
		ProcessedAt: o.now(),
	}
	if err := o.records.Save(ctx, rec); err != nil {
		logger.Warn("Failed to save record for %s: %v", file.Path, err)
	}
}

// forgetMissing drops records of files that left the source directory.
func (o *SyncOrchestrator) forgetMissing(ctx context.Context, seen map[string]bool) {
	records, err := o.records.List(ctx)
	if err != nil {
		logger.Warn("Failed to list file records: %v", err)
		return
	}
	for _, rec := range records {
		if seen[rec.Path] {
			continue
		}
		if err := o.records.Delete(ctx, rec.Path); err != nil {
			logger.Warn("Failed to forget %s: %v", rec.Path, err)
			continue
		}
		logger.Debug("Forgot removed descriptor file %s", rec.Path)
	}
}

func (o *SyncOrchestrator) begin(trigger domain.Trigger, topology string) *domain.ScanReport {
	o.mu.Lock()
	o.running++
	o.mu.Unlock()

	return &domain.ScanReport{
		ID:        uuid.New().String(),
		Trigger:   trigger,
		Topology:  topology,
		StartedAt: o.now(),
	}
}

func (o *SyncOrchestrator) finish(report *domain.ScanReport) {
	report.EndedAt = o.now()

	o.mu.Lock()
	o.running--
	last := *report
	o.lastScan = &last
	o.mu.Unlock()

	if o.metrics != nil {
		o.metrics.ObserveScan(report.Trigger, report.Duration())
	}

	entry := logger.With(logger.Fields{
		"scan":      report.ID,
		"trigger":   report.Trigger.String(),
		"processed": report.FilesProcessed,
		"skipped":   report.FilesSkipped,
		"written":   report.Written(),
		"unchanged": report.Unchanged,
		"failed":    report.Failed + report.FilesFailed,
	})
	if report.Topology != "" {
		entry = entry.WithField("topology", report.Topology)
	}
	if report.Written() > 0 || report.Failed > 0 || report.FilesFailed > 0 {
		entry.Info("scan complete")
	} else {
		entry.Debug("scan complete")
	}
}

func (o *SyncOrchestrator) observeFailure(stage string) {
	if o.metrics != nil {
		o.metrics.ObserveFailure(stage)
	}
}
