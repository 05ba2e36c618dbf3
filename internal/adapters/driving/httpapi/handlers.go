package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
)

type artifactResponse struct {
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	Path    string `json:"path,omitempty"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

type fileResponse struct {
	Path      string             `json:"path"`
	Skipped   bool               `json:"skipped,omitempty"`
	Error     string             `json:"error,omitempty"`
	Artifacts []artifactResponse `json:"artifacts,omitempty"`
}

type reportResponse struct {
	ID         string    `json:"id"`
	Trigger    string    `json:"trigger"`
	Topology   string    `json:"topology,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
	DurationMS int64     `json:"duration_ms"`

	FilesSeen      int `json:"files_seen"`
	FilesProcessed int `json:"files_processed"`
	FilesSkipped   int `json:"files_skipped"`
	FilesFailed    int `json:"files_failed"`

	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`

	Files []fileResponse `json:"files,omitempty"`
}

type statusResponse struct {
	SourceDir    string          `json:"source_dir"`
	Running      int             `json:"running"`
	TrackedFiles int             `json:"tracked_files"`
	LastScan     *reportResponse `json:"last_scan,omitempty"`
}

func toReportResponse(r *domain.ScanReport) *reportResponse {
	if r == nil {
		return nil
	}
	resp := &reportResponse{
		ID:             r.ID,
		Trigger:        r.Trigger.String(),
		Topology:       r.Topology,
		StartedAt:      r.StartedAt,
		EndedAt:        r.EndedAt,
		DurationMS:     r.Duration().Milliseconds(),
		FilesSeen:      r.FilesSeen,
		FilesProcessed: r.FilesProcessed,
		FilesSkipped:   r.FilesSkipped,
		FilesFailed:    r.FilesFailed,
		Created:        r.Created,
		Updated:        r.Updated,
		Unchanged:      r.Unchanged,
		Failed:         r.Failed,
	}

	for _, f := range r.Files {
		// Skipped files carry nothing worth reporting
		if f.Skipped {
			continue
		}
		fr := fileResponse{Path: f.Path}
		if f.Err != nil {
			fr.Error = f.Err.Error()
		}
		for _, a := range f.Artifacts {
			ar := artifactResponse{
				Kind:    a.Kind.String(),
				Name:    a.Name,
				Path:    a.Path,
				Outcome: a.Outcome.String(),
			}
			if a.Err != nil {
				ar.Error = a.Err.Error()
			}
			fr.Artifacts = append(fr.Artifacts, ar)
		}
		resp.Files = append(resp.Files, fr)
	}
	return resp
}

// postResync handles a notification carrying the full property set.
func (s *Server) postResync(ctx context.Context, w http.ResponseWriter, r *http.Request, _ map[string]string) error {
	props, err := readProperties(r, false)
	if err != nil {
		return err
	}
	report, err := s.listener.OnConfigurationChange(ctx, props)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, toReportResponse(report))
}

// postTopologyResync takes the topology from the path. A body, if present,
// supplies the remaining properties.
func (s *Server) postTopologyResync(ctx context.Context, w http.ResponseWriter, r *http.Request, vars map[string]string) error {
	props, err := readProperties(r, true)
	if err != nil {
		return err
	}
	props[domain.PropertyTopologyName] = strings.TrimSpace(vars["name"])

	report, err := s.listener.OnConfigurationChange(ctx, props)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, toReportResponse(report))
}

func (s *Server) postScan(ctx context.Context, w http.ResponseWriter, _ *http.Request, _ map[string]string) error {
	report, err := s.syncOrch.ScanAll(ctx, domain.TriggerManual)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, toReportResponse(report))
}

func (s *Server) getStatus(ctx context.Context, w http.ResponseWriter, _ *http.Request, _ map[string]string) error {
	status, err := s.syncOrch.Status(ctx)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, statusResponse{
		SourceDir:    status.SourceDir,
		Running:      status.Running,
		TrackedFiles: status.TrackedFiles,
		LastScan:     toReportResponse(status.LastScan),
	})
}
