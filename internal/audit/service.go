package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/ldc-construction/internal"
	auditDatamodel "github.com/frahmantamala/ldc-construction/internal/core/datamodel/audit"
	"github.com/frahmantamala/ldc-construction/internal/tenancy"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 500
	MaxExportRows    = 50000
)

type RepositoryAPI interface {
	Writer
	List(ctx context.Context, q Query) ([]*auditDatamodel.AuditLog, int64, error)
	ListAll(ctx context.Context, q Query, max int) ([]*auditDatamodel.AuditLog, error)
}

// Query filters audit rows. ConstructionGroupID matches either side of a
// transfer.
type Query struct {
	UserID              string
	Action              Action
	Resource            Resource
	ConstructionGroupID string
	StartDate           *time.Time
	EndDate             *time.Time
	Page                int
	Limit               int
}

func (q *Query) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
}

func (q Query) Offset() int {
	return (q.Page - 1) * q.Limit
}

type Service struct {
	repo     RepositoryAPI
	recorder *Recorder
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo RepositoryAPI, recorder *Recorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, recorder: recorder, logger: logger, now: time.Now}
}

func (s *Service) List(ctx context.Context, scope *tenancy.Scope, q Query) (*ListResponse, error) {
	if scope == nil || !scope.CanViewAllBranches {
		return nil, internal.ErrSuperAdminOnly
	}
	q.Normalize()

	rows, total, err := s.repo.List(ctx, q)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list audit logs", "error", err)
		return nil, internal.NewInternalError("failed to list audit logs", err)
	}

	entries := make([]EntryView, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, FromDataModel(row))
	}

	totalPages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	return &ListResponse{
		Entries: entries,
		Pagination: Pagination{
			Page:       q.Page,
			Limit:      q.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// Export renders every row matching q and records the export itself.
func (s *Service) Export(ctx context.Context, scope *tenancy.Scope, q Query, format ExportFormat) (*ExportResult, error) {
	if scope == nil || !scope.CanViewAllBranches {
		return nil, internal.ErrSuperAdminOnly
	}

	rows, err := s.repo.ListAll(ctx, q, MaxExportRows)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load audit logs for export", "error", err)
		return nil, internal.NewInternalError("failed to export audit logs", err)
	}

	result, err := Render(rows, format, s.now())
	if err != nil {
		return nil, err
	}

	s.recorder.Export(ctx, scope.UserID, ResourceSystem, map[string]interface{}{
		"type":   "audit_logs",
		"format": string(format),
		"count":  len(rows),
	})
	s.logger.InfoContext(ctx, "audit logs exported", "format", format, "count", len(rows), "user_id", scope.UserID)
	return result, nil
}

func ParseDate(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC3339", s)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
