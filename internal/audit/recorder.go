package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	auditDatamodel "github.com/frahmantamala/ldc-construction/internal/core/datamodel/audit"
	"github.com/frahmantamala/ldc-construction/internal/core/ids"
)

// Writer persists audit rows. Rows are append-only, so there is no update
// or delete.
type Writer interface {
	Create(ctx context.Context, log *auditDatamodel.AuditLog) error
}

// Sink accepts a prepared row. Implementations must not block the caller
// on failure and must not return errors.
type Sink interface {
	Submit(ctx context.Context, log *auditDatamodel.AuditLog)
}

// Recorder is the best-effort entry point for audit writes. None of its
// methods return an error.
type Recorder struct {
	sink   Sink
	logger *slog.Logger
	now    func() time.Time
}

func NewRecorder(sink Sink, logger *slog.Logger) *Recorder {
	return &Recorder{sink: sink, logger: logger, now: time.Now}
}

func (r *Recorder) Record(ctx context.Context, e Entry) {
	defer func() {
		if p := recover(); p != nil {
			entriesFailed.Inc()
			r.logger.Error("audit record panicked", "action", e.Action, "resource", e.Resource, "panic", fmt.Sprint(p))
		}
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	if e.IPAddress == "" || e.UserAgent == "" {
		if meta, ok := RequestMetaFromContext(ctx); ok {
			if e.IPAddress == "" {
				e.IPAddress = meta.IPAddress
			}
			if e.UserAgent == "" {
				e.UserAgent = meta.UserAgent
			}
		}
	}

	row := ToDataModel(e, ids.New(), r.now().UTC())
	r.sink.Submit(context.WithoutCancel(ctx), row)
}

// SyncSink writes in the caller's goroutine and swallows failures.
type SyncSink struct {
	writer  Writer
	logger  *slog.Logger
	timeout time.Duration
}

func NewSyncSink(writer Writer, logger *slog.Logger) *SyncSink {
	return &SyncSink{writer: writer, logger: logger, timeout: 5 * time.Second}
}

func (s *SyncSink) Submit(ctx context.Context, log *auditDatamodel.AuditLog) {
	defer func() {
		if p := recover(); p != nil {
			entriesFailed.Inc()
			s.logger.Error("audit write panicked", "action", log.Action, "resource", log.Resource, "panic", fmt.Sprint(p))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.writer.Create(ctx, log); err != nil {
		entriesFailed.Inc()
		s.logger.ErrorContext(ctx, "failed to write audit log",
			"error", err,
			"action", log.Action,
			"resource", log.Resource,
			"audit_id", log.ID)
		return
	}
	entriesRecorded.WithLabelValues(log.Action).Inc()
	s.logger.DebugContext(ctx, "audit log written", "action", log.Action, "resource", log.Resource, "audit_id", log.ID)
}
