package bunx

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// QueryRecorder receives one call per executed query.
type QueryRecorder interface {
	RecordQuery(ctx context.Context, operation string, duration time.Duration, err error)
}

// MetricsHook is a bun.QueryHook reporting every query to a QueryRecorder.
type MetricsHook struct {
	recorder QueryRecorder
}

var _ bun.QueryHook = (*MetricsHook)(nil)

// NewMetricsHook wraps r as a query hook.
func NewMetricsHook(r QueryRecorder) *MetricsHook {
	return &MetricsHook{recorder: r}
}

func (h *MetricsHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *MetricsHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	h.recorder.RecordQuery(ctx, event.Operation(), time.Since(event.StartTime), event.Err)
}
