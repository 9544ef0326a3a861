package audit

import (
	"context"

	"github.com/agentkit/agentctl/models"
)

// Recorder accepts invocation records for the audit log. Recording is
// best-effort: callers never fail because an invocation could not be stored.
type Recorder interface {
	Record(ctx context.Context, inv *models.Invocation)
}

// NopRecorder discards all invocations. Used when no audit database is
// configured.
type NopRecorder struct{}

func NewNopRecorder() *NopRecorder { return &NopRecorder{} }

func (NopRecorder) Record(ctx context.Context, inv *models.Invocation) {}
