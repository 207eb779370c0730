package telemetry

import (
	"context"
	"io"

	"go.trai.ch/draft/internal/core/ports"
)

// NoOp is a ports.Telemetry that records nothing.
type NoOp struct{}

// NewNoOp creates a new NoOp.
func NewNoOp() NoOp {
	return NoOp{}
}

// Record returns ctx unchanged and a vertex that discards its output.
func (NoOp) Record(ctx context.Context, _ string) (context.Context, ports.Vertex) {
	return ctx, noopVertex{}
}

// Close does nothing.
func (NoOp) Close() error { return nil }

type noopVertex struct{}

func (noopVertex) Stdout() io.Writer { return io.Discard }

func (noopVertex) Complete(error) {}
