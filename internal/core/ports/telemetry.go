package ports

import (
	"context"
	"io"
)

// Telemetry records the progress of a planning pass.
//
//go:generate mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks
type Telemetry interface {
	// Record starts a new vertex and returns a context carrying it.
	Record(ctx context.Context, name string) (context.Context, Vertex)
	// Close flushes and closes the recording session.
	Close() error
}

// Vertex is one recorded unit of work.
type Vertex interface {
	// Stdout returns a writer for informational output attached to the vertex.
	Stdout() io.Writer
	// Complete marks the vertex as finished, successfully when err is nil.
	Complete(err error)
}
