// Package sheets defines the grid source port and its adapters. A grid is the
// whole worksheet as rows of text cells, short rows allowed.
package sheets

import (
	"context"
	"errors"
)

// ErrEmptyGrid is returned by sources that received a document with no rows.
var ErrEmptyGrid = errors.New("grid source returned no rows")

// Ports for outbound adapters.
type (
	// GridReader downloads the current worksheet. Implementations must not
	// serve stale data.
	GridReader interface {
		ReadGrid(ctx context.Context) ([][]string, error)
	}

	// Named is implemented by readers that can describe where they read from,
	// for logs and the readiness probe.
	Named interface {
		Source() string
	}
)

// SourceName returns r's description, or "unknown".
func SourceName(r GridReader) string {
	if n, ok := r.(Named); ok {
		return n.Source()
	}
	return "unknown"
}
