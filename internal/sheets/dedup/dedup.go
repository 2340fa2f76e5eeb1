// Package dedup collapses concurrent downloads of the same grid source into
// one. It keeps nothing between calls: every refresh reads the sheet again.
package dedup

import (
	"context"
	"fmt"
	"time"

	ports "painel/internal/sheets"

	"golang.org/x/sync/singleflight"
)

// Reader shares one in-flight download between callers. A caller that gives
// up does not cancel it for the others.
type Reader struct {
	next    ports.GridReader
	key     string
	timeout time.Duration
	group   singleflight.Group
}

var (
	_ ports.GridReader = (*Reader)(nil)
	_ ports.Named      = (*Reader)(nil)
)

// New wraps next. timeout bounds the shared download.
func New(next ports.GridReader, timeout time.Duration) *Reader {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Reader{
		next:    next,
		key:     ports.SourceName(next),
		timeout: timeout,
	}
}

// Source reports the wrapped source.
func (r *Reader) Source() string { return r.key }

func (r *Reader) ReadGrid(ctx context.Context) ([][]string, error) {
	ch := r.group.DoChan(r.key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()
		return r.next.ReadGrid(fctx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		rows, ok := res.Val.([][]string)
		if !ok {
			return nil, fmt.Errorf("dedup reader: unexpected value %T", res.Val)
		}
		return rows, nil
	}
}
