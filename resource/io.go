package resource

import (
	"context"
	"io"
)

// RateLimitedReader throttles an asset stream to the controller's IO limit.
type RateLimitedReader struct {
	ctx context.Context
	r   io.Reader
	rc  *Controller
}

// NewRateLimitedReader wraps r. A nil controller disables throttling.
func NewRateLimitedReader(ctx context.Context, r io.Reader, rc *Controller) *RateLimitedReader {
	return &RateLimitedReader{ctx: ctx, r: r, rc: rc}
}

// Read reads from the underlying stream and then waits until the limiter
// grants the bytes actually returned, so short reads are charged exactly.
func (r *RateLimitedReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		if werr := r.rc.AcquireIO(r.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}
