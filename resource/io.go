package resource

import (
	"context"
	"io"
)

// ThrottledReader wraps a catalog ingest stream with the controller's ingest
// rate limit. Waiting happens before the read, sized by the buffer, so a
// slow limit backpressures the decoder instead of buffering unbounded data.
type ThrottledReader struct {
	r   io.Reader
	rc  *Controller
	ctx context.Context
}

// NewThrottledReader creates a reader throttled by rc's ingest limit.
func NewThrottledReader(ctx context.Context, r io.Reader, rc *Controller) *ThrottledReader {
	return &ThrottledReader{r: r, rc: rc, ctx: ctx}
}

func (t *ThrottledReader) Read(p []byte) (int, error) {
	if err := t.rc.AcquireIngest(t.ctx, len(p)); err != nil {
		return 0, err
	}
	return t.r.Read(p)
}
