package safe

import (
	"context"
	"io"

	"github.com/secmon-lab/polyconn/pkg/utils/logging"
)

// Close closes c and logs a failure instead of returning it. Nil is ignored.
func Close(ctx context.Context, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.From(ctx).Warn("close failed", "error", err)
	}
}

// Write writes data to w and logs a failure. Used once a response status has
// already been sent and the error can no longer reach the client.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	if n, err := w.Write(data); err != nil {
		logging.From(ctx).Warn("write failed", "error", err, "written", n, "size", len(data))
	}
}
