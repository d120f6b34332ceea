package safe_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/polyconn/pkg/utils/safe"
)

type closer struct {
	closed bool
	err    error
}

func (c *closer) Close() error {
	c.closed = true
	return c.err
}

type brokenWriter struct{}

func (brokenWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestClose(t *testing.T) {
	ctx := context.Background()

	c := &closer{err: errors.New("already closed")}
	safe.Close(ctx, c)
	gt.Bool(t, c.closed).True()

	safe.Close(ctx, nil)
}

func TestWrite(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	safe.Write(ctx, &buf, []byte("ok"))
	gt.Value(t, buf.String()).Equal("ok")

	safe.Write(ctx, brokenWriter{}, []byte("lost"))
	safe.Write(ctx, nil, []byte("ignored"))
}
