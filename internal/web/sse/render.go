package sse

import (
	"bytes"
	"context"
	"sync"

	"github.com/a-h/templ"
)

var renderBuffers = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// renderFragment renders c for use as event data
func renderFragment(ctx context.Context, c templ.Component) (string, error) {
	buf := renderBuffers.Get().(*bytes.Buffer)
	buf.Reset()
	defer renderBuffers.Put(buf)

	if err := c.Render(ctx, buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
