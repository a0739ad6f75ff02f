package transport

import (
	"context"
)

// Null discards every payload. It backs the "null" scheme so an
// application can keep its instrumentation while sending nowhere.
type Null struct{}

func (t *Null) Open(ctx context.Context) error { return nil }

func (t *Null) Write(p []byte) error { return nil }

func (t *Null) Close() error { return nil }
