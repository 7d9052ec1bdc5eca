package internal

import (
	"context"
	"io"
)

// Repository is where replication documents and compiled artifacts live.
type Repository interface {
	Write(ctx context.Context, path string, reader io.Reader) error
	Read(ctx context.Context, path string) (io.ReadCloser, error)
}
