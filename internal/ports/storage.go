package ports

import (
	"context"
	"io"
)

// FileStorage keeps uploaded media bytes. The locator returned by Save is
// stored on the asset as-is and handed back to Open.
type FileStorage interface {
	Save(ctx context.Context, name string, body io.Reader, size int64, contentType string) (string, error)
	Open(ctx context.Context, locator string) (io.ReadCloser, error)
}
