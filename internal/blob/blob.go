package blob

import "context"

// Store is the uploaded-file storage the pipeline reads from. Implementations
// return the object bytes together with the stored content type.
type Store interface {
	Download(ctx context.Context, objectPath string) ([]byte, string, error)
}
