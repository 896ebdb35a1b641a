package storage

import (
	"context"
	"io"
)

// Store defines the interface for an asset storage backend.
type Store interface {
	// Save writes the reader to key and returns the number of bytes stored.
	Save(ctx context.Context, key string, reader io.Reader, contentType string) (int64, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// PublicURL returns the URL clients use to fetch key.
	PublicURL(key string) string
	// KeyFromURL recovers the key of a URL produced by PublicURL. It reports
	// false for URLs that do not point at this store.
	KeyFromURL(rawURL string) (string, bool)
}
