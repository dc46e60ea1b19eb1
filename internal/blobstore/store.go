package blobstore

import "context"

// Store is a key-value blob interface over per-novel artifacts. Writes are
// upserts: putting the same key twice overwrites, so repeated ingestion of
// the same source converges on the same objects.
type Store interface {
	// Put writes payload under key, overwriting any existing object.
	Put(ctx context.Context, key string, payload []byte, contentType string) error
	// Exists reports whether key holds an object, without reading it.
	Exists(ctx context.Context, key string) (bool, error)
	// Get retrieves the full payload stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
	// ListNovelSlugs enumerates every novel namespace present in the store.
	ListNovelSlugs(ctx context.Context) ([]string, error)
	// PublicURL returns the externally reachable URL for key, or "" when
	// the store has no public base configured.
	PublicURL(key string) string
}
