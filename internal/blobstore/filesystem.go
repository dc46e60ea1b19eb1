package blobstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"quill/internal/services"
)

// FilesystemStore persists blobs under a root directory, one file per key.
// Writes go through a temp file and rename so readers never observe a
// partially written object.
type FilesystemStore struct {
	root      string
	publicURL string
}

// NewFilesystem opens a filesystem-backed store rooted at dir. publicBaseURL
// may be empty when covers are not served externally.
func NewFilesystem(dir, publicBaseURL string) (*FilesystemStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "blobstore", "open", "blob directory is required", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrStorage, "blobstore", "open", "create blob directory", err)
	}
	return &FilesystemStore{
		root:      dir,
		publicURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

func (s *FilesystemStore) pathFor(key string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", services.Wrap(services.ErrValidation, "blobstore", "resolve", fmt.Sprintf("invalid object key %q", key), nil)
	}
	return filepath.Join(s.root, cleaned), nil
}

// Put writes payload under key, creating parent directories as needed.
// The contentType is recorded only implicitly via the key's extension; the
// filesystem backend has no metadata channel for it.
func (s *FilesystemStore) Put(ctx context.Context, key string, payload []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return services.Wrap(services.ErrStorage, "blobstore", "put", "create object directory", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".put-*")
	if err != nil {
		return services.Wrap(services.ErrStorage, "blobstore", "put", "create temp object", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return services.Wrap(services.ErrStorage, "blobstore", "put", "write object payload", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return services.Wrap(services.ErrStorage, "blobstore", "put", "close temp object", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return services.Wrap(services.ErrStorage, "blobstore", "put", "publish object", err)
	}
	return nil
}

// Exists checks for the object with a stat call only.
func (s *FilesystemStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	target, err := s.pathFor(key)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(target)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, services.Wrap(services.ErrStorage, "blobstore", "exists", "stat object", err)
	}
	return !info.IsDir(), nil
}

// Get reads the full payload for key.
func (s *FilesystemStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target, err := s.pathFor(key)
	if err != nil {
		return nil, err
	}
	payload, err := os.ReadFile(target)
	if errors.Is(err, os.ErrNotExist) {
		return nil, services.Wrap(services.ErrNotFound, "blobstore", "get", fmt.Sprintf("object %s not found", key), err)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "blobstore", "get", "read object", err)
	}
	return payload, nil
}

// ListNovelSlugs enumerates the directories under the novel namespace,
// sorted for stable audit output.
func (s *FilesystemStore) ListNovelSlugs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.root, novelPrefix))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "blobstore", "list", "read novel namespace", err)
	}
	slugs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			slugs = append(slugs, entry.Name())
		}
	}
	sort.Strings(slugs)
	return slugs, nil
}

// PublicURL derives the externally reachable URL for key from the configured
// base. Empty when no base is configured.
func (s *FilesystemStore) PublicURL(key string) string {
	if s.publicURL == "" {
		return ""
	}
	return s.publicURL + "/" + key
}
