package blobstore

import (
	"fmt"
	"path"
	"strings"
)

// Artifact keys are derived purely from the novel slug and chapter number so
// a re-run of the same ingestion always targets the same objects.
const novelPrefix = "rawNovels"

// MetadataKey returns the object key for a novel's metadata document.
func MetadataKey(slug string) string {
	return path.Join(novelPrefix, slug, "metadata.json")
}

// CoverKey returns the object key for a novel's cover image.
func CoverKey(slug string) string {
	return path.Join(novelPrefix, slug, "cover.jpg")
}

// ChapterKey returns the object key for one chapter's raw text.
func ChapterKey(slug string, number int) string {
	return path.Join(novelPrefix, slug, "chapters", fmt.Sprintf("%d.txt", number))
}

// SlugFromKey extracts the novel slug from any artifact key under the novel
// namespace. Returns false when the key is outside the namespace.
func SlugFromKey(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, novelPrefix+"/")
	if !ok {
		return "", false
	}
	slug, _, _ := strings.Cut(rest, "/")
	if slug == "" {
		return "", false
	}
	return slug, true
}
