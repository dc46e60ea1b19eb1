package testsupport

import (
	"context"
	"errors"
	"sync"

	"quill/internal/extractor"
)

// FakeExtractor serves canned payloads keyed by source URL. Safe for
// concurrent use; call counts are tracked per source.
type FakeExtractor struct {
	mu       sync.Mutex
	payloads map[string]*extractor.NovelPayload
	covers   map[string][]byte
	errs     map[string]error
	calls    map[string]int
}

var _ extractor.Extractor = (*FakeExtractor)(nil)

// NewFakeExtractor builds an empty fake; seed it with Add.
func NewFakeExtractor() *FakeExtractor {
	return &FakeExtractor{
		payloads: make(map[string]*extractor.NovelPayload),
		covers:   make(map[string][]byte),
		errs:     make(map[string]error),
		calls:    make(map[string]int),
	}
}

// Add registers the payload returned for sourceURL.
func (f *FakeExtractor) Add(sourceURL string, payload extractor.NovelPayload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads[sourceURL] = &payload
}

// AddCover registers the cover bytes returned for coverURL.
func (f *FakeExtractor) AddCover(coverURL string, body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.covers[coverURL] = body
}

// FailWith makes Fetch return err for sourceURL.
func (f *FakeExtractor) FailWith(sourceURL string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[sourceURL] = err
}

// Calls reports how many times Fetch ran for sourceURL.
func (f *FakeExtractor) Calls(sourceURL string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[sourceURL]
}

func (f *FakeExtractor) Fetch(ctx context.Context, sourceURL string) (*extractor.NovelPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[sourceURL]++
	if err, ok := f.errs[sourceURL]; ok {
		return nil, err
	}
	payload, ok := f.payloads[sourceURL]
	if !ok {
		return nil, errors.New("fake extractor: unknown source " + sourceURL)
	}
	clone := *payload
	clone.Chapters = append([]extractor.ChapterPayload(nil), payload.Chapters...)
	return &clone, nil
}

func (f *FakeExtractor) FetchCover(ctx context.Context, coverURL string) ([]byte, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.covers[coverURL]
	if !ok {
		return nil, "", errors.New("fake extractor: unknown cover " + coverURL)
	}
	return append([]byte(nil), body...), "image/jpeg", nil
}
