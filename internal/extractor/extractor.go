package extractor

import (
	"context"
	"strings"
)

// ChapterPayload is one chapter as delivered by a source site.
type ChapterPayload struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	RawText string `json:"rawText"`
}

// NovelPayload is the full extraction result for one source reference.
type NovelPayload struct {
	Title    string           `json:"title"`
	Author   string           `json:"author"`
	Synopsis string           `json:"synopsis"`
	CoverURL string           `json:"coverUrl"`
	Status   string           `json:"status"`
	Language string           `json:"language"`
	Chapters []ChapterPayload `json:"chapters"`
}

// Extractor pulls a novel and its chapters from an external source. The
// concrete HTML-scraping adapter for any given site lives behind this
// interface; the pipeline only sees structured payloads.
type Extractor interface {
	// Fetch retrieves the novel identified by sourceURL. Errors are
	// terminal for the calling job.
	Fetch(ctx context.Context, sourceURL string) (*NovelPayload, error)
	// FetchCover downloads the cover image bytes and reports the content
	// type the remote returned.
	FetchCover(ctx context.Context, coverURL string) ([]byte, string, error)
}

// Validate checks that a payload carries the minimum fields the pipeline
// needs. Chapters may be empty; a novel page with no released chapters is a
// legitimate extraction result.
func (p *NovelPayload) Validate() error {
	if p == nil {
		return errMissing("payload")
	}
	if strings.TrimSpace(p.Title) == "" {
		return errMissing("title")
	}
	for _, ch := range p.Chapters {
		if ch.Number <= 0 {
			return errMissing("chapter number")
		}
	}
	return nil
}
