package catalog

import "time"

// NovelStatus describes the publication state reported by the source.
type NovelStatus string

const (
	NovelOngoing   NovelStatus = "ongoing"
	NovelCompleted NovelStatus = "completed"
	NovelUnknown   NovelStatus = "unknown"
)

// ParseNovelStatus maps free-form source status text onto a known value.
func ParseNovelStatus(value string) NovelStatus {
	switch normalizeTitleFold(value) {
	case "ongoing", "serializing", "in progress":
		return NovelOngoing
	case "completed", "complete", "finished":
		return NovelCompleted
	default:
		return NovelUnknown
	}
}

// Novel is a catalog entry for a single work.
type Novel struct {
	ID        int64
	Title     string
	Slug      string
	Author    string
	Synopsis  string
	CoverURL  string
	SourceURL string
	Status    NovelStatus
	Language  string
	Ingested  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Chapter belongs to exactly one novel. Identity within a novel is the
// chapter number; number and ownership are immutable once created.
type Chapter struct {
	ID        int64
	NovelID   int64
	Number    int
	Title     string
	RawText   string
	CleanText string
	WordCount int
	Published bool
	Price     float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TitleEntry is the slice of novel identity used for reconciliation matching.
type TitleEntry struct {
	ID        int64
	Title     string
	Slug      string
	SourceURL string
}
