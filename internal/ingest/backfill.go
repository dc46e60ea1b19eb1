package ingest

import (
	"context"
	"log/slog"

	"quill/internal/catalog"
	"quill/internal/logging"
	"quill/internal/textclean"
)

// BackfillResult summarizes a normalization backfill pass.
type BackfillResult struct {
	ChaptersScanned int
	ChaptersUpdated int
	EmptiedKept     int
}

// BackfillCleanText re-runs the text normalizer over every stored chapter and
// persists the cleaned text where it differs. Safe to run repeatedly: the
// normalizer is idempotent, so a second pass over already-clean chapters
// writes nothing.
func BackfillCleanText(ctx context.Context, cat *catalog.Store, logger *slog.Logger) (BackfillResult, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	log := logging.NewComponentLogger(logger, "backfill")

	var res BackfillResult
	novels, err := cat.ListNovels(ctx)
	if err != nil {
		return res, err
	}
	for _, novel := range novels {
		chapters, err := cat.ListChapters(ctx, novel.ID)
		if err != nil {
			return res, err
		}
		for _, ch := range chapters {
			res.ChaptersScanned++
			cleaned := textclean.Clean(ch.RawText)
			if cleaned.Outcome == textclean.OutcomeEmptied {
				res.EmptiedKept++
			}
			if cleaned.Text == ch.CleanText {
				continue
			}
			if err := cat.UpdateChapterCleanText(ctx, ch.ID, cleaned.Text); err != nil {
				return res, err
			}
			res.ChaptersUpdated++
		}
	}

	log.InfoContext(ctx, "normalization backfill finished",
		logging.Int("scanned", res.ChaptersScanned),
		logging.Int("updated", res.ChaptersUpdated),
		logging.Int("emptiedKept", res.EmptiedKept))
	return res, nil
}
