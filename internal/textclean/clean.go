package textclean

import (
	"regexp"
	"strings"
)

// Version identifies the active pattern set. Bump when patterns change so a
// backfill pass can tell which ruleset produced stored text.
const Version = 1

// Outcome describes what cleaning did to the input.
type Outcome string

const (
	// OutcomeUnchanged means no junk patterns matched.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeCleaned means junk was removed.
	OutcomeCleaned Outcome = "cleaned"
	// OutcomeEmptied means cleaning would have removed everything, so the
	// original text was kept instead.
	OutcomeEmptied Outcome = "emptied"
)

// Result carries the cleaned text and what happened to produce it.
type Result struct {
	Text    string
	Outcome Outcome
}

// chapterHeaderPattern matches redundant "Chapter N: Title" lines that
// duplicate structured chapter metadata. Only leading lines are stripped.
var chapterHeaderPattern = regexp.MustCompile(`(?i)^chapter\s+\d+\s*[:.\-–—]?\s*.*$`)

// spamTokens are substrings injected by source sites into chapter bodies.
// A line containing any of them is dropped wherever it appears.
var spamTokens = []string{
	"please visit",
	"read the latest chapter",
	"read latest chapters at",
	"for visiting our website",
	"this chapter is updated by",
	"translated by our site",
	"support us on patreon",
	"join our discord",
	"remove ads",
	"vipnovel",
	"lightnovelpub",
	"freewebnovel",
	"novelupdates",
}

// promoPrefixes mark promotional boilerplate lines at the top of a chapter.
var promoPrefixes = []string{
	"advertisement",
	"sponsored content",
	"t/n:",
	"tl note:",
}

// Clean strips recognized junk from raw chapter text. It is pure,
// deterministic, and idempotent: Clean(Clean(x).Text).Text == Clean(x).Text.
// It never fabricates content; it only deletes matched lines and trims
// whitespace. When everything would be removed, the original text is
// returned unchanged with OutcomeEmptied so no data is lost.
func Clean(raw string) Result {
	if strings.TrimSpace(raw) == "" {
		return Result{Text: raw, Outcome: OutcomeUnchanged}
	}

	lines := strings.Split(raw, "\n")
	kept := make([]string, 0, len(lines))

	inLeading := true
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if inLeading {
			if trimmed == "" {
				continue
			}
			if chapterHeaderPattern.MatchString(trimmed) || isPromoLine(trimmed) {
				continue
			}
			inLeading = false
		}

		if isSpamLine(trimmed) {
			continue
		}
		kept = append(kept, strings.TrimRight(line, " \t"))
	}

	cleaned := strings.TrimSpace(collapseBlankRuns(kept))
	if cleaned == "" {
		return Result{Text: raw, Outcome: OutcomeEmptied}
	}
	if cleaned == raw {
		return Result{Text: raw, Outcome: OutcomeUnchanged}
	}
	return Result{Text: cleaned, Outcome: OutcomeCleaned}
}

func isSpamLine(trimmed string) bool {
	if trimmed == "" {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, token := range spamTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

func isPromoLine(trimmed string) bool {
	lower := strings.ToLower(trimmed)
	for _, prefix := range promoPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return isSpamLine(trimmed)
}

// collapseBlankRuns joins lines, reducing runs of blank lines to a single
// blank separator so repeated cleaning is stable.
func collapseBlankRuns(lines []string) string {
	var b strings.Builder
	blankPending := false
	wroteAny := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blankPending = wroteAny
			continue
		}
		if wroteAny {
			b.WriteByte('\n')
			if blankPending {
				b.WriteByte('\n')
			}
		}
		blankPending = false
		wroteAny = true
		b.WriteString(line)
	}
	return b.String()
}
