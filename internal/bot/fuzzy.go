package bot

import (
	"regexp"

	"github.com/hbollon/go-edlib"

	"crazyones/internal/store"
)

// canonicalTags are the OS families Apple ships updates for, in the order
// suggestions are offered.
var canonicalTags = []string{"ios", "ipados", "macos", "watchos", "tvos", "visionos"}

const (
	// verbCutoff is the similarity floor for command and locale-code
	// suggestions.
	verbCutoff = 0.6
	// tagCutoff is looser: OS tokens are short and one typo weighs heavy.
	tagCutoff = 0.5
)

// similarity is a deterministic Damerau-Levenshtein ratio in [0, 1].
// Transpositions count as single edits, which is what keyboard typos
// mostly are.
func similarity(a, b string) float64 {
	score, err := edlib.StringsSimilarity(a, b, edlib.DamerauLevenshtein)
	if err != nil {
		return 0
	}
	return float64(score)
}

// closest returns the candidate most similar to input at or above cutoff,
// or "" when nothing qualifies. Ties go to the earlier candidate.
func closest(input string, candidates []string, cutoff float64) string {
	best, bestScore := "", cutoff
	for _, c := range candidates {
		score := similarity(input, c)
		if score > bestScore || (score == bestScore && best == "") {
			best, bestScore = c, score
		}
	}
	return best
}

// tagCandidates returns the canonical tokens that occur word-bounded in any
// record name, preserving canonical order. Suggesting a token the store
// never mentions would only lead to an empty result.
func tagCandidates(records []store.SecurityUpdate) []string {
	var out []string
	for _, tag := range canonicalTags {
		re := wordRe(tag)
		for _, rec := range records {
			if re.MatchString(rec.Name) {
				out = append(out, tag)
				break
			}
		}
	}
	return out
}

// filterByTag keeps the records whose name contains tag as a whole word,
// case-insensitively.
func filterByTag(records []store.SecurityUpdate, tag string) []store.SecurityUpdate {
	re := wordRe(tag)
	var out []store.SecurityUpdate
	for _, rec := range records {
		if re.MatchString(rec.Name) {
			out = append(out, rec)
		}
	}
	return out
}

func wordRe(token string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(token) + `\b`)
}
