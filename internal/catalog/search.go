package catalog

import (
	"context"
	"slices"
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// minSearchScore is the Jaro-Winkler similarity below which a title is not a match.
const minSearchScore = 0.70

// Match is a search hit.
type Match struct {
	Record Record  `json:"record"`
	Score  float64 `json:"score"`
}

// Search ranks the album's videos by title similarity to query. Titles that
// contain the whole query score 1. Ties keep newest-first order.
func (c *Catalog) Search(ctx context.Context, query string) ([]Match, error) {
	records, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	return Rank(records, query), nil
}

// Rank scores records against query and drops those below minSearchScore.
func Rank(records []Record, query string) []Match {
	q := normalizeTitle(query)
	if q == "" {
		return nil
	}

	var matches []Match
	for _, r := range records {
		if score := titleScore(q, normalizeTitle(r.Title)); score >= minSearchScore {
			matches = append(matches, Match{Record: r, Score: score})
		}
	}
	slices.SortStableFunc(matches, func(a, b Match) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	return matches
}

// titleScore compares the query with the whole title and with each
// query-length window of title words, keeping the best.
func titleScore(query, title string) float64 {
	if title == "" {
		return 0
	}
	if strings.Contains(title, query) {
		return 1
	}

	best := float64(edlib.JaroWinklerSimilarity(query, title))
	words := strings.Fields(title)
	n := len(strings.Fields(query))
	for i := 0; i+n <= len(words); i++ {
		window := strings.Join(words[i:i+n], " ")
		if s := float64(edlib.JaroWinklerSimilarity(query, window)); s > best {
			best = s
		}
	}
	return best
}

// normalizeTitle lowercases, strips accents and punctuation, and collapses
// whitespace.
func normalizeTitle(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, _ = transform.String(t, strings.ToLower(s))

	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
