package match

import (
	"sort"
	"strings"

	"github.com/poppitai/poppit/internal/models"
)

// phraseMatchScore is the raw score awarded when one normalized text fully
// contains the other.
const phraseMatchScore = 10

// followUpPhrases mark a query as a continuation of the previous answer.
var followUpPhrases = []string{
	"example", "more", "explain", "detail", "elaborate",
	"tell me more", "what else", "continue", "go on",
}

// Match is a scored corpus hit.
type Match struct {
	Instruction string
	Response    string
	Score       float64
}

// Engine scores queries against a fixed corpus. Pure; safe for concurrent
// reads once constructed.
type Engine struct {
	entries []models.KnowledgeEntry

	// Normalized instruction text and its token slice, precomputed per entry.
	normalized []string
	entryToks  [][]string
}

// NewEngine builds an engine over the loaded corpus. Entry order is
// significant: earlier entries win score ties.
func NewEngine(entries []models.KnowledgeEntry) *Engine {
	e := &Engine{
		entries:    entries,
		normalized: make([]string, len(entries)),
		entryToks:  make([][]string, len(entries)),
	}
	for i, entry := range entries {
		e.normalized[i] = Normalize(entry.Instruction)
		e.entryToks[i] = tokens(e.normalized[i])
	}
	return e
}

// Len reports the corpus size.
func (e *Engine) Len() int { return len(e.entries) }

// BestMatch scores every entry against the query and returns the best one.
// The boolean is false when the corpus is empty or no entry scored above
// zero. The query is normalized internally.
func (e *Engine) BestMatch(query string) (Match, bool) {
	normQuery := Normalize(query)
	queryToks := tokens(normQuery)
	if len(queryToks) == 0 {
		return Match{}, false
	}
	expandedQuery := Expand(queryToks)

	var best Match
	found := false
	for i := range e.entries {
		score := e.scoreEntry(i, normQuery, queryToks, expandedQuery)
		// Strictly greater: the first entry seen keeps ties.
		if score > best.Score {
			best = Match{
				Instruction: e.entries[i].Instruction,
				Response:    e.entries[i].Response,
				Score:       score,
			}
			found = true
		}
	}
	return best, found
}

// scoreEntry computes the normalized score of entry i for the query.
func (e *Engine) scoreEntry(i int, normQuery string, queryToks []string, expandedQuery map[string]struct{}) float64 {
	entryText := e.normalized[i]
	entryToks := e.entryToks[i]
	if len(entryToks) == 0 {
		return 0
	}

	raw := 0
	if strings.Contains(entryText, normQuery) || strings.Contains(normQuery, entryText) {
		raw += phraseMatchScore
	}

	expandedEntry := Expand(entryToks)
	for tok := range expandedQuery {
		if _, ok := expandedEntry[tok]; ok {
			raw++
		}
	}

	// Normalize by the longer of the two raw token sequences so neither long
	// queries nor long entries are favored.
	longest := len(entryToks)
	if len(queryToks) > longest {
		longest = len(queryToks)
	}
	return float64(raw) / float64(longest)
}

// Classify maps a score to a coarse confidence label. The 0.5/0.7 boundaries
// are independent of the retrieval-acceptance threshold (0.3); scores in
// (0.3, 0.5] therefore land on Low even though they were accepted. Both
// constants are kept as-is.
func Classify(score float64) models.Confidence {
	switch {
	case score > 0.7:
		return models.ConfidenceHigh
	case score > 0.5:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// Suggest returns up to limit corpus instructions with at least one partial
// token match (substring containment either direction, no synonym
// expansion), ranked by match count. Equal counts keep corpus order.
func (e *Engine) Suggest(query string, limit int) []string {
	queryToks := tokens(Normalize(query))
	if len(queryToks) == 0 || limit <= 0 {
		return nil
	}

	type candidate struct {
		index int
		count int
	}
	var candidates []candidate
	for i := range e.entries {
		count := 0
		for _, qt := range queryToks {
			for _, et := range e.entryToks[i] {
				if strings.Contains(et, qt) || strings.Contains(qt, et) {
					count++
					break
				}
			}
		}
		if count > 0 {
			candidates = append(candidates, candidate{index: i, count: count})
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].count > candidates[b].count
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = e.entries[c.index].Instruction
	}
	return out
}

// IsFollowUp reports whether a normalized query asks to continue the previous
// answer. The caller is responsible for having a previous answer to return.
func IsFollowUp(normalizedQuery string) bool {
	for _, phrase := range followUpPhrases {
		if strings.Contains(normalizedQuery, phrase) {
			return true
		}
	}
	return false
}
