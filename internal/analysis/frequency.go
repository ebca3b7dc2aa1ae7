package analysis

import (
	"sort"

	"github.com/MisterMushn/bilanzieren/internal/tabular"
	"github.com/MisterMushn/bilanzieren/pkg/contracts/domain"
)

// DefaultMinTokenLen is the minimum token length in runes when the
// caller does not specify one.
const DefaultMinTokenLen = 2

// tokenBag counts token occurrences and remembers first-insertion
// order, which breaks ranking ties deterministically.
type tokenBag struct {
	counts map[string]int
	order  []string
	total  int
}

func newTokenBag() *tokenBag {
	return &tokenBag{counts: make(map[string]int)}
}

func (b *tokenBag) add(token string) {
	if _, seen := b.counts[token]; !seen {
		b.order = append(b.order, token)
	}
	b.counts[token]++
	b.total++
}

// MostCommon scans one column of the table and returns the top k
// keyword frequencies, ranked by descending count with ties broken by
// first-encountered order. Null cells contribute no tokens. Share is
// each count divided by the whole bag's total, so the returned shares
// need not sum to 1. An empty bag yields an empty result, not an
// error. The function is pure: identical inputs always produce
// identical output, which makes caller-side memoization safe.
func MostCommon(t *tabular.Table, column string, k, minLen int) ([]domain.FrequencyRow, error) {
	values, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	if minLen <= 0 {
		minLen = DefaultMinTokenLen
	}

	bag := newTokenBag()
	for _, v := range values {
		if v == nil {
			continue
		}
		for _, tok := range Tokenize(tabular.ValueString(v), minLen) {
			bag.add(tok)
		}
	}
	if bag.total == 0 {
		return []domain.FrequencyRow{}, nil
	}

	ranked := make([]string, len(bag.order))
	copy(ranked, bag.order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return bag.counts[ranked[i]] > bag.counts[ranked[j]]
	})
	if k < 0 {
		k = 0
	}
	if k > len(ranked) {
		k = len(ranked)
	}

	rows := make([]domain.FrequencyRow, 0, k)
	for _, tok := range ranked[:k] {
		rows = append(rows, domain.FrequencyRow{
			Keyword: tok,
			Count:   bag.counts[tok],
			Share:   float64(bag.counts[tok]) / float64(bag.total),
		})
	}
	return rows, nil
}
