package engine

import (
	"fmt"
	"sort"

	"github.com/h32109/stock-service/internal/feature/stocks/domain"
	"github.com/h32109/stock-service/internal/feature/stocks/domain/entity"
)

const (
	MinPageSize = 1
	MaxPageSize = 100
)

// Ranker orders matches and cuts pages out of them.
type Ranker struct {
	priority []entity.MatchKind
	rank     map[entity.MatchKind]int
}

// NewRanker returns a Ranker using priority, highest first. Kinds missing
// from priority rank below the listed ones in their default order; a nil
// priority uses AllKinds.
func NewRanker(priority []entity.MatchKind) *Ranker {
	order := make([]entity.MatchKind, 0, len(AllKinds))
	var seen KindSet
	for _, k := range priority {
		if kindBit(k) == 0 || seen.Has(k) {
			continue
		}
		seen = seen.Add(k)
		order = append(order, k)
	}
	for _, k := range AllKinds {
		if !seen.Has(k) {
			order = append(order, k)
		}
	}
	r := &Ranker{priority: order, rank: make(map[entity.MatchKind]int, len(order))}
	for i, k := range order {
		r.rank[k] = i
	}
	return r
}

// Priority returns the effective kind order.
func (r *Ranker) Priority() []entity.MatchKind { return r.priority }

// ValidatePage checks page >= 1 and size in [1,100].
func ValidatePage(page, size int) error {
	if page < 1 {
		return fmt.Errorf("%w: page %d must be >= 1", domain.ErrInvalidPagination, page)
	}
	if size < MinPageSize || size > MaxPageSize {
		return fmt.Errorf("%w: size %d outside [%d,%d]", domain.ErrInvalidPagination, size, MinPageSize, MaxPageSize)
	}
	return nil
}

func (r *Ranker) best(s KindSet) int {
	for i, k := range r.priority {
		if s.Has(k) {
			return i
		}
	}
	return len(r.priority)
}

// Order returns the codes of matches sorted by distinct kind count
// (descending), best kind priority, then code.
func (r *Ranker) Order(matches Matches) []string {
	codes := make([]string, 0, len(matches))
	for c := range matches {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool {
		a, b := matches[codes[i]], matches[codes[j]]
		if la, lb := a.Len(), b.Len(); la != lb {
			return la > lb
		}
		if pa, pb := r.best(a), r.best(b); pa != pb {
			return pa < pb
		}
		return codes[i] < codes[j]
	})
	return codes
}

// RankAndPaginate ranks matches and returns the requested page. A page past
// the end is empty but still carries the total.
func (r *Ranker) RankAndPaginate(s *Snapshot, matches Matches, page, size int) (entity.SearchPage, error) {
	if err := ValidatePage(page, size); err != nil {
		return entity.SearchPage{}, err
	}
	if err := s.usable(); err != nil {
		return entity.SearchPage{}, err
	}

	ordered := r.Order(matches)
	out := entity.SearchPage{Items: []entity.SearchResult{}, TotalCount: len(ordered)}

	// (page-1)*size は巨大な page で溢れるため、乗算前にページ数で比較する
	if page-1 >= (len(ordered)+size-1)/size {
		return out, nil
	}
	start := (page - 1) * size
	end := min(start+size, len(ordered))

	for _, code := range ordered[start:end] {
		sec, ok := s.Index.ByCode(code)
		if !ok {
			return entity.SearchPage{}, fmt.Errorf("%w: matched code %q missing from index", domain.ErrIndexUnavailable, code)
		}
		out.Items = append(out.Items, entity.SearchResult{
			Security:   sec,
			MatchKinds: matches[code].Ordered(r.priority),
			Themes:     s.Themes(sec),
		})
	}
	return out, nil
}
