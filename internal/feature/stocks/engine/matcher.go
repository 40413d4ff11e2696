package engine

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/panjf2000/ants/v2"

	"github.com/h32109/stock-service/internal/feature/stocks/domain"
	"github.com/h32109/stock-service/internal/feature/stocks/domain/entity"
	"github.com/h32109/stock-service/internal/shared/hangul"
)

const (
	MinQueryLength = 1
	MaxQueryLength = 20
)

// Matches maps a security code to the kinds that surfaced it.
type Matches map[string]KindSet

type hit struct {
	code string
	kind entity.MatchKind
}

type query struct {
	normalized string
	initials   string
}

type strategy func(s *Snapshot, q query) ([]hit, error)

// Matcher runs every strategy against a snapshot and unions the hits.
type Matcher struct {
	pool           *ants.Pool
	legacyIndustry bool
	strategies     []strategy
}

// MatcherOption configures a Matcher.
type MatcherOption func(*Matcher)

// WithPool runs strategies concurrently on pool instead of sequentially.
func WithPool(pool *ants.Pool) MatcherOption {
	return func(m *Matcher) { m.pool = pool }
}

// WithLegacyIndustryTag reports every hierarchy hit as "industry" instead of
// the level-specific tag.
func WithLegacyIndustryTag(enabled bool) MatcherOption {
	return func(m *Matcher) { m.legacyIndustry = enabled }
}

// NewMatcher returns a Matcher with the code, initial, name and
// classification strategies.
func NewMatcher(opts ...MatcherOption) *Matcher {
	m := &Matcher{}
	for _, opt := range opts {
		opt(m)
	}
	m.strategies = []strategy{matchCode, matchInitial, matchName, m.matchClassification}
	return m
}

// ValidateQuery checks the raw query length bounds, counted in characters.
func ValidateQuery(raw string) error {
	n := utf8.RuneCountInString(raw)
	if n < MinQueryLength || n > MaxQueryLength {
		return fmt.Errorf("%w: length %d outside [%d,%d]", domain.ErrInvalidQuery, n, MinQueryLength, MaxQueryLength)
	}
	return nil
}

// Match returns every active security that raw matches, with its match kinds.
func (m *Matcher) Match(s *Snapshot, raw string) (Matches, error) {
	if err := ValidateQuery(raw); err != nil {
		return nil, err
	}
	if err := s.usable(); err != nil {
		return nil, err
	}
	normalized := Normalize(raw)
	if normalized == "" {
		return nil, fmt.Errorf("%w: query is blank", domain.ErrInvalidQuery)
	}
	q := query{normalized: normalized, initials: hangul.Initials(normalized)}

	results, err := m.run(s, q)
	if err != nil {
		return nil, err
	}

	out := make(Matches)
	for _, hits := range results {
		for _, h := range hits {
			out[h.code] = out[h.code].Add(h.kind)
		}
	}
	for code := range out {
		if sec, ok := s.Index.ByCode(code); !ok || !sec.IsActive {
			delete(out, code)
		}
	}
	return out, nil
}

func (m *Matcher) run(s *Snapshot, q query) ([][]hit, error) {
	results := make([][]hit, len(m.strategies))
	errs := make([]error, len(m.strategies))

	if m.pool == nil {
		for i, st := range m.strategies {
			results[i], errs[i] = st(s, q)
		}
	} else {
		var wg sync.WaitGroup
		for i, st := range m.strategies {
			wg.Add(1)
			if err := m.pool.Submit(func() {
				defer wg.Done()
				results[i], errs[i] = st(s, q)
			}); err != nil {
				wg.Done()
				errs[i] = fmt.Errorf("%w: submit strategy: %v", domain.ErrIndexUnavailable, err)
			}
		}
		wg.Wait()
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func matchCode(s *Snapshot, q query) ([]hit, error) {
	sec, ok := s.Index.ByCodeKey(q.normalized)
	if !ok {
		return nil, nil
	}
	return []hit{{code: sec.Code, kind: entity.MatchCode}}, nil
}

func matchInitial(s *Snapshot, q query) ([]hit, error) {
	if q.initials == "" {
		return nil, nil
	}
	return tag(s.Index.ByInitial(q.initials), entity.MatchInitial), nil
}

func matchName(s *Snapshot, q query) ([]hit, error) {
	return tag(s.Index.ByName(q.normalized), entity.MatchName), nil
}

// matchClassification tags every security under a node whose name contains
// the query with the level of that node.
func (m *Matcher) matchClassification(s *Snapshot, q query) ([]hit, error) {
	var out []hit
	for _, node := range s.Hierarchy.MatchName(q.normalized) {
		kind := entity.KindForLevel(node.Level)
		if m.legacyIndustry {
			kind = entity.MatchIndustry
		}
		subtree, err := s.Hierarchy.Descendants(node.Code)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
		}
		for _, c := range subtree {
			out = append(out, tag(s.Index.ByClassification(c), kind)...)
		}
	}
	return out, nil
}

func tag(codes []string, kind entity.MatchKind) []hit {
	out := make([]hit, len(codes))
	for i, c := range codes {
		out[i] = hit{code: c, kind: kind}
	}
	return out
}
