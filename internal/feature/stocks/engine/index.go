package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/h32109/stock-service/internal/feature/stocks/domain/entity"
	"github.com/h32109/stock-service/internal/shared/hangul"
)

type bigram [2]rune

type initialKey struct {
	initial string
	code    string
}

// Index holds the lookup structures over one catalog: exact code,
// name substring (rune unigram/bigram postings), initial-consonant prefix
// and direct classification association.
type Index struct {
	securities []entity.Security // sorted by code; position is the posting id
	byCode     map[string]int32
	byCodeKey  map[string]int32 // normalized code, for case-insensitive query matching

	normName   []string
	normNameEn []string
	unigrams   map[rune][]int32
	bigrams    map[bigram][]int32

	initials []initialKey // sorted by initial, then code
	byNode   map[string][]string
}

// NewIndex builds an index over securities. NameInitial is always recomputed
// from Name so the stored value can never drift from it.
func NewIndex(securities []entity.Security) (*Index, error) {
	secs := make([]entity.Security, len(securities))
	copy(secs, securities)
	sort.Slice(secs, func(i, j int) bool { return secs[i].Code < secs[j].Code })

	idx := &Index{
		securities: secs,
		byCode:     make(map[string]int32, len(secs)),
		byCodeKey:  make(map[string]int32, len(secs)),
		normName:   make([]string, len(secs)),
		normNameEn: make([]string, len(secs)),
		unigrams:   make(map[rune][]int32),
		bigrams:    make(map[bigram][]int32),
		byNode:     make(map[string][]string),
	}

	for i := range secs {
		s := &secs[i]
		if s.Code == "" {
			return nil, fmt.Errorf("security %q has empty code", s.Name)
		}
		if _, dup := idx.byCode[s.Code]; dup {
			return nil, fmt.Errorf("duplicate security code %q", s.Code)
		}
		key := Normalize(s.Code)
		if other, dup := idx.byCodeKey[key]; dup {
			return nil, fmt.Errorf("security codes %q and %q collide after normalization", secs[other].Code, s.Code)
		}
		id := int32(i)
		idx.byCode[s.Code] = id
		idx.byCodeKey[key] = id

		s.NameInitial = hangul.Initials(s.Name)
		if s.NameInitial != "" {
			idx.initials = append(idx.initials, initialKey{initial: s.NameInitial, code: s.Code})
		}

		idx.normName[i] = Normalize(s.Name)
		idx.normNameEn[i] = Normalize(s.NameEn)
		idx.addPostings(id, idx.normName[i])
		idx.addPostings(id, idx.normNameEn[i])

		s.ThemeCodes = dedupeSorted(s.ThemeCodes)
		for _, node := range s.ThemeCodes {
			idx.byNode[node] = append(idx.byNode[node], s.Code)
		}
	}

	sort.Slice(idx.initials, func(i, j int) bool {
		a, b := idx.initials[i], idx.initials[j]
		if a.initial != b.initial {
			return a.initial < b.initial
		}
		return a.code < b.code
	})
	return idx, nil
}

// addPostings appends id to every unigram and bigram of s. Ids arrive in
// ascending order, so checking the tail is enough to keep lists unique.
func (idx *Index) addPostings(id int32, s string) {
	rs := []rune(s)
	for i, r := range rs {
		idx.unigrams[r] = appendID(idx.unigrams[r], id)
		if i+1 < len(rs) {
			bg := bigram{r, rs[i+1]}
			idx.bigrams[bg] = appendID(idx.bigrams[bg], id)
		}
	}
}

func appendID(list []int32, id int32) []int32 {
	if n := len(list); n > 0 && list[n-1] == id {
		return list
	}
	return append(list, id)
}

func dedupeSorted(codes []string) []string {
	if len(codes) == 0 {
		return nil
	}
	out := make([]string, len(codes))
	copy(out, codes)
	sort.Strings(out)
	j := 0
	for i := 1; i < len(out); i++ {
		if out[i] != out[j] {
			j++
			out[j] = out[i]
		}
	}
	return out[:j+1]
}

// Len returns the number of indexed securities, active or not.
func (idx *Index) Len() int { return len(idx.securities) }

// Securities returns the indexed securities ordered by code.
func (idx *Index) Securities() []entity.Security { return idx.securities }

// ByCode returns the security with exactly this code.
func (idx *Index) ByCode(code string) (entity.Security, bool) {
	i, ok := idx.byCode[code]
	if !ok {
		return entity.Security{}, false
	}
	return idx.securities[i], true
}

// ByCodeKey looks up a security by normalized code.
func (idx *Index) ByCodeKey(normalized string) (entity.Security, bool) {
	i, ok := idx.byCodeKey[normalized]
	if !ok {
		return entity.Security{}, false
	}
	return idx.securities[i], true
}

// ByName returns the codes whose normalized name or English name contains
// the normalized query.
func (idx *Index) ByName(normalized string) []string {
	rs := []rune(normalized)
	if len(rs) == 0 {
		return nil
	}

	var candidates []int32
	if len(rs) == 1 {
		candidates = idx.unigrams[rs[0]]
	} else {
		for i := 0; i+1 < len(rs); i++ {
			list, ok := idx.bigrams[bigram{rs[i], rs[i+1]}]
			if !ok {
				return nil
			}
			if candidates == nil || len(list) < len(candidates) {
				candidates = list
			}
		}
	}

	var out []string
	for _, id := range candidates {
		if strings.Contains(idx.normName[id], normalized) || strings.Contains(idx.normNameEn[id], normalized) {
			out = append(out, idx.securities[id].Code)
		}
	}
	return out
}

// ByInitial returns the codes whose initial sequence equals seq or starts with it.
func (idx *Index) ByInitial(seq string) []string {
	if seq == "" {
		return nil
	}
	start := sort.Search(len(idx.initials), func(i int) bool {
		return idx.initials[i].initial >= seq
	})
	var out []string
	for i := start; i < len(idx.initials) && strings.HasPrefix(idx.initials[i].initial, seq); i++ {
		out = append(out, idx.initials[i].code)
	}
	return out
}

// ByClassification returns the codes directly tagged with node.
func (idx *Index) ByClassification(node string) []string {
	return idx.byNode[node]
}
