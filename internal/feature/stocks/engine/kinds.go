package engine

import (
	"fmt"
	"strings"

	"github.com/h32109/stock-service/internal/feature/stocks/domain/entity"
)

// AllKinds lists every match kind in the default ranking priority.
var AllKinds = []entity.MatchKind{
	entity.MatchCode,
	entity.MatchName,
	entity.MatchInitial,
	entity.MatchSmallIndustry,
	entity.MatchMediumIndustry,
	entity.MatchLargeIndustry,
	entity.MatchIndustry,
}

// KindSet is a set of match kinds stored as a bitmask.
type KindSet uint8

func kindBit(k entity.MatchKind) KindSet {
	for i, kk := range AllKinds {
		if kk == k {
			return 1 << uint(i)
		}
	}
	return 0
}

// Add returns s with k included.
func (s KindSet) Add(k entity.MatchKind) KindSet { return s | kindBit(k) }

// Has reports whether k is in s.
func (s KindSet) Has(k entity.MatchKind) bool {
	b := kindBit(k)
	return b != 0 && s&b != 0
}

// Len returns the number of distinct kinds in s.
func (s KindSet) Len() int {
	n := 0
	for v := s; v != 0; v &= v - 1 {
		n++
	}
	return n
}

// Ordered returns the kinds in s following order.
func (s KindSet) Ordered(order []entity.MatchKind) []entity.MatchKind {
	out := make([]entity.MatchKind, 0, s.Len())
	for _, k := range order {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// ParsePriority parses a comma separated list of match kinds, e.g.
// "code,name,initial". Unknown or duplicated kinds are rejected.
func ParsePriority(s string) ([]entity.MatchKind, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []entity.MatchKind
	var seen KindSet
	for _, part := range strings.Split(s, ",") {
		k := entity.MatchKind(strings.TrimSpace(part))
		if kindBit(k) == 0 {
			return nil, fmt.Errorf("unknown match kind %q", k)
		}
		if seen.Has(k) {
			return nil, fmt.Errorf("duplicate match kind %q", k)
		}
		seen = seen.Add(k)
		out = append(out, k)
	}
	return out, nil
}
