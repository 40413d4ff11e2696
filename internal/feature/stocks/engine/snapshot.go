package engine

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/h32109/stock-service/internal/feature/stocks/domain"
	"github.com/h32109/stock-service/internal/feature/stocks/domain/entity"
)

// Snapshot is an immutable, point-in-time view of the catalog: the
// classification hierarchy plus the security index built from it.
type Snapshot struct {
	Version   string
	BuiltAt   time.Time
	Hierarchy *Hierarchy
	Index     *Index
	// DanglingThemes lists "code/node" associations dropped because the node
	// was not in the hierarchy.
	DanglingThemes []string
}

// BuildSnapshot validates and indexes catalog.
func BuildSnapshot(catalog entity.Catalog, version string, builtAt time.Time) (*Snapshot, error) {
	h, err := NewHierarchy(catalog.Nodes)
	if err != nil {
		return nil, err
	}

	var dangling []string
	secs := make([]entity.Security, len(catalog.Securities))
	for i, s := range catalog.Securities {
		kept := make([]string, 0, len(s.ThemeCodes))
		for _, node := range s.ThemeCodes {
			if _, err := h.Lookup(node); err != nil {
				dangling = append(dangling, s.Code+"/"+node)
				continue
			}
			kept = append(kept, node)
		}
		s.ThemeCodes = kept
		secs[i] = s
	}

	idx, err := NewIndex(secs)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	return &Snapshot{
		Version:        version,
		BuiltAt:        builtAt,
		Hierarchy:      h,
		Index:          idx,
		DanglingThemes: dangling,
	}, nil
}

func (s *Snapshot) usable() error {
	if s == nil || s.Index == nil || s.Hierarchy == nil {
		return domain.ErrIndexUnavailable
	}
	return nil
}

// Themes projects every association of sec onto its hierarchy chain.
func (s *Snapshot) Themes(sec entity.Security) []entity.Theme {
	out := make([]entity.Theme, 0, len(sec.ThemeCodes))
	for _, code := range sec.ThemeCodes {
		t, err := s.Hierarchy.Theme(code)
		if err != nil {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Holder publishes the current snapshot. Readers load the pointer once per
// request; a refresh builds a new snapshot elsewhere and swaps it in.
type Holder struct {
	cur atomic.Pointer[Snapshot]
}

// NewHolder returns an empty holder.
func NewHolder() *Holder { return &Holder{} }

// Load returns the current snapshot, or nil before the first swap.
func (h *Holder) Load() *Snapshot { return h.cur.Load() }

// Swap publishes s and returns the snapshot it replaced.
func (h *Holder) Swap(s *Snapshot) *Snapshot { return h.cur.Swap(s) }
