package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/h32109/stock-service/internal/feature/stocks/domain"
	"github.com/h32109/stock-service/internal/feature/stocks/domain/entity"
)

// Hierarchy is the read-only industry/theme forest (LARGE > MEDIUM > SMALL).
type Hierarchy struct {
	nodes     map[string]entity.ClassificationNode
	children  map[string][]string
	normNames map[string]string
	order     []string
}

// NewHierarchy validates nodes and builds the forest.
// Every MEDIUM node must hang off a LARGE node and every SMALL node off a
// MEDIUM node; LARGE nodes have no parent.
func NewHierarchy(nodes []entity.ClassificationNode) (*Hierarchy, error) {
	h := &Hierarchy{
		nodes:     make(map[string]entity.ClassificationNode, len(nodes)),
		children:  make(map[string][]string),
		normNames: make(map[string]string, len(nodes)),
		order:     make([]string, 0, len(nodes)),
	}
	for _, n := range nodes {
		if n.Code == "" {
			return nil, fmt.Errorf("%w: node with empty code", domain.ErrInvalidHierarchy)
		}
		if _, dup := h.nodes[n.Code]; dup {
			return nil, fmt.Errorf("%w: duplicate node %q", domain.ErrInvalidHierarchy, n.Code)
		}
		if n.Level.Depth() == 0 {
			return nil, fmt.Errorf("%w: node %q has unknown level %q", domain.ErrInvalidHierarchy, n.Code, n.Level)
		}
		h.nodes[n.Code] = n
		h.normNames[n.Code] = Normalize(n.Name)
		h.order = append(h.order, n.Code)
	}
	sort.Strings(h.order)

	for _, code := range h.order {
		n := h.nodes[code]
		if n.Level == entity.LevelLarge {
			if n.ParentCode != "" {
				return nil, fmt.Errorf("%w: large node %q has parent %q", domain.ErrInvalidHierarchy, code, n.ParentCode)
			}
			continue
		}
		parent, ok := h.nodes[n.ParentCode]
		if !ok {
			return nil, fmt.Errorf("%w: node %q references missing parent %q", domain.ErrInvalidHierarchy, code, n.ParentCode)
		}
		if parent.Level.Depth() != n.Level.Depth()-1 {
			return nil, fmt.Errorf("%w: %s node %q cannot be a child of %s node %q",
				domain.ErrInvalidHierarchy, n.Level, code, parent.Level, parent.Code)
		}
		h.children[n.ParentCode] = append(h.children[n.ParentCode], code)
	}
	return h, nil
}

// Len returns the number of nodes.
func (h *Hierarchy) Len() int { return len(h.nodes) }

// Lookup returns the node for code.
func (h *Hierarchy) Lookup(code string) (entity.ClassificationNode, error) {
	n, ok := h.nodes[code]
	if !ok {
		return entity.ClassificationNode{}, fmt.Errorf("%w: %q", domain.ErrNodeNotFound, code)
	}
	return n, nil
}

// Ancestors returns the chain from code up to its root, starting with the node itself.
func (h *Hierarchy) Ancestors(code string) ([]entity.ClassificationNode, error) {
	n, err := h.Lookup(code)
	if err != nil {
		return nil, err
	}
	out := []entity.ClassificationNode{n}
	for n.ParentCode != "" {
		n = h.nodes[n.ParentCode]
		out = append(out, n)
	}
	return out, nil
}

// Descendants returns the codes of the subtree rooted at code, including code, sorted.
func (h *Hierarchy) Descendants(code string) ([]string, error) {
	if _, err := h.Lookup(code); err != nil {
		return nil, err
	}
	out := []string{}
	stack := []string{code}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, c)
		stack = append(stack, h.children[c]...)
	}
	sort.Strings(out)
	return out, nil
}

// MatchName returns the nodes whose normalized name contains the
// normalized query, ordered by code.
func (h *Hierarchy) MatchName(normalized string) []entity.ClassificationNode {
	if normalized == "" {
		return nil
	}
	var out []entity.ClassificationNode
	for _, code := range h.order {
		if strings.Contains(h.normNames[code], normalized) {
			out = append(out, h.nodes[code])
		}
	}
	return out
}

// Theme projects a directly tagged node onto its large/medium/small chain.
func (h *Hierarchy) Theme(code string) (entity.Theme, error) {
	chain, err := h.Ancestors(code)
	if err != nil {
		return entity.Theme{}, err
	}
	var t entity.Theme
	for _, n := range chain {
		ref := &entity.NodeRef{Code: n.Code, Name: n.Name}
		switch n.Level {
		case entity.LevelLarge:
			t.Large = ref
		case entity.LevelMedium:
			t.Medium = ref
		case entity.LevelSmall:
			t.Small = ref
		}
	}
	return t, nil
}
