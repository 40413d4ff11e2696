package entity

// Level is the depth of a classification node.
type Level string

const (
	LevelLarge  Level = "LARGE"
	LevelMedium Level = "MEDIUM"
	LevelSmall  Level = "SMALL"
)

// Depth returns 1 for LARGE, 2 for MEDIUM, 3 for SMALL and 0 otherwise.
func (l Level) Depth() int {
	switch l {
	case LevelLarge:
		return 1
	case LevelMedium:
		return 2
	case LevelSmall:
		return 3
	}
	return 0
}

// ClassificationNode は業種・テーマ階層のノードです。
type ClassificationNode struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Level      Level  `json:"level"`
	ParentCode string `json:"parent_code,omitempty"`
}

// NodeRef is the code/name pair shown to clients.
type NodeRef struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Theme is one association projected onto its large/medium/small chain.
// Levels above the tagged node are filled from its ancestors; levels below stay nil.
type Theme struct {
	Large  *NodeRef `json:"large"`
	Medium *NodeRef `json:"medium"`
	Small  *NodeRef `json:"small"`
}
