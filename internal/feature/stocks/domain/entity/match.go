package entity

// MatchKind records why a security was surfaced for a query.
type MatchKind string

const (
	MatchCode           MatchKind = "code"
	MatchInitial        MatchKind = "initial"
	MatchName           MatchKind = "name"
	MatchIndustry       MatchKind = "industry"
	MatchLargeIndustry  MatchKind = "large_industry"
	MatchMediumIndustry MatchKind = "medium_industry"
	MatchSmallIndustry  MatchKind = "small_industry"
)

// KindForLevel returns the level-specific industry tag.
func KindForLevel(l Level) MatchKind {
	switch l {
	case LevelLarge:
		return MatchLargeIndustry
	case LevelMedium:
		return MatchMediumIndustry
	case LevelSmall:
		return MatchSmallIndustry
	}
	return MatchIndustry
}

// SearchResult is one ranked hit. MatchKinds is ordered by ranking priority.
type SearchResult struct {
	Security   Security    `json:"security"`
	MatchKinds []MatchKind `json:"match_kinds"`
	Themes     []Theme     `json:"themes"`
}

// SearchPage is one page of ranked results.
type SearchPage struct {
	Items      []SearchResult `json:"items"`
	TotalCount int            `json:"total_count"`
}

// StockDetail is the expanded record returned by a direct code lookup.
type StockDetail struct {
	Security Security `json:"security"`
	Themes   []Theme  `json:"themes"`
}
