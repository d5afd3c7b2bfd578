package search

import (
	"github.com/poiesic/kokushi/core"
)

// MatchKind identifies which stage of the search produced the results.
type MatchKind int

const (
	// MatchFullID is a complete identifier such as "112-B-48".
	MatchFullID MatchKind = iota + 1
	// MatchExactID is a case-insensitive match against question IDs.
	MatchExactID
	// MatchPartialID is a year, year+session or year prefix such as "11".
	MatchPartialID
	// MatchFilter is the facet and keyword filter.
	MatchFilter
)

func (k MatchKind) String() string {
	switch k {
	case MatchFullID:
		return "full-id"
	case MatchExactID:
		return "exact-id"
	case MatchPartialID:
		return "partial-id"
	case MatchFilter:
		return "filter"
	default:
		return "unknown"
	}
}

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query Query)
	CacheHit(signature uint64)
	IdentifierMatch(kind MatchKind, matched int)
	ExpandedKeyword(keyword string, synonyms []string)
	AfterFilter(scanned, matched int)
	Finish(kind MatchKind, results []*core.Question)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ Query) {}
func (n *noopMonitor) CacheHit(_ uint64) {}
func (n *noopMonitor) IdentifierMatch(_ MatchKind, _ int) {}
func (n *noopMonitor) ExpandedKeyword(_ string, _ []string) {}
func (n *noopMonitor) AfterFilter(_, _ int) {}
func (n *noopMonitor) Finish(_ MatchKind, _ []*core.Question) {}
