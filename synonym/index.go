// Package synonym expands search keywords into their groups of
// interchangeable terms.
package synonym

import (
	"slices"
	"strings"

	"github.com/poiesic/kokushi/core"
)

// Index maps every registered word to its synonym group.
//
// Keys and groups are lowercased at construction. When a word appears in
// more than one group the later group wins, but the word keeps the scan
// position of its first occurrence. Fallback scans walk keys in that order,
// so lookups are deterministic for a given dictionary.
//
// An Index is immutable after New and safe for concurrent use.
type Index struct {
	entries []entry
	slots   map[string]int
	groups  []core.SynonymGroup
}

type entry struct {
	key   string
	group []string
}

// New builds an Index from a dictionary of synonym groups. Blank words are
// ignored.
func New(groups []core.SynonymGroup) *Index {
	idx := &Index{
		slots:  make(map[string]int),
		groups: make([]core.SynonymGroup, 0, len(groups)),
	}

	for _, group := range groups {
		var (
			kept   core.SynonymGroup
			folded []string
		)
		for _, word := range group {
			// A blank key is contained in every keyword and would capture
			// every fallback lookup.
			if strings.TrimSpace(word) == "" {
				continue
			}
			kept = append(kept, word)
			folded = append(folded, strings.ToLower(word))
		}
		if len(folded) == 0 {
			continue
		}
		idx.groups = append(idx.groups, kept)

		for _, key := range folded {
			if slot, ok := idx.slots[key]; ok {
				idx.entries[slot].group = folded
				continue
			}
			idx.slots[key] = len(idx.entries)
			idx.entries = append(idx.entries, entry{key: key, group: folded})
		}
	}

	return idx
}

// Lookup returns the synonyms of keyword, never an empty slice.
//
// Resolution order:
//  1. the group registered for the lowercased keyword
//  2. the group of the first key (in scan order) that contains the keyword
//     or is contained in it
//  3. the lowercased keyword on its own
//
// The returned slice is a copy and may be modified by the caller.
func (idx *Index) Lookup(keyword string) []string {
	lower := strings.ToLower(keyword)

	if slot, ok := idx.slots[lower]; ok {
		return slices.Clone(idx.entries[slot].group)
	}

	for _, e := range idx.entries {
		if strings.Contains(e.key, lower) || strings.Contains(lower, e.key) {
			return slices.Clone(e.group)
		}
	}

	return []string{lower}
}

// Len returns the number of distinct registered words.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Groups returns the dictionary the index was built from, without blank
// words or empty groups, in original case.
func (idx *Index) Groups() []core.SynonymGroup {
	result := make([]core.SynonymGroup, len(idx.groups))
	for i, g := range idx.groups {
		result[i] = slices.Clone(g)
	}
	return result
}
