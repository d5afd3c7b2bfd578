package search

import (
	"encoding/binary"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/poiesic/kokushi/core"
)

// Query holds one search request. Empty facet slices select everything.
type Query struct {
	Text          string
	Years         []int
	Sessions      []core.Session
	Categories    []string
	Subcategories []string
	RequiredOnly  bool
	HasImage      *bool // nil selects questions with and without figures
}

// signature hashes the query so that queries selecting the same questions
// hash identically. Facet order and duplicates do not matter.
func (q Query) signature() uint64 {
	d := xxhash.New()
	var buf [8]byte

	writeString := func(s string) {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
		d.Write(buf[:])
		d.WriteString(s)
	}
	writeStrings := func(values []string) {
		sorted := slices.Compact(slices.Sorted(slices.Values(values)))
		binary.LittleEndian.PutUint64(buf[:], uint64(len(sorted)))
		d.Write(buf[:])
		for _, s := range sorted {
			writeString(s)
		}
	}

	writeString(strings.TrimSpace(q.Text))

	years := slices.Compact(slices.Sorted(slices.Values(q.Years)))
	binary.LittleEndian.PutUint64(buf[:], uint64(len(years)))
	d.Write(buf[:])
	for _, y := range years {
		binary.LittleEndian.PutUint64(buf[:], uint64(y))
		d.Write(buf[:])
	}

	sessions := make([]string, len(q.Sessions))
	for i, s := range q.Sessions {
		sessions[i] = string(s)
	}
	writeStrings(sessions)
	writeStrings(q.Categories)
	writeStrings(q.Subcategories)

	var flags byte
	if q.RequiredOnly {
		flags |= 1
	}
	if q.HasImage != nil {
		flags |= 2
		if *q.HasImage {
			flags |= 4
		}
	}
	d.Write([]byte{flags})

	return d.Sum64()
}

// facets is the per-query set form of the facet selections.
type facets struct {
	requiredOnly  bool
	years         map[int]struct{}
	sessions      map[core.Session]struct{}
	categories    map[string]struct{}
	subcategories map[string]struct{}
	hasImage      *bool
}

func newFacets(q Query) facets {
	return facets{
		requiredOnly:  q.RequiredOnly,
		years:         setOf(q.Years),
		sessions:      setOf(q.Sessions),
		categories:    setOf(q.Categories),
		subcategories: setOf(q.Subcategories),
		hasImage:      q.HasImage,
	}
}

func setOf[T comparable](values []T) map[T]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[T]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// admits reports whether q passes every enabled facet.
func (f *facets) admits(q *core.Question) bool {
	if f.requiredOnly && !core.IsRequired(q.Year, q.Session, q.Number) {
		return false
	}
	if f.years != nil {
		if _, ok := f.years[q.Year]; !ok {
			return false
		}
	}
	if f.sessions != nil {
		if _, ok := f.sessions[q.Session]; !ok {
			return false
		}
	}
	if f.categories != nil {
		if _, ok := f.categories[q.Category]; q.Category == "" || !ok {
			return false
		}
	}
	if f.subcategories != nil {
		if _, ok := f.subcategories[q.Subcategory]; q.Subcategory == "" || !ok {
			return false
		}
	}
	if f.hasImage != nil && q.HasImage() != *f.hasImage {
		return false
	}
	return true
}
