package search

import (
	"cmp"
	"slices"
	"strings"

	"github.com/poiesic/kokushi/core"
)

// Compare orders questions most recent exam first, then by session
// ascending, then by question number ascending.
func Compare(a, b *core.Question) int {
	if c := cmp.Compare(b.Year, a.Year); c != 0 {
		return c
	}
	if c := strings.Compare(string(a.Session), string(b.Session)); c != 0 {
		return c
	}
	return cmp.Compare(a.Number, b.Number)
}

// SortQuestions sorts questions in place by Compare. The sort is stable.
func SortQuestions(questions []*core.Question) {
	slices.SortStableFunc(questions, Compare)
}
