package search

import (
	"strings"
	"unicode"

	"github.com/poiesic/kokushi/core"
	"github.com/poiesic/kokushi/normalize"
)

// Tokenize splits a query into keywords on runs of whitespace. Empty
// keywords are dropped. unicode.IsSpace covers the ideographic space.
func Tokenize(text string) []string {
	return strings.FieldsFunc(text, unicode.IsSpace)
}

// document holds the folded searchable fields of one question.
type document struct {
	questionText string
	choices      []string
	explanation  string
	keywords     []string
	category     string
}

// newDocument folds every searchable field of q once, so that matching only
// needs to fold the search terms.
func newDocument(q *core.Question) document {
	doc := document{
		questionText: normalize.Fold(q.QuestionText),
		explanation:  normalize.Fold(q.Explanation),
		category:     normalize.Fold(q.Category),
	}
	doc.choices = make([]string, 0, len(q.Choices))
	for _, key := range q.ChoiceKeys() {
		doc.choices = append(doc.choices, normalize.Fold(q.Choices[key]))
	}
	doc.keywords = make([]string, len(q.Keywords))
	for i, k := range q.Keywords {
		doc.keywords[i] = normalize.Fold(k)
	}
	return doc
}

// contains reports whether the folded term occurs in any searchable field.
// Absent explanation and category never match.
func (d *document) contains(term string) bool {
	if strings.Contains(d.questionText, term) {
		return true
	}
	for _, c := range d.choices {
		if strings.Contains(c, term) {
			return true
		}
	}
	if d.explanation != "" && strings.Contains(d.explanation, term) {
		return true
	}
	for _, k := range d.keywords {
		if strings.Contains(k, term) {
			return true
		}
	}
	return d.category != "" && strings.Contains(d.category, term)
}

// matchesAll reports whether every keyword matches through at least one of
// its synonyms.
func (d *document) matchesAll(expansions [][]string) bool {
	for _, synonyms := range expansions {
		matched := false
		for _, term := range synonyms {
			if d.contains(term) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}
