// Package corpus holds the question corpus as loaded from its static assets
// and answers the catalog queries a browser needs: categories with counts,
// subcategories, the year range and single-question lookup.
package corpus

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/kokushi/core"
)

// Category is a classification name and the number of questions in it.
type Category struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Corpus is an immutable, validated set of questions plus their metadata.
// It is safe for concurrent use.
type Corpus struct {
	meta      core.CorpusMeta
	questions []*core.Question // load order
	byID      map[string]*core.Question
	dropped   int
	logger    *slog.Logger
}

// Option configures a Corpus.
type Option func(*Corpus) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Corpus) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// New builds a corpus from questions. Records that fail
// core.ValidateQuestion, and later records that repeat an earlier ID, are
// dropped and logged; they never reach the corpus. The caller's slice is not
// retained.
func New(meta core.CorpusMeta, questions []*core.Question, opts ...Option) (*Corpus, error) {
	c := &Corpus{
		meta:      meta,
		questions: make([]*core.Question, 0, len(questions)),
		byID:      make(map[string]*core.Question, len(questions)),
		logger:    slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	for i, q := range questions {
		if err := core.ValidateQuestion(q); err != nil {
			c.drop(i, err)
			continue
		}
		key := strings.ToLower(q.ID)
		if _, exists := c.byID[key]; exists {
			c.drop(i, ErrDuplicateID)
			continue
		}
		c.byID[key] = q
		c.questions = append(c.questions, q)
	}

	if c.dropped > 0 {
		c.logger.Warn("excluded invalid questions from corpus",
			"dropped", c.dropped,
			"kept", len(c.questions))
	}

	return c, nil
}

func (c *Corpus) drop(index int, err error) {
	c.dropped++
	c.logger.Debug("dropping question", "index", index, "err", err)
}

// Meta returns the corpus metadata as supplied at load time.
func (c *Corpus) Meta() core.CorpusMeta {
	return c.meta
}

// Questions returns the valid questions in load order. The slice is a copy;
// the questions are shared.
func (c *Corpus) Questions() []*core.Question {
	return slices.Clone(c.questions)
}

// Len returns the number of valid questions.
func (c *Corpus) Len() int {
	return len(c.questions)
}

// Dropped returns how many records were excluded at load time.
func (c *Corpus) Dropped() int {
	return c.dropped
}

// Get looks up a question by ID, ignoring case.
func (c *Corpus) Get(id string) (*core.Question, bool) {
	q, ok := c.byID[strings.ToLower(strings.TrimSpace(id))]
	return q, ok
}

// Categories returns every category with its question count, largest first.
// Ties keep the order in which the categories first appear.
func (c *Corpus) Categories() []Category {
	return countBy(c.questions, func(q *core.Question) string {
		return q.Category
	})
}

// Subcategories returns the subcategories used within category, ordered like
// Categories.
func (c *Corpus) Subcategories(category string) []Category {
	return countBy(c.questions, func(q *core.Question) string {
		if q.Category != category {
			return ""
		}
		return q.Subcategory
	})
}

func countBy(questions []*core.Question, name func(*core.Question) string) []Category {
	var result []Category
	slots := make(map[string]int)
	for _, q := range questions {
		n := name(q)
		if n == "" {
			continue
		}
		if slot, ok := slots[n]; ok {
			result[slot].Count++
			continue
		}
		slots[n] = len(result)
		result = append(result, Category{Name: n, Count: 1})
	}
	slices.SortStableFunc(result, func(a, b Category) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return result
}

// YearRange returns the year range recorded in the metadata, or the range
// spanned by the questions when the metadata has none.
func (c *Corpus) YearRange() core.YearRange {
	if c.meta.YearRange.Min > 0 && c.meta.YearRange.Max > 0 {
		return c.meta.YearRange
	}
	var yr core.YearRange
	for _, q := range c.questions {
		if yr.Min == 0 || q.Year < yr.Min {
			yr.Min = q.Year
		}
		if q.Year > yr.Max {
			yr.Max = q.Year
		}
	}
	return yr
}

// Sessions returns the session codes a question may belong to.
func (c *Corpus) Sessions() []core.Session {
	return slices.Clone(core.Sessions)
}
