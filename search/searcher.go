package search

import (
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/kokushi/core"
	"github.com/poiesic/kokushi/normalize"
	"github.com/poiesic/kokushi/synonym"
)

const (
	// DefaultParallelThreshold is the corpus size from which keyword
	// filtering is split across the worker pool.
	DefaultParallelThreshold = 4096

	// DefaultCacheEntries is the default number of memoized query results.
	DefaultCacheEntries = 256

	poolReleaseTimeout = time.Second
)

// Searcher filters a fixed question corpus by identifier, facets and
// keywords. The corpus and synonym index are read-only after construction,
// so a Searcher may be used from many goroutines at once.
type Searcher struct {
	questions []*core.Question // canonical order
	docs      []document       // folded fields, parallel to questions
	byID      map[string][]*core.Question
	synonyms  *synonym.Index

	poolSize          int
	parallelThreshold int
	pool              *ants.Pool

	cacheEntries int
	cache        *ristretto.Cache[uint64, cachedResult]

	logger *slog.Logger
}

type cachedResult struct {
	kind    MatchKind
	results []*core.Question
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithPoolSize sets the number of workers used for parallel filtering.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *Searcher) error {
		if size < 1 {
			size = 1
		}
		s.poolSize = size
		return nil
	}
}

// WithParallelThreshold sets the corpus size from which filtering runs on
// the worker pool. Zero or a negative value disables parallel filtering.
// Default is DefaultParallelThreshold.
func WithParallelThreshold(n int) Option {
	return func(s *Searcher) error {
		s.parallelThreshold = n
		return nil
	}
}

// WithCache sets how many query results are memoized. Zero disables the
// cache. Default is DefaultCacheEntries.
func WithCache(entries int) Option {
	return func(s *Searcher) error {
		if entries < 0 {
			return ErrInvalidCacheSize
		}
		s.cacheEntries = entries
		return nil
	}
}

// NewSearcher creates a new searcher over questions. The questions are
// expected to have passed core.ValidateQuestion; nil entries are skipped.
// The caller's slice is not retained.
func NewSearcher(questions []*core.Question, synonyms *synonym.Index, opts ...Option) (*Searcher, error) {
	if synonyms == nil {
		return nil, ErrSynonymIndexRequired
	}

	s := &Searcher{
		synonyms:          synonyms,
		poolSize:          max(runtime.NumCPU(), 1),
		parallelThreshold: DefaultParallelThreshold,
		cacheEntries:      DefaultCacheEntries,
		logger:            slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.questions = make([]*core.Question, 0, len(questions))
	for _, q := range questions {
		if q != nil {
			s.questions = append(s.questions, q)
		}
	}
	SortQuestions(s.questions)

	s.docs = make([]document, len(s.questions))
	s.byID = make(map[string][]*core.Question, len(s.questions))
	for i, q := range s.questions {
		s.docs[i] = newDocument(q)
		id := strings.ToLower(q.ID)
		s.byID[id] = append(s.byID[id], q)
	}

	if s.parallelThreshold > 0 && len(s.questions) >= s.parallelThreshold && s.poolSize > 1 {
		pool, err := ants.NewPool(s.poolSize)
		if err != nil {
			return nil, err
		}
		s.pool = pool
	}

	if s.cacheEntries > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config[uint64, cachedResult]{
			NumCounters:        int64(s.cacheEntries) * 10,
			MaxCost:            int64(s.cacheEntries),
			BufferItems:        64,
			IgnoreInternalCost: true, // entries cost 1, so MaxCost counts entries
		})
		if err != nil {
			s.Close()
			return nil, err
		}
		s.cache = cache
	}

	s.logger.Debug("searcher ready",
		"questions", len(s.questions),
		"synonyms", synonyms.Len(),
		"parallel", s.pool != nil,
		"cacheEntries", s.cacheEntries)

	return s, nil
}

// Close releases the worker pool and the result cache.
func (s *Searcher) Close() {
	if s.pool != nil {
		if err := s.pool.ReleaseTimeout(poolReleaseTimeout); err != nil {
			s.logger.Warn("worker pool did not stop in time", "err", err)
		}
		s.pool = nil
	}
	if s.cache != nil {
		s.cache.Close()
		s.cache = nil
	}
}

// Len returns the number of questions in the corpus.
func (s *Searcher) Len() int {
	return len(s.questions)
}

// Search returns the questions matching query, most recent exam first.
//
// An identifier in the query text takes precedence over everything else:
//  1. a full identifier ("112-B-48") returns that question
//  2. text equal to a question ID (case-insensitive) returns that question
//  3. a partial identifier ("112B", "112", "11") returns those exams
//
// Identifier matches ignore every facet. Otherwise the facets and the
// keywords of the query are applied together: a question must match every
// keyword, each keyword through any of its synonyms in any searchable field.
//
// The returned slice belongs to the caller; the questions it points to are
// shared and must not be modified.
func (s *Searcher) Search(query Query) []*core.Question {
	return s.SearchWithMonitor(query, nil)
}

// SearchWithMonitor is Search with callbacks at each stage of the search.
func (s *Searcher) SearchWithMonitor(query Query, monitor SearchMonitor) []*core.Question {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	var signature uint64
	if s.cache != nil {
		signature = query.signature()
		if hit, ok := s.cache.Get(signature); ok {
			monitor.CacheHit(signature)
			results := slices.Clone(hit.results)
			monitor.Finish(hit.kind, results)
			return results
		}
	}

	kind, results := s.evaluate(query, monitor)
	SortQuestions(results)

	if s.cache != nil {
		s.cache.Set(signature, cachedResult{kind: kind, results: slices.Clone(results)}, 1)
	}

	monitor.Finish(kind, results)
	return results
}

// identifierStage is one step of the identifier precedence chain. It
// reports whether the query was recognized; recognized queries end the
// search even when nothing matched.
type identifierStage struct {
	kind  MatchKind
	match func(s *Searcher, text string) ([]*core.Question, bool)
}

var identifierStages = []identifierStage{
	{kind: MatchFullID, match: (*Searcher).matchFullID},
	{kind: MatchExactID, match: (*Searcher).matchExactID},
	{kind: MatchPartialID, match: (*Searcher).matchPartialID},
}

func (s *Searcher) evaluate(query Query, monitor SearchMonitor) (MatchKind, []*core.Question) {
	text := strings.TrimSpace(query.Text)

	for _, stage := range identifierStages {
		if results, ok := stage.match(s, text); ok {
			monitor.IdentifierMatch(stage.kind, len(results))
			return stage.kind, results
		}
	}

	return MatchFilter, s.filter(text, newFacets(query), monitor)
}

func (s *Searcher) matchFullID(text string) ([]*core.Question, bool) {
	id, ok := ParseFullID(text)
	if !ok {
		return nil, false
	}
	return s.collect(id.Matches), true
}

func (s *Searcher) matchExactID(text string) ([]*core.Question, bool) {
	if text == "" {
		return nil, false
	}
	hits, ok := s.byID[strings.ToLower(text)]
	if !ok {
		return nil, false
	}
	return slices.Clone(hits), true
}

func (s *Searcher) matchPartialID(text string) ([]*core.Question, bool) {
	id, ok := ParsePartialID(text)
	if !ok {
		return nil, false
	}
	return s.collect(id.Matches), true
}

func (s *Searcher) collect(pred func(*core.Question) bool) []*core.Question {
	var results []*core.Question
	for _, q := range s.questions {
		if pred(q) {
			results = append(results, q)
		}
	}
	return results
}

// filter applies the facets and keyword search to the whole corpus.
func (s *Searcher) filter(text string, f facets, monitor SearchMonitor) []*core.Question {
	keywords := Tokenize(text)
	expansions := make([][]string, len(keywords))
	for i, keyword := range keywords {
		synonyms := s.synonyms.Lookup(keyword)
		monitor.ExpandedKeyword(keyword, synonyms)
		folded := make([]string, len(synonyms))
		for j, term := range synonyms {
			folded[j] = normalize.Fold(term)
		}
		expansions[i] = folded
	}

	var results []*core.Question
	if s.pool != nil {
		results = s.scanParallel(f, expansions)
	} else {
		results = s.scan(0, len(s.questions), f, expansions)
	}

	monitor.AfterFilter(len(s.questions), len(results))
	return results
}

// scan filters questions[from:to].
func (s *Searcher) scan(from, to int, f facets, expansions [][]string) []*core.Question {
	var results []*core.Question
	for i := from; i < to; i++ {
		q := s.questions[i]
		if !f.admits(q) {
			continue
		}
		if len(expansions) > 0 && !s.docs[i].matchesAll(expansions) {
			continue
		}
		results = append(results, q)
	}
	return results
}

// scanParallel splits the corpus into one chunk per worker. Chunk results
// are concatenated in chunk order; the caller still sorts them.
func (s *Searcher) scanParallel(f facets, expansions [][]string) []*core.Question {
	n := len(s.questions)
	chunkSize := (n + s.poolSize - 1) / s.poolSize
	chunks := make([][]*core.Question, 0, s.poolSize)
	for from := 0; from < n; from += chunkSize {
		chunks = append(chunks, nil)
	}

	var wg sync.WaitGroup
	for i := range chunks {
		from := i * chunkSize
		to := min(from+chunkSize, n)
		wg.Add(1)
		task := func() {
			defer wg.Done()
			chunks[i] = s.scan(from, to, f, expansions)
		}
		if err := s.pool.Submit(task); err != nil {
			s.logger.Debug("worker pool unavailable, scanning inline", "err", err)
			task()
		}
	}
	wg.Wait()

	var results []*core.Question
	for _, chunk := range chunks {
		results = append(results, chunk...)
	}
	return results
}
