package core

import (
	"encoding/binary"
	"slices"
	"strconv"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// Session identifies the sub-exam a question belongs to within an exam year.
type Session string

const (
	SessionA Session = "A"
	SessionB Session = "B"
	SessionC Session = "C"
	SessionD Session = "D"
)

// Sessions lists every recognized session code in canonical order.
var Sessions = []Session{SessionA, SessionB, SessionC, SessionD}

// ParseSession converts a single session letter (either case) to a Session.
func ParseSession(s string) (Session, bool) {
	session := Session(strings.ToUpper(s))
	if !session.Valid() {
		return "", false
	}
	return session, true
}

// Valid reports whether s is one of the recognized session codes.
func (s Session) Valid() bool {
	return slices.Contains(Sessions, s)
}

// FormatID builds the compact question identifier, e.g. "118A1".
func FormatID(year int, session Session, number int) string {
	return strconv.Itoa(year) + string(session) + strconv.Itoa(number)
}

// Question is a single multiple-choice exam question.
// Questions are immutable once loaded; the search engine hands out
// pointers into the loaded corpus and never copies them.
type Question struct {
	ID           string            `json:"id"`
	Year         int               `json:"year"`
	Session      Session           `json:"session"`
	Number       int               `json:"number"`
	QuestionText string            `json:"questionText"`
	Choices      map[string]string `json:"choices"`
	ChoiceCount  int               `json:"choiceCount"` // how many choices must be selected
	Answer       string            `json:"answer"`      // correct choice keys, e.g. "a" or "ab"
	HasFigure    bool              `json:"hasFigure"`
	FigureRefs   []string          `json:"figureRefs"`
	Images       []string          `json:"images"`
	IsExcluded   bool              `json:"isExcluded"` // excluded from scoring
	Category     string            `json:"category,omitempty"`
	Subcategory  string            `json:"subcategory,omitempty"`
	Keywords     []string          `json:"keywords"`
	Explanation  string            `json:"explanation,omitempty"`
}

// ChoiceKeys returns the choice keys in sorted order.
func (q *Question) ChoiceKeys() []string {
	keys := make([]string, 0, len(q.Choices))
	for k := range q.Choices {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// CorrectChoices decodes Answer into the individual choice keys it names.
// Keys are matched case-insensitively against Choices; letters that name
// no choice are dropped.
func (q *Question) CorrectChoices() []string {
	var result []string
	for _, r := range strings.ToLower(q.Answer) {
		key := string(r)
		if _, ok := q.Choices[key]; ok && !slices.Contains(result, key) {
			result = append(result, key)
		}
	}
	return result
}

// HasImage reports whether the question is accompanied by a figure.
func (q *Question) HasImage() bool {
	return q.HasFigure || len(q.Images) > 0
}

// SynonymGroup is a set of interchangeable search terms.
type SynonymGroup []string

// YearRange is an inclusive range of exam years.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// CorpusMeta describes a question corpus as shipped with the static data.
type CorpusMeta struct {
	Version         string    `json:"version"`
	LastUpdated     string    `json:"lastUpdated"`
	TotalCount      int       `json:"totalCount"`
	WithImagesCount int       `json:"withImagesCount,omitempty"`
	YearRange       YearRange `json:"yearRange"`
	Fingerprint     uint64    `json:"-"` // set on import, identifies the stored content
}

// Fingerprint computes a deterministic 64-bit digest of a corpus and its
// synonym dictionary using BLAKE2b. Identical content yields identical
// fingerprints regardless of map iteration order.
func Fingerprint(questions []*Question, groups []SynonymGroup) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	for _, q := range questions {
		buf := make([]byte, QuestionMUS.Size(*q))
		QuestionMUS.Marshal(*q, buf)
		h.Write(buf)
	}
	for _, g := range groups {
		buf := make([]byte, SynonymGroupMUS.Size(g))
		SynonymGroupMUS.Marshal(g, buf)
		h.Write(buf)
	}
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}
