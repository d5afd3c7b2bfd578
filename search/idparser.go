package search

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/poiesic/kokushi/core"
)

// Separators allowed between identifier components: whitespace (including
// the ideographic space), hyphen and underscore.
const idSeparators = `[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}_\-]*`

var (
	fullIDPattern      = regexp.MustCompile(`^(\d{2,3})` + idSeparators + `([a-dA-D])` + idSeparators + `(\d{1,3})$`)
	yearSessionPattern = regexp.MustCompile(`^(\d{2,3})` + idSeparators + `([a-dA-D])` + idSeparators + `$`)
	fullYearPattern    = regexp.MustCompile(`^(\d{3})$`)
	yearPrefixPattern  = regexp.MustCompile(`^(\d{2})$`)
)

// Year bounds used by the partial identifier forms.
const (
	plausibleYearMin = 100
	plausibleYearMax = 130

	corpusYearMin = 102
	corpusYearMax = 118

	yearPrefixMin = 10
	yearPrefixMax = 13
)

// QuestionID is a fully specified question identifier.
type QuestionID struct {
	Year    int
	Session core.Session
	Number  int
}

// String formats the identifier in compact form, e.g. "112B48".
func (id QuestionID) String() string {
	return core.FormatID(id.Year, id.Session, id.Number)
}

// Matches reports whether q is the question named by id.
func (id QuestionID) Matches(q *core.Question) bool {
	return q.Year == id.Year && q.Session == id.Session && q.Number == id.Number
}

// PartialID names every question of one or more exam years, optionally
// narrowed to one session.
type PartialID struct {
	Years   []int
	Session core.Session // empty matches every session
}

// Matches reports whether q falls within the partial identifier.
func (id PartialID) Matches(q *core.Question) bool {
	if id.Session != "" && q.Session != id.Session {
		return false
	}
	for _, y := range id.Years {
		if q.Year == y {
			return true
		}
	}
	return false
}

// ParseFullID recognizes identifiers such as "112-B-48", "112B48" or
// "112 b 48". The year is not range-checked.
func ParseFullID(text string) (QuestionID, bool) {
	m := fullIDPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return QuestionID{}, false
	}
	year, _ := strconv.Atoi(m[1])
	number, _ := strconv.Atoi(m[3])
	return QuestionID{
		Year:    year,
		Session: core.Session(strings.ToUpper(m[2])),
		Number:  number,
	}, true
}

// ParsePartialID recognizes, in order:
//   - a year followed by a session, e.g. "112B" (year within 100..130)
//   - a three digit year, e.g. "112" (within 100..130)
//   - a two digit year prefix, e.g. "11" (prefix within 10..13), expanded to
//     every year of that decade within the corpus range 102..118
//
// A prefix whose decade has no year in the corpus range is not accepted.
func ParsePartialID(text string) (PartialID, bool) {
	trimmed := strings.TrimSpace(text)

	if m := yearSessionPattern.FindStringSubmatch(trimmed); m != nil {
		year, _ := strconv.Atoi(m[1])
		if plausibleYear(year) {
			return PartialID{
				Years:   []int{year},
				Session: core.Session(strings.ToUpper(m[2])),
			}, true
		}
	}

	if m := fullYearPattern.FindStringSubmatch(trimmed); m != nil {
		year, _ := strconv.Atoi(m[1])
		if plausibleYear(year) {
			return PartialID{Years: []int{year}}, true
		}
	}

	if m := yearPrefixPattern.FindStringSubmatch(trimmed); m != nil {
		prefix, _ := strconv.Atoi(m[1])
		if prefix >= yearPrefixMin && prefix <= yearPrefixMax {
			var years []int
			for i := 0; i <= 9; i++ {
				year := prefix*10 + i
				if year >= corpusYearMin && year <= corpusYearMax {
					years = append(years, year)
				}
			}
			if len(years) > 0 {
				return PartialID{Years: years}, true
			}
		}
	}

	return PartialID{}, false
}

func plausibleYear(year int) bool {
	return year >= plausibleYearMin && year <= plausibleYearMax
}
