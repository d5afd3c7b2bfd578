package core

import "slices"

// RequiredRule describes which questions of a range of exam years are
// required (core) questions.
type RequiredRule struct {
	FirstYear int // inclusive
	LastYear  int // inclusive, 0 means open-ended
	Sessions  []Session
	MaxNumber int // questions 1..MaxNumber are required
}

// RequiredRules is the historical table of required-question regimes,
// ordered by year. Year ranges are disjoint.
var RequiredRules = []RequiredRule{
	{FirstYear: 102, LastYear: 102, Sessions: []Session{SessionA, SessionB}, MaxNumber: 25},
	{FirstYear: 103, LastYear: 110, Sessions: []Session{SessionA, SessionB}, MaxNumber: 35},
	{FirstYear: 111, LastYear: 113, Sessions: []Session{SessionA, SessionB}, MaxNumber: 40},
	{FirstYear: 114, LastYear: 0, Sessions: []Session{SessionA, SessionB, SessionC, SessionD}, MaxNumber: 20},
}

// covers reports whether the rule applies to the given year.
func (r RequiredRule) covers(year int) bool {
	return year >= r.FirstYear && (r.LastYear == 0 || year <= r.LastYear)
}

// IsRequired reports whether the question identified by (year, session,
// number) is a required question. Years outside every regime yield false.
func IsRequired(year int, session Session, number int) bool {
	for _, rule := range RequiredRules {
		if !rule.covers(year) {
			continue
		}
		return slices.Contains(rule.Sessions, session) && number >= 1 && number <= rule.MaxNumber
	}
	return false
}
