package core

import "testing"

func TestIsRequired(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		session Session
		number  int
		want    bool
	}{
		{"102 A first", 102, SessionA, 1, true},
		{"102 B last", 102, SessionB, 25, true},
		{"102 past range", 102, SessionA, 26, false},
		{"102 session C", 102, SessionC, 1, false},
		{"103 lower bound", 103, SessionA, 35, true},
		{"110 upper bound", 110, SessionB, 35, true},
		{"110 past range", 110, SessionB, 36, false},
		{"111 forty", 111, SessionA, 40, true},
		{"113 forty one", 113, SessionB, 41, false},
		{"113 session D", 113, SessionD, 1, false},
		{"114 session C", 114, SessionC, 20, true},
		{"114 session D twenty one", 114, SessionD, 21, false},
		{"118 session A", 118, SessionA, 1, true},
		{"future year", 130, SessionD, 5, true},
		{"number zero", 118, SessionA, 0, false},
		{"year before table", 101, SessionA, 1, false},
		{"year far before table", 50, SessionA, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRequired(tt.year, tt.session, tt.number); got != tt.want {
				t.Errorf("IsRequired(%d, %s, %d) = %v, want %v", tt.year, tt.session, tt.number, got, tt.want)
			}
		})
	}
}

func TestRequiredRules_Disjoint(t *testing.T) {
	for i := 1; i < len(RequiredRules); i++ {
		prev, cur := RequiredRules[i-1], RequiredRules[i]
		if prev.LastYear == 0 || prev.LastYear >= cur.FirstYear {
			t.Errorf("rule %d overlaps rule %d", i-1, i)
		}
	}
}
