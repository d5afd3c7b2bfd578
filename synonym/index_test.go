package synonym

import (
	"strings"
	"testing"

	"github.com/poiesic/kokushi/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDictionary = []core.SynonymGroup{
	{"心筋梗塞", "MI", "AMI"},
	{"DNA", "デオキシリボ核酸"},
	{"ATP", "アデノシン三リン酸"},
}

func TestLookup_Closure(t *testing.T) {
	idx := New(testDictionary)

	for _, group := range testDictionary {
		want := make([]string, len(group))
		for i, w := range group {
			want[i] = strings.ToLower(w)
		}
		for _, word := range group {
			assert.ElementsMatch(t, want, idx.Lookup(word), "lookup(%q)", word)
		}
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	idx := New(testDictionary)

	assert.Equal(t, []string{"心筋梗塞", "mi", "ami"}, idx.Lookup("mi"))
	assert.Equal(t, []string{"心筋梗塞", "mi", "ami"}, idx.Lookup("Mi"))
}

func TestLookup_SubstringFallback(t *testing.T) {
	idx := New(testDictionary)

	t.Run("key contains keyword", func(t *testing.T) {
		assert.Equal(t, []string{"dna", "デオキシリボ核酸"}, idx.Lookup("デオキシリボ"))
	})

	t.Run("keyword contains key", func(t *testing.T) {
		assert.Equal(t, []string{"atp", "アデノシン三リン酸"}, idx.Lookup("atp合成酵素"))
	})

	t.Run("first key in scan order wins", func(t *testing.T) {
		// "m" is contained in both "mi" and "ami"; both belong to the first
		// group, but "atp" group comes later and must not be chosen.
		assert.Equal(t, []string{"心筋梗塞", "mi", "ami"}, idx.Lookup("m"))
	})
}

func TestLookup_NoRelation(t *testing.T) {
	idx := New(testDictionary)

	assert.Equal(t, []string{"インスリン"}, idx.Lookup("インスリン"))
	assert.Equal(t, []string{"glucagon"}, idx.Lookup("GLUCAGON"))
}

func TestLookup_EmptyIndex(t *testing.T) {
	idx := New(nil)

	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, []string{"x"}, idx.Lookup("X"))
}

func TestNew_LastWriteWins(t *testing.T) {
	idx := New([]core.SynonymGroup{
		{"p", "shared"},
		{"hared", "q"},
		{"shared", "z"},
	})

	// "shared" now maps to the last group
	assert.Equal(t, []string{"shared", "z"}, idx.Lookup("shared"))
	// "p" keeps its original group
	assert.Equal(t, []string{"p", "shared"}, idx.Lookup("p"))
	assert.Equal(t, 5, idx.Len())

	// "shared" keeps its first scan slot, ahead of "hared"
	assert.Equal(t, []string{"shared", "z"}, idx.Lookup("hare"))
}

func TestNew_SkipsBlankWords(t *testing.T) {
	idx := New([]core.SynonymGroup{
		{"", "  "},
		{"x", "", "y"},
	})

	require.Equal(t, 2, idx.Len())
	assert.Equal(t, []core.SynonymGroup{{"x", "y"}}, idx.Groups())
	assert.Equal(t, []string{"x", "y"}, idx.Lookup("y"))
	assert.Equal(t, []string{"心電図"}, idx.Lookup("心電図"), "no blank key captures the fallback")
}

func TestLookup_ReturnsCopy(t *testing.T) {
	idx := New(testDictionary)

	got := idx.Lookup("dna")
	got[0] = "mutated"

	assert.Equal(t, []string{"dna", "デオキシリボ核酸"}, idx.Lookup("dna"))
}

func TestGroups(t *testing.T) {
	idx := New(testDictionary)
	assert.Equal(t, testDictionary, idx.Groups())
}

