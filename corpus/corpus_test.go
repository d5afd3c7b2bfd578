package corpus

import (
	"testing"

	"github.com/poiesic/kokushi/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuestion(year int, session core.Session, number int, category, subcategory string) *core.Question {
	return &core.Question{
		ID:           core.FormatID(year, session, number),
		Year:         year,
		Session:      session,
		Number:       number,
		QuestionText: "正しいのはどれか。",
		Choices:      map[string]string{"a": "一", "b": "二"},
		Answer:       "a",
		Category:     category,
		Subcategory:  subcategory,
	}
}

func TestNew_DropsInvalidRecords(t *testing.T) {
	valid := newQuestion(118, core.SessionA, 1, "循環器", "")

	noText := newQuestion(118, core.SessionA, 2, "", "")
	noText.QuestionText = ""

	noChoices := newQuestion(118, core.SessionA, 3, "", "")
	noChoices.Choices = nil

	noAnswer := newQuestion(118, core.SessionA, 4, "", "")
	noAnswer.Answer = ""

	excluded := newQuestion(118, core.SessionA, 5, "", "")
	excluded.Answer = ""
	excluded.IsExcluded = true

	duplicate := newQuestion(118, core.SessionA, 1, "消化器", "")
	duplicate.ID = "118a1"

	c, err := New(core.CorpusMeta{}, []*core.Question{valid, noText, nil, noChoices, noAnswer, excluded, duplicate})
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 5, c.Dropped())
	assert.Equal(t, []*core.Question{valid, excluded}, c.Questions())
}

func TestCorpus_Get(t *testing.T) {
	q := newQuestion(112, core.SessionB, 48, "", "")
	c, err := New(core.CorpusMeta{}, []*core.Question{q})
	require.NoError(t, err)

	got, ok := c.Get("112B48")
	require.True(t, ok)
	assert.Same(t, q, got)

	got, ok = c.Get(" 112b48 ")
	require.True(t, ok)
	assert.Same(t, q, got)

	_, ok = c.Get("112B49")
	assert.False(t, ok)
}

func TestCorpus_Categories(t *testing.T) {
	c, err := New(core.CorpusMeta{}, []*core.Question{
		newQuestion(118, core.SessionA, 1, "内分泌", "糖尿病"),
		newQuestion(118, core.SessionA, 2, "循環器", "高血圧"),
		newQuestion(118, core.SessionA, 3, "循環器", "虚血性心疾患"),
		newQuestion(118, core.SessionA, 4, "", ""),
		newQuestion(118, core.SessionA, 5, "腎臓", ""),
		newQuestion(118, core.SessionA, 6, "循環器", "高血圧"),
		newQuestion(118, core.SessionA, 7, "内分泌", ""),
	})
	require.NoError(t, err)

	assert.Equal(t, []Category{
		{Name: "循環器", Count: 3},
		{Name: "内分泌", Count: 2},
		{Name: "腎臓", Count: 1},
	}, c.Categories())

	assert.Equal(t, []Category{
		{Name: "高血圧", Count: 2},
		{Name: "虚血性心疾患", Count: 1},
	}, c.Subcategories("循環器"))

	assert.Equal(t, []Category{{Name: "糖尿病", Count: 1}}, c.Subcategories("内分泌"))
	assert.Empty(t, c.Subcategories("腎臓"))
	assert.Empty(t, c.Subcategories("存在しない"))
}

func TestCorpus_YearRange(t *testing.T) {
	questions := []*core.Question{
		newQuestion(110, core.SessionA, 1, "", ""),
		newQuestion(118, core.SessionA, 1, "", ""),
		newQuestion(103, core.SessionA, 1, "", ""),
	}

	t.Run("from metadata", func(t *testing.T) {
		c, err := New(core.CorpusMeta{YearRange: core.YearRange{Min: 102, Max: 118}}, questions)
		require.NoError(t, err)
		assert.Equal(t, core.YearRange{Min: 102, Max: 118}, c.YearRange())
	})

	t.Run("from questions", func(t *testing.T) {
		c, err := New(core.CorpusMeta{}, questions)
		require.NoError(t, err)
		assert.Equal(t, core.YearRange{Min: 103, Max: 118}, c.YearRange())
	})

	t.Run("empty corpus", func(t *testing.T) {
		c, err := New(core.CorpusMeta{}, nil)
		require.NoError(t, err)
		assert.Equal(t, core.YearRange{}, c.YearRange())
	})
}

func TestCorpus_Sessions(t *testing.T) {
	c, err := New(core.CorpusMeta{}, nil)
	require.NoError(t, err)

	sessions := c.Sessions()
	assert.Equal(t, []core.Session{"A", "B", "C", "D"}, sessions)

	sessions[0] = "Z"
	assert.Equal(t, core.SessionA, c.Sessions()[0])
}
