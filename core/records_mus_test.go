package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestQuestionMUS(t *testing.T) {
	full := Question{
		ID:           "118A1",
		Year:         118,
		Session:      SessionA,
		Number:       1,
		QuestionText: "ヘモグロビンについて正しいのはどれか。",
		Choices:      map[string]string{"a": "鉄を含む", "b": "銅を含む", "c": "亜鉛を含む"},
		ChoiceCount:  1,
		Answer:       "a",
		HasFigure:    true,
		FigureRefs:   []string{"別冊No.1"},
		Images:       []string{"118A1_1.png"},
		Category:     "生化学",
		Subcategory:  "タンパク質",
		Keywords:     []string{"ヘモグロビン", "鉄"},
		Explanation:  "ヘムは鉄を含む。",
	}
	minimal := Question{
		ID:           "102B3",
		Year:         102,
		Session:      SessionB,
		Number:       3,
		QuestionText: "q",
		Choices:      map[string]string{"a": "x"},
		IsExcluded:   true,
	}

	for _, q := range []Question{full, minimal} {
		t.Run(q.ID, func(t *testing.T) {
			buf := make([]byte, QuestionMUS.Size(q))
			n := QuestionMUS.Marshal(q, buf)
			if n != len(buf) {
				t.Fatalf("Marshal() wrote %d bytes, Size() reported %d", n, len(buf))
			}

			decoded, n, err := QuestionMUS.Unmarshal(buf)
			if err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if n != len(buf) {
				t.Errorf("Unmarshal() consumed %d bytes, want %d", n, len(buf))
			}
			if !reflect.DeepEqual(q, decoded) {
				t.Errorf("Unmarshal() = %+v, want %+v", decoded, q)
			}
		})
	}
}

func TestQuestionMUS_Truncated(t *testing.T) {
	q := Question{ID: "118A1", Year: 118, Session: SessionA, Number: 1, QuestionText: "q",
		Choices: map[string]string{"a": "x"}, Answer: "a"}
	buf := make([]byte, QuestionMUS.Size(q))
	QuestionMUS.Marshal(q, buf)

	if _, _, err := QuestionMUS.Unmarshal(buf[:len(buf)/2]); err == nil {
		t.Error("Unmarshal() of truncated data should fail")
	}
	if _, _, err := QuestionMUS.Unmarshal(nil); err == nil {
		t.Error("Unmarshal() of empty data should fail")
	}
}

func TestSynonymGroupMUS(t *testing.T) {
	g := SynonymGroup{"心筋梗塞", "MI", "AMI"}
	buf := make([]byte, SynonymGroupMUS.Size(g))
	SynonymGroupMUS.Marshal(g, buf)

	decoded, _, err := SynonymGroupMUS.Unmarshal(buf)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !reflect.DeepEqual(g, decoded) {
		t.Errorf("Unmarshal() = %v, want %v", decoded, g)
	}
}

func TestSynonymGroupMUS_ImpossibleLength(t *testing.T) {
	// claims 100 elements but carries none
	g := SynonymGroup{"x"}
	buf := make([]byte, SynonymGroupMUS.Size(g))
	SynonymGroupMUS.Marshal(g, buf)
	buf[0] = 100

	_, _, err := SynonymGroupMUS.Unmarshal(buf)
	if !errors.Is(err, ErrTruncatedData) {
		t.Errorf("Unmarshal() error = %v, want ErrTruncatedData", err)
	}
}

func TestCorpusMetaMUS(t *testing.T) {
	m := CorpusMeta{
		Version:         "1.2.0",
		LastUpdated:     "2025-01-31",
		TotalCount:      6400,
		WithImagesCount: 812,
		YearRange:       YearRange{Min: 102, Max: 118},
		Fingerprint:     0xdeadbeefcafebabe,
	}
	buf := make([]byte, CorpusMetaMUS.Size(m))
	CorpusMetaMUS.Marshal(m, buf)

	decoded, _, err := CorpusMetaMUS.Unmarshal(buf)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded != m {
		t.Errorf("Unmarshal() = %+v, want %+v", decoded, m)
	}
}
