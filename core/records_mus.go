package core

import (
	"slices"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Binary codecs for stored records. Map entries are written in sorted key
// order so that equal records always encode to equal bytes.

var (
	// QuestionMUS encodes a Question.
	QuestionMUS = questionMUS{}
	// SynonymGroupMUS encodes a SynonymGroup.
	SynonymGroupMUS = synonymGroupMUS{}
	// CorpusMetaMUS encodes a CorpusMeta, including its Fingerprint.
	CorpusMetaMUS = corpusMetaMUS{}
)

type questionMUS struct{}

func (questionMUS) Marshal(q Question, bs []byte) (n int) {
	n = ord.String.Marshal(q.ID, bs)
	n += varint.Int.Marshal(q.Year, bs[n:])
	n += ord.String.Marshal(string(q.Session), bs[n:])
	n += varint.Int.Marshal(q.Number, bs[n:])
	n += ord.String.Marshal(q.QuestionText, bs[n:])
	n += marshalStringMap(q.Choices, bs[n:])
	n += varint.Int.Marshal(q.ChoiceCount, bs[n:])
	n += ord.String.Marshal(q.Answer, bs[n:])
	n += ord.Bool.Marshal(q.HasFigure, bs[n:])
	n += marshalStrings(q.FigureRefs, bs[n:])
	n += marshalStrings(q.Images, bs[n:])
	n += ord.Bool.Marshal(q.IsExcluded, bs[n:])
	n += ord.String.Marshal(q.Category, bs[n:])
	n += ord.String.Marshal(q.Subcategory, bs[n:])
	n += marshalStrings(q.Keywords, bs[n:])
	n += ord.String.Marshal(q.Explanation, bs[n:])
	return
}

func (questionMUS) Unmarshal(bs []byte) (q Question, n int, err error) {
	d := decoder{bs: bs}
	q.ID = d.string()
	q.Year = d.int()
	q.Session = Session(d.string())
	q.Number = d.int()
	q.QuestionText = d.string()
	q.Choices = d.stringMap()
	q.ChoiceCount = d.int()
	q.Answer = d.string()
	q.HasFigure = d.bool()
	q.FigureRefs = d.strings()
	q.Images = d.strings()
	q.IsExcluded = d.bool()
	q.Category = d.string()
	q.Subcategory = d.string()
	q.Keywords = d.strings()
	q.Explanation = d.string()
	return q, d.n, d.err
}

func (questionMUS) Size(q Question) (size int) {
	size = ord.String.Size(q.ID)
	size += varint.Int.Size(q.Year)
	size += ord.String.Size(string(q.Session))
	size += varint.Int.Size(q.Number)
	size += ord.String.Size(q.QuestionText)
	size += sizeStringMap(q.Choices)
	size += varint.Int.Size(q.ChoiceCount)
	size += ord.String.Size(q.Answer)
	size += ord.Bool.Size(q.HasFigure)
	size += sizeStrings(q.FigureRefs)
	size += sizeStrings(q.Images)
	size += ord.Bool.Size(q.IsExcluded)
	size += ord.String.Size(q.Category)
	size += ord.String.Size(q.Subcategory)
	size += sizeStrings(q.Keywords)
	size += ord.String.Size(q.Explanation)
	return
}

func (s questionMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type synonymGroupMUS struct{}

func (synonymGroupMUS) Marshal(g SynonymGroup, bs []byte) (n int) {
	return marshalStrings(g, bs)
}

func (synonymGroupMUS) Unmarshal(bs []byte) (g SynonymGroup, n int, err error) {
	d := decoder{bs: bs}
	g = SynonymGroup(d.strings())
	return g, d.n, d.err
}

func (synonymGroupMUS) Size(g SynonymGroup) int {
	return sizeStrings(g)
}

func (s synonymGroupMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type corpusMetaMUS struct{}

func (corpusMetaMUS) Marshal(m CorpusMeta, bs []byte) (n int) {
	n = ord.String.Marshal(m.Version, bs)
	n += ord.String.Marshal(m.LastUpdated, bs[n:])
	n += varint.Int.Marshal(m.TotalCount, bs[n:])
	n += varint.Int.Marshal(m.WithImagesCount, bs[n:])
	n += varint.Int.Marshal(m.YearRange.Min, bs[n:])
	n += varint.Int.Marshal(m.YearRange.Max, bs[n:])
	n += varint.Uint64.Marshal(m.Fingerprint, bs[n:])
	return
}

func (corpusMetaMUS) Unmarshal(bs []byte) (m CorpusMeta, n int, err error) {
	d := decoder{bs: bs}
	m.Version = d.string()
	m.LastUpdated = d.string()
	m.TotalCount = d.int()
	m.WithImagesCount = d.int()
	m.YearRange.Min = d.int()
	m.YearRange.Max = d.int()
	m.Fingerprint = d.uint64()
	return m, d.n, d.err
}

func (corpusMetaMUS) Size(m CorpusMeta) (size int) {
	size = ord.String.Size(m.Version)
	size += ord.String.Size(m.LastUpdated)
	size += varint.Int.Size(m.TotalCount)
	size += varint.Int.Size(m.WithImagesCount)
	size += varint.Int.Size(m.YearRange.Min)
	size += varint.Int.Size(m.YearRange.Max)
	size += varint.Uint64.Size(m.Fingerprint)
	return
}

func (s corpusMetaMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

// Length-prefixed string slices and maps. A zero length decodes to nil.

func marshalStrings(v []string, bs []byte) (n int) {
	n = varint.PositiveInt.Marshal(len(v), bs)
	for _, s := range v {
		n += ord.String.Marshal(s, bs[n:])
	}
	return
}

func sizeStrings(v []string) (size int) {
	size = varint.PositiveInt.Size(len(v))
	for _, s := range v {
		size += ord.String.Size(s)
	}
	return
}

func marshalStringMap(m map[string]string, bs []byte) (n int) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	n = varint.PositiveInt.Marshal(len(keys), bs)
	for _, k := range keys {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(m[k], bs[n:])
	}
	return
}

func sizeStringMap(m map[string]string) (size int) {
	size = varint.PositiveInt.Size(len(m))
	for k, v := range m {
		size += ord.String.Size(k) + ord.String.Size(v)
	}
	return
}

// decoder reads fields sequentially and stops at the first error.
type decoder struct {
	bs  []byte
	n   int
	err error
}

func (d *decoder) string() (v string) {
	if d.err != nil {
		return
	}
	var n int
	v, n, d.err = ord.String.Unmarshal(d.bs[d.n:])
	d.n += n
	return
}

func (d *decoder) int() (v int) {
	if d.err != nil {
		return
	}
	var n int
	v, n, d.err = varint.Int.Unmarshal(d.bs[d.n:])
	d.n += n
	return
}

func (d *decoder) uint64() (v uint64) {
	if d.err != nil {
		return
	}
	var n int
	v, n, d.err = varint.Uint64.Unmarshal(d.bs[d.n:])
	d.n += n
	return
}

func (d *decoder) bool() (v bool) {
	if d.err != nil {
		return
	}
	var n int
	v, n, d.err = ord.Bool.Unmarshal(d.bs[d.n:])
	d.n += n
	return
}

// length reads a collection length and rejects lengths that cannot fit
// in the remaining bytes.
func (d *decoder) length() (l int) {
	if d.err != nil {
		return
	}
	var n int
	l, n, d.err = varint.PositiveInt.Unmarshal(d.bs[d.n:])
	d.n += n
	if d.err == nil && (l < 0 || l > len(d.bs)-d.n) {
		d.err = ErrTruncatedData
		l = 0
	}
	return
}

func (d *decoder) strings() []string {
	l := d.length()
	if l == 0 {
		return nil
	}
	v := make([]string, l)
	for i := range v {
		v[i] = d.string()
	}
	if d.err != nil {
		return nil
	}
	return v
}

func (d *decoder) stringMap() map[string]string {
	l := d.length()
	if l == 0 {
		return nil
	}
	m := make(map[string]string, l)
	for range l {
		k := d.string()
		m[k] = d.string()
	}
	if d.err != nil {
		return nil
	}
	return m
}
