package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/poiesic/kokushi/core"
	"golang.org/x/sync/errgroup"
)

// questionsFile is the layout of the questions asset.
type questionsFile struct {
	Meta      core.CorpusMeta   `json:"meta"`
	Questions []json.RawMessage `json:"questions"`
}

// synonymsFile is the layout of the synonym dictionary asset.
type synonymsFile struct {
	Synonyms []core.SynonymGroup `json:"synonyms"`
}

// LoadQuestions reads a questions asset. Each record is decoded on its own,
// so a record of the wrong shape is dropped like any other invalid record
// instead of failing the whole load.
func LoadQuestions(r io.Reader, opts ...Option) (*Corpus, error) {
	var file questionsFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: questions: %w", ErrMalformedAsset, err)
	}

	questions := make([]*core.Question, len(file.Questions))
	for i, raw := range file.Questions {
		var q core.Question
		if err := json.Unmarshal(raw, &q); err != nil {
			// left nil, New drops it
			continue
		}
		questions[i] = &q
	}

	return New(file.Meta, questions, opts...)
}

// LoadSynonyms reads a synonym dictionary asset.
func LoadSynonyms(r io.Reader) ([]core.SynonymGroup, error) {
	var file synonymsFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: synonyms: %w", ErrMalformedAsset, err)
	}
	return file.Synonyms, nil
}

// LoadFiles reads the questions and synonym assets concurrently. An empty
// synonymsPath yields an empty dictionary.
func LoadFiles(ctx context.Context, questionsPath, synonymsPath string, opts ...Option) (*Corpus, []core.SynonymGroup, error) {
	var (
		c      *Corpus
		groups []core.SynonymGroup
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return readFile(ctx, questionsPath, func(r io.Reader) error {
			var err error
			c, err = LoadQuestions(r, opts...)
			return err
		})
	})

	if synonymsPath != "" {
		g.Go(func() error {
			return readFile(ctx, synonymsPath, func(r io.Reader) error {
				var err error
				groups, err = LoadSynonyms(r)
				return err
			})
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return c, groups, nil
}

func readFile(ctx context.Context, path string, decode func(io.Reader) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := decode(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
