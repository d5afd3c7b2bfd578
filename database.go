// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package kokushi

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/kokushi/core"
	"github.com/poiesic/kokushi/corpus"
	"github.com/poiesic/kokushi/ingestion"
	"github.com/poiesic/kokushi/search"
	"github.com/poiesic/kokushi/storage"
	"github.com/poiesic/kokushi/storage/badger"
	"github.com/poiesic/kokushi/synonym"
)

// ErrNotImported is returned when the database holds no imported corpus.
var ErrNotImported = errors.New("no corpus imported")

// Database is an imported question corpus stored in BadgerDB.
type Database struct {
	backend      *badger.Backend
	questionRepo storage.QuestionRepository
	synonymRepo  storage.SynonymRepository
	metaRepo     storage.MetaRepository
	logger       *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	inMemory bool
	logger   *slog.Logger
}

// WithInMemory keeps the database in memory; the path is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithLogger sets the logger handed to every component the database creates.
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory, badger.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}

	questionRepo, err := badger.NewQuestionRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	synonymRepo, err := badger.NewSynonymRepository(backend)
	if err != nil {
		questionRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:      backend,
		questionRepo: questionRepo,
		synonymRepo:  synonymRepo,
		metaRepo:     badger.NewMetaRepository(backend),
		logger:       options.logger,
	}, nil
}

func (db *Database) Close() error {
	if err := db.synonymRepo.Close(); err != nil {
		db.logger.Error("error closing synonym repository", "err", err)
		return err
	}
	if err := db.questionRepo.Close(); err != nil {
		db.logger.Error("error closing question repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) QuestionRepository() storage.QuestionRepository {
	return db.questionRepo
}

func (db *Database) SynonymRepository() storage.SynonymRepository {
	return db.synonymRepo
}

func (db *Database) MetaRepository() storage.MetaRepository {
	return db.metaRepo
}

// NewImporter creates an importer writing into this database. The caller
// must Release it.
func (db *Database) NewImporter(opts ...ingestion.Option) (*ingestion.Importer, error) {
	opts = append([]ingestion.Option{ingestion.WithLogger(db.logger)}, opts...)
	return ingestion.NewImporter(db.questionRepo, db.synonymRepo, db.metaRepo, opts...)
}

// LoadCorpus reads the imported corpus and its synonym dictionary back from
// storage. It returns ErrNotImported when nothing has been imported yet.
func (db *Database) LoadCorpus(ctx context.Context) (*corpus.Corpus, []core.SynonymGroup, error) {
	meta, err := db.metaRepo.LoadMeta(ctx)
	if err != nil {
		return nil, nil, err
	}
	if meta == nil {
		return nil, nil, ErrNotImported
	}

	questions, err := db.questionRepo.AllQuestions(ctx)
	if err != nil {
		return nil, nil, err
	}
	groups, err := db.synonymRepo.GetSynonyms(ctx)
	if err != nil {
		return nil, nil, err
	}

	c, err := corpus.New(*meta, questions, corpus.WithLogger(db.logger))
	if err != nil {
		return nil, nil, err
	}
	return c, groups, nil
}

// NewSearcher loads the imported corpus and builds a searcher over it. The
// corpus is returned alongside for lookups and catalog queries. The caller
// must Close the searcher.
func (db *Database) NewSearcher(ctx context.Context, opts ...search.Option) (*search.Searcher, *corpus.Corpus, error) {
	c, groups, err := db.LoadCorpus(ctx)
	if err != nil {
		return nil, nil, err
	}

	opts = append([]search.Option{search.WithLogger(db.logger)}, opts...)
	searcher, err := search.NewSearcher(c.Questions(), synonym.New(groups), opts...)
	if err != nil {
		return nil, nil, err
	}
	return searcher, c, nil
}
