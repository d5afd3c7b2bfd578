package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/kokushi/core"
	"github.com/poiesic/kokushi/storage"
)

// QuestionRepository implements storage.QuestionRepository for BadgerDB.
type QuestionRepository struct {
	backend *Backend
}

var _ storage.QuestionRepository = (*QuestionRepository)(nil)

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(backend *Backend) (*QuestionRepository, error) {
	return &QuestionRepository{
		backend: backend,
	}, nil
}

// Close releases resources. QuestionRepository has no resources to release.
func (r *QuestionRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *QuestionRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutQuestions stores one or more questions, replacing existing ones.
func (r *QuestionRepository) PutQuestions(ctx context.Context, questions ...*core.Question) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, q := range questions {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := tx.Set(makeQuestionKey(q.ID), storage.MarshalQuestion(q)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// DeleteQuestions removes questions by their IDs.
func (r *QuestionRepository) DeleteQuestions(ctx context.Context, ids ...string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeQuestionKey(id)
			if _, err := tx.Get(key); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return storage.ErrNotFound
				}
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetQuestion retrieves a single question by ID.
func (r *QuestionRepository) GetQuestion(ctx context.Context, id string) (*core.Question, error) {
	var result *core.Question
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readQuestion(tx, makeQuestionKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetQuestions retrieves multiple questions by their IDs.
func (r *QuestionRepository) GetQuestions(ctx context.Context, ids ...string) ([]*core.Question, error) {
	var result []*core.Question
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			q, err := readQuestion(tx, makeQuestionKey(id))
			if err != nil {
				return err
			}
			if q != nil {
				result = append(result, q)
			}
		}
		return nil
	}, false)
	return result, err
}

// AllQuestions retrieves every stored question.
func (r *QuestionRepository) AllQuestions(ctx context.Context) ([]*core.Question, error) {
	var result []*core.Question
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(questionPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var q *core.Question
			err := iter.Item().Value(func(val []byte) error {
				var err error
				q, err = storage.UnmarshalQuestion(val)
				return err
			})
			if err != nil {
				return err
			}
			result = append(result, q)
		}
		return nil
	}, false)
	return result, err
}

// QuestionIDs returns the stored question IDs, lowercased.
func (r *QuestionRepository) QuestionIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keysWithPrefix(tx, []byte(questionPrefix)) {
			ids = append(ids, questionIDFromKey(key))
		}
		return nil
	}, false)
	return ids, err
}

// CountQuestions returns the number of stored questions.
func (r *QuestionRepository) CountQuestions(ctx context.Context) (int, error) {
	ids, err := r.QuestionIDs(ctx)
	return len(ids), err
}

// readQuestion reads a question from the database.
// Returns nil, nil if the key doesn't exist.
func readQuestion(tx *badger.Txn, key []byte) (*core.Question, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var q *core.Question
	err = item.Value(func(val []byte) error {
		var err error
		q, err = storage.UnmarshalQuestion(val)
		return err
	})
	return q, err
}
