package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/kokushi/core"
	"github.com/poiesic/kokushi/storage"
)

// SynonymRepository implements storage.SynonymRepository for BadgerDB.
// Groups are stored one per key, keyed by their position in the dictionary.
type SynonymRepository struct {
	backend *Backend
}

var _ storage.SynonymRepository = (*SynonymRepository)(nil)

// NewSynonymRepository creates a new SynonymRepository.
func NewSynonymRepository(backend *Backend) (*SynonymRepository, error) {
	return &SynonymRepository{
		backend: backend,
	}, nil
}

// Close releases resources. SynonymRepository has no resources to release.
func (r *SynonymRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *SynonymRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// ReplaceSynonyms deletes the stored dictionary and writes groups in its
// place within a single transaction.
func (r *SynonymRepository) ReplaceSynonyms(ctx context.Context, groups []core.SynonymGroup) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keysWithPrefix(tx, []byte(synonymGroupPrefix)) {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		for i, group := range groups {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := tx.Set(makeSynonymGroupKey(i), storage.MarshalSynonymGroup(group)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetSynonyms returns the stored dictionary in order.
func (r *SynonymRepository) GetSynonyms(ctx context.Context) ([]core.SynonymGroup, error) {
	groups := []core.SynonymGroup{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(synonymGroupPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				group, err := storage.UnmarshalSynonymGroup(val)
				if err != nil {
					return err
				}
				groups = append(groups, group)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return groups, nil
}
