package repository

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// KeyValueStore is the host's persistence surface. It is deliberately
// thin: callers run their own transactions and own the key layout.
type KeyValueStore interface {
	View(fn func(txn *badger.Txn) error) error
	Update(fn func(txn *badger.Txn) error) error
	Close() error
}

// BadgerStore implements KeyValueStore over a badger database.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore wraps an already opened badger database.
func NewBadgerStore(db *badger.DB) KeyValueStore {
	return &BadgerStore{db: db}
}

// Open opens (or creates) the badger database at path with the host's
// standard options. Badger's own logger is disabled; the host pipeline
// is the only log surface.
func Open(path string) (KeyValueStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open host database: %w", err)
	}
	return NewBadgerStore(db), nil
}

func (s *BadgerStore) View(fn func(txn *badger.Txn) error) error {
	return s.db.View(fn)
}

func (s *BadgerStore) Update(fn func(txn *badger.Txn) error) error {
	return s.db.Update(fn)
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
