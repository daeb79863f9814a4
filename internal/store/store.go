// Package store persists checklists and checklist items as flat JSON
// documents in a Badger database, scoped by owning principal. It is the
// single source of truth; the live hub is notified of every observed
// write through the Emitter interface.
package store

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// Key prefixes for the two logical collections and their owner indexes.
const (
	checklistPrefix      = "checklist:"           // checklist:{listID}
	checklistOwnerPrefix = "idx:checklists:owner:" // idx:checklists:owner:{ownerID}:{listID}
	itemPrefix           = "item:"                // item:{itemID}
	itemListPrefix       = "idx:items:list:"      // idx:items:list:{ownerID}:{listID}:{itemID}
	counterPrefix        = "counter:"             // counter:{name}
)

// Emitter is the interface for emitting live change events.
// Store uses this to broadcast changes without depending on the hub.
type Emitter interface {
	Emit(event any)
}

// NoopEmitter is a no-op implementation of Emitter for testing.
type NoopEmitter struct{}

// Emit implements Emitter.Emit as a no-op.
func (NoopEmitter) Emit(_ any) {}

// NewNoopEmitter creates a new no-op emitter for testing.
func NewNoopEmitter() Emitter {
	return NoopEmitter{}
}

// Store wraps a Badger database instance.
type Store struct {
	db      *badger.DB
	logger  *slog.Logger
	emitter Emitter

	counters *Counters
}

// New creates a new Store with the given database path and event emitter.
// The emitter is required and used to broadcast store changes to the hub.
func New(path string, logger *slog.Logger, emitter Emitter) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	store := &Store{
		db:      db,
		logger:  logger,
		emitter: emitter,
	}
	store.counters = &Counters{store: store}

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// Counters returns the durable counter store used for ID generation.
func (s *Store) Counters() *Counters {
	return s.counters
}

// Backup streams a full snapshot of the database to w using Badger's
// native backup format. It returns the version timestamp of the last
// entry written, suitable for incremental backups.
func (s *Store) Backup(w io.Writer) (uint64, error) {
	return s.db.Backup(w, 0)
}

// Restore loads a Badger backup stream into the database. Existing keys
// present in the stream are overwritten; the caller is responsible for
// making sure no writes race the load.
func (s *Store) Restore(r io.Reader) error {
	return s.db.Load(r, 16)
}

// Helper methods for database operations.

// getRaw retrieves a raw document by key, so callers can decide how to
// treat decode failures.
func (s *Store) getRaw(key string) ([]byte, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	return raw, err
}

// set stores a value by key.
func (s *Store) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// emit broadcasts an event if an emitter is configured.
func (s *Store) emit(event any) {
	if s.emitter != nil {
		s.emitter.Emit(event)
	}
}
