package store

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/dgraph-io/badger/v4"

	apperrors "github.com/tickstack/tickstack-server/internal/errors"
)

// Counters is the durable local counter store backing sequential ID
// generation. Each counter is a decimal integer at counter:{name}.
//
// The mutex makes the read-increment-write sequence atomic with respect
// to concurrent callers in this process; the Badger transaction makes it
// durable.
type Counters struct {
	mu    sync.Mutex
	store *Store
}

// Next increments the named counter and returns the new value.
// Implements id.CounterStore.
func (c *Counters) Next(ctx context.Context, name string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := []byte(counterPrefix + name)
	var next uint64

	err := c.store.db.Update(func(txn *badger.Txn) error {
		current := uint64(0)

		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			// First use, counter starts at 0.
		case err != nil:
			return err
		default:
			err = item.Value(func(val []byte) error {
				parsed, parseErr := strconv.ParseUint(string(val), 10, 64)
				if parseErr != nil {
					return parseErr
				}
				current = parsed
				return nil
			})
			if err != nil {
				return err
			}
		}

		next = current + 1
		return txn.Set(key, []byte(strconv.FormatUint(next, 10)))
	})
	if err != nil {
		return 0, apperrors.Store("advance counter", err)
	}

	return next, nil
}
