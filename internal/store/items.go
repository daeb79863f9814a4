package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/tickstack/tickstack-server/internal/domain"
	apperrors "github.com/tickstack/tickstack-server/internal/errors"
	"github.com/tickstack/tickstack-server/internal/live"
)

// SaveItem upserts an item document, fully replacing any existing
// document at the same ItemID. The caller stamps OwnerID.
func (s *Store) SaveItem(ctx context.Context, item *domain.ChecklistItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if item.ItemID == "" {
		return apperrors.Validation("item id cannot be empty")
	}
	if item.ListID == "" {
		return apperrors.Validation("item list id cannot be empty")
	}
	if item.OwnerID == "" {
		return apperrors.Validation("item owner cannot be empty")
	}

	key := []byte(itemPrefix + item.ItemID)

	err := s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshal item: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		// List index: idx:items:list:{ownerID}:{listID}:{itemID}
		listIndexKey := fmt.Appendf(nil, "%s%s:%s:%s", itemListPrefix, item.OwnerID, item.ListID, item.ItemID)
		return txn.Set(listIndexKey, []byte{})
	})
	if err != nil {
		return apperrors.Store("save item", err)
	}

	if s.logger != nil {
		s.logger.Info("item saved",
			"item_id", item.ItemID,
			"list_id", item.ListID,
			"owner_id", item.OwnerID,
		)
	}

	s.emit(live.NewItemSavedEvent(item))
	return nil
}

// GetItem retrieves one item by ID, scoped to the principal. Absent,
// undeserializable, and foreign-owner documents all surface as NotFound.
func (s *Store) GetItem(ctx context.Context, ownerID, itemID string) (*domain.ChecklistItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := s.getRaw(itemPrefix + itemID)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, apperrors.NotFoundf("item %s not found", itemID)
		}
		return nil, apperrors.Store("get item", err)
	}

	var item domain.ChecklistItem
	if err := json.Unmarshal(raw, &item); err != nil || item.OwnerID != ownerID {
		return nil, apperrors.NotFoundf("item %s not found", itemID)
	}

	return &item, nil
}

// ListItems returns the items of one checklist owned by the principal,
// optionally narrowed by a single equality predicate. Undeserializable
// documents are dropped silently.
func (s *Store) ListItems(ctx context.Context, ownerID, listID string, pred *Predicate) ([]*domain.ChecklistItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scanPrefix := []byte(fmt.Sprintf("%s%s:%s:", itemListPrefix, ownerID, listID))
	items := make([]*domain.ChecklistItem, 0)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = scanPrefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(scanPrefix); it.ValidForPrefix(scanPrefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			indexKey := string(it.Item().Key())
			itemID := strings.TrimPrefix(indexKey, string(scanPrefix))

			doc, err := txn.Get([]byte(itemPrefix + itemID))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			var item domain.ChecklistItem
			err = doc.Value(func(val []byte) error {
				return json.Unmarshal(val, &item)
			})
			if err != nil || item.OwnerID != ownerID {
				if s.logger != nil {
					s.logger.Debug("dropping undeserializable item document", "item_id", itemID)
				}
				continue
			}

			if !pred.Matches(&item) {
				continue
			}

			items = append(items, &item)
		}

		return nil
	})
	if err != nil {
		return nil, apperrors.Store("list items", err)
	}

	return items, nil
}

// DeleteItem removes an item document and its list index entry. Deleting
// an absent item is a no-op, and a foreign-owner document is invisible
// here just like on the reads: only the caller's own index entry is
// cleaned up.
func (s *Store) DeleteItem(ctx context.Context, ownerID, listID, itemID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	removed := false
	err := s.db.Update(func(txn *badger.Txn) error {
		docKey := []byte(itemPrefix + itemID)

		doc, err := txn.Get(docKey)
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		owned := false
		if err == nil {
			var item domain.ChecklistItem
			decodeErr := doc.Value(func(val []byte) error {
				return json.Unmarshal(val, &item)
			})
			owned = decodeErr == nil && item.OwnerID == ownerID
		}

		if owned {
			if err := txn.Delete(docKey); err != nil {
				return err
			}
			removed = true
		}

		listIndexKey := fmt.Appendf(nil, "%s%s:%s:%s", itemListPrefix, ownerID, listID, itemID)
		return txn.Delete(listIndexKey)
	})
	if err != nil {
		return apperrors.Store("delete item", err)
	}

	if !removed {
		return nil
	}

	if s.logger != nil {
		s.logger.Info("item deleted", "item_id", itemID, "list_id", listID, "owner_id", ownerID)
	}

	s.emit(live.NewItemDeletedEvent(ownerID, listID, itemID))
	return nil
}
