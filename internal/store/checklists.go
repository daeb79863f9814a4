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

// SaveChecklist upserts a checklist document, fully replacing any
// existing document at the same ListID (never a partial merge). The
// caller is responsible for having stamped OwnerID.
func (s *Store) SaveChecklist(ctx context.Context, checklist *domain.Checklist) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if checklist.ListID == "" {
		return apperrors.Validation("checklist id cannot be empty")
	}
	if checklist.OwnerID == "" {
		return apperrors.Validation("checklist owner cannot be empty")
	}

	key := []byte(checklistPrefix + checklist.ListID)

	err := s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(checklist)
		if err != nil {
			return fmt.Errorf("marshal checklist: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		// Owner index: idx:checklists:owner:{ownerID}:{listID}
		ownerIndexKey := fmt.Appendf(nil, "%s%s:%s", checklistOwnerPrefix, checklist.OwnerID, checklist.ListID)
		return txn.Set(ownerIndexKey, []byte{})
	})
	if err != nil {
		return apperrors.Store("save checklist", err)
	}

	if s.logger != nil {
		s.logger.Info("checklist saved",
			"list_id", checklist.ListID,
			"owner_id", checklist.OwnerID,
			"title", checklist.Title,
		)
	}

	s.emit(live.NewChecklistSavedEvent(checklist))
	return nil
}

// GetChecklist retrieves one checklist by ID, scoped to the principal.
// A missing document, an undeserializable document, and a document owned
// by a different principal all surface as NotFound.
func (s *Store) GetChecklist(ctx context.Context, ownerID, listID string) (*domain.Checklist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := s.getRaw(checklistPrefix + listID)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, apperrors.NotFoundf("checklist %s not found", listID)
		}
		return nil, apperrors.Store("get checklist", err)
	}

	// An undeserializable document is treated as absent, not as a
	// store failure.
	var checklist domain.Checklist
	if err := json.Unmarshal(raw, &checklist); err != nil || checklist.OwnerID != ownerID {
		return nil, apperrors.NotFoundf("checklist %s not found", listID)
	}

	return &checklist, nil
}

// ListChecklists returns every checklist owned by the principal.
// Documents that fail to deserialize are dropped silently; partial
// success is still success.
func (s *Store) ListChecklists(ctx context.Context, ownerID string) ([]*domain.Checklist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scanPrefix := []byte(checklistOwnerPrefix + ownerID + ":")
	checklists := make([]*domain.Checklist, 0)

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
			listID := strings.TrimPrefix(indexKey, string(scanPrefix))

			doc, err := txn.Get([]byte(checklistPrefix + listID))
			if errors.Is(err, badger.ErrKeyNotFound) {
				// Stale index entry, treat the document as absent.
				continue
			}
			if err != nil {
				return err
			}

			var checklist domain.Checklist
			err = doc.Value(func(val []byte) error {
				return json.Unmarshal(val, &checklist)
			})
			if err != nil || checklist.OwnerID != ownerID {
				// Malformed or foreign document: dropped, never aborts the batch.
				if s.logger != nil {
					s.logger.Debug("dropping undeserializable checklist document", "list_id", listID)
				}
				continue
			}

			checklists = append(checklists, &checklist)
		}

		return nil
	})
	if err != nil {
		return nil, apperrors.Store("list checklists", err)
	}

	return checklists, nil
}

// DeleteChecklist removes a checklist document and its owner index entry.
// Deleting an absent checklist is a no-op, and a document owned by a
// different principal is invisible here just like on the reads: it is
// left untouched and only the caller's own index entry is cleaned up.
// Cascading to the checklist's items is the coordinator's job, not the
// store's.
func (s *Store) DeleteChecklist(ctx context.Context, ownerID, listID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	removed := false
	err := s.db.Update(func(txn *badger.Txn) error {
		docKey := []byte(checklistPrefix + listID)

		doc, err := txn.Get(docKey)
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		owned := false
		if err == nil {
			var checklist domain.Checklist
			decodeErr := doc.Value(func(val []byte) error {
				return json.Unmarshal(val, &checklist)
			})
			owned = decodeErr == nil && checklist.OwnerID == ownerID
		}

		if owned {
			if err := txn.Delete(docKey); err != nil {
				return err
			}
			removed = true
		}

		ownerIndexKey := fmt.Appendf(nil, "%s%s:%s", checklistOwnerPrefix, ownerID, listID)
		return txn.Delete(ownerIndexKey)
	})
	if err != nil {
		return apperrors.Store("delete checklist", err)
	}

	if !removed {
		return nil
	}

	if s.logger != nil {
		s.logger.Info("checklist deleted", "list_id", listID, "owner_id", ownerID)
	}

	s.emit(live.NewChecklistDeletedEvent(ownerID, listID))
	return nil
}
