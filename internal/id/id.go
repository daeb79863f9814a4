// Package id generates entity identifiers.
//
// Checklist and item IDs are sequential per device: a durable per-kind
// counter concatenated with the owning principal's identifier, matching
// the IDs the mobile clients already have on disk. They are NOT globally
// unique when the same principal is signed in on two devices at once,
// because each device keeps its own counters. Known limitation, lived with.
package id

import (
	"context"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Counter names used in the durable counter store.
const (
	CounterChecklist = "ChecklistID"
	CounterItem      = "ChecklistItemID"
)

// CounterStore is durable local key/value state holding one integer per
// counter name. Next must perform an atomic read-increment-write: two
// concurrent callers within one process never observe the same value.
type CounterStore interface {
	// Next increments the named counter and returns the new value.
	// Counters start at 0, so the first returned value is 1.
	Next(ctx context.Context, name string) (uint64, error)
}

// Generator produces sequential entity IDs scoped to a principal.
type Generator struct {
	counters CounterStore
}

// NewGenerator creates a generator backed by the given counter store.
func NewGenerator(counters CounterStore) *Generator {
	return &Generator{counters: counters}
}

// NextChecklistID returns the next checklist ID for the principal.
func (g *Generator) NextChecklistID(ctx context.Context, ownerID string) (string, error) {
	return g.next(ctx, CounterChecklist, ownerID)
}

// NextItemID returns the next checklist item ID for the principal.
func (g *Generator) NextItemID(ctx context.Context, ownerID string) (string, error) {
	return g.next(ctx, CounterItem, ownerID)
}

func (g *Generator) next(ctx context.Context, counter, ownerID string) (string, error) {
	n, err := g.counters.Next(ctx, counter)
	if err != nil {
		return "", fmt.Errorf("advance counter %s: %w", counter, err)
	}
	return fmt.Sprintf("%s%d", ownerID, n), nil
}

// Handle creates a prefixed random identifier using NanoID, used for
// ephemeral things like subscription handles and token IDs where the
// sequential scheme above does not apply.
// Format: prefix-nanoid (e.g., "sub-V1StGXR8_Z5jdHi6B-myT").
func Handle(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustHandle is like Handle but panics if generation fails. Use only when
// failure should crash the program, e.g. during initialization.
func MustHandle(prefix string) string {
	id, err := Handle(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
