package providers

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/tickstack/tickstack-server/internal/backup"
	"github.com/tickstack/tickstack-server/internal/config"
	"github.com/tickstack/tickstack-server/internal/live"
	"github.com/tickstack/tickstack-server/internal/store"
)

// HubHandle wraps the live hub with its context for lifecycle management.
type HubHandle struct {
	*live.Hub
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable. The hub drains its queue before
// the broadcast context is canceled, so pending events still reach
// their subscribers.
func (h *HubHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Hub.Shutdown(ctx)
	h.cancel()
	return err
}

// ProvideHub provides the live event hub.
func ProvideHub(i do.Injector) (*HubHandle, error) {
	log := do.MustInvoke[*slog.Logger](i)

	hub := live.NewHub(log)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Start(ctx)

	log.Info("Live hub started")

	return &HubHandle{
		Hub:    hub,
		cancel: cancel,
	}, nil
}

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the document store, wired to emit change events
// into the live hub.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)
	hubHandle := do.MustInvoke[*HubHandle](i)

	dbPath := filepath.Join(cfg.Data.BasePath, "db")
	db, err := store.New(dbPath, log, hubHandle.Hub)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// ProvideBackupService provides the database snapshot service.
func ProvideBackupService(i do.Injector) (*backup.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	backupDir := filepath.Join(cfg.Data.BasePath, "backups")
	return backup.NewService(storeHandle.Store, backupDir, log), nil
}
