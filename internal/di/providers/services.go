package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/tickstack/tickstack-server/internal/id"
	"github.com/tickstack/tickstack-server/internal/identity"
	"github.com/tickstack/tickstack-server/internal/notify"
	"github.com/tickstack/tickstack-server/internal/service"
)

// ProvideIDGenerator provides the sequential ID generator backed by the
// store's durable counters.
func ProvideIDGenerator(i do.Injector) (*id.Generator, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	return id.NewGenerator(storeHandle.Counters()), nil
}

// ProvideChecklistService provides the checklist gateway service.
func ProvideChecklistService(i do.Injector) (*service.ChecklistService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	hubHandle := do.MustInvoke[*HubHandle](i)
	provider := do.MustInvoke[identity.Provider](i)
	ids := do.MustInvoke[*id.Generator](i)
	scheduler := do.MustInvoke[*notify.Scheduler](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewChecklistService(storeHandle.Store, hubHandle.Hub, provider, ids, scheduler, log), nil
}

// ProvideItemService provides the checklist item gateway service.
func ProvideItemService(i do.Injector) (*service.ItemService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	hubHandle := do.MustInvoke[*HubHandle](i)
	provider := do.MustInvoke[identity.Provider](i)
	ids := do.MustInvoke[*id.Generator](i)
	scheduler := do.MustInvoke[*notify.Scheduler](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewItemService(storeHandle.Store, hubHandle.Hub, provider, ids, scheduler, log), nil
}

// ProvideAsync provides the channel-based facade over both services.
func ProvideAsync(i do.Injector) (*service.Async, error) {
	checklists := do.MustInvoke[*service.ChecklistService](i)
	items := do.MustInvoke[*service.ItemService](i)

	return service.NewAsync(checklists, items), nil
}
