// Package di provides dependency injection configuration for the TickStack server.
package di

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/tickstack/tickstack-server/internal/backup"
	"github.com/tickstack/tickstack-server/internal/config"
	"github.com/tickstack/tickstack-server/internal/di/providers"
	"github.com/tickstack/tickstack-server/internal/id"
	"github.com/tickstack/tickstack-server/internal/identity"
	"github.com/tickstack/tickstack-server/internal/notify"
	"github.com/tickstack/tickstack-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Live hub and database layer
	do.Provide(injector, providers.ProvideHub)
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideBackupService)

	// Notifications
	do.Provide(injector, providers.ProvideNotifier)
	do.Provide(injector, providers.ProvideScheduler)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideIdentity)

	// Business services
	do.Provide(injector, providers.ProvideIDGenerator)
	do.Provide(injector, providers.ProvideChecklistService)
	do.Provide(injector, providers.ProvideItemService)
	do.Provide(injector, providers.ProvideAsync)

	// Server
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once the server is up.
// This triggers lazy initialization of every provider.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*slog.Logger](injector)
	_ = do.MustInvoke[*providers.HubHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*backup.Service](injector)
	_ = do.MustInvoke[*providers.NotifierHandle](injector)
	_ = do.MustInvoke[*notify.Scheduler](injector)
	_ = do.MustInvoke[*identity.TokenService](injector)
	_ = do.MustInvoke[identity.Provider](injector)
	_ = do.MustInvoke[*id.Generator](injector)
	_ = do.MustInvoke[*service.ChecklistService](injector)
	_ = do.MustInvoke[*service.ItemService](injector)
	_ = do.MustInvoke[*service.Async](injector)
	_ = do.MustInvoke[*providers.RateLimiterHandle](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
