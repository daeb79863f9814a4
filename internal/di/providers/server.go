package providers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/tickstack/tickstack-server/internal/api"
	"github.com/tickstack/tickstack-server/internal/backup"
	"github.com/tickstack/tickstack-server/internal/config"
	"github.com/tickstack/tickstack-server/internal/identity"
	"github.com/tickstack/tickstack-server/internal/ratelimit"
	"github.com/tickstack/tickstack-server/internal/service"
	"github.com/tickstack/tickstack-server/internal/validation"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// RateLimiterHandle wraps the keyed rate limiter with Shutdownable.
type RateLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideRateLimiter provides the per-principal API rate limiter.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	limiter := ratelimit.New(float64(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
	return &RateLimiterHandle{KeyedRateLimiter: limiter}, nil
}

// ProvideHTTPServer provides the HTTP server and starts it in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)
	hubHandle := do.MustInvoke[*HubHandle](i)
	limiterHandle := do.MustInvoke[*RateLimiterHandle](i)

	checklists := do.MustInvoke[*service.ChecklistService](i)
	items := do.MustInvoke[*service.ItemService](i)
	tokens := do.MustInvoke[*identity.TokenService](i)
	backups := do.MustInvoke[*backup.Service](i)

	stream := api.NewStreamHandler(hubHandle.Hub, log)

	handler := api.NewServer(
		checklists,
		items,
		tokens,
		validation.New(),
		limiterHandle.KeyedRateLimiter,
		stream,
		backups,
		cfg.Auth.OwnerID,
		log,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr, "name", cfg.Server.Name)

	return &HTTPServerHandle{Server: srv}, nil
}
