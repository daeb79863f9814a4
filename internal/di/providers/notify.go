package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/tickstack/tickstack-server/internal/config"
	"github.com/tickstack/tickstack-server/internal/notify"
)

// NotifierHandle wraps the local notifier with shutdown capability.
type NotifierHandle struct {
	*notify.LocalNotifier
}

// Shutdown implements do.Shutdownable.
func (h *NotifierHandle) Shutdown() error {
	h.LocalNotifier.Shutdown()
	return nil
}

// ProvideNotifier provides the timer-backed local notifier. Reminder
// deliveries are emitted into the live hub.
func ProvideNotifier(i do.Injector) (*NotifierHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)
	hubHandle := do.MustInvoke[*HubHandle](i)

	notifier := notify.NewLocalNotifier(hubHandle.Hub, log, cfg.Notify.Enabled)

	if !cfg.Notify.Enabled {
		log.Warn("Reminder notifications disabled by configuration")
	}

	return &NotifierHandle{LocalNotifier: notifier}, nil
}

// ProvideScheduler provides the reminder scheduler.
func ProvideScheduler(i do.Injector) (*notify.Scheduler, error) {
	log := do.MustInvoke[*slog.Logger](i)
	notifierHandle := do.MustInvoke[*NotifierHandle](i)

	return notify.NewScheduler(notifierHandle.LocalNotifier, log), nil
}
