package providers

import (
	"github.com/samber/do/v2"

	"github.com/medialogapp/medialog-server/internal/catalog"
	"github.com/medialogapp/medialog-server/internal/config"
	"github.com/medialogapp/medialog-server/internal/logger"
	"github.com/medialogapp/medialog-server/internal/service"
)

// ProvideAchievementService provides the achievement engine.
func ProvideAchievementService(i do.Injector) (*service.AchievementService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAchievementService(storeHandle.Store, log.Logger), nil
}

// RecalculatorHandle wraps the recalculation worker pool with Shutdownable.
type RecalculatorHandle struct {
	*service.Recalculator
}

// Shutdown implements do.Shutdownable.
func (h *RecalculatorHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideRecalculator provides the async achievement recalculation pool.
func ProvideRecalculator(i do.Injector) (*RecalculatorHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	achievements := do.MustInvoke[*service.AchievementService](i)
	log := do.MustInvoke[*logger.Logger](i)

	r := service.NewRecalculator(
		achievements,
		log.Logger,
		cfg.Recalc.QueueSize,
		cfg.Recalc.Workers,
		cfg.Recalc.JobTimeout,
	)

	log.Info("Recalculation workers started",
		"queue_size", cfg.Recalc.QueueSize,
		"workers", cfg.Recalc.Workers,
	)

	return &RecalculatorHandle{Recalculator: r}, nil
}

// ProvideLibraryService provides the reconciliation orchestrator.
func ProvideLibraryService(i do.Injector) (*service.LibraryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	provider := do.MustInvoke[catalog.Provider](i)
	recalc := do.MustInvoke[*RecalculatorHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLibraryService(storeHandle.Store, provider, recalc.Recalculator, log.Logger), nil
}

// ProvideProgressService provides the progress tracking service.
func ProvideProgressService(i do.Injector) (*service.ProgressService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	recalc := do.MustInvoke[*RecalculatorHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProgressService(storeHandle.Store, recalc.Recalculator, log.Logger), nil
}
