package providers

import (
	"github.com/samber/do/v2"

	"github.com/medialogapp/medialog-server/internal/catalog"
	"github.com/medialogapp/medialog-server/internal/catalog/jikan"
	"github.com/medialogapp/medialog-server/internal/catalog/tmdb"
	"github.com/medialogapp/medialog-server/internal/config"
	"github.com/medialogapp/medialog-server/internal/logger"
)

// ProvideCatalog provides the composed catalog router: TMDB for screen
// media, Jikan for print media.
func ProvideCatalog(i do.Injector) (catalog.Provider, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var tmdbOpts []tmdb.Option
	if cfg.Catalog.TMDBBaseURL != "" {
		tmdbOpts = append(tmdbOpts, tmdb.WithBaseURL(cfg.Catalog.TMDBBaseURL))
	}
	screen := tmdb.NewClient(cfg.Catalog.TMDBAPIKey, log.Logger, tmdbOpts...)

	var jikanOpts []jikan.Option
	if cfg.Catalog.JikanBaseURL != "" {
		jikanOpts = append(jikanOpts, jikan.WithBaseURL(cfg.Catalog.JikanBaseURL))
	}
	print := jikan.NewClient(log.Logger, jikanOpts...)

	return catalog.NewRouter(screen, print), nil
}
