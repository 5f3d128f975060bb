package catalog

import (
	"context"

	"github.com/medialogapp/medialog-server/internal/domain"
	"github.com/medialogapp/medialog-server/internal/errors"
)

// Router dispatches detail lookups to the right upstream per media type:
// screen media (movie/tv/anime) and print media (manga/manhwa) live in
// different catalogs.
type Router struct {
	screen Provider
	print  Provider
}

// NewRouter creates a provider that routes by media type.
func NewRouter(screen, print Provider) *Router {
	return &Router{screen: screen, print: print}
}

// GetDetails implements Provider.
func (r *Router) GetDetails(ctx context.Context, mediaType domain.MediaType, mediaID int64) (*Details, error) {
	switch mediaType {
	case domain.MediaTypeMovie, domain.MediaTypeTV, domain.MediaTypeAnime:
		return r.screen.GetDetails(ctx, mediaType, mediaID)
	case domain.MediaTypeManga, domain.MediaTypeManhwa:
		return r.print.GetDetails(ctx, mediaType, mediaID)
	default:
		return nil, errors.Validationf("unknown media type %q", mediaType)
	}
}
