// Package handlers exposes the quotation desk as a JSON API on the
// PocketBase router.
package handlers

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"quotedesk/services"
)

// CacheInvalidator drops cached catalog search results after a catalog
// write.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Deps bundles what the handlers need. Searcher may be a cache in front of
// Catalog; Invalidator is nil when no cache is configured.
type Deps struct {
	Catalog       *services.CatalogRepository
	Searcher      services.CatalogSearcher
	Invalidator   CacheInvalidator
	Drafts        *services.DraftBook
	Store         *services.QuotationStore
	Defaults      services.PriceParams
	DefaultMarkup decimal.Decimal
	Logger        *zap.Logger
}

func (d *Deps) invalidateCatalog(ctx context.Context) {
	if d.Invalidator == nil {
		return
	}
	if err := d.Invalidator.Invalidate(ctx); err != nil {
		d.Logger.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}
