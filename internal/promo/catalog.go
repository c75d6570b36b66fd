package promo

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shoplane/storefront-backend/pkg/logger"
	"github.com/shoplane/storefront-backend/pkg/upstream"
)

// Lister fetches the published promo definitions in bulk.
type Lister interface {
	ListPromos(ctx context.Context) ([]upstream.PromoDefinition, error)
}

// Catalog caches promo definitions fetched from the platform. It is shared
// across customer sessions and refreshed on an interval.
type Catalog struct {
	mu   sync.RWMutex
	defs map[string]upstream.PromoDefinition
	logg *logger.Logger
	now  func() time.Time
}

func NewCatalog(logg *logger.Logger) *Catalog {
	return &Catalog{
		defs: map[string]upstream.PromoDefinition{},
		logg: logg,
		now:  time.Now,
	}
}

// Refresh replaces the cached definitions with a fresh fetch. On failure the
// previous snapshot stays in place.
func (c *Catalog) Refresh(ctx context.Context, lister Lister) error {
	defs, err := lister.ListPromos(ctx)
	if err != nil {
		return err
	}

	next := make(map[string]upstream.PromoDefinition, len(defs))
	for _, def := range defs {
		next[normalizeCode(def.Code)] = def
	}

	c.mu.Lock()
	c.defs = next
	c.mu.Unlock()

	if c.logg != nil {
		c.logg.Info(c.logg.WithField(ctx, "promo_count", len(next)), "promo catalog refreshed")
	}
	return nil
}

// RefreshLoop refreshes the catalog on the given interval until the context
// is cancelled. Failures are logged and retried on the next tick.
func (c *Catalog) RefreshLoop(ctx context.Context, lister Lister, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Refresh(ctx, lister); err != nil && c.logg != nil {
				c.logg.Warn(ctx, "promo catalog refresh failed: "+err.Error())
			}
		}
	}
}

// Lookup returns the definition for a code if it is published, active, and
// inside its validity window.
func (c *Catalog) Lookup(code string) (upstream.PromoDefinition, bool) {
	c.mu.RLock()
	def, ok := c.defs[normalizeCode(code)]
	c.mu.RUnlock()
	if !ok || !def.Active {
		return upstream.PromoDefinition{}, false
	}

	now := c.now()
	if def.StartsAt != nil && now.Before(*def.StartsAt) {
		return upstream.PromoDefinition{}, false
	}
	if def.EndsAt != nil && now.After(*def.EndsAt) {
		return upstream.PromoDefinition{}, false
	}
	return def, true
}

// Definitions returns the currently cached definitions, unfiltered.
func (c *Catalog) Definitions() []upstream.PromoDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]upstream.PromoDefinition, 0, len(c.defs))
	for _, def := range c.defs {
		out = append(out, def)
	}
	return out
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
