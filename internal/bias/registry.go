// Package bias resolves news source domains to political bias ratings
// using a registry backed by the source store.
package bias

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/seenimoa/biasfeed/internal/store"
	"github.com/seenimoa/biasfeed/pkg/models"
	"github.com/seenimoa/biasfeed/pkg/utils"
)

// Registry answers "what bias rating does this domain carry?" against
// an in-memory snapshot of the source registry. The snapshot is
// refreshed explicitly; lookups never touch the database.
type Registry struct {
	store  *store.Store
	logger *slog.Logger

	mu      sync.RWMutex
	byDom   map[string]models.BiasCategory
	ordered []models.Source
}

// NewRegistry creates a registry over the given store. Call Refresh
// before the first lookup.
func NewRegistry(s *store.Store, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		store:  s,
		logger: logger,
		byDom:  make(map[string]models.BiasCategory),
	}
}

// Refresh reloads the snapshot from the store. Sources are kept in
// insertion order because the containment fallback is first-match-wins.
func (r *Registry) Refresh(ctx context.Context) error {
	sources, err := r.store.ListSources(ctx)
	if err != nil {
		return err
	}

	byDom := make(map[string]models.BiasCategory, len(sources))
	for _, src := range sources {
		byDom[src.Domain] = src.BiasRating
	}

	r.mu.Lock()
	r.byDom = byDom
	r.ordered = sources
	r.mu.Unlock()
	return nil
}

// Len reports the number of sources in the current snapshot.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered)
}

// ResolveBias maps a domain to its bias rating. Lookup is exact match
// on the normalized domain first, then a containment scan: a registry
// entry matches when its domain contains the query or the query
// contains it, so "finance.yahoo.com" and subdomain variants resolve
// without separate entries. Unmatched domains rate unknown.
func (r *Registry) ResolveBias(domain string) models.BiasCategory {
	domain = utils.NormalizeDomain(domain)
	if domain == "" {
		return models.BiasUnknown
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if rating, ok := r.byDom[domain]; ok {
		return rating
	}

	for _, src := range r.ordered {
		if strings.Contains(domain, src.Domain) || strings.Contains(src.Domain, domain) {
			return src.BiasRating
		}
	}

	r.logger.Warn("domain not in source registry", "domain", domain)
	return models.BiasUnknown
}
