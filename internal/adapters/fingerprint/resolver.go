package fingerprint

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/lcalzada-xor/wsniff/internal/core/domain"
)

const (
	defaultResolverCacheSize = 4096
	lookupTimeout            = 2 * time.Second
)

// Resolver maps hardware addresses to vendor names. Results, including
// misses, are memoized per OUI so each prefix hits the repository once.
type Resolver struct {
	repo  VendorRepository
	cache *OUICache
}

// NewResolver wraps repo. A nil repo resolves everything to Unknown.
func NewResolver(repo VendorRepository) *Resolver {
	return &Resolver{
		repo:  repo,
		cache: NewOUICache(defaultResolverCacheSize),
	}
}

// VendorOf implements ports.VendorResolver.
func (r *Resolver) VendorOf(mac domain.MAC) string {
	oui := mac.OUI()
	if vendor, ok := r.cache.Get(oui); ok {
		return vendor
	}

	vendor := domain.UnknownVendor
	if r.repo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
		v, err := r.repo.LookupVendor(ctx, oui)
		cancel()
		switch {
		case err == nil && v != "":
			vendor = v
		case err != nil && !errors.Is(err, ErrVendorNotFound):
			log.Printf("Vendor lookup for %s failed: %v", oui, err)
		}
	}

	r.cache.Set(oui, vendor)
	return vendor
}

// Stats exposes the memoization counters.
func (r *Resolver) Stats() CacheStats {
	return r.cache.Stats()
}

// Close releases the underlying repository.
func (r *Resolver) Close() error {
	if r.repo == nil {
		return nil
	}
	return r.repo.Close()
}
