package fingerprint

import (
	"context"
	"errors"
	"strings"
)

// VendorRepository defines the interface for looking up device vendors by
// OUI prefix. Prefixes use the canonical "XX:XX:XX" form.
type VendorRepository interface {
	// LookupVendor returns the vendor name registered for oui
	LookupVendor(ctx context.Context, oui string) (string, error)

	// Close releases any resources held by the repository
	Close() error
}

// RepositoryStats contains statistics about a vendor repository
type RepositoryStats struct {
	TotalEntries int
	CacheHits    int64
	CacheMisses  int64
	LastUpdated  string
}

// CompositeVendorRepository implements a chain-of-responsibility pattern
// for vendor lookups, trying multiple repositories in order
type CompositeVendorRepository struct {
	repositories []VendorRepository
}

// NewCompositeVendorRepository creates a new composite repository
// that tries each repository in order until one succeeds
func NewCompositeVendorRepository(repos ...VendorRepository) *CompositeVendorRepository {
	return &CompositeVendorRepository{
		repositories: repos,
	}
}

// LookupVendor tries each repository in order until one returns a result
func (c *CompositeVendorRepository) LookupVendor(ctx context.Context, oui string) (string, error) {
	var lastErr error
	for _, repo := range c.repositories {
		vendor, err := repo.LookupVendor(ctx, oui)
		if err == nil && vendor != "" {
			return vendor, nil
		}
		if err != nil && !errors.Is(err, ErrVendorNotFound) {
			lastErr = err
		}
	}

	if lastErr != nil {
		return "", lastErr
	}
	return "", ErrVendorNotFound
}

// Close closes all repositories
func (c *CompositeVendorRepository) Close() error {
	var firstErr error
	for _, repo := range c.repositories {
		if err := repo.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// StaticVendorRepository provides vendor lookups from an in-memory map
type StaticVendorRepository struct {
	vendors map[string]string
}

// NewStaticVendorRepository creates a new static repository. Keys are
// normalized so callers may pass lowercase or dash-separated prefixes.
func NewStaticVendorRepository(vendors map[string]string) *StaticVendorRepository {
	normalized := make(map[string]string, len(vendors))
	for k, v := range vendors {
		if oui, ok := NormalizeOUI(k); ok {
			normalized[oui] = v
		}
	}
	return &StaticVendorRepository{
		vendors: normalized,
	}
}

// LookupVendor looks up a vendor in the static map
func (s *StaticVendorRepository) LookupVendor(ctx context.Context, oui string) (string, error) {
	if vendor, ok := s.vendors[oui]; ok {
		return vendor, nil
	}
	return "", ErrVendorNotFound
}

// Len returns the number of entries
func (s *StaticVendorRepository) Len() int {
	return len(s.vendors)
}

// Close is a no-op for static repository
func (s *StaticVendorRepository) Close() error {
	return nil
}

// NormalizeOUI converts a MAC prefix to the canonical "XX:XX:XX" form.
// Dashes, dots and missing separators are accepted.
func NormalizeOUI(prefix string) (string, bool) {
	p := strings.ToUpper(strings.TrimSpace(prefix))
	p = strings.NewReplacer("-", "", ":", "", ".", "").Replace(p)
	if len(p) < 6 {
		return "", false
	}
	p = p[:6]
	for i := 0; i < len(p); i++ {
		c := p[i]
		if !(c >= '0' && c <= '9' || c >= 'A' && c <= 'F') {
			return "", false
		}
	}
	return p[0:2] + ":" + p[2:4] + ":" + p[4:6], true
}
