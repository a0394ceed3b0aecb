package fingerprint

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// OUIDatabase provides vendor lookup from a SQLite OUI registry.
type OUIDatabase struct {
	mu    sync.RWMutex
	db    *gorm.DB
	cache *OUICache
}

// OUIEntry represents a single OUI registry entry
type OUIEntry struct {
	Prefix      string    `gorm:"primaryKey;size:8"`
	Vendor      string    `gorm:"not null;index"`
	VendorShort string    `gorm:"index"`
	Country     string
	LastUpdated time.Time
}

// TableName keeps the table name stable across model renames.
func (OUIEntry) TableName() string {
	return "oui_registry"
}

// NewOUIDatabase opens (or creates) the registry at dbPath and migrates
// its schema.
func NewOUIDatabase(dbPath string, cacheSize int) (*OUIDatabase, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, &DatabaseError{Op: "open", Err: err}
	}

	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		closeDB(db)
		return nil, &DatabaseError{Op: "tracing", Err: err}
	}

	if err := db.AutoMigrate(&OUIEntry{}); err != nil {
		closeDB(db)
		return nil, &DatabaseError{Op: "initialize_schema", Err: err}
	}

	return &OUIDatabase{
		db:    db,
		cache: NewOUICache(cacheSize),
	}, nil
}

// LookupVendor implements VendorRepository interface
func (o *OUIDatabase) LookupVendor(ctx context.Context, oui string) (string, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.db == nil {
		return "", ErrRepositoryClosed
	}

	if vendor, ok := o.cache.Get(oui); ok {
		return vendor, nil
	}

	var entry OUIEntry
	err := o.db.WithContext(ctx).First(&entry, "prefix = ?", oui).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrVendorNotFound
	}
	if err != nil {
		return "", &DatabaseError{Op: "lookup", Err: err}
	}

	vendor := entry.Vendor
	if entry.VendorShort != "" {
		vendor = entry.VendorShort
	}
	o.cache.Set(oui, vendor)
	return vendor, nil
}

// BulkInsertOUIs upserts entries in a single transaction.
func (o *OUIDatabase) BulkInsertOUIs(ctx context.Context, entries []OUIEntry) error {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.db == nil {
		return ErrRepositoryClosed
	}
	if len(entries) == 0 {
		return nil
	}

	for i := range entries {
		oui, ok := NormalizeOUI(entries[i].Prefix)
		if !ok {
			return &ValidationError{Field: "prefix", Value: entries[i].Prefix, Err: ErrInvalidOUI}
		}
		entries[i].Prefix = oui
	}

	err := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			UpdateAll: true,
		}).CreateInBatches(entries, 500).Error
	})
	if err != nil {
		return &DatabaseError{Op: "bulk_insert", Err: err}
	}
	o.cache.Clear()
	return nil
}

// GetStats returns registry size and cache counters
func (o *OUIDatabase) GetStats(ctx context.Context) (RepositoryStats, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.db == nil {
		return RepositoryStats{}, ErrRepositoryClosed
	}

	var count int64
	if err := o.db.WithContext(ctx).Model(&OUIEntry{}).Count(&count).Error; err != nil {
		return RepositoryStats{}, &DatabaseError{Op: "get_stats", Err: err}
	}

	var last OUIEntry
	lastUpdate := ""
	if err := o.db.WithContext(ctx).Order("last_updated desc").Limit(1).Find(&last).Error; err == nil && !last.LastUpdated.IsZero() {
		lastUpdate = last.LastUpdated.Format("2006-01-02")
	}

	cacheStats := o.cache.Stats()
	return RepositoryStats{
		TotalEntries: int(count),
		CacheHits:    cacheStats.Hits,
		CacheMisses:  cacheStats.Misses,
		LastUpdated:  lastUpdate,
	}, nil
}

// Close implements VendorRepository interface
func (o *OUIDatabase) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.db == nil {
		return nil
	}
	err := closeDB(o.db)
	o.db = nil
	o.cache.Clear()
	return err
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
