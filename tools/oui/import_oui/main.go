// Command import_oui loads a vendor list into the SQLite vendor registry
// used by wsniff -oui-db. It reads either the tab-separated list format
// or a maclookup style CSV.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/lcalzada-xor/wsniff/internal/adapters/fingerprint"
)

const batchSize = 1000

func main() {
	inPath := flag.String("in", "mlist/db", "Path to vendor list or CSV file")
	format := flag.String("format", "list", "Input format: list (prefix<TAB>vendor) or csv")
	dbPath := flag.String("db", "data/oui/oui.db", "Path to OUI database")
	flag.Parse()

	log.Printf("Importing OUI data from %s (%s) into %s", *inPath, *format, *dbPath)

	f, err := os.Open(*inPath)
	if err != nil {
		log.Fatalf("Failed to open input: %v", err)
	}
	defer f.Close()

	entries, err := readEntries(f, *format, time.Now())
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}

	db, err := fingerprint.NewOUIDatabase(*dbPath, 0)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	for start := 0; start < len(entries); start += batchSize {
		end := min(start+batchSize, len(entries))
		if err := db.BulkInsertOUIs(ctx, entries[start:end]); err != nil {
			log.Fatalf("Bulk insert failed: %v", err)
		}
	}

	stats, err := db.GetStats(ctx)
	if err != nil {
		log.Fatalf("Failed to get stats: %v", err)
	}

	log.Printf("Import complete: %d entries read, %d in registry (last updated %s)",
		len(entries), stats.TotalEntries, stats.LastUpdated)
}

func readEntries(r io.Reader, format string, now time.Time) ([]fingerprint.OUIEntry, error) {
	switch format {
	case "list":
		vendors, err := fingerprint.ParseVendorList(r)
		if err != nil {
			return nil, err
		}
		prefixes := make([]string, 0, len(vendors))
		for p := range vendors {
			prefixes = append(prefixes, p)
		}
		sort.Strings(prefixes)

		entries := make([]fingerprint.OUIEntry, 0, len(prefixes))
		for _, p := range prefixes {
			entries = append(entries, newEntry(p, vendors[p], now))
		}
		return entries, nil
	case "csv":
		return readCSV(r, now)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// readCSV accepts "Mac Prefix,Vendor Name,..." with a header row.
func readCSV(r io.Reader, now time.Time) ([]fingerprint.OUIEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var entries []fingerprint.OUIEntry
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Printf("Warning: Failed to parse line %d: %v", line, err)
			continue
		}
		if len(record) < 2 {
			continue
		}
		prefix, ok := fingerprint.NormalizeOUI(record[0])
		vendor := strings.TrimSpace(record[1])
		if !ok || vendor == "" {
			continue
		}
		entries = append(entries, newEntry(prefix, vendor, now))
	}
	return entries, nil
}

func newEntry(prefix, vendor string, now time.Time) fingerprint.OUIEntry {
	return fingerprint.OUIEntry{
		Prefix:      prefix,
		Vendor:      vendor,
		VendorShort: extractShortVendor(vendor),
		LastUpdated: now,
	}
}

var corporateSuffixes = []string{
	" Co., Ltd.", " Inc.", " Inc", " Corporation", " Corp.", " Corp",
	" Ltd.", " Ltd", " Limited", " Co.", " LLC", " GmbH", " S.A.", " AG",
}

func extractShortVendor(vendor string) string {
	vendor = strings.TrimSpace(vendor)
	for _, suffix := range corporateSuffixes {
		vendor = strings.TrimSuffix(vendor, suffix)
	}

	// Take first part if comma-separated
	if idx := strings.Index(vendor, ","); idx > 0 {
		vendor = vendor[:idx]
	}

	return strings.TrimSpace(vendor)
}
