package fingerprint

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// FileVendorRepository loads vendors from a text file on first lookup.
//
// Each line is "prefix<TAB>vendor" where prefix is "aa:bb:cc" in either
// case. Lines using spaces after an 8 character prefix ("XX-XX-XX   Vendor")
// are accepted too. Blank lines and lines starting with '#' are skipped.
type FileVendorRepository struct {
	path string

	once    sync.Once
	static  *StaticVendorRepository
	loadErr error
}

// NewFileVendorRepository creates a repository backed by path. The file is
// not read until the first lookup.
func NewFileVendorRepository(path string) *FileVendorRepository {
	return &FileVendorRepository{path: path}
}

func (f *FileVendorRepository) load() {
	file, err := os.Open(f.path)
	if err != nil {
		f.loadErr = &DatabaseError{Op: "open_vendor_file", Err: err}
		log.Printf("Warning: Failed to load vendor list %s: %v", f.path, err)
		f.static = NewStaticVendorRepository(nil)
		return
	}
	defer file.Close()

	vendors, err := ParseVendorList(file)
	if err != nil {
		f.loadErr = &DatabaseError{Op: "read_vendor_file", Err: err}
		log.Printf("Warning: Failed to read vendor list %s: %v", f.path, err)
	}
	f.static = NewStaticVendorRepository(vendors)
	log.Printf("Vendor list loaded: %d entries from %s", f.static.Len(), f.path)
}

// LookupVendor implements VendorRepository interface
func (f *FileVendorRepository) LookupVendor(ctx context.Context, oui string) (string, error) {
	f.once.Do(f.load)
	vendor, err := f.static.LookupVendor(ctx, oui)
	if err != nil && f.loadErr != nil {
		return "", f.loadErr
	}
	return vendor, err
}

// Close implements VendorRepository interface
func (f *FileVendorRepository) Close() error {
	return nil
}

// ParseVendorList reads vendor lines into a prefix to vendor map. Lines
// with an invalid prefix or no vendor name are skipped.
func ParseVendorList(r io.Reader) (map[string]string, error) {
	vendors := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var rawPrefix, vendor string
		if i := strings.IndexByte(line, '\t'); i >= 0 {
			rawPrefix, vendor = line[:i], line[i+1:]
		} else if len(line) > 8 {
			rawPrefix, vendor = line[:8], line[8:]
		} else {
			continue
		}

		vendor = strings.TrimSpace(vendor)
		oui, ok := NormalizeOUI(rawPrefix)
		if !ok || vendor == "" {
			continue
		}
		if _, dup := vendors[oui]; !dup {
			vendors[oui] = vendor
		}
	}
	if err := scanner.Err(); err != nil {
		return vendors, fmt.Errorf("scan vendor list: %w", err)
	}
	return vendors, nil
}
