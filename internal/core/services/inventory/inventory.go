package inventory

import (
	"sync"

	"github.com/lcalzada-xor/wsniff/internal/core/domain"
	"github.com/lcalzada-xor/wsniff/internal/core/ports"
)

// Inventory is the deduplicated set of access points and their associated
// stations, keyed by BSSID. A single mutex guards both maps so snapshots
// never see a half-applied record and Clear is atomic.
type Inventory struct {
	mu       sync.Mutex
	aps      map[domain.MAC]domain.AccessPoint
	stations map[domain.MAC]domain.AssocStation
	// Insertion order, kept so snapshots are stable within a session.
	apOrder      []domain.MAC
	stationOrder []domain.MAC
	// generation changes on Clear; a record racing a Clear is dropped.
	generation uint64

	vendors ports.VendorResolver
}

// New returns an empty Inventory. vendors may be nil, in which case every
// vendor is domain.UnknownVendor.
func New(vendors ports.VendorResolver) *Inventory {
	return &Inventory{
		aps:      make(map[domain.MAC]domain.AccessPoint),
		stations: make(map[domain.MAC]domain.AssocStation),
		vendors:  vendors,
	}
}

func (inv *Inventory) vendorOf(mac domain.MAC) string {
	if inv.vendors == nil {
		return domain.UnknownVendor
	}
	if v := inv.vendors.VendorOf(mac); v != "" {
		return v
	}
	return domain.UnknownVendor
}

// RecordBeacon adds the access point if its BSSID is new. It reports false
// when the BSSID is already known; the first SSID seen for a BSSID is kept.
func (inv *Inventory) RecordBeacon(b domain.BeaconInfo) (domain.AccessPoint, bool) {
	inv.mu.Lock()
	if _, ok := inv.aps[b.BSSID]; ok {
		inv.mu.Unlock()
		return domain.AccessPoint{}, false
	}
	gen := inv.generation
	inv.mu.Unlock()

	// Vendor lookup may hit a database; keep it outside the lock.
	ap := domain.AccessPoint{SSID: b.SSID, BSSID: b.BSSID, Vendor: inv.vendorOf(b.BSSID)}

	inv.mu.Lock()
	defer inv.mu.Unlock()
	if inv.generation != gen {
		return domain.AccessPoint{}, false
	}
	if _, ok := inv.aps[b.BSSID]; ok {
		return domain.AccessPoint{}, false
	}
	inv.aps[b.BSSID] = ap
	inv.apOrder = append(inv.apOrder, b.BSSID)
	return ap, true
}

// RecordData adds the station for d.BSSID if the BSSID is a known access
// point and no station has been recorded for it yet. Only the first client
// per access point is tracked.
func (inv *Inventory) RecordData(d domain.DataInfo) (domain.AssocStation, bool) {
	inv.mu.Lock()
	if _, ok := inv.aps[d.BSSID]; !ok {
		inv.mu.Unlock()
		return domain.AssocStation{}, false
	}
	if _, ok := inv.stations[d.BSSID]; ok {
		inv.mu.Unlock()
		return domain.AssocStation{}, false
	}
	gen := inv.generation
	inv.mu.Unlock()

	vendor := inv.vendorOf(d.Station)

	inv.mu.Lock()
	defer inv.mu.Unlock()
	if inv.generation != gen {
		return domain.AssocStation{}, false
	}
	ap, ok := inv.aps[d.BSSID]
	if !ok {
		return domain.AssocStation{}, false
	}
	if _, ok := inv.stations[d.BSSID]; ok {
		return domain.AssocStation{}, false
	}
	st := domain.AssocStation{MAC: d.Station, Vendor: vendor, AP: ap}
	inv.stations[d.BSSID] = st
	inv.stationOrder = append(inv.stationOrder, d.BSSID)
	return st, true
}

// SnapshotAPs returns a copy of the known access points in insertion order.
func (inv *Inventory) SnapshotAPs() []domain.AccessPoint {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	out := make([]domain.AccessPoint, 0, len(inv.apOrder))
	for _, bssid := range inv.apOrder {
		out = append(out, inv.aps[bssid])
	}
	return out
}

// SnapshotStations returns a copy of the tracked stations in insertion order.
func (inv *Inventory) SnapshotStations() []domain.AssocStation {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	out := make([]domain.AssocStation, 0, len(inv.stationOrder))
	for _, bssid := range inv.stationOrder {
		out = append(out, inv.stations[bssid])
	}
	return out
}

// Counts returns the number of access points and stations.
func (inv *Inventory) Counts() (aps, stations int) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return len(inv.aps), len(inv.stations)
}

// Clear empties both maps in one step.
func (inv *Inventory) Clear() {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.aps = make(map[domain.MAC]domain.AccessPoint)
	inv.stations = make(map[domain.MAC]domain.AssocStation)
	inv.apOrder = nil
	inv.stationOrder = nil
	inv.generation++
}
