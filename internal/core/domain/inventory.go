package domain

// UnknownVendor is reported when a MAC prefix has no registry entry.
const UnknownVendor = "Unknown"

// AccessPoint is a network identified by its BSSID. It is built once, the
// first time a beacon for the BSSID is seen, and never changes afterwards.
type AccessPoint struct {
	SSID   string `json:"ssid"`
	BSSID  MAC    `json:"bssid"`
	Vendor string `json:"vendor"`
}

// AssocStation is the client observed sending traffic to an access point.
// AP is a copy of the access point as it was when the station was recorded.
type AssocStation struct {
	MAC    MAC         `json:"mac"`
	Vendor string      `json:"vendor"`
	AP     AccessPoint `json:"ap"`
}
