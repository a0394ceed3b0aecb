package domain

// FrameKind classifies a decoded 802.11 frame.
type FrameKind int

const (
	// FrameIgnored covers every frame outside the beacon/data-uplink subset,
	// including truncated or malformed captures.
	FrameIgnored FrameKind = iota
	FrameBeacon
	FrameData
)

func (k FrameKind) String() string {
	switch k {
	case FrameBeacon:
		return "beacon"
	case FrameData:
		return "data"
	}
	return "ignored"
}

// BeaconInfo is the identity advertised in a beacon frame.
type BeaconInfo struct {
	BSSID MAC
	SSID  string
}

// DataInfo is the station/AP pair taken from a to-DS data frame.
type DataInfo struct {
	BSSID   MAC
	Station MAC
}

// FrameInfo is the result of decoding one frame. Only the field matching
// Kind is meaningful.
type FrameInfo struct {
	Kind   FrameKind
	Beacon BeaconInfo
	Data   DataInfo
}

// Ignored is the FrameInfo for frames the engine does not interpret.
var Ignored = FrameInfo{Kind: FrameIgnored}
