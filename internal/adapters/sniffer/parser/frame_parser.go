package parser

import (
	"strings"

	"github.com/lcalzada-xor/wsniff/internal/core/domain"
)

// 802.11 frame-control values we act on.
const (
	typeMgmt      = 0
	typeData      = 2
	subtypeBeacon = 8
)

// Byte offsets inside the 802.11 frame (capture header already removed).
const (
	addr1Offset       = 4
	addr2Offset       = 10
	beaconBSSIDOffset = 16
	// Beacon body: 24-byte header, 12 bytes of fixed fields, then the SSID
	// element (ID at 36, length at 37, value from 38).
	ssidLenOffset = 37
	ssidOffset    = 38
)

// Parse decodes one 802.11 frame. Truncated or unrecognized frames yield
// domain.Ignored; Parse never panics on short input.
func Parse(frame []byte) domain.FrameInfo {
	if len(frame) < 2 {
		return domain.Ignored
	}

	fc := frame[0]
	ftype := (fc >> 2) & 0x3
	subtype := (fc >> 4) & 0xF

	switch {
	case ftype == typeMgmt && subtype == subtypeBeacon:
		return parseBeacon(frame)
	case ftype == typeData:
		return parseData(frame)
	}
	return domain.Ignored
}

func parseBeacon(frame []byte) domain.FrameInfo {
	if len(frame) <= ssidLenOffset {
		return domain.Ignored
	}
	bssid, ok := domain.MACFromBytes(frame[beaconBSSIDOffset:])
	if !ok {
		return domain.Ignored
	}

	// A declared length running past the capture is clamped, not rejected.
	end := ssidOffset + int(frame[ssidLenOffset])
	if end > len(frame) {
		end = len(frame)
	}
	ssid := ""
	if end > ssidOffset {
		ssid = strings.ToValidUTF8(string(frame[ssidOffset:end]), "\uFFFD")
	}

	return domain.FrameInfo{
		Kind:   domain.FrameBeacon,
		Beacon: domain.BeaconInfo{BSSID: bssid, SSID: ssid},
	}
}

func parseData(frame []byte) domain.FrameInfo {
	if len(frame) < addr2Offset+domain.MACLen {
		return domain.Ignored
	}

	flags := frame[1]
	toDS := flags & 0x1
	fromDS := (flags >> 1) & 0x1

	// Only station -> AP uplink identifies an association.
	if toDS != 1 || fromDS != 0 {
		return domain.Ignored
	}

	bssid, _ := domain.MACFromBytes(frame[addr1Offset:])
	station, _ := domain.MACFromBytes(frame[addr2Offset:])

	return domain.FrameInfo{
		Kind: domain.FrameData,
		Data: domain.DataInfo{BSSID: bssid, Station: station},
	}
}
