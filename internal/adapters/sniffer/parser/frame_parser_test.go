package parser

import (
	"net"
	"testing"

	"github.com/lcalzada-xor/wsniff/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	apMAC  = net.HardwareAddr{0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA}
	staMAC = net.HardwareAddr{0xBB, 0xBB, 0xBB, 0xBB, 0xBB, 0xBB}
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		frame     []byte
		wantKind  domain.FrameKind
		wantBSSID string
		wantSSID  string
		wantSTA   string
	}{
		{
			name:      "Beacon",
			frame:     rawBeacon(apMAC, "Home"),
			wantKind:  domain.FrameBeacon,
			wantBSSID: "AA:AA:AA:AA:AA:AA",
			wantSSID:  "Home",
		},
		{
			name:      "Beacon (hidden SSID)",
			frame:     rawBeacon(apMAC, ""),
			wantKind:  domain.FrameBeacon,
			wantBSSID: "AA:AA:AA:AA:AA:AA",
			wantSSID:  "",
		},
		{
			name:      "Data STA->AP",
			frame:     rawData(true, false, apMAC, staMAC, broadcast),
			wantKind:  domain.FrameData,
			wantBSSID: "AA:AA:AA:AA:AA:AA",
			wantSTA:   "BB:BB:BB:BB:BB:BB",
		},
		{
			name:     "Data AP->STA",
			frame:    rawData(false, true, staMAC, apMAC, apMAC),
			wantKind: domain.FrameIgnored,
		},
		{
			name:     "Data IBSS",
			frame:    rawData(false, false, staMAC, apMAC, apMAC),
			wantKind: domain.FrameIgnored,
		},
		{
			name:     "Data WDS",
			frame:    rawData(true, true, staMAC, apMAC, apMAC),
			wantKind: domain.FrameIgnored,
		},
		{
			name:     "Probe request",
			frame:    append([]byte{0x40, 0x00}, make([]byte, 40)...),
			wantKind: domain.FrameIgnored,
		},
		{
			name:     "Control frame",
			frame:    []byte{0xD4, 0x00, 0x00, 0x00, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA},
			wantKind: domain.FrameIgnored,
		},
		{
			name:     "Empty",
			frame:    nil,
			wantKind: domain.FrameIgnored,
		},
		{
			name:     "Single byte",
			frame:    []byte{0x80},
			wantKind: domain.FrameIgnored,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := Parse(tt.frame)
			require.Equal(t, tt.wantKind, info.Kind)
			switch info.Kind {
			case domain.FrameBeacon:
				assert.Equal(t, tt.wantBSSID, info.Beacon.BSSID.String())
				assert.Equal(t, tt.wantSSID, info.Beacon.SSID)
			case domain.FrameData:
				assert.Equal(t, tt.wantBSSID, info.Data.BSSID.String())
				assert.Equal(t, tt.wantSTA, info.Data.Station.String())
			}
		})
	}
}

func TestParse_BeaconSSIDClamped(t *testing.T) {
	frame := rawBeacon(apMAC, "Home")
	frame[ssidLenOffset] = 200 // declares far more than captured

	info := Parse(frame)
	require.Equal(t, domain.FrameBeacon, info.Kind)
	assert.Equal(t, "Home", info.Beacon.SSID)
}

func TestParse_BeaconTruncated(t *testing.T) {
	frame := rawBeacon(apMAC, "Home")

	for n := 2; n <= ssidLenOffset; n++ {
		assert.Equal(t, domain.FrameIgnored, Parse(frame[:n]).Kind, "len=%d", n)
	}
	// Length byte present, SSID bytes cut off entirely.
	info := Parse(frame[:ssidOffset])
	require.Equal(t, domain.FrameBeacon, info.Kind)
	assert.Equal(t, "", info.Beacon.SSID)
}

func TestParse_DataTruncated(t *testing.T) {
	frame := rawData(true, false, apMAC, staMAC, broadcast)
	for n := 0; n < addr2Offset+domain.MACLen; n++ {
		assert.Equal(t, domain.FrameIgnored, Parse(frame[:n]).Kind, "len=%d", n)
	}
	assert.Equal(t, domain.FrameData, Parse(frame[:addr2Offset+domain.MACLen]).Kind)
}

func TestParse_NonUplinkDataAlwaysIgnored(t *testing.T) {
	// Whatever the address bytes contain, the direction bits alone decide.
	for _, flags := range []byte{0x00, 0x02, 0x03, 0xFE, 0xF2} {
		frame := rawData(true, false, apMAC, staMAC, broadcast)
		frame[1] = flags
		for i := 4; i < len(frame); i++ {
			frame[i] = byte(i * 7)
		}
		assert.Equal(t, domain.FrameIgnored, Parse(frame).Kind, "flags=%#x", flags)
	}
}

func TestParse_InvalidUTF8SSID(t *testing.T) {
	info := Parse(rawBeacon(apMAC, "caf\xe9"))
	require.Equal(t, domain.FrameBeacon, info.Kind)
	assert.Equal(t, "caf\uFFFD", info.Beacon.SSID)
}

func TestParse_GopacketBeacon(t *testing.T) {
	info := Parse(gopacketBeacon(t, apMAC, "Serialized-AP"))
	require.Equal(t, domain.FrameBeacon, info.Kind)
	assert.Equal(t, "AA:AA:AA:AA:AA:AA", info.Beacon.BSSID.String())
	assert.Equal(t, "Serialized-AP", info.Beacon.SSID)
}

func FuzzParse(f *testing.F) {
	f.Add(rawBeacon(apMAC, "Home"))
	f.Add(rawData(true, false, apMAC, staMAC, broadcast))
	f.Add([]byte{0x80, 0x00})
	f.Fuzz(func(t *testing.T, data []byte) {
		_ = Parse(data)
	})
}
