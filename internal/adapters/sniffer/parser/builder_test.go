package parser

import (
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/require"
)

var broadcast = net.HardwareAddr{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// rawBeacon builds the 802.11 bytes of a beacon by hand: header, fixed
// fields, SSID element.
func rawBeacon(bssid net.HardwareAddr, ssid string) []byte {
	frame := []byte{0x80, 0x00, 0x00, 0x00}
	frame = append(frame, broadcast...)
	frame = append(frame, bssid...)
	frame = append(frame, bssid...)
	frame = append(frame, 0x00, 0x00) // sequence
	frame = append(frame, make([]byte, 8)...)
	frame = append(frame, 0x64, 0x00, 0x01, 0x00) // interval, caps
	frame = append(frame, 0x00, byte(len(ssid)))
	return append(frame, ssid...)
}

// rawData builds a data frame header with the given DS bits.
func rawData(toDS, fromDS bool, addr1, addr2, addr3 net.HardwareAddr) []byte {
	var flags byte
	if toDS {
		flags |= 0x01
	}
	if fromDS {
		flags |= 0x02
	}
	frame := []byte{0x08, flags, 0x00, 0x00}
	frame = append(frame, addr1...)
	frame = append(frame, addr2...)
	frame = append(frame, addr3...)
	frame = append(frame, 0x00, 0x00)
	return append(frame, []byte("payload")...)
}

// serialize encodes gopacket layers into wire bytes.
func serialize(t *testing.T, ls ...gopacket.SerializableLayer) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true}
	require.NoError(t, gopacket.SerializeLayers(buf, opts, ls...))
	return buf.Bytes()
}

func gopacketBeacon(t *testing.T, bssid net.HardwareAddr, ssid string) []byte {
	return serialize(t,
		&layers.Dot11{
			Type:     layers.Dot11TypeMgmtBeacon,
			Address1: broadcast,
			Address2: bssid,
			Address3: bssid,
		},
		&layers.Dot11MgmtBeacon{Interval: 100, Flags: 0x0001},
		&layers.Dot11InformationElement{
			ID:     layers.Dot11InformationElementIDSSID,
			Length: uint8(len(ssid)),
			Info:   []byte(ssid),
		},
	)
}

// withHeader prefixes a fake fixed-size capture header.
func withHeader(n int, frame []byte) []byte {
	return append(make([]byte, n), frame...)
}
