package parser

import (
	"testing"

	"github.com/google/gopacket/layers"
	"github.com/lcalzada-xor/wsniff/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoder_FixedHeader(t *testing.T) {
	d := NewDecoder(HeaderFixed, 0)
	require.Equal(t, DefaultHeaderLen, d.HeaderLen)

	info := d.Decode(withHeader(DefaultHeaderLen, rawBeacon(apMAC, "Home")))
	require.Equal(t, domain.FrameBeacon, info.Kind)
	assert.Equal(t, "Home", info.Beacon.SSID)

	info = d.Decode(withHeader(DefaultHeaderLen, rawData(true, false, apMAC, staMAC, broadcast)))
	require.Equal(t, domain.FrameData, info.Kind)
	assert.Equal(t, "BB:BB:BB:BB:BB:BB", info.Data.Station.String())
}

func TestDecoder_ShortCapture(t *testing.T) {
	d := NewDecoder(HeaderFixed, DefaultHeaderLen)
	assert.Equal(t, domain.FrameIgnored, d.Decode(nil).Kind)
	assert.Equal(t, domain.FrameIgnored, d.Decode(make([]byte, 10)).Kind)
	assert.Equal(t, domain.FrameIgnored, d.Decode(make([]byte, DefaultHeaderLen+1)).Kind)
}

func TestDecoder_RadiotapHeader(t *testing.T) {
	captured := serialize(t, &layers.RadioTap{})
	captured = append(captured, rawBeacon(apMAC, "Radio")...)

	d := NewDecoder(HeaderRadiotap, 0)
	info := d.Decode(captured)
	require.Equal(t, domain.FrameBeacon, info.Kind)
	assert.Equal(t, "Radio", info.Beacon.SSID)

	// The fixed decoder reads the same bytes at the wrong offset.
	assert.NotEqual(t, "Radio", NewDecoder(HeaderFixed, 0).Decode(captured).Beacon.SSID)
}

func TestDecoder_RadiotapGarbage(t *testing.T) {
	d := NewDecoder(HeaderRadiotap, 0)
	assert.Equal(t, domain.FrameIgnored, d.Decode([]byte{0x00}).Kind)
	assert.Equal(t, domain.FrameIgnored, d.Decode([]byte{0x00, 0x00, 0xFF, 0x00, 0, 0, 0, 0}).Kind)
}

func TestParseHeaderMode(t *testing.T) {
	m, err := ParseHeaderMode("")
	require.NoError(t, err)
	assert.Equal(t, HeaderFixed, m)

	m, err = ParseHeaderMode("radiotap")
	require.NoError(t, err)
	assert.Equal(t, HeaderRadiotap, m)

	_, err = ParseHeaderMode("pcapng")
	assert.Error(t, err)
}
