package domain

import (
	"fmt"
	"net"
	"strings"
)

// MACLen is the number of octets in an 802.11 address.
const MACLen = 6

// MAC is a 6-octet hardware address. The zero value is 00:00:00:00:00:00.
type MAC [MACLen]byte

// MACFromBytes copies the first six octets of b. It reports false when b is
// too short to carry an address.
func MACFromBytes(b []byte) (MAC, bool) {
	var m MAC
	if len(b) < MACLen {
		return m, false
	}
	copy(m[:], b[:MACLen])
	return m, true
}

// FormatMAC renders the first six octets of b as XX:XX:XX:XX:XX:XX.
// Buffers shorter than six octets render as the empty string.
func FormatMAC(b []byte) string {
	if len(b) < MACLen {
		return ""
	}
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", b[0], b[1], b[2], b[3], b[4], b[5])
}

// ParseMAC accepts colon, dash or dot separated addresses in any case.
func ParseMAC(s string) (MAC, error) {
	var m MAC
	hw, err := net.ParseMAC(strings.TrimSpace(s))
	if err != nil || len(hw) != MACLen {
		return m, fmt.Errorf("%w: %q", ErrInvalidMAC, s)
	}
	copy(m[:], hw)
	return m, nil
}

// MustParseMAC is ParseMAC for known-good literals. It panics on error.
func MustParseMAC(s string) MAC {
	m, err := ParseMAC(s)
	if err != nil {
		panic(err)
	}
	return m
}

// String returns the canonical uppercase form.
func (m MAC) String() string {
	return FormatMAC(m[:])
}

// OUI returns the vendor prefix (first three octets) as "XX:XX:XX".
func (m MAC) OUI() string {
	return fmt.Sprintf("%02X:%02X:%02X", m[0], m[1], m[2])
}

// MarshalText encodes the MAC in canonical form so JSON carries a string.
func (m MAC) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (m *MAC) UnmarshalText(text []byte) error {
	parsed, err := ParseMAC(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
