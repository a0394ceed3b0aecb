package domain

import (
	"errors"
	"regexp"
)

var interfaceRegex = regexp.MustCompile(`^[a-zA-Z0-9\-_]+$`)

// Domain errors for identities and interfaces.
var (
	ErrInvalidInterfaceName = errors.New("invalid interface name")
	ErrInvalidMAC           = errors.New("invalid MAC address")
)

// IsValidInterface checks that the name is safe to hand to iw/ip
// (alphanumerics plus - and _).
func IsValidInterface(iface string) bool {
	if len(iface) == 0 || len(iface) > 16 {
		return false
	}
	return interfaceRegex.MatchString(iface)
}
