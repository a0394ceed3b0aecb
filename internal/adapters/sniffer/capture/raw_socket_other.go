//go:build !linux

package capture

import (
	"errors"

	"github.com/lcalzada-xor/wsniff/internal/core/domain"
	"github.com/lcalzada-xor/wsniff/internal/core/ports"
)

func openRawSocket(iface string) (ports.FrameSource, error) {
	return nil, domain.NewCaptureError(domain.OpenFailed, iface, errors.New("raw packet capture requires linux"))
}
