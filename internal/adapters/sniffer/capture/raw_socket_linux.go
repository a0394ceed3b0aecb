//go:build linux

package capture

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lcalzada-xor/wsniff/internal/core/domain"
	"github.com/lcalzada-xor/wsniff/internal/core/ports"
	"golang.org/x/sys/unix"
)

// readTimeout bounds each recv so Close can interrupt a blocked reader.
const readTimeout = 250 * time.Millisecond

// RawSocket is a promiscuous AF_PACKET socket receiving every frame seen by
// one interface.
type RawSocket struct {
	mu     sync.Mutex
	fd     int
	iface  string
	buf    []byte
	closed atomic.Bool
}

func htons(v uint16) uint16 {
	return v<<8 | v>>8
}

func openRawSocket(iface string) (ports.FrameSource, error) {
	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		return nil, domain.NewCaptureError(domain.OpenFailed, iface, fmt.Errorf("interface %s not found: %w", iface, err))
	}

	proto := htons(unix.ETH_P_ALL)
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(proto))
	if err != nil {
		return nil, domain.NewCaptureError(domain.OpenFailed, iface, fmt.Errorf("socket creation failed: %w", err))
	}

	ll := unix.SockaddrLinklayer{
		Protocol: proto,
		Ifindex:  ifi.Index,
	}
	if err := unix.Bind(fd, &ll); err != nil {
		unix.Close(fd)
		return nil, domain.NewCaptureError(domain.OpenFailed, iface, fmt.Errorf("bind failed: %w", err))
	}

	mreq := unix.PacketMreq{
		Ifindex: int32(ifi.Index),
		Type:    unix.PACKET_MR_PROMISC,
	}
	if err := unix.SetsockoptPacketMreq(fd, unix.SOL_PACKET, unix.PACKET_ADD_MEMBERSHIP, &mreq); err != nil {
		unix.Close(fd)
		return nil, domain.NewCaptureError(domain.OpenFailed, iface, fmt.Errorf("promiscuous mode failed: %w", err))
	}

	tv := unix.NsecToTimeval(readTimeout.Nanoseconds())
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		unix.Close(fd)
		return nil, domain.NewCaptureError(domain.OpenFailed, iface, fmt.Errorf("receive timeout failed: %w", err))
	}

	return &RawSocket{
		fd:    fd,
		iface: iface,
		buf:   make([]byte, ReadBufferSize),
	}, nil
}

// ReadFrame blocks until a frame arrives and returns a copy of it.
func (s *RawSocket) ReadFrame() ([]byte, error) {
	for {
		frame, retry, err := s.readOnce()
		if !retry {
			return frame, err
		}
	}
}

func (s *RawSocket) readOnce() ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return nil, false, ErrClosed
	}

	n, err := unix.Read(s.fd, s.buf)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
			return nil, true, nil
		}
		return nil, false, domain.NewCaptureError(domain.ReadFailed, s.iface, err)
	}

	frame := make([]byte, n)
	copy(frame, s.buf[:n])
	return frame, false, nil
}

// Close releases the socket. A concurrent ReadFrame returns ErrClosed
// within one receive timeout.
func (s *RawSocket) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return unix.Close(s.fd)
}
