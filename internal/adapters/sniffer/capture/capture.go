// Package capture provides frame sources for the sniffer engine: a raw
// AF_PACKET socket for live capture and pcap files for replay and recording.
package capture

import (
	"errors"

	"github.com/lcalzada-xor/wsniff/internal/core/ports"
)

// ReadBufferSize is the maximum number of bytes returned by a single read.
const ReadBufferSize = 4096

// ErrClosed is returned by ReadFrame once the source has been closed.
var ErrClosed = errors.New("capture: source closed")

// RawSocketOpener opens live raw sockets bound to a wireless interface.
type RawSocketOpener struct{}

// Open implements ports.SourceOpener.
func (RawSocketOpener) Open(iface string) (ports.FrameSource, error) {
	return openRawSocket(iface)
}

// ReplayOpener replays a pcap file instead of opening the interface.
type ReplayOpener struct {
	Path string
}

// Open implements ports.SourceOpener. The interface name is only used to
// label errors.
func (o ReplayOpener) Open(iface string) (ports.FrameSource, error) {
	src, err := OpenPcapSource(o.Path, iface)
	if err != nil {
		return nil, err
	}
	return src, nil
}

// RecordingOpener wraps another opener and copies every frame it reads
// into a pcap file.
type RecordingOpener struct {
	Opener ports.SourceOpener
	Path   string
}

// Open implements ports.SourceOpener.
func (o RecordingOpener) Open(iface string) (ports.FrameSource, error) {
	src, err := o.Opener.Open(iface)
	if err != nil {
		return nil, err
	}
	rec, err := NewRecorder(src, o.Path)
	if err != nil {
		src.Close()
		return nil, err
	}
	return rec, nil
}
