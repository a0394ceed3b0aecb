package capture

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/lcalzada-xor/wsniff/internal/core/domain"
	"github.com/lcalzada-xor/wsniff/internal/core/ports"
)

const snapLen = 65536

// PcapSource replays frames from a capture file. Reaching the end of the
// file is reported as a ReadFailed capture error wrapping io.EOF.
type PcapSource struct {
	mu     sync.Mutex
	f      *os.File
	r      *pcapgo.Reader
	iface  string
	closed bool
}

// OpenPcapSource opens path for replay.
func OpenPcapSource(path, iface string) (*PcapSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewCaptureError(domain.OpenFailed, iface, err)
	}
	r, err := pcapgo.NewReader(f)
	if err != nil {
		f.Close()
		return nil, domain.NewCaptureError(domain.OpenFailed, iface, fmt.Errorf("invalid pcap %s: %w", path, err))
	}
	return &PcapSource{f: f, r: r, iface: iface}, nil
}

// LinkType reports the link type recorded in the file header.
func (p *PcapSource) LinkType() layers.LinkType {
	return p.r.LinkType()
}

func (p *PcapSource) ReadFrame() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrClosed
	}
	data, _, err := p.r.ReadPacketData()
	if err != nil {
		return nil, domain.NewCaptureError(domain.ReadFailed, p.iface, err)
	}
	return data, nil
}

func (p *PcapSource) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.f.Close()
}

// Recorder copies every frame read from the wrapped source into a pcap file.
type Recorder struct {
	src ports.FrameSource
	mu  sync.Mutex
	f   *os.File
	w   *pcapgo.Writer
}

// NewRecorder creates path and writes the pcap file header.
func NewRecorder(src ports.FrameSource, path string) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create pcap file: %w", err)
	}
	w := pcapgo.NewWriter(f)
	// Live frames carry a radiotap header ahead of the 802.11 frame
	if err := w.WriteFileHeader(snapLen, layers.LinkTypeIEEE80211Radio); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write pcap header: %w", err)
	}
	return &Recorder{src: src, f: f, w: w}, nil
}

func (r *Recorder) ReadFrame() ([]byte, error) {
	frame, err := r.src.ReadFrame()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.w != nil {
		ci := gopacket.CaptureInfo{
			Timestamp:     time.Now(),
			CaptureLength: len(frame),
			Length:        len(frame),
		}
		if werr := r.w.WritePacket(ci, frame); werr != nil {
			// Recording is best effort; the capture keeps going
			r.w = nil
		}
	}
	return frame, nil
}

func (r *Recorder) Close() error {
	err := r.src.Close()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.w = nil
	if r.f != nil {
		if cerr := r.f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		r.f = nil
	}
	return err
}
