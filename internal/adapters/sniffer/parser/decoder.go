package parser

import (
	"fmt"
	"log"

	"github.com/lcalzada-xor/wsniff/internal/core/domain"
)

// DefaultHeaderLen is the radiotap header length emitted by the drivers this
// engine was tuned on. It is used as a fixed offset, not parsed.
const DefaultHeaderLen = 36

// HeaderMode selects how the capture header in front of each frame is skipped.
type HeaderMode string

const (
	// HeaderFixed skips a constant number of bytes.
	HeaderFixed HeaderMode = "fixed"
	// HeaderRadiotap reads it_len from the radiotap header itself. Opt-in.
	HeaderRadiotap HeaderMode = "radiotap"
)

// ParseHeaderMode validates a configured mode name. Empty means HeaderFixed.
func ParseHeaderMode(s string) (HeaderMode, error) {
	switch HeaderMode(s) {
	case "", HeaderFixed:
		return HeaderFixed, nil
	case HeaderRadiotap:
		return HeaderRadiotap, nil
	}
	return "", fmt.Errorf("unknown header mode %q", s)
}

// Decoder strips the capture header and parses the 802.11 frame behind it.
type Decoder struct {
	Mode      HeaderMode
	HeaderLen int
	Debug     bool
}

// NewDecoder returns a Decoder. headerLen <= 0 selects DefaultHeaderLen.
func NewDecoder(mode HeaderMode, headerLen int) *Decoder {
	if headerLen <= 0 {
		headerLen = DefaultHeaderLen
	}
	if mode == "" {
		mode = HeaderFixed
	}
	return &Decoder{Mode: mode, HeaderLen: headerLen}
}

// Decode implements ports.FrameDecoder.
func (d *Decoder) Decode(captured []byte) (info domain.FrameInfo) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic while decoding frame (%d bytes): %v", len(captured), r)
			info = domain.Ignored
		}
	}()

	offset := d.HeaderLen
	if d.Mode == HeaderRadiotap {
		n, ok := radiotapLength(captured)
		if !ok {
			return domain.Ignored
		}
		offset = n
	}

	if offset > len(captured) {
		return domain.Ignored
	}
	info = Parse(captured[offset:])
	if d.Debug && info.Kind != domain.FrameIgnored {
		log.Printf("decoded %s frame: %+v", info.Kind, info)
	}
	return info
}
