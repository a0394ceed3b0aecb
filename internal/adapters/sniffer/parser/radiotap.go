package parser

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// radiotapLength returns it_len from a radiotap header, the number of bytes
// preceding the 802.11 frame.
func radiotapLength(captured []byte) (int, bool) {
	var rt layers.RadioTap
	if err := rt.DecodeFromBytes(captured, gopacket.NilDecodeFeedback); err != nil {
		return 0, false
	}
	if int(rt.Length) > len(captured) {
		return 0, false
	}
	return int(rt.Length), true
}
