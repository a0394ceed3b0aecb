package domain

// 2.4 GHz channels visited by the scheduler.
const (
	MinChannel = 1
	MaxChannel = 11
)

// NextChannel advances ch cyclically over [MinChannel, MaxChannel].
// Out-of-range input restarts the cycle.
func NextChannel(ch int) int {
	if ch < MinChannel || ch >= MaxChannel {
		return MinChannel
	}
	return ch + 1
}

// WifiMode is the interface type requested from the mode controller.
type WifiMode string

const (
	ModeMonitor WifiMode = "monitor"
	ModeManaged WifiMode = "managed"
)
