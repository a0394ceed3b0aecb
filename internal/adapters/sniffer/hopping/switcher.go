package hopping

import (
	"fmt"
	"os/exec"

	"github.com/lcalzada-xor/wsniff/internal/core/domain"
)

// ChannelSwitcher abstracts the mechanism for changing WiFi channels.
type ChannelSwitcher interface {
	SetChannel(iface string, channel int) error
}

// runCommand is swapped in tests.
var runCommand = func(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// LinuxChannelSwitcher implements ChannelSwitcher using the 'iw' command.
type LinuxChannelSwitcher struct{}

// NewLinuxChannelSwitcher creates a new LinuxChannelSwitcher.
func NewLinuxChannelSwitcher() *LinuxChannelSwitcher {
	return &LinuxChannelSwitcher{}
}

// SetChannel executes `iw <iface> set channel <n>`.
func (s *LinuxChannelSwitcher) SetChannel(iface string, channel int) error {
	if channel < domain.MinChannel || channel > domain.MaxChannel {
		return fmt.Errorf("invalid channel: %d", channel)
	}
	out, err := runCommand("iw", iface, "set", "channel", fmt.Sprintf("%d", channel))
	if err != nil {
		return fmt.Errorf("failed to set channel %d on %s: %w (%s)", channel, iface, err, string(out))
	}
	return nil
}
