package driver

import (
	"errors"
	"strings"
	"testing"

	"github.com/lcalzada-xor/wsniff/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls []string
	fail  map[string]bool
	out   map[string]string
}

func (r *recorder) run(name string, args ...string) ([]byte, error) {
	cmd := strings.Join(append([]string{name}, args...), " ")
	r.calls = append(r.calls, cmd)
	if r.fail[cmd] {
		return []byte("Device or resource busy"), errors.New("exit status 240")
	}
	return []byte(r.out[cmd]), nil
}

func stubCommands(t *testing.T, r *recorder) {
	orig := runCommand
	runCommand = r.run
	t.Cleanup(func() { runCommand = orig })
}

func TestSetModeMonitor(t *testing.T) {
	r := &recorder{}
	stubCommands(t, r)

	require.NoError(t, NewModeController().SetMode("wlan0", domain.ModeMonitor))
	assert.Equal(t, []string{
		"ip link set wlan0 down",
		"iw wlan0 set type monitor",
		"ip link set wlan0 up",
	}, r.calls)
}

func TestSetModeFailureStillBringsLinkUp(t *testing.T) {
	r := &recorder{fail: map[string]bool{"iw wlan0 set type managed": true}}
	stubCommands(t, r)

	err := NewModeController().SetMode("wlan0", domain.ModeManaged)
	require.Error(t, err)
	assert.Equal(t, "ip link set wlan0 up", r.calls[len(r.calls)-1])
}

func TestSetModeRejectsInvalidName(t *testing.T) {
	r := &recorder{}
	stubCommands(t, r)

	err := NewModeController().SetMode("wlan0; reboot", domain.ModeMonitor)
	assert.ErrorIs(t, err, domain.ErrInvalidInterfaceName)
	assert.Empty(t, r.calls)
}

const iwDev = `phy#1
	Interface wlan1
		ifindex 4
phy#0
	Interface wlan0
		ifindex 3
`

const iwPhyInfo = `Wiphy phy0
	Band 1:
		Frequencies:
			* 2412 MHz [1] (20.0 dBm)
			* 2417 MHz [2] (20.0 dBm)
			* 2422 MHz [3] (20.0 dBm)
			* 2427 MHz [4] (20.0 dBm)
			* 2432 MHz [5] (20.0 dBm)
			* 2437 MHz [6] (20.0 dBm)
			* 2442 MHz [7] (20.0 dBm)
			* 2447 MHz [8] (20.0 dBm)
			* 2452 MHz [9] (20.0 dBm)
			* 2457 MHz [10] (disabled)
			* 2462 MHz [11] (20.0 dBm)
		Bitrates (non-HT):
			* 1.0 Mbps
`

func TestMissingChannels(t *testing.T) {
	r := &recorder{out: map[string]string{
		"iw dev":           iwDev,
		"iw phy phy0 info": iwPhyInfo,
	}}
	stubCommands(t, r)

	supported, err := SupportedChannels("wlan0")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 11}, supported)

	missing, err := MissingChannels("wlan0")
	require.NoError(t, err)
	assert.Equal(t, []int{10}, missing)
}

func TestSupportedChannelsUnknownInterface(t *testing.T) {
	r := &recorder{out: map[string]string{"iw dev": iwDev}}
	stubCommands(t, r)

	_, err := SupportedChannels("wlan9")
	assert.Error(t, err)
}
