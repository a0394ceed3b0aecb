package driver

import (
	"bufio"
	"bytes"
	"fmt"
	"log"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/lcalzada-xor/wsniff/internal/core/domain"
)

// runCommand executes an external tool and returns its combined output.
// Tests replace it to avoid touching real interfaces.
var runCommand = func(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// ModeController switches interfaces between monitor and managed mode
// using ip(8) and iw(8).
type ModeController struct{}

// NewModeController returns a controller backed by the system tools.
func NewModeController() *ModeController {
	return &ModeController{}
}

// SetMode brings the interface down, changes its type and brings it back up.
// Every step is attempted so a failed type change still leaves the link up.
func (c *ModeController) SetMode(iface string, mode domain.WifiMode) error {
	if !domain.IsValidInterface(iface) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidInterfaceName, iface)
	}
	log.Printf("Setting %s mode on %s...", mode, iface)

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	keep(runCmd("ip", "link", "set", iface, "down"))
	if err := runCmd("iw", iface, "set", "type", string(mode)); err != nil {
		if mode == domain.ModeMonitor {
			log.Printf("Hint: If you see 'Device or resource busy', you may need to kill conflicting processes.")
		}
		keep(err)
	}
	keep(runCmd("ip", "link", "set", iface, "up"))

	return firstErr
}

// SupportedChannels returns the enabled channels of the phy backing iface.
func SupportedChannels(iface string) ([]int, error) {
	phy, err := getPhyForInterface(iface)
	if err != nil {
		return nil, err
	}
	out, err := runCommand("iw", "phy", phy, "info")
	if err != nil {
		return nil, fmt.Errorf("iw phy %s info: %w", phy, err)
	}
	return parseChannels(out), nil
}

// MissingChannels reports which channels of the hopping cycle iface
// cannot tune to.
func MissingChannels(iface string) ([]int, error) {
	supported, err := SupportedChannels(iface)
	if err != nil {
		return nil, err
	}
	have := make(map[int]bool, len(supported))
	for _, ch := range supported {
		have[ch] = true
	}
	var missing []int
	for ch := domain.MinChannel; ch <= domain.MaxChannel; ch++ {
		if !have[ch] {
			missing = append(missing, ch)
		}
	}
	return missing, nil
}

func getPhyForInterface(iface string) (string, error) {
	out, err := runCommand("iw", "dev")
	if err != nil {
		return "", err
	}

	// phy#0
	// 		Interface wlan0
	scanner := bufio.NewScanner(bytes.NewReader(out))
	currentPhy := ""
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "phy#") {
			currentPhy = line
		} else if line == "Interface "+iface {
			return strings.Replace(currentPhy, "#", "", 1), nil
		}
	}
	return "", fmt.Errorf("interface %s not found in iw dev output", iface)
}

var reChannel = regexp.MustCompile(`\[([0-9]+)\]`)

// parseChannels reads the Frequencies blocks of `iw phy <phy> info`.
// Example: * 2412 MHz [1] (20.0 dBm)
func parseChannels(out []byte) []int {
	var channels []int
	scanner := bufio.NewScanner(bytes.NewReader(out))
	inFrequencies := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "Frequencies:" {
			inFrequencies = true
			continue
		}
		if !inFrequencies {
			continue
		}
		if !strings.HasPrefix(line, "*") {
			inFrequencies = false
			continue
		}
		if strings.Contains(line, "(disabled)") {
			continue
		}
		if m := reChannel.FindStringSubmatch(line); len(m) > 1 {
			ch, _ := strconv.Atoi(m[1])
			channels = append(channels, ch)
		}
	}
	return channels
}

func runCmd(name string, args ...string) error {
	output, err := runCommand(name, args...)
	if err != nil {
		log.Printf("Command failed: %s %v\nOutput: %s", name, args, string(output))
		return err
	}
	return nil
}
