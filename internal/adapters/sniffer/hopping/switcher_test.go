package hopping

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinuxChannelSwitcher(t *testing.T) {
	var gotName string
	var gotArgs []string
	orig := runCommand
	defer func() { runCommand = orig }()
	runCommand = func(name string, args ...string) ([]byte, error) {
		gotName, gotArgs = name, args
		return nil, nil
	}

	s := NewLinuxChannelSwitcher()
	assert.NoError(t, s.SetChannel("wlan0", 6))
	assert.Equal(t, "iw", gotName)
	assert.Equal(t, []string{"wlan0", "set", "channel", "6"}, gotArgs)

	assert.Error(t, s.SetChannel("wlan0", 0))
	assert.Error(t, s.SetChannel("wlan0", 12))

	runCommand = func(name string, args ...string) ([]byte, error) {
		return []byte("command failed: Device or resource busy (-16)"), errors.New("exit status 240")
	}
	err := s.SetChannel("wlan0", 3)
	assert.ErrorContains(t, err, "resource busy")
}
