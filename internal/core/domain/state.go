package domain

import "fmt"

// EngineState is the lifecycle state of the sniffer engine.
type EngineState int32

const (
	StateStopped EngineState = iota
	StateStarting
	StateRunning
	StateStopping
)

func (s EngineState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	}
	return "unknown"
}

// MarshalText renders the state name in JSON payloads.
func (s EngineState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// EngineStatus is a point-in-time view of the engine for callers.
type EngineStatus struct {
	State     EngineState `json:"state"`
	Interface string      `json:"interface"`
	Channel   int         `json:"channel"`
	Session   string      `json:"session,omitempty"`
	APs       int         `json:"access_points"`
	Stations  int         `json:"stations"`
	LastError string      `json:"last_error,omitempty"`
}

// UnmarshalText parses a state name produced by MarshalText.
func (s *EngineState) UnmarshalText(text []byte) error {
	for _, st := range []EngineState{StateStopped, StateStarting, StateRunning, StateStopping} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown engine state %q", text)
}
