package domain

import "time"

// EventType names a change notification emitted by the engine.
type EventType string

const (
	EventAccessPointAdded  EventType = "access_point_added"
	EventAssocStationAdded EventType = "assoc_station_added"
	EventChannelChanged    EventType = "channel_changed"
	// EventCaptureFailed ends a session after a read failure.
	EventCaptureFailed EventType = "capture_failed"
)

// Event is one notification. Exactly one payload field is set, matching Type.
type Event struct {
	Type        EventType     `json:"type"`
	Time        time.Time     `json:"time"`
	Session     string        `json:"session"`
	AccessPoint *AccessPoint  `json:"access_point,omitempty"`
	Station     *AssocStation `json:"station,omitempty"`
	Channel     int           `json:"channel,omitempty"`
	Error       string        `json:"error,omitempty"`
}
