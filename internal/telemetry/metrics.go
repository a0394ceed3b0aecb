package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// FramesCaptured counts buffers read from the frame source
	FramesCaptured = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wsniff",
			Name:      "frames_captured_total",
			Help:      "Total number of frames read from the capture socket",
		},
		[]string{"interface"},
	)

	// FramesDecoded counts frames by decode result (beacon, data, ignored)
	FramesDecoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wsniff",
			Name:      "frames_decoded_total",
			Help:      "Total number of frames by decode result",
		},
		[]string{"interface", "kind"},
	)

	// CaptureErrors counts sessions ended by a read failure
	CaptureErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wsniff",
			Name:      "capture_errors_total",
			Help:      "Total number of capture open/read failures",
		},
		[]string{"interface", "kind"},
	)

	// ChannelSwitchErrors counts failed channel switches
	ChannelSwitchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wsniff",
			Name:      "channel_switch_errors_total",
			Help:      "Total number of failed channel switch attempts",
		},
		[]string{"interface"},
	)

	// CurrentChannel is the channel the scheduler last selected
	CurrentChannel = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "wsniff",
			Name:      "current_channel",
			Help:      "Channel currently selected by the scheduler",
		},
		[]string{"interface"},
	)

	// InventorySize tracks the number of access points and stations
	InventorySize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "wsniff",
			Name:      "inventory_size",
			Help:      "Number of entries in the inventory",
		},
		[]string{"kind"},
	)

	// EventsDropped counts notifications dropped for slow subscribers
	EventsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wsniff",
			Name:      "events_dropped_total",
			Help:      "Total number of events dropped because a subscriber buffer was full",
		},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry
// This function is idempotent and can be called multiple times safely
func InitMetrics() {
	once.Do(func() {
		// Ignore AlreadyRegistered errors; they cannot happen under once
		prometheus.DefaultRegisterer.Register(FramesCaptured)
		prometheus.DefaultRegisterer.Register(FramesDecoded)
		prometheus.DefaultRegisterer.Register(CaptureErrors)
		prometheus.DefaultRegisterer.Register(ChannelSwitchErrors)
		prometheus.DefaultRegisterer.Register(CurrentChannel)
		prometheus.DefaultRegisterer.Register(InventorySize)
		prometheus.DefaultRegisterer.Register(EventsDropped)
	})
}
