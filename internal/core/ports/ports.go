package ports

import (
	"context"

	"github.com/lcalzada-xor/wsniff/internal/core/domain"
)

// FrameSource yields captured link-layer frames, capture header included.
// The returned slice is only valid until the next ReadFrame call.
type FrameSource interface {
	ReadFrame() ([]byte, error)
	Close() error
}

// SourceOpener binds a FrameSource to an interface.
type SourceOpener interface {
	Open(iface string) (FrameSource, error)
}

// FrameDecoder turns a captured buffer into a FrameInfo. It must never panic
// or fail; anything it cannot interpret is domain.Ignored.
type FrameDecoder interface {
	Decode(captured []byte) domain.FrameInfo
}

// ModeController switches an interface between monitor and managed mode.
type ModeController interface {
	SetMode(iface string, mode domain.WifiMode) error
}

// ChannelSwitcher tunes an interface to a channel.
type ChannelSwitcher interface {
	SetChannel(iface string, channel int) error
}

// ChannelScheduler rotates the interface through the channel set.
// onChange is called from the scheduler's goroutine once per tick.
type ChannelScheduler interface {
	Start(iface string, onChange func(channel int))
	Stop()
	Channel() int
}

// VendorResolver maps a hardware address to a vendor name. Misses resolve
// to domain.UnknownVendor.
type VendorResolver interface {
	VendorOf(mac domain.MAC) string
}

// SnifferService is the control surface exposed to the presentation layer.
type SnifferService interface {
	Start(ctx context.Context, iface string) error
	Stop(ctx context.Context) error
	ClearData()
	SetInterface(name string) error
	APList() []domain.AccessPoint
	AssocList() []domain.AssocStation
	Status() domain.EngineStatus
	Subscribe(buffer int) (<-chan domain.Event, func())
}
