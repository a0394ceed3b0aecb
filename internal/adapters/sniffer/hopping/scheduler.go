package hopping

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lcalzada-xor/wsniff/internal/core/domain"
	"github.com/lcalzada-xor/wsniff/internal/telemetry"
)

// DefaultInterval is the dwell time per channel.
const DefaultInterval = 500 * time.Millisecond

// Scheduler cycles an interface through channels 1..11 on a fixed interval.
// It implements ports.ChannelScheduler.
type Scheduler struct {
	Interval time.Duration

	switcher ChannelSwitcher
	state    AtomicState
	current  atomic.Int32

	mu         sync.Mutex // serializes Start/Stop
	stopChan   chan struct{}
	doneChan   chan struct{}
	errorCount int
}

// NewScheduler returns an idle Scheduler. A nil switcher uses iw.
func NewScheduler(interval time.Duration, switcher ChannelSwitcher) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if switcher == nil {
		switcher = NewLinuxChannelSwitcher()
	}
	s := &Scheduler{Interval: interval, switcher: switcher}
	s.current.Store(domain.MinChannel)
	return s
}

// State reports whether the timer is armed.
func (s *Scheduler) State() SchedulerState {
	return s.state.Get()
}

// Channel returns the channel most recently selected.
func (s *Scheduler) Channel() int {
	return int(s.current.Load())
}

// Start resets the channel to 1 and begins ticking. Calling Start while
// running is a no-op.
func (s *Scheduler) Start(iface string, onChange func(channel int)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.CompareAndSwap(StateIdle, StateRunning) {
		return
	}
	s.current.Store(domain.MinChannel)
	s.errorCount = 0
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})

	log.Printf("Starting channel scheduler on %s (interval=%v)", iface, s.Interval)
	go s.run(iface, onChange, s.stopChan, s.doneChan)
}

// Stop cancels the timer and waits for the tick goroutine to exit, so no
// onChange call happens after Stop returns.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.CompareAndSwap(StateRunning, StateIdle) {
		return
	}
	close(s.stopChan)
	<-s.doneChan
}

func (s *Scheduler) run(iface string, onChange func(int), stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in channel scheduler: %v", r)
		}
	}()

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			log.Printf("Stopping channel scheduler on %s", iface)
			return
		case <-ticker.C:
			// A tick racing Stop must not fire.
			select {
			case <-stop:
				return
			default:
			}
			ch := s.tick(iface)
			if onChange != nil {
				onChange(ch)
			}
		}
	}
}

// tick advances the channel and asks the driver to follow. Switch errors
// are logged, never fatal.
func (s *Scheduler) tick(iface string) int {
	ch := domain.NextChannel(int(s.current.Load()))
	s.current.Store(int32(ch))

	if err := s.switcher.SetChannel(iface, ch); err != nil {
		s.errorCount++
		telemetry.ChannelSwitchErrors.WithLabelValues(iface).Inc()
		// Don't spam the log if the failure is persistent.
		if s.errorCount == 1 || s.errorCount%10 == 0 {
			log.Printf("Warning: Failed to set channel %d: %v (Consecutive errors: %d)", ch, err, s.errorCount)
		}
	} else if s.errorCount > 0 {
		log.Printf("Channel scheduler recovered after %d errors.", s.errorCount)
		s.errorCount = 0
	}
	telemetry.CurrentChannel.WithLabelValues(iface).Set(float64(ch))
	return ch
}
