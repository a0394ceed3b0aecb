package hopping

import "sync/atomic"

// SchedulerState is the lifecycle state of the channel scheduler.
type SchedulerState int32

const (
	StateIdle    SchedulerState = iota // Created or stopped, no timer armed
	StateRunning                       // Timer armed, rotating channels
)

func (s SchedulerState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	}
	return "Unknown"
}

// AtomicState wraps atomic operations for SchedulerState
type AtomicState struct {
	v int32
}

func (a *AtomicState) Set(s SchedulerState) {
	atomic.StoreInt32(&a.v, int32(s))
}

func (a *AtomicState) Get() SchedulerState {
	return SchedulerState(atomic.LoadInt32(&a.v))
}

func (a *AtomicState) CompareAndSwap(old, new SchedulerState) bool {
	return atomic.CompareAndSwapInt32(&a.v, int32(old), int32(new))
}
