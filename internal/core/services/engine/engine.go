// Package engine drives a capture session: it puts the interface into
// monitor mode, reads frames from the source, feeds the inventory and
// rotates channels until stopped.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/lcalzada-xor/wsniff/internal/core/domain"
	"github.com/lcalzada-xor/wsniff/internal/core/ports"
	"github.com/lcalzada-xor/wsniff/internal/core/services/inventory"
	"github.com/lcalzada-xor/wsniff/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultSettleDelay is how long the driver is given after each mode change.
const DefaultSettleDelay = 450 * time.Millisecond

const tracerName = "wsniff/engine"

var (
	// ErrNotStopped is returned when the interface is changed mid-session.
	ErrNotStopped = errors.New("engine: interface can only be changed while stopped")
	// ErrNoInterface is returned by Start when no interface is configured.
	ErrNoInterface = errors.New("engine: no interface configured")
)

// Options wires the engine to its adapters.
type Options struct {
	Opener    ports.SourceOpener
	Decoder   ports.FrameDecoder
	Modes     ports.ModeController
	Scheduler ports.ChannelScheduler
	Vendors   ports.VendorResolver

	// Interface is the initial capture interface.
	Interface string
	// SettleDelay is waited after every mode change. Zero disables it.
	SettleDelay time.Duration
}

// session is the state owned by one Start/Stop cycle.
type session struct {
	id    string
	iface string
	src   ports.FrameSource
	halt  chan struct{}
	done  chan struct{}
}

// Engine implements ports.SnifferService.
type Engine struct {
	opener    ports.SourceOpener
	decoder   ports.FrameDecoder
	modes     ports.ModeController
	scheduler ports.ChannelScheduler
	inv       *inventory.Inventory
	bus       *Bus
	settle    time.Duration
	tracer    trace.Tracer

	// mu serializes lifecycle transitions.
	mu    sync.Mutex
	state atomic.Int32
	run   *session

	// infoMu guards the fields read by Status without waiting on a
	// transition in progress.
	infoMu  sync.RWMutex
	iface   string
	current string
	lastErr error
}

// New creates a stopped engine.
func New(opts Options) *Engine {
	return &Engine{
		opener:    opts.Opener,
		decoder:   opts.Decoder,
		modes:     opts.Modes,
		scheduler: opts.Scheduler,
		inv:       inventory.New(opts.Vendors),
		bus:       NewBus(),
		settle:    opts.SettleDelay,
		tracer:    otel.Tracer(tracerName),
		iface:     strings.ToLower(opts.Interface),
	}
}

// State returns the lifecycle state.
func (e *Engine) State() domain.EngineState {
	return domain.EngineState(e.state.Load())
}

// Interface returns the configured capture interface.
func (e *Engine) Interface() string {
	e.infoMu.RLock()
	defer e.infoMu.RUnlock()
	return e.iface
}

// Channel returns the channel selected by the scheduler, or 0 when no
// session is running.
func (e *Engine) Channel() int {
	if e.State() != domain.StateRunning {
		return 0
	}
	return e.scheduler.Channel()
}

// Err returns the error that ended the last session, if any.
func (e *Engine) Err() error {
	e.infoMu.RLock()
	defer e.infoMu.RUnlock()
	return e.lastErr
}

// Subscribe registers an event subscriber. See Bus.Subscribe.
func (e *Engine) Subscribe(buffer int) (<-chan domain.Event, func()) {
	return e.bus.Subscribe(buffer)
}

// SetInterface changes the capture interface. Names are lower-cased.
func (e *Engine) SetInterface(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setInterfaceLocked(name)
}

func (e *Engine) setInterfaceLocked(name string) error {
	if e.State() != domain.StateStopped {
		return ErrNotStopped
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if !domain.IsValidInterface(name) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidInterfaceName, name)
	}
	e.infoMu.Lock()
	e.iface = name
	e.infoMu.Unlock()
	return nil
}

// Start opens a capture session on iface, or on the configured interface
// when iface is empty. It is a no-op unless the engine is stopped. An open
// failure restores managed mode and returns a domain.CaptureError.
func (e *Engine) Start(ctx context.Context, iface string) error {
	ctx, span := e.tracer.Start(ctx, "Engine.Start")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.State() != domain.StateStopped {
		log.Printf("Start ignored: engine is %s", e.State())
		return nil
	}
	if iface != "" {
		if err := e.setInterfaceLocked(iface); err != nil {
			return err
		}
	}
	iface = e.Interface()
	if iface == "" {
		return ErrNoInterface
	}
	span.SetAttributes(attribute.String("interface", iface))

	e.state.Store(int32(domain.StateStarting))
	e.setMode(iface, domain.ModeMonitor)
	if err := e.wait(ctx); err != nil {
		e.setMode(iface, domain.ModeManaged)
		e.state.Store(int32(domain.StateStopped))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	src, err := e.opener.Open(iface)
	if err != nil {
		cerr := domain.NewCaptureError(domain.OpenFailed, iface, err)
		telemetry.CaptureErrors.WithLabelValues(iface, "open").Inc()
		log.Printf("Failed to open capture on %s: %v", iface, err)

		e.setMode(iface, domain.ModeManaged)
		e.wait(ctx)
		e.finish(cerr)
		span.RecordError(cerr)
		span.SetStatus(codes.Error, cerr.Error())
		return cerr
	}

	run := &session{
		id:    uuid.NewString(),
		iface: iface,
		src:   src,
		halt:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	e.run = run
	e.infoMu.Lock()
	e.current = run.id
	e.lastErr = nil
	e.infoMu.Unlock()
	span.SetAttributes(attribute.String("session", run.id))

	go e.capture(run)
	e.scheduler.Start(iface, func(ch int) {
		e.bus.Publish(domain.Event{Type: domain.EventChannelChanged, Session: run.id, Channel: ch})
	})

	e.state.Store(int32(domain.StateRunning))
	log.Printf("Sniffer started on %s (session %s)", iface, run.id)
	return nil
}

// Stop ends the running session. When it returns the capture and channel
// goroutines have exited, no further events are published and the
// interface is back in managed mode. It is a no-op unless running.
func (e *Engine) Stop(ctx context.Context) error {
	ctx, span := e.tracer.Start(ctx, "Engine.Stop")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.State() != domain.StateRunning || e.run == nil {
		return nil
	}
	run := e.run
	span.SetAttributes(attribute.String("interface", run.iface), attribute.String("session", run.id))

	e.state.Store(int32(domain.StateStopping))
	e.teardown(ctx, run)
	e.finish(nil)
	log.Printf("Sniffer stopped on %s (session %s)", run.iface, run.id)
	return nil
}

// ClearData empties the inventory. It may be called in any state.
func (e *Engine) ClearData() {
	e.inv.Clear()
	e.updateGauges()
}

// APList returns the discovered access points.
func (e *Engine) APList() []domain.AccessPoint {
	return e.inv.SnapshotAPs()
}

// AssocList returns the discovered associated stations.
func (e *Engine) AssocList() []domain.AssocStation {
	return e.inv.SnapshotStations()
}

// Status returns a snapshot of the engine.
func (e *Engine) Status() domain.EngineStatus {
	aps, stations := e.inv.Counts()
	st := domain.EngineStatus{
		State:    e.State(),
		Channel:  e.Channel(),
		APs:      aps,
		Stations: stations,
	}
	e.infoMu.RLock()
	st.Interface = e.iface
	st.Session = e.current
	if e.lastErr != nil {
		st.LastError = e.lastErr.Error()
	}
	e.infoMu.RUnlock()
	return st
}

// capture reads frames until the source fails or the session is halted.
func (e *Engine) capture(run *session) {
	defer close(run.done)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in capture loop: %v", r)
			go e.abort(run, fmt.Errorf("capture loop panic: %v", r))
		}
	}()

	captured := telemetry.FramesCaptured.WithLabelValues(run.iface)
	for {
		frame, err := run.src.ReadFrame()
		if err != nil {
			select {
			case <-run.halt:
			default:
				go e.abort(run, err)
			}
			return
		}
		captured.Inc()
		e.handle(run, frame)
	}
}

func (e *Engine) handle(run *session, frame []byte) {
	info := e.decoder.Decode(frame)
	telemetry.FramesDecoded.WithLabelValues(run.iface, info.Kind.String()).Inc()

	switch info.Kind {
	case domain.FrameBeacon:
		if ap, ok := e.inv.RecordBeacon(info.Beacon); ok {
			e.updateGauges()
			e.bus.Publish(domain.Event{Type: domain.EventAccessPointAdded, Session: run.id, AccessPoint: &ap})
		}
	case domain.FrameData:
		if st, ok := e.inv.RecordData(info.Data); ok {
			e.updateGauges()
			e.bus.Publish(domain.Event{Type: domain.EventAssocStationAdded, Session: run.id, Station: &st})
		}
	}
}

// abort ends run after a read failure, unless Stop got there first.
func (e *Engine) abort(run *session, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.run != run {
		return
	}
	cerr := domain.NewCaptureError(domain.ReadFailed, run.iface, err)
	telemetry.CaptureErrors.WithLabelValues(run.iface, "read").Inc()
	log.Printf("Capture on %s failed, stopping session %s: %v", run.iface, run.id, cerr)

	e.state.Store(int32(domain.StateStopping))
	e.teardown(context.Background(), run)
	e.finish(cerr)
	e.bus.Publish(domain.Event{Type: domain.EventCaptureFailed, Session: run.id, Error: cerr.Error()})
}

// teardown joins the session goroutines and restores managed mode.
// Caller holds e.mu.
func (e *Engine) teardown(ctx context.Context, run *session) {
	e.scheduler.Stop()
	close(run.halt)
	if err := run.src.Close(); err != nil {
		log.Printf("Error closing capture source: %v", err)
	}
	<-run.done

	e.setMode(run.iface, domain.ModeManaged)
	e.wait(ctx)
	e.run = nil
}

func (e *Engine) finish(err error) {
	e.infoMu.Lock()
	e.current = ""
	e.lastErr = err
	e.infoMu.Unlock()
	e.state.Store(int32(domain.StateStopped))
}

func (e *Engine) setMode(iface string, mode domain.WifiMode) {
	if e.modes == nil {
		return
	}
	if err := e.modes.SetMode(iface, mode); err != nil {
		log.Printf("Warning: Failed to set %s mode on %s: %v", mode, iface, err)
	}
}

func (e *Engine) wait(ctx context.Context) error {
	if e.settle <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(e.settle)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (e *Engine) updateGauges() {
	aps, stations := e.inv.Counts()
	telemetry.InventorySize.WithLabelValues("access_points").Set(float64(aps))
	telemetry.InventorySize.WithLabelValues("stations").Set(float64(stations))
}
