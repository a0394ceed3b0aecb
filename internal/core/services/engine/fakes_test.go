package engine

import (
	"errors"
	"sync"

	"github.com/lcalzada-xor/wsniff/internal/core/domain"
	"github.com/lcalzada-xor/wsniff/internal/core/ports"
)

var errSourceClosed = errors.New("source closed")

// fakeSource feeds frames pushed by the test and fails on demand.
type fakeSource struct {
	frames chan []byte
	fail   chan error
	closed chan struct{}
	once   sync.Once
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		frames: make(chan []byte, 64),
		fail:   make(chan error, 1),
		closed: make(chan struct{}),
	}
}

func (s *fakeSource) ReadFrame() ([]byte, error) {
	select {
	case <-s.closed:
		return nil, errSourceClosed
	default:
	}
	select {
	case f := <-s.frames:
		return f, nil
	case err := <-s.fail:
		return nil, err
	case <-s.closed:
		return nil, errSourceClosed
	}
}

func (s *fakeSource) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

func (s *fakeSource) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

type fakeOpener struct {
	mu      sync.Mutex
	sources []*fakeSource
	err     error
	opened  []string
}

func (o *fakeOpener) Open(iface string) (ports.FrameSource, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opened = append(o.opened, iface)
	if o.err != nil {
		return nil, o.err
	}
	src := newFakeSource()
	o.sources = append(o.sources, src)
	return src, nil
}

func (o *fakeOpener) last() *fakeSource {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.sources) == 0 {
		return nil
	}
	return o.sources[len(o.sources)-1]
}

type modeCall struct {
	iface string
	mode  domain.WifiMode
}

type fakeModes struct {
	mu    sync.Mutex
	calls []modeCall
	err   error
}

func (m *fakeModes) SetMode(iface string, mode domain.WifiMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, modeCall{iface, mode})
	return m.err
}

func (m *fakeModes) history() []modeCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]modeCall(nil), m.calls...)
}

// fakeScheduler lets tests fire ticks synchronously.
type fakeScheduler struct {
	mu       sync.Mutex
	running  bool
	channel  int
	onChange func(int)
	starts   int
	stops    int
}

func (s *fakeScheduler) Start(iface string, onChange func(int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
	s.channel = domain.MinChannel
	s.onChange = onChange
	s.starts++
}

func (s *fakeScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.onChange = nil
	s.stops++
}

func (s *fakeScheduler) Channel() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channel
}

func (s *fakeScheduler) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.channel = domain.NextChannel(s.channel)
	s.onChange(s.channel)
}

type stubVendors map[domain.MAC]string

func (v stubVendors) VendorOf(mac domain.MAC) string {
	if name, ok := v[mac]; ok {
		return name
	}
	return domain.UnknownVendor
}
