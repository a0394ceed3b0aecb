package web

import (
	"context"

	"github.com/lcalzada-xor/wsniff/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// MockSnifferService is a mock of ports.SnifferService
type MockSnifferService struct {
	mock.Mock
	Events chan domain.Event
}

// NewMockSnifferService returns a mock whose Subscribe hands out Events.
func NewMockSnifferService() *MockSnifferService {
	return &MockSnifferService{Events: make(chan domain.Event, 16)}
}

func (m *MockSnifferService) Start(ctx context.Context, iface string) error {
	args := m.Called(ctx, iface)
	return args.Error(0)
}

func (m *MockSnifferService) Stop(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSnifferService) ClearData() {
	m.Called()
}

func (m *MockSnifferService) SetInterface(name string) error {
	args := m.Called(name)
	return args.Error(0)
}

func (m *MockSnifferService) APList() []domain.AccessPoint {
	args := m.Called()
	return args.Get(0).([]domain.AccessPoint)
}

func (m *MockSnifferService) AssocList() []domain.AssocStation {
	args := m.Called()
	return args.Get(0).([]domain.AssocStation)
}

func (m *MockSnifferService) Status() domain.EngineStatus {
	args := m.Called()
	return args.Get(0).(domain.EngineStatus)
}

// Subscribe is not recorded; it returns Events and a no-op cancel.
func (m *MockSnifferService) Subscribe(buffer int) (<-chan domain.Event, func()) {
	return m.Events, func() {}
}
