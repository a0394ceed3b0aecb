package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"syscall"
	"testing"

	"github.com/lcalzada-xor/wsniff/internal/adapters/web"
	"github.com/lcalzada-xor/wsniff/internal/core/domain"
	"github.com/lcalzada-xor/wsniff/internal/core/services/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandleStart(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		mockSetup func(m *web.MockSnifferService)
		expected  int
	}{
		{
			name: "configured interface",
			body: "",
			mockSetup: func(m *web.MockSnifferService) {
				m.On("Start", mock.Anything, "").Return(nil)
				m.On("Status").Return(domain.EngineStatus{State: domain.StateRunning})
			},
			expected: http.StatusOK,
		},
		{
			name: "explicit interface",
			body: `{"interface":"wlan1"}`,
			mockSetup: func(m *web.MockSnifferService) {
				m.On("Start", mock.Anything, "wlan1").Return(nil)
				m.On("Status").Return(domain.EngineStatus{State: domain.StateRunning, Interface: "wlan1"})
			},
			expected: http.StatusOK,
		},
		{
			name:      "invalid interface",
			body:      `{"interface":"wlan0; rm -rf /"}`,
			mockSetup: func(m *web.MockSnifferService) {},
			expected:  http.StatusBadRequest,
		},
		{
			name:      "malformed body",
			body:      `{`,
			mockSetup: func(m *web.MockSnifferService) {},
			expected:  http.StatusBadRequest,
		},
		{
			name: "open failed",
			body: "",
			mockSetup: func(m *web.MockSnifferService) {
				m.On("Start", mock.Anything, "").Return(domain.NewCaptureError(domain.OpenFailed, "wlan0", syscall.EPERM))
			},
			expected: http.StatusBadGateway,
		},
		{
			name: "no interface",
			body: "",
			mockSetup: func(m *web.MockSnifferService) {
				m.On("Start", mock.Anything, "").Return(engine.ErrNoInterface)
			},
			expected: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := web.NewMockSnifferService()
			tt.mockSetup(svc)
			h := NewSnifferHandler(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/start", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.HandleStart(rec, req)

			assert.Equal(t, tt.expected, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandleSetInterface(t *testing.T) {
	svc := web.NewMockSnifferService()
	svc.On("SetInterface", "wlan2").Return(engine.ErrNotStopped).Once()
	svc.On("SetInterface", "wlan3").Return(nil).Once()
	svc.On("Status").Return(domain.EngineStatus{Interface: "wlan3"})
	h := NewSnifferHandler(svc)

	send := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.HandleSetInterface(rec, httptest.NewRequest(http.MethodPut, "/api/interface", strings.NewReader(body)))
		return rec
	}

	assert.Equal(t, http.StatusConflict, send(`{"interface":"wlan2"}`).Code)
	assert.Equal(t, http.StatusBadRequest, send(`{"interface":""}`).Code)

	rec := send(`{"interface":"wlan3"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var st domain.EngineStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&st))
	assert.Equal(t, "wlan3", st.Interface)
	svc.AssertExpectations(t)
}

func TestHandleListsAndClear(t *testing.T) {
	home := domain.AccessPoint{SSID: "Home", BSSID: domain.MustParseMAC("AA:AA:AA:AA:AA:AA"), Vendor: "Acme"}
	station := domain.AssocStation{MAC: domain.MustParseMAC("BB:BB:BB:BB:BB:BB"), Vendor: domain.UnknownVendor, AP: home}

	svc := web.NewMockSnifferService()
	svc.On("APList").Return([]domain.AccessPoint{home})
	svc.On("AssocList").Return([]domain.AssocStation{station})
	svc.On("ClearData").Return()
	h := NewSnifferHandler(svc)

	rec := httptest.NewRecorder()
	h.HandleAccessPoints(rec, httptest.NewRequest(http.MethodGet, "/api/aps", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"ssid":"Home","bssid":"AA:AA:AA:AA:AA:AA","vendor":"Acme"}]`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.HandleStations(rec, httptest.NewRequest(http.MethodGet, "/api/stations", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var stations []domain.AssocStation
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stations))
	require.Len(t, stations, 1)
	assert.Equal(t, station, stations[0])

	rec = httptest.NewRecorder()
	h.HandleClear(rec, httptest.NewRequest(http.MethodPost, "/api/clear", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	svc.AssertExpectations(t)
}
