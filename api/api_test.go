package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abates/denonavr"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedPort replies to each command from a fixed table
type scriptedPort struct {
	mu      sync.Mutex
	replies map[string]string
	pending []byte
	writes  []string
}

func (sp *scriptedPort) Write(p []byte) (int, error) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	cmd := strings.TrimSuffix(string(p), "\r")
	sp.writes = append(sp.writes, cmd)
	sp.pending = append(sp.pending, sp.replies[cmd]...)
	return len(p), nil
}

func (sp *scriptedPort) Buffered() (int, error) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return len(sp.pending), nil
}

func (sp *scriptedPort) Read(p []byte) (int, error) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	n := copy(p, sp.pending)
	sp.pending = sp.pending[n:]
	return n, nil
}

func (sp *scriptedPort) Flush() error { return nil }

func (sp *scriptedPort) sent() []string {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	cmds := []string{}
	for _, w := range sp.writes {
		if !strings.HasSuffix(w, "?") {
			cmds = append(cmds, w)
		}
	}
	return cmds
}

func newTestServer(t *testing.T) (*httptest.Server, *scriptedPort) {
	t.Helper()
	port := &scriptedPort{replies: map[string]string{
		"PW?": "PWON\r",
		"ZM?": "ZMON\r",
		"MV?": "MV48\r",
		"MU?": "MUOFF\r",
		"SI?": "SICD\r",
		"Z1?": "Z1TUNER\rZ149\rZ1ON\r",
		"Z2?": "Z2CD\rZ200\rZ2OFF\r",
	}}
	avr := denonavr.New(port, denonavr.AVR3805(), denonavr.TimeoutOption(20*time.Millisecond))
	srv := httptest.NewServer(New(avr, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv, port
}

func do(t *testing.T, method, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestListZonesAndSources(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, "GET", srv.URL+"/zones")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	zones := []string{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&zones))
	assert.Equal(t, []string{"main", "Z1", "Z2"}, zones)

	resp = do(t, "GET", srv.URL+"/sources")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sources := []string{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sources))
	assert.Len(t, sources, 11)
	assert.Contains(t, sources, "DBS/SAT")
}

func TestStatus(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, "GET", srv.URL+"/main/status")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	status := denonavr.Status{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "main", status.Zone)
	assert.True(t, status.Power)
	assert.InDelta(t, 0.5, status.Volume, 1e-9)
	assert.Equal(t, denonavr.SourceCD, status.Source)
	require.NotNil(t, status.Mute)
	assert.False(t, *status.Mute)

	resp = do(t, "GET", srv.URL+"/Z1/status")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	status = denonavr.Status{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, denonavr.Status{Zone: "Z1", Power: true, Volume: 0.5, Source: denonavr.SourceTuner}, status)

	resp = do(t, "GET", srv.URL+"/Z9/status")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
		want   []string
	}{
		{"device power already on", "/power/on", http.StatusOK, []string{}},
		{"device standby", "/power/standby", http.StatusOK, []string{"PWSTANDBY"}},
		{"zone power on", "/Z2/power/on", http.StatusOK, []string{"Z2ON"}},
		{"zone power bad", "/Z2/power/maybe", http.StatusBadRequest, []string{}},
		{"main volume", "/main/volume/1.0", http.StatusOK, []string{"MV96"}},
		{"main volume unchanged", "/main/volume/0.5", http.StatusOK, []string{}},
		{"zone volume", "/Z1/volume/0.25", http.StatusOK, []string{"Z125"}},
		{"volume out of range", "/Z1/volume/1.5", http.StatusBadRequest, []string{}},
		{"volume not a number", "/Z1/volume/loud", http.StatusBadRequest, []string{}},
		{"step up", "/main/step/up", http.StatusOK, []string{"MVUP"}},
		{"step down", "/Z1/step/down", http.StatusOK, []string{"Z1DOWN"}},
		{"step sideways", "/Z1/step/left", http.StatusBadRequest, []string{}},
		{"source with slash", "/Z1/source/DBS/SAT", http.StatusOK, []string{"Z1DBS/SAT"}},
		{"source unchanged", "/main/source/CD", http.StatusOK, []string{}},
		{"source invalid", "/main/source/MD/TAPE2", http.StatusBadRequest, []string{}},
		{"mute", "/main/mute/on", http.StatusOK, []string{"MUON"}},
		{"unmute", "/main/mute/false", http.StatusOK, []string{"MUOFF"}},
		{"mute aux zone", "/Z1/mute/on", http.StatusBadRequest, []string{}},
		{"unknown zone", "/Z7/power/on", http.StatusNotFound, []string{}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			srv, port := newTestServer(t)
			resp := do(t, "PUT", srv.URL+test.path)
			assert.Equal(t, test.status, resp.StatusCode)
			assert.Equal(t, test.want, port.sent())
		})
	}
}

func TestParseOnOff(t *testing.T) {
	for _, s := range []string{"on", "ON", "true", "1"} {
		got, err := ParseOnOff(s)
		require.NoError(t, err)
		assert.True(t, got, s)
	}
	for _, s := range []string{"off", "standby", "false", "0"} {
		got, err := ParseOnOff(s)
		require.NoError(t, err)
		assert.False(t, got, s)
	}
	_, err := ParseOnOff("sometimes")
	assert.Error(t, err)
}
