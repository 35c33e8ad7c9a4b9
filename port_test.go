package denonavr

import (
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	mainVolumeTimeout = 30 * time.Millisecond
	sourceSetTimeout = 30 * time.Millisecond
	sourceQueryTimeout = 30 * time.Millisecond
	os.Exit(m.Run())
}

// testPort answers each command with a canned reply
type testPort struct {
	mu        sync.Mutex
	responses map[string]string
	pending   []byte
	writes    []string
	raw       []byte
	chunk     int
	writeErr  error

	// delay holds back replies until this long after the last write
	delay time.Duration
	ready time.Time
}

func newTestPort(responses map[string]string) *testPort {
	if responses == nil {
		responses = map[string]string{}
	}
	return &testPort{responses: responses}
}

func (tp *testPort) Write(p []byte) (int, error) {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	if tp.writeErr != nil {
		return 0, tp.writeErr
	}
	tp.raw = append(tp.raw, p...)
	cmd := strings.TrimSuffix(string(p), "\r")
	tp.writes = append(tp.writes, cmd)
	tp.pending = append(tp.pending, tp.responses[cmd]...)
	tp.ready = time.Now().Add(tp.delay)
	return len(p), nil
}

func (tp *testPort) Buffered() (int, error) {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	if time.Now().Before(tp.ready) {
		return 0, nil
	}
	n := len(tp.pending)
	if tp.chunk > 0 && n > tp.chunk {
		n = tp.chunk
	}
	return n, nil
}

func (tp *testPort) Read(p []byte) (int, error) {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	n := copy(p, tp.pending)
	tp.pending = tp.pending[n:]
	return n, nil
}

func (tp *testPort) Flush() error {
	return nil
}

// commands returns everything written that was not a query
func (tp *testPort) commands() []string {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	cmds := []string{}
	for _, w := range tp.writes {
		if !strings.HasSuffix(w, "?") {
			cmds = append(cmds, w)
		}
	}
	return cmds
}

func newTestReceiver(responses map[string]string) (*Receiver, *testPort) {
	port := newTestPort(responses)
	return New(port, AVR3805(), TimeoutOption(30*time.Millisecond)), port
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
