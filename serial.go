package denonavr

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/tarm/serial"
)

// DefaultBaud is the rate every supported receiver uses on its RS-232 port
const DefaultBaud = 9600

// ttyTimeout bounds how long the pump blocks in a single read, which is also
// how long Close may take to notice it should stop.  The tty driver counts
// in tenths of a second, so this is the shortest timeout it honors.
var ttyTimeout = 100 * time.Millisecond

type tty interface {
	io.ReadWriteCloser
}

// SerialPort adapts a tarm/serial port to the Port interface.  The tty has
// no way to ask how many bytes are waiting, so a goroutine copies everything
// it receives into a buffer that Buffered and Read serve from.
type SerialPort struct {
	port tty

	mu      sync.Mutex
	buf     bytes.Buffer
	err     error
	closing chan struct{}
	once    sync.Once
	done    chan struct{}
}

// OpenSerial opens the named serial device at the given baud rate
func OpenSerial(name string, baud int) (*SerialPort, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        name,
		Baud:        baud,
		ReadTimeout: ttyTimeout,
	})
	if err != nil {
		return nil, err
	}
	return newSerialPort(port), nil
}

func newSerialPort(port tty) *SerialPort {
	sp := &SerialPort{
		port:    port,
		closing: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go sp.pump()
	return sp
}

func (sp *SerialPort) pump() {
	defer close(sp.done)
	buf := make([]byte, 256)
	for {
		select {
		case <-sp.closing:
			return
		default:
		}

		n, err := sp.port.Read(buf)
		sp.mu.Lock()
		if n > 0 {
			sp.buf.Write(buf[:n])
		}
		// a read timeout on the tty surfaces as io.EOF with no data
		if err != nil && !errors.Is(err, io.EOF) {
			sp.err = err
			sp.mu.Unlock()
			return
		}
		sp.mu.Unlock()
	}
}

// Buffered returns the number of received bytes not yet read.  Once the
// buffer is empty any error hit by the pump is reported.
func (sp *SerialPort) Buffered() (int, error) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	n := sp.buf.Len()
	if n == 0 && sp.err != nil {
		return 0, sp.err
	}
	return n, nil
}

// Read copies already received bytes into p and never waits for more
func (sp *SerialPort) Read(p []byte) (int, error) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if sp.buf.Len() == 0 {
		if sp.err != nil {
			return 0, sp.err
		}
		return 0, nil
	}
	return sp.buf.Read(p)
}

func (sp *SerialPort) Write(p []byte) (int, error) {
	return sp.port.Write(p)
}

// Flush is a no-op: writes go straight to the tty with no user space
// buffering.
func (sp *SerialPort) Flush() error {
	return nil
}

// Close stops the reader and closes the underlying tty.  Only the first
// call closes the tty, later calls return nil.
func (sp *SerialPort) Close() (err error) {
	sp.once.Do(func() {
		close(sp.closing)
		<-sp.done
		err = sp.port.Close()
	})
	return err
}
