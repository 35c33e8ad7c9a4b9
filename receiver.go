package denonavr

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrVolumeRange     = fmt.Errorf("%w: volume out of range [0, 1.0]", ErrInvalidArgument)
	ErrInvalidSource   = fmt.Errorf("%w: invalid source", ErrInvalidArgument)
	ErrUnknownZone     = errors.New("unknown zone")
	ErrInvalidResponse = errors.New("invalid response")

	// DefaultTimeout bounds ordinary exchanges
	DefaultTimeout = 300 * time.Millisecond
)

// MainZoneName is the name the main zone is looked up by
const MainZoneName = "main"

// Receiver is one physical receiver reached through a single Port.  Every
// exchange with the hardware, whichever zone it is for, goes through the
// receiver's lock.
type Receiver struct {
	mu      sync.Mutex
	port    Port
	sources []Source
	timeout time.Duration
	log     zerolog.Logger

	Main  *MainZone
	Zones []*AuxZone
}

type Option func(*Receiver)

// LoggerOption sends protocol traffic to logger at debug level
func LoggerOption(logger zerolog.Logger) Option {
	return func(r *Receiver) {
		r.log = logger
	}
}

// TimeoutOption changes how long ordinary exchanges wait for a reply
func TimeoutOption(timeout time.Duration) Option {
	return func(r *Receiver) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// New builds a Receiver for model talking over port
func New(port Port, model Model, options ...Option) *Receiver {
	r := &Receiver{
		port:    port,
		sources: append([]Source(nil), model.Sources...),
		timeout: DefaultTimeout,
		log:     zerolog.Nop(),
	}

	for _, option := range options {
		option(r)
	}

	r.log = r.log.With().Str("model", model.Name).Logger()
	r.Main = &MainZone{r: r}
	for _, prefix := range model.Zones {
		r.Zones = append(r.Zones, &AuxZone{r: r, prefix: prefix})
	}
	return r
}

// Open opens the serial device at path and builds a Receiver on it.  A baud
// rate of zero means DefaultBaud.
func Open(path string, baud int, model Model, options ...Option) (*Receiver, error) {
	port, err := OpenSerial(path, baud)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return New(port, model, options...), nil
}

// Close releases the port if it can be closed
func (r *Receiver) Close() error {
	if closer, ok := r.port.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Sources returns the inputs this receiver accepts
func (r *Receiver) Sources() []Source {
	return append([]Source(nil), r.sources...)
}

// ValidateSource fails with ErrInvalidSource unless src is one of the
// receiver's inputs
func (r *Receiver) ValidateSource(src Source) error {
	for _, s := range r.sources {
		if s == src {
			return nil
		}
	}
	return fmt.Errorf("%w %q", ErrInvalidSource, src)
}

// AllZones returns the main zone followed by the auxiliary zones
func (r *Receiver) AllZones() []Zone {
	zones := []Zone{r.Main}
	for _, z := range r.Zones {
		zones = append(zones, z)
	}
	return zones
}

// Zone finds a zone by name, "main" or an auxiliary prefix such as "Z1"
func (r *Receiver) Zone(name string) (Zone, error) {
	if strings.EqualFold(name, MainZoneName) {
		return r.Main, nil
	}
	for _, z := range r.Zones {
		if strings.EqualFold(name, z.prefix) {
			return z, nil
		}
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownZone, name)
}

// PowerOn brings the receiver out of standby unless it is already on
func (r *Receiver) PowerOn() error {
	return r.setPower(true)
}

// PowerOff puts the receiver in standby unless it is already there
func (r *Receiver) PowerOff() error {
	return r.setPower(false)
}

// PoweredOn reports whether the receiver is out of standby
func (r *Receiver) PoweredOn() (on bool, err error) {
	err = r.transaction(func(tx *txn) (err error) {
		on, err = tx.poweredOn()
		return err
	})
	return on, err
}

func (tx *txn) poweredOn() (bool, error) {
	resp, err := tx.query("PW?", tx.r.timeout)
	return resp == "PWON", err
}

func (r *Receiver) setPower(on bool) error {
	return r.transaction(func(tx *txn) error {
		current, err := tx.poweredOn()
		if err != nil || current == on {
			return err
		}
		if on {
			return tx.command("PWON")
		}
		return tx.command("PWSTANDBY")
	})
}
