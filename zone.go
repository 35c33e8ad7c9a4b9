package denonavr

import (
	"fmt"
	"strings"
)

// Zone is the control surface shared by the main zone and the auxiliary
// zones.  Nothing is cached, every getter asks the receiver.
type Zone interface {
	Name() string
	PowerOn() error
	PowerOff() error
	PoweredOn() (bool, error)

	// VolumeUp and VolumeDown step the volume.  Without confirm the command
	// is sent and the call returns immediately, with it the call waits for
	// the receiver to report the new level.
	VolumeUp(confirm bool) error
	VolumeDown(confirm bool) error
	Volume() (float64, error)
	SetVolume(level float64) error

	Source() (Source, error)
	SetSource(src Source) error
}

// Muter is implemented by zones that can be muted
type Muter interface {
	Mute() error
	Unmute() error
	Muted() (bool, error)
}

// auxStatusLines is the size of the block a zone sends in reply to <zone>?
const auxStatusLines = 3

// AuxZone controls an auxiliary zone such as Z1.  Its commands are the
// prefix followed directly by the argument.
type AuxZone struct {
	r      *Receiver
	prefix string
}

func (z *AuxZone) Name() string {
	return z.prefix
}

// auxStatus returns the source, volume and power lines of the zone
func (tx *txn) auxStatus(z *AuxZone) ([]string, error) {
	lines, err := tx.exchange(z.prefix+"?", auxStatusLines, tx.r.timeout)
	if err != nil {
		return nil, err
	}
	if len(lines) < 2 {
		return nil, fmt.Errorf("%w: %s status %q", ErrInvalidResponse, z.prefix, lines)
	}
	for _, line := range lines[:2] {
		if !strings.HasPrefix(line, z.prefix) {
			return nil, fmt.Errorf("%w: %s status %q", ErrInvalidResponse, z.prefix, lines)
		}
	}
	return lines, nil
}

func (tx *txn) auxPoweredOn(z *AuxZone) (bool, error) {
	lines, err := tx.exchange(z.prefix+"?", auxStatusLines, tx.r.timeout)
	if err != nil {
		return false, err
	}
	for _, line := range lines {
		if line == z.prefix+"ON" {
			return true, nil
		}
	}
	return false, nil
}

func (tx *txn) auxVolume(z *AuxZone) (float64, error) {
	lines, err := tx.auxStatus(z)
	if err != nil {
		return 0, err
	}
	return DecodeZoneVolume(strings.TrimPrefix(lines[1], z.prefix))
}

func (tx *txn) auxSource(z *AuxZone) (Source, error) {
	lines, err := tx.auxStatus(z)
	if err != nil {
		return "", err
	}
	src := Source(strings.TrimPrefix(lines[0], z.prefix))
	if err := tx.r.ValidateSource(src); err != nil {
		return "", fmt.Errorf("%w: %s reported source %q", ErrInvalidResponse, z.prefix, src)
	}
	return src, nil
}

func (z *AuxZone) PowerOn() error {
	return z.setPower(true)
}

func (z *AuxZone) PowerOff() error {
	return z.setPower(false)
}

func (z *AuxZone) setPower(on bool) error {
	return z.r.transaction(func(tx *txn) error {
		current, err := tx.auxPoweredOn(z)
		if err != nil || current == on {
			return err
		}
		if on {
			return tx.command(z.prefix + "ON")
		}
		return tx.command(z.prefix + "OFF")
	})
}

func (z *AuxZone) PoweredOn() (on bool, err error) {
	err = z.r.transaction(func(tx *txn) (err error) {
		on, err = tx.auxPoweredOn(z)
		return err
	})
	return on, err
}

func (z *AuxZone) VolumeUp(confirm bool) error {
	return z.step("UP", confirm)
}

func (z *AuxZone) VolumeDown(confirm bool) error {
	return z.step("DOWN", confirm)
}

func (z *AuxZone) step(dir string, confirm bool) error {
	lines := 0
	if confirm {
		lines = 1
	}
	_, err := z.r.Execute(z.prefix+dir, lines, z.r.timeout)
	return err
}

func (z *AuxZone) Volume() (level float64, err error) {
	err = z.r.transaction(func(tx *txn) (err error) {
		level, err = tx.auxVolume(z)
		return err
	})
	return level, err
}

func (z *AuxZone) SetVolume(level float64) error {
	value, err := EncodeZoneVolume(level)
	if err != nil {
		return err
	}
	return z.r.transaction(func(tx *txn) error {
		current, err := tx.auxVolume(z)
		if err != nil {
			return err
		}
		if sameLevel(current, level) {
			tx.r.log.Debug().Str("zone", z.prefix).Float64("level", level).Msg("volume unchanged")
			return nil
		}
		return tx.command(z.prefix + value)
	})
}

func (z *AuxZone) Source() (src Source, err error) {
	err = z.r.transaction(func(tx *txn) (err error) {
		src, err = tx.auxSource(z)
		return err
	})
	return src, err
}

func (z *AuxZone) SetSource(src Source) error {
	if err := z.r.ValidateSource(src); err != nil {
		return err
	}
	return z.r.transaction(func(tx *txn) error {
		current, err := tx.auxSource(z)
		if err != nil {
			return err
		}
		if current == src {
			tx.r.log.Debug().Str("zone", z.prefix).Stringer("source", src).Msg("source unchanged")
			return nil
		}
		return tx.command(z.prefix + string(src))
	})
}
