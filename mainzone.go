package denonavr

import (
	"fmt"
	"strings"
	"time"
)

var (
	// mainVolumeTimeout is how long MV? may take to answer
	mainVolumeTimeout = time.Second

	// the receiver follows a source change with a long status dump
	sourceLines        = 15
	sourceSetTimeout   = time.Second
	sourceQueryTimeout = 500 * time.Millisecond
)

// MainZone controls the main zone.  Unlike the auxiliary zones it can be
// muted and its volume has half dB resolution.
type MainZone struct {
	r *Receiver
}

func (m *MainZone) Name() string {
	return MainZoneName
}

func (tx *txn) mainPoweredOn() (bool, error) {
	resp, err := tx.query("ZM?", tx.r.timeout)
	return strings.Contains(resp, "ON"), err
}

func (tx *txn) mainVolume() (float64, error) {
	resp, err := tx.query("MV?", mainVolumeTimeout)
	if err != nil {
		return 0, err
	}
	if !strings.HasPrefix(resp, "MV") {
		return 0, fmt.Errorf("%w: volume reply %q", ErrInvalidResponse, resp)
	}
	return DecodeMainVolume(resp[2:])
}

func (tx *txn) mainSource() (Source, error) {
	lines, err := tx.exchange("SI?", sourceLines, sourceQueryTimeout)
	if err != nil {
		return "", err
	}
	if len(lines) == 0 || !strings.HasPrefix(lines[0], "SI") {
		return "", fmt.Errorf("%w: source reply %q", ErrInvalidResponse, lines)
	}
	src := Source(lines[0][2:])
	if err := tx.r.ValidateSource(src); err != nil {
		return "", fmt.Errorf("%w: main zone reported source %q", ErrInvalidResponse, src)
	}
	return src, nil
}

func (m *MainZone) PowerOn() error {
	return m.setPower(true)
}

func (m *MainZone) PowerOff() error {
	return m.setPower(false)
}

func (m *MainZone) setPower(on bool) error {
	return m.r.transaction(func(tx *txn) error {
		current, err := tx.mainPoweredOn()
		if err != nil || current == on {
			return err
		}
		if on {
			return tx.command("ZMON")
		}
		return tx.command("ZMOFF")
	})
}

func (m *MainZone) PoweredOn() (on bool, err error) {
	err = m.r.transaction(func(tx *txn) (err error) {
		on, err = tx.mainPoweredOn()
		return err
	})
	return on, err
}

func (m *MainZone) VolumeUp(confirm bool) error {
	return m.step("MVUP", confirm)
}

func (m *MainZone) VolumeDown(confirm bool) error {
	return m.step("MVDOWN", confirm)
}

func (m *MainZone) step(cmd string, confirm bool) error {
	if !confirm {
		_, err := m.r.Execute(cmd, 0, m.r.timeout)
		return err
	}
	_, err := m.r.Execute(cmd, 1, mainVolumeTimeout)
	return err
}

func (m *MainZone) Volume() (level float64, err error) {
	err = m.r.transaction(func(tx *txn) (err error) {
		level, err = tx.mainVolume()
		return err
	})
	return level, err
}

func (m *MainZone) SetVolume(level float64) error {
	value, err := EncodeMainVolume(level)
	if err != nil {
		return err
	}
	return m.r.transaction(func(tx *txn) error {
		current, err := tx.mainVolume()
		if err != nil {
			return err
		}
		if sameLevel(current, level) {
			tx.r.log.Debug().Str("zone", MainZoneName).Float64("level", level).Msg("volume unchanged")
			return nil
		}
		return tx.command("MV" + value)
	})
}

func (m *MainZone) Source() (src Source, err error) {
	err = m.r.transaction(func(tx *txn) (err error) {
		src, err = tx.mainSource()
		return err
	})
	return src, err
}

func (m *MainZone) SetSource(src Source) error {
	if err := m.r.ValidateSource(src); err != nil {
		return err
	}
	return m.r.transaction(func(tx *txn) error {
		current, err := tx.mainSource()
		if err != nil {
			return err
		}
		if current == src {
			tx.r.log.Debug().Str("zone", MainZoneName).Stringer("source", src).Msg("source unchanged")
			return nil
		}
		_, err = tx.exchange("SI"+string(src), sourceLines, sourceSetTimeout)
		return err
	})
}

// Mute mutes the main zone.  The receiver ignores MUON when already muted
// so no query is made first.
func (m *MainZone) Mute() error {
	return m.r.transaction(func(tx *txn) error {
		return tx.command("MUON")
	})
}

func (m *MainZone) Unmute() error {
	return m.r.transaction(func(tx *txn) error {
		return tx.command("MUOFF")
	})
}

func (m *MainZone) Muted() (muted bool, err error) {
	err = m.r.transaction(func(tx *txn) (err error) {
		resp, err := tx.query("MU?", tx.r.timeout)
		muted = strings.Contains(resp, "ON")
		return err
	})
	return muted, err
}
