package denonavr

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

const terminator = '\r'

// pollInterval is how long the read loop sleeps when nothing has arrived
var pollInterval = 2 * time.Millisecond

// Execute sends cmd to the receiver and collects up to lines response lines,
// giving up once timeout has passed since the command was written.  Fewer
// lines than requested is not an error, the caller gets whatever arrived.
func (r *Receiver) Execute(cmd string, lines int, timeout time.Duration) (resp []string, err error) {
	err = r.transaction(func(tx *txn) (err error) {
		resp, err = tx.exchange(cmd, lines, timeout)
		return err
	})
	return resp, err
}

// txn is handed to code running under the receiver lock.  Query-then-act
// operations issue every exchange through the same txn so that no other
// caller can slip a command in between.
type txn struct {
	r *Receiver
}

func (r *Receiver) transaction(fn func(tx *txn) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(&txn{r: r})
}

// command sends cmd and waits for the receiver's echo so that a late echo
// is not mistaken for the reply to the next exchange
func (tx *txn) command(cmd string) error {
	_, err := tx.exchange(cmd, 1, tx.r.timeout)
	return err
}

func (tx *txn) query(cmd string, timeout time.Duration) (string, error) {
	resp, err := tx.exchange(cmd, 1, timeout)
	if err == nil && len(resp) == 0 {
		err = fmt.Errorf("%w: no reply to %q", ErrInvalidResponse, cmd)
	}
	if err != nil {
		return "", err
	}
	return resp[0], nil
}

func (tx *txn) exchange(cmd string, lines int, timeout time.Duration) ([]string, error) {
	if lines < 0 {
		return nil, fmt.Errorf("%w: negative line count %d", ErrInvalidArgument, lines)
	}
	port := tx.r.port

	if err := tx.drain(); err != nil {
		return nil, err
	}

	_, err := port.Write([]byte(cmd + string(terminator)))
	if err == nil {
		err = port.Flush()
	}
	if err != nil {
		tx.r.log.Debug().Str("cmd", cmd).Err(err).Msg("TX failed")
		return nil, err
	}
	tx.r.log.Debug().Str("cmd", cmd).Int("lines", lines).Msg("TX")

	buf := &bytes.Buffer{}
	start := time.Now()
	for bytes.Count(buf.Bytes(), []byte{terminator}) < lines {
		n, err := tx.read(buf)
		if err != nil {
			return nil, err
		}
		if time.Since(start) > timeout {
			tx.r.log.Debug().Str("cmd", cmd).Int("want", lines).Msg("RX timeout")
			break
		}
		if n == 0 {
			time.Sleep(pollInterval)
		}
	}

	resp, err := splitLines(buf.Bytes(), lines)
	tx.r.log.Debug().Str("cmd", cmd).Strs("resp", resp).Err(err).Msg("RX")
	return resp, err
}

// read appends whatever the port has ready to buf
func (tx *txn) read(buf *bytes.Buffer) (int, error) {
	n, err := tx.r.port.Buffered()
	if err != nil || n == 0 {
		return 0, err
	}
	data := make([]byte, n)
	n, err = tx.r.port.Read(data)
	buf.Write(data[:n])
	return n, err
}

// drain discards stale input left over from an earlier exchange or sent
// unprompted by the receiver.  Only what is buffered when it starts is
// discarded, so a chatty receiver can not hold it up.
func (tx *txn) drain() error {
	stale := &bytes.Buffer{}
	if _, err := tx.read(stale); err != nil {
		return err
	}
	if stale.Len() > 0 {
		tx.r.log.Debug().Str("data", stale.String()).Msg("discarded stale input")
	}
	return nil
}

// splitLines returns the first max complete lines in data.  Anything after
// the last terminator is an incomplete line and is dropped.
func splitLines(data []byte, max int) ([]string, error) {
	for _, b := range data {
		if b > 0x7f {
			return nil, fmt.Errorf("%w: non-ASCII byte 0x%02x", ErrInvalidResponse, b)
		}
	}

	segments := strings.Split(string(data), string(terminator))
	segments = segments[:len(segments)-1]
	if len(segments) > max {
		segments = segments[:max]
	}
	return segments, nil
}
