package denonavr

import "io"

// Port is the byte stream a Receiver talks to.  Read must not block when
// asked for no more than Buffered bytes.
type Port interface {
	io.ReadWriter

	// Buffered returns the number of bytes that can be read without blocking
	Buffered() (int, error)

	// Flush pushes any pending output to the device
	Flush() error
}
