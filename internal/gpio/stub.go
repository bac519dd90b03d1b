//go:build !linux

package gpio

import "errors"

// RealBoard is not available on non-Linux platforms.
type RealBoard struct{}

// NewRealBoard returns an error on non-Linux platforms.
func NewRealBoard(chipName string, tonePin int) (*RealBoard, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Configure is not implemented on non-Linux platforms.
func (b *RealBoard) Configure(pin int, mode Mode) error {
	return errors.New("gpio: not supported")
}

// Read is not implemented on non-Linux platforms.
func (b *RealBoard) Read(pin int) (bool, error) {
	return false, errors.New("gpio: not supported")
}

// Write is not implemented on non-Linux platforms.
func (b *RealBoard) Write(pin int, on bool) error {
	return errors.New("gpio: not supported")
}

// Tone is not implemented on non-Linux platforms.
func (b *RealBoard) Tone(divider, cycle uint32) error {
	return errors.New("gpio: not supported")
}

// Silence is not implemented on non-Linux platforms.
func (b *RealBoard) Silence() error {
	return nil
}

// Close is not implemented on non-Linux platforms.
func (b *RealBoard) Close() error {
	return nil
}
