//go:build !linux

package i2cdev

import "errors"

var errUnsupported = errors.New("i2cdev: i2c-dev adapters are only available on linux")

// Bus is unavailable on this platform; Open always fails.
type Bus struct{}

func Open(path string) (*Bus, error) {
	return nil, errUnsupported
}

func (b *Bus) String() string { return "" }

func (b *Bus) Close() error { return errUnsupported }

func (b *Bus) ReadRegister(addr uint8, r uint8, buf []byte) error { return errUnsupported }

func (b *Bus) WriteRegister(addr uint8, r uint8, buf []byte) error { return errUnsupported }
