// Package drivers holds the bus abstractions shared by the chip drivers in this module.
package drivers

// I2C represents an I2C bus. It is notably implemented by the machine.I2C type in TinyGo and by i2cdev.Bus on Linux
// hosts.
//
// Both operations are a single bus transaction: the register pointer is sent first and the chip auto-increments it
// for every following byte. Implementations block until the transfer completes or fails.
type I2C interface {
	ReadRegister(addr uint8, r uint8, buf []byte) error
	WriteRegister(addr uint8, r uint8, buf []byte) error
}
