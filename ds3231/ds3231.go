// Package ds3231 implements a driver for the DS3231 Real-Time Clock (RTC), providing read-write of the current time
// and handling of the oscillator stop flag. The DS3231 also has alarms, a square-wave output and a temperature
// sensor; those features remain unimplemented.
//
// Every operation is a self-contained exchange with the chip and the driver keeps no time of its own. The time is
// always read and written as one seven-byte transfer starting at the seconds register, so the chip cannot tick
// between registers of the same read or write.
//
// Datasheet: https://www.analog.com/media/en/technical-documentation/data-sheets/DS3231.pdf
package ds3231

import (
	"time"

	"github.com/tinyrtc/drivers"
)

// Device is a DS3231 on an I2C bus. It does no locking: calls on one Device must not overlap.
type Device struct {
	bus      drivers.I2C
	Address  uint8
	baseYear int
	hourMode HourMode
	checkOSF bool
}

type Config struct {
	// Address defaults to 0x68.
	Address uint8
	// BaseCentury is 19, 20 or 21 and defaults to 20. Representable years run from BaseCentury*100 to
	// BaseCentury*100+199.
	BaseCentury uint8
	// HourMode is the format used when writing the hours register.
	HourMode HourMode
	// IgnoreOscillatorStop skips the status register check before reading the time.
	IgnoreOscillatorStop bool
}

// New creates a driver on the specified preconfigured I2C bus with default settings: 24-hour writes, years 2000 to
// 2199, and the oscillator stop flag checked on every read.
func New(bus drivers.I2C) Device {
	return Device{
		bus:      bus,
		Address:  Address,
		baseYear: 2000,
		hourMode: Hour24,
		checkOSF: true,
	}
}

func (d *Device) Configure(c Config) error {
	if c.Address == 0 {
		c.Address = Address
	}
	if c.BaseCentury == 0 {
		c.BaseCentury = 20
	}
	if c.BaseCentury < 19 || c.BaseCentury > 21 {
		return ErrInvalidBaseCentury
	}

	d.Address = c.Address
	d.baseYear = int(c.BaseCentury) * 100
	d.hourMode = c.HourMode
	d.checkOSF = !c.IgnoreOscillatorStop
	return nil
}

// BaseYear returns the first representable year.
func (d *Device) BaseYear() int {
	return d.baseYear
}

// ReadDateTime reads the current time from the chip. Unless disabled, it fails with ErrStaleClock when the
// oscillator stop flag is set.
func (d *Device) ReadDateTime() (DateTime, error) {
	if d.checkOSF {
		lost, err := d.LostPower()
		if err != nil {
			return DateTime{}, err
		}
		if lost {
			return DateTime{}, ErrStaleClock
		}
	}

	var r Registers
	if err := d.bus.ReadRegister(d.Address, Seconds, r[:]); err != nil {
		return DateTime{}, &TransportError{Op: "read", Register: Seconds, Err: err}
	}
	return Decode(r, d.baseYear)
}

// SetDateTime writes dt to the chip in a single transfer. dt is validated before the bus is touched, so an invalid
// value never leaves the registers partly written. The oscillator stop flag is left as is; see ClearOscillatorStop.
func (d *Device) SetDateTime(dt DateTime) error {
	r, err := Encode(dt, d.baseYear, d.hourMode)
	if err != nil {
		return err
	}
	if err := d.bus.WriteRegister(d.Address, Seconds, r[:]); err != nil {
		return &TransportError{Op: "write", Register: Seconds, Err: err}
	}
	return nil
}

// Now returns the chip's time as a UTC time.Time.
func (d *Device) Now() (time.Time, error) {
	dt, err := d.ReadDateTime()
	if err != nil {
		return time.Time{}, err
	}
	return dt.Time(), nil
}

// Set writes t, converted to UTC, to the chip.
func (d *Device) Set(t time.Time) error {
	dt, err := FromTime(t.UTC())
	if err != nil {
		return err
	}
	return d.SetDateTime(dt)
}

// LostPower reports whether the oscillator stop flag is set. The chip sets it at first power-up and whenever the
// oscillator halted, e.g. on loss of both main and battery power.
func (d *Device) LostPower() (bool, error) {
	status, err := d.readStatus()
	if err != nil {
		return false, err
	}
	return status&flagOSF != 0, nil
}

// ClearOscillatorStop clears the oscillator stop flag, leaving the other status bits unchanged. Call it after
// setting the time to mark the clock as valid again.
func (d *Device) ClearOscillatorStop() error {
	status, err := d.readStatus()
	if err != nil {
		return err
	}
	if status&flagOSF == 0 {
		return nil
	}
	buf := [1]byte{status &^ flagOSF}
	if err := d.bus.WriteRegister(d.Address, Status, buf[:]); err != nil {
		return &TransportError{Op: "write", Register: Status, Err: err}
	}
	return nil
}

func (d *Device) readStatus() (byte, error) {
	buf := [1]byte{}
	if err := d.bus.ReadRegister(d.Address, Status, buf[:]); err != nil {
		return 0, &TransportError{Op: "read", Register: Status, Err: err}
	}
	return buf[0], nil
}
