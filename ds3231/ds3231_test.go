package ds3231

import (
	"errors"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/tinyrtc/drivers/tester"
)

func newDevice(c *qt.C) (*Device, *tester.I2CDevice8) {
	bus := tester.NewI2CBus(c)
	dev := tester.NewI2CDevice8(c, Address)
	bus.AddDevice(dev)
	rtc := New(bus)
	return &rtc, dev
}

func TestDefaultAddress(t *testing.T) {
	c := qt.New(t)
	rtc := New(tester.NewI2CBus(c))
	c.Assert(rtc.Address, qt.Equals, uint8(Address))
	c.Assert(rtc.BaseYear(), qt.Equals, 2000)
}

func TestConfigure(t *testing.T) {
	c := qt.New(t)
	rtc, _ := newDevice(c)

	c.Assert(rtc.Configure(Config{BaseCentury: 18}), qt.ErrorIs, ErrInvalidBaseCentury)
	c.Assert(rtc.Configure(Config{BaseCentury: 22}), qt.ErrorIs, ErrInvalidBaseCentury)

	c.Assert(rtc.Configure(Config{BaseCentury: 21, Address: 0x57}), qt.IsNil)
	c.Assert(rtc.BaseYear(), qt.Equals, 2100)
	c.Assert(rtc.Address, qt.Equals, uint8(0x57))

	c.Assert(rtc.Configure(Config{}), qt.IsNil)
	c.Assert(rtc.BaseYear(), qt.Equals, 2000)
	c.Assert(rtc.Address, qt.Equals, uint8(Address))
}

func TestSetDateTimeSingleTransaction(t *testing.T) {
	c := qt.New(t)
	rtc, dev := newDevice(c)

	err := rtc.SetDateTime(mustDateTime(c, 2025, time.August, 21, 14, 30, 0))
	c.Assert(err, qt.IsNil)
	c.Assert(dev.Transactions, qt.DeepEquals, []tester.Transaction{{
		Op:       tester.Write,
		Register: Seconds,
		Data:     []byte{0x00, 0x30, 0x14, 0x05, 0x21, 0x08, 0x25},
	}})
}

func TestSetDateTimeInvalidTouchesNothing(t *testing.T) {
	c := qt.New(t)
	rtc, dev := newDevice(c)

	err := rtc.SetDateTime(mustDateTime(c, 2200, time.January, 1, 0, 0, 0))
	c.Assert(err, qt.ErrorAs, new(*RangeError))

	err = rtc.SetDateTime(DateTime{})
	c.Assert(err, qt.ErrorAs, new(*RangeError))
	c.Assert(dev.Transactions, qt.HasLen, 0)
}

func TestSetDateTimeTransportError(t *testing.T) {
	c := qt.New(t)
	rtc, dev := newDevice(c)
	nack := errors.New("nack")
	dev.Err = nack

	err := rtc.SetDateTime(mustDateTime(c, 2025, time.August, 21, 14, 30, 0))
	var transportErr *TransportError
	c.Assert(err, qt.ErrorAs, &transportErr)
	c.Assert(transportErr.Op, qt.Equals, "write")
	c.Assert(transportErr.Register, qt.Equals, uint8(Seconds))
	c.Assert(err, qt.ErrorIs, nack)
	c.Assert(err, qt.ErrorMatches, "ds3231: i2c write at register 0x00: nack")
	c.Assert(dev.Writes(), qt.HasLen, 1)
}

func TestReadDateTime(t *testing.T) {
	c := qt.New(t)
	rtc, dev := newDevice(c)
	copy(dev.Registers[Seconds:], []byte{0x59, 0x59, 0x23, 0x01, 0x31, 0x92, 0x99})

	dt, err := rtc.ReadDateTime()
	c.Assert(err, qt.IsNil)
	want, err := mustDateTime(c, 2199, time.December, 31, 23, 59, 59).WithWeekday(1)
	c.Assert(err, qt.IsNil)
	c.Assert(dt, qt.Equals, want)

	c.Assert(dev.Transactions, qt.DeepEquals, []tester.Transaction{
		{Op: tester.Read, Register: Status, Data: []byte{0x00}},
		{Op: tester.Read, Register: Seconds, Data: []byte{0x59, 0x59, 0x23, 0x01, 0x31, 0x92, 0x99}},
	})
}

func TestSetThenRead(t *testing.T) {
	c := qt.New(t)
	rtc, _ := newDevice(c)
	for _, mode := range []HourMode{Hour24, Hour12} {
		c.Assert(rtc.Configure(Config{HourMode: mode}), qt.IsNil)
		want := mustDateTime(c, 2101, time.March, 4, 0, 7, 8)
		c.Assert(rtc.SetDateTime(want), qt.IsNil)
		got, err := rtc.ReadDateTime()
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, want)
	}
}

func TestTwelveHourWrites(t *testing.T) {
	c := qt.New(t)
	rtc, dev := newDevice(c)
	c.Assert(rtc.Configure(Config{HourMode: Hour12}), qt.IsNil)

	c.Assert(rtc.SetDateTime(mustDateTime(c, 2025, time.August, 21, 14, 30, 0)), qt.IsNil)
	c.Assert(dev.Registers[Hours], qt.Equals, uint8(0b0110_0010))
}

func TestReadDateTimeStaleClock(t *testing.T) {
	c := qt.New(t)
	rtc, dev := newDevice(c)
	dev.Registers[Status] = 0b1000_1000

	_, err := rtc.ReadDateTime()
	c.Assert(err, qt.ErrorIs, ErrStaleClock)
	// the time registers are not read at all
	c.Assert(dev.Reads(), qt.HasLen, 1)

	_, err = rtc.Now()
	c.Assert(err, qt.ErrorIs, ErrStaleClock)
}

func TestReadDateTimeIgnoreOscillatorStop(t *testing.T) {
	c := qt.New(t)
	rtc, dev := newDevice(c)
	c.Assert(rtc.Configure(Config{IgnoreOscillatorStop: true}), qt.IsNil)
	dev.Registers[Status] = 0b1000_0000
	copy(dev.Registers[Seconds:], []byte{0x00, 0x00, 0x00, 0x07, 0x01, 0x01, 0x00})

	got, err := rtc.Now()
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC))
	c.Assert(dev.Reads(), qt.HasLen, 1)
}

func TestReadDateTimeTransportError(t *testing.T) {
	c := qt.New(t)
	rtc, dev := newDevice(c)
	busErr := errors.New("arbitration lost")
	dev.Err = busErr

	_, err := rtc.ReadDateTime()
	var transportErr *TransportError
	c.Assert(err, qt.ErrorAs, &transportErr)
	c.Assert(transportErr.Op, qt.Equals, "read")
	c.Assert(transportErr.Register, qt.Equals, uint8(Status))
	c.Assert(err, qt.ErrorIs, busErr)

	c.Assert(rtc.Configure(Config{IgnoreOscillatorStop: true}), qt.IsNil)
	dev.Err = busErr
	_, err = rtc.ReadDateTime()
	c.Assert(err, qt.ErrorAs, &transportErr)
	c.Assert(transportErr.Register, qt.Equals, uint8(Seconds))
}

func TestReadDateTimeCorrupt(t *testing.T) {
	c := qt.New(t)
	rtc, dev := newDevice(c)
	copy(dev.Registers[Seconds:], []byte{0x00, 0x3C, 0x00, 0x01, 0x01, 0x01, 0x00})

	_, err := rtc.ReadDateTime()
	var corrupt *CorruptDataError
	c.Assert(err, qt.ErrorAs, &corrupt)
	c.Assert(corrupt.Register, qt.Equals, uint8(Minutes))
	c.Assert(err, qt.ErrorMatches, "ds3231: register 0x01 holds invalid BCD 0x3C")
}

func TestLostPowerAndClear(t *testing.T) {
	c := qt.New(t)
	rtc, dev := newDevice(c)
	// OSF, EN32kHz and both alarm flags
	dev.Registers[Status] = 0b1000_1011

	lost, err := rtc.LostPower()
	c.Assert(err, qt.IsNil)
	c.Assert(lost, qt.IsTrue)

	c.Assert(rtc.ClearOscillatorStop(), qt.IsNil)
	c.Assert(dev.Registers[Status], qt.Equals, uint8(0b0000_1011))
	c.Assert(dev.Writes(), qt.DeepEquals, []tester.Transaction{
		{Op: tester.Write, Register: Status, Data: []byte{0b0000_1011}},
	})

	lost, err = rtc.LostPower()
	c.Assert(err, qt.IsNil)
	c.Assert(lost, qt.IsFalse)

	// nothing to clear
	dev.Reset()
	c.Assert(rtc.ClearOscillatorStop(), qt.IsNil)
	c.Assert(dev.Writes(), qt.HasLen, 0)
}

func TestSetDoesNotClearOscillatorStop(t *testing.T) {
	c := qt.New(t)
	rtc, dev := newDevice(c)
	dev.Registers[Status] = 0b1000_0000

	c.Assert(rtc.Set(time.Date(2006, time.January, 2, 15, 4, 5, 0, time.UTC)), qt.IsNil)
	c.Assert(dev.Registers[Status], qt.Equals, uint8(0b1000_0000))
	_, err := rtc.Now()
	c.Assert(err, qt.ErrorIs, ErrStaleClock)

	c.Assert(rtc.ClearOscillatorStop(), qt.IsNil)
	got, err := rtc.Now()
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, time.Date(2006, time.January, 2, 15, 4, 5, 0, time.UTC))
}

func TestSetConvertsToUTC(t *testing.T) {
	c := qt.New(t)
	rtc, dev := newDevice(c)
	loc := time.FixedZone("UTC-7", -7*60*60)

	c.Assert(rtc.Set(time.Date(2025, time.August, 21, 20, 0, 0, 0, loc)), qt.IsNil)
	c.Assert(dev.Registers[Hours], qt.Equals, uint8(0x03))
	c.Assert(dev.Registers[Date], qt.Equals, uint8(0x22))
}

func TestBaseCentury19(t *testing.T) {
	c := qt.New(t)
	rtc, dev := newDevice(c)
	c.Assert(rtc.Configure(Config{BaseCentury: 19}), qt.IsNil)

	c.Assert(rtc.SetDateTime(mustDateTime(c, 1987, time.May, 6, 0, 0, 0)), qt.IsNil)
	c.Assert(dev.Registers[Month], qt.Equals, uint8(0x05))
	c.Assert(dev.Registers[Year], qt.Equals, uint8(0x87))

	c.Assert(rtc.SetDateTime(mustDateTime(c, 2050, time.May, 6, 0, 0, 0)), qt.IsNil)
	c.Assert(dev.Registers[Month], qt.Equals, uint8(0x85))
	c.Assert(dev.Registers[Year], qt.Equals, uint8(0x50))

	err := rtc.SetDateTime(mustDateTime(c, 2100, time.May, 6, 0, 0, 0))
	c.Assert(err, qt.ErrorAs, new(*RangeError))
}
