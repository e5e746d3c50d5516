// Package tester contains mock structs to make it easier to test I2C devices.
package tester

// Failer is implemented by *testing.T and by quicktest's *qt.C.
type Failer interface {
	Helper()
	Fatalf(format string, args ...interface{})
}

// Op is the direction of a bus transaction.
type Op uint8

const (
	Read Op = iota
	Write
)

func (op Op) String() string {
	if op == Write {
		return "write"
	}
	return "read"
}

// Transaction is one ReadRegister or WriteRegister call as seen by a device.
type Transaction struct {
	Op       Op
	Register uint8
	Data     []byte
}

// I2CBus implements drivers.I2C and dispatches to the devices added to it by address.
type I2CBus struct {
	c       Failer
	devices []*I2CDevice8
}

func NewI2CBus(c Failer) *I2CBus {
	return &I2CBus{c: c}
}

func (bus *I2CBus) AddDevice(d *I2CDevice8) {
	bus.devices = append(bus.devices, d)
}

// FindDevice returns the device at addr or nil.
func (bus *I2CBus) FindDevice(addr uint8) *I2CDevice8 {
	for _, d := range bus.devices {
		if d.addr == addr {
			return d
		}
	}
	return nil
}

func (bus *I2CBus) ReadRegister(addr uint8, r uint8, buf []byte) error {
	return bus.device(addr).readRegister(r, buf)
}

func (bus *I2CBus) WriteRegister(addr uint8, r uint8, buf []byte) error {
	return bus.device(addr).writeRegister(r, buf)
}

func (bus *I2CBus) device(addr uint8) *I2CDevice8 {
	bus.c.Helper()
	d := bus.FindDevice(addr)
	if d == nil {
		bus.c.Fatalf("invalid device addr %#x passed to i2c bus", addr)
	}
	return d
}

// I2CDevice8 is a mock device with 8-bit registers and an auto-incrementing register pointer.
type I2CDevice8 struct {
	c    Failer
	addr uint8

	// Registers holds the device registers. It can be inspected or preset by tests.
	Registers [256]uint8

	// Err, when set, is returned by the next transaction instead of touching Registers. The failed transaction is
	// still recorded.
	Err error

	// Transactions lists every transaction in the order they happened.
	Transactions []Transaction
}

func NewI2CDevice8(c Failer, addr uint8) *I2CDevice8 {
	return &I2CDevice8{c: c, addr: addr}
}

func (d *I2CDevice8) Addr() uint8 {
	return d.addr
}

// Writes returns the recorded write transactions.
func (d *I2CDevice8) Writes() []Transaction {
	return d.filter(Write)
}

// Reads returns the recorded read transactions.
func (d *I2CDevice8) Reads() []Transaction {
	return d.filter(Read)
}

// Reset forgets recorded transactions.
func (d *I2CDevice8) Reset() {
	d.Transactions = nil
}

func (d *I2CDevice8) filter(op Op) []Transaction {
	var out []Transaction
	for _, t := range d.Transactions {
		if t.Op == op {
			out = append(out, t)
		}
	}
	return out
}

func (d *I2CDevice8) readRegister(r uint8, buf []byte) error {
	d.assertBounds(r, len(buf))
	if err := d.takeErr(); err != nil {
		d.record(Read, r, nil)
		return err
	}
	copy(buf, d.Registers[r:])
	d.record(Read, r, buf)
	return nil
}

func (d *I2CDevice8) writeRegister(r uint8, buf []byte) error {
	d.assertBounds(r, len(buf))
	if err := d.takeErr(); err != nil {
		d.record(Write, r, buf)
		return err
	}
	copy(d.Registers[r:], buf)
	d.record(Write, r, buf)
	return nil
}

func (d *I2CDevice8) takeErr() error {
	err := d.Err
	d.Err = nil
	return err
}

func (d *I2CDevice8) record(op Op, r uint8, data []byte) {
	d.Transactions = append(d.Transactions, Transaction{
		Op:       op,
		Register: r,
		Data:     append([]byte(nil), data...),
	})
}

func (d *I2CDevice8) assertBounds(r uint8, n int) {
	d.c.Helper()
	if int(r)+n > len(d.Registers) {
		d.c.Fatalf("register range %#x+%d out of bounds", r, n)
	}
}
