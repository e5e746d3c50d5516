//go:build linux

package i2cdev

import (
	"fmt"
	"os"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Constants from the kernel UAPI headers include/uapi/linux/i2c-dev.h and include/uapi/linux/i2c.h.
const (
	// ioctlRDWR is I2C_RDWR: combined transfer of up to i2cRDWRMaxMsgs messages with repeated starts.
	ioctlRDWR = 0x0707

	// flagRead is I2C_M_RD.
	flagRead = 0x0001

	i2cRDWRMaxMsgs = 42
)

// i2cMsg mirrors struct i2c_msg.
type i2cMsg struct {
	addr  uint16
	flags uint16
	len   uint16
	buf   unsafe.Pointer
}

// rdwrData mirrors struct i2c_rdwr_ioctl_data.
type rdwrData struct {
	msgs  unsafe.Pointer
	nmsgs uint32
}

// Bus is an open i2c-dev adapter. It does no locking: callers sharing a Bus between goroutines must serialize access.
type Bus struct {
	path string
	file *os.File
}

// Open opens the adapter at path, e.g. /dev/i2c-1.
func Open(path string) (*Bus, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open i2c adapter: %w", err)
	}
	return &Bus{path: path, file: file}, nil
}

func (b *Bus) String() string {
	return b.path
}

func (b *Bus) Close() error {
	return b.file.Close()
}

// ReadRegister reads len(buf) bytes from device addr starting at register r.
func (b *Bus) ReadRegister(addr uint8, r uint8, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	reg := [1]byte{r}
	msgs := readMsgs(addr, reg[:], buf)
	err := b.transfer(msgs)
	runtime.KeepAlive(reg)
	runtime.KeepAlive(buf)
	return err
}

// WriteRegister writes buf to device addr starting at register r.
func (b *Bus) WriteRegister(addr uint8, r uint8, buf []byte) error {
	data := make([]byte, 1+len(buf))
	data[0] = r
	copy(data[1:], buf)
	msgs := writeMsgs(addr, data)
	err := b.transfer(msgs)
	runtime.KeepAlive(data)
	return err
}

func (b *Bus) transfer(msgs []i2cMsg) error {
	if len(msgs) == 0 || len(msgs) > i2cRDWRMaxMsgs {
		return fmt.Errorf("i2c transfer of %d messages", len(msgs))
	}
	data := rdwrData{
		msgs:  unsafe.Pointer(&msgs[0]),
		nmsgs: uint32(len(msgs)),
	}
	_, _, errno := unix.Syscall(
		unix.SYS_IOCTL,
		b.file.Fd(),
		uintptr(ioctlRDWR),
		uintptr(unsafe.Pointer(&data)),
	)
	runtime.KeepAlive(msgs)
	if errno != 0 {
		return fmt.Errorf("i2c transfer on %s to %#x: %w", b.path, msgs[0].addr, errno)
	}
	return nil
}

// readMsgs builds the register pointer write followed by the read, sent with a repeated start in between.
func readMsgs(addr uint8, reg, buf []byte) []i2cMsg {
	return []i2cMsg{
		{addr: uint16(addr), len: uint16(len(reg)), buf: unsafe.Pointer(&reg[0])},
		{addr: uint16(addr), flags: flagRead, len: uint16(len(buf)), buf: unsafe.Pointer(&buf[0])},
	}
}

// writeMsgs builds a single message whose first byte is the register pointer.
func writeMsgs(addr uint8, data []byte) []i2cMsg {
	return []i2cMsg{
		{addr: uint16(addr), len: uint16(len(data)), buf: unsafe.Pointer(&data[0])},
	}
}
