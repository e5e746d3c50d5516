// Package i2cdev implements drivers.I2C on Linux hosts through the i2c-dev character devices (/dev/i2c-N).
//
// Each register access is a single I2C_RDWR ioctl, so a read is one combined transaction (register pointer write,
// repeated start, read) and a write is one transaction carrying the register pointer followed by the data. Chips that
// auto-increment their register pointer, such as the DS3231, see a multi-byte access as one atomic transfer.
//
// The kernel module must be loaded (modprobe i2c-dev) and the caller needs read-write access to the device node.
package i2cdev
