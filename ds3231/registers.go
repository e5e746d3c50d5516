package ds3231

const (
	Address = 0x68 // I2C address for DS3231

	Seconds = 0x00 // Time registers starting with seconds
	Minutes = 0x01
	Hours   = 0x02
	Day     = 0x03 // Day of week, 1-7
	Date    = 0x04
	Month   = 0x05 // Month, century bit in bit 7
	Year    = 0x06
	Control = 0x0E // Control register
	Status  = 0x0F // Control/status register, oscillator stop flag in bit 7
)

const (
	// timeRegisters is the length of the register image starting at Seconds.
	timeRegisters = 7

	flagCentury = 0b1000_0000 // Month register
	flag12Hour  = 0b0100_0000 // Hours register
	flagPM      = 0b0010_0000 // Hours register, 12-hour mode only
	flagOSF     = 0b1000_0000 // Status register

	maskMonth  = 0b0111_1111
	mask24Hour = 0b0011_1111
	mask12Hour = 0b0001_1111
)
