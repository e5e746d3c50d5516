package ds3231

import (
	"errors"
	"fmt"
)

var (
	// ErrStaleClock is returned when the chip reports that its oscillator stopped since the flag was last cleared.
	// The time in the registers must not be trusted until the clock is set and the flag cleared.
	ErrStaleClock = errors.New("ds3231: oscillator stopped, time is not valid")

	// ErrInvalidBaseCentury is returned by Configure for a base century other than 19, 20 or 21.
	ErrInvalidBaseCentury = errors.New("ds3231: base century must be 19, 20 or 21")
)

// RangeError reports a date/time field that cannot be represented in the register format, either when encoding a
// caller's value or when a decoded register holds a value outside the field's domain.
type RangeError struct {
	Field    string
	Value    int
	Min, Max int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("ds3231: %s %d out of range [%d, %d]", e.Field, e.Value, e.Min, e.Max)
}

// CorruptDataError reports a register whose BCD digits are not decimal. It indicates a read glitch or a value that
// was not written by this driver.
type CorruptDataError struct {
	Register uint8
	Value    uint8
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("ds3231: register 0x%02X holds invalid BCD 0x%02X", e.Register, e.Value)
}

// TransportError wraps a failed bus transaction.
type TransportError struct {
	Op       string // "read" or "write"
	Register uint8
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ds3231: i2c %s at register 0x%02X: %v", e.Op, e.Register, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func checkRange(field string, v, min, max int) error {
	if v < min || v > max {
		return &RangeError{Field: field, Value: v, Min: min, Max: max}
	}
	return nil
}
