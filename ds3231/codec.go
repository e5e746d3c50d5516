package ds3231

import "time"

// HourMode selects the format of the hours register when writing the time. Reads accept either format.
type HourMode uint8

const (
	Hour24 HourMode = iota
	Hour12
)

func (m HourMode) String() string {
	if m == Hour12 {
		return "12h"
	}
	return "24h"
}

// Registers is the image of the seven time registers, Seconds through Year, in register order.
type Registers [timeRegisters]byte

// Encode packs dt into the register image. Years are stored as two BCD digits relative to baseYear, with the century
// bit of the month register selecting baseYear+100, so dt must fall within baseYear to baseYear+199.
func Encode(dt DateTime, baseYear int, mode HourMode) (Registers, error) {
	var r Registers
	var err error
	if r[Seconds], err = packSeconds(dt.second); err != nil {
		return Registers{}, err
	}
	if r[Minutes], err = packMinutes(dt.minute); err != nil {
		return Registers{}, err
	}
	if r[Hours], err = packHours(dt.hour, mode); err != nil {
		return Registers{}, err
	}
	if r[Day], err = packWeekday(dt.weekday); err != nil {
		return Registers{}, err
	}
	if r[Date], err = packDate(dt.day); err != nil {
		return Registers{}, err
	}
	year, century, err := packYear(dt.year, baseYear)
	if err != nil {
		return Registers{}, err
	}
	if r[Month], err = packMonth(dt.month, century); err != nil {
		return Registers{}, err
	}
	r[Year] = year
	return r, nil
}

// Decode unpacks a register image read from the chip. Hours are normalized to 24-hour form whichever mode the chip
// is in.
func Decode(r Registers, baseYear int) (DateTime, error) {
	var dt DateTime
	var err error
	if dt.second, err = unpackSeconds(r[Seconds]); err != nil {
		return DateTime{}, err
	}
	if dt.minute, err = unpackMinutes(r[Minutes]); err != nil {
		return DateTime{}, err
	}
	if dt.hour, err = unpackHours(r[Hours]); err != nil {
		return DateTime{}, err
	}
	if dt.weekday, err = unpackWeekday(r[Day]); err != nil {
		return DateTime{}, err
	}
	if dt.day, err = unpackDate(r[Date]); err != nil {
		return DateTime{}, err
	}
	month, century, err := unpackMonth(r[Month])
	if err != nil {
		return DateTime{}, err
	}
	dt.month = month
	if dt.year, err = unpackYear(r[Year], century, baseYear); err != nil {
		return DateTime{}, err
	}
	return dt, nil
}

func packSeconds(s int) (byte, error) {
	if err := checkRange("second", s, 0, 59); err != nil {
		return 0, err
	}
	return decToBcd(s), nil
}

func packMinutes(m int) (byte, error) {
	if err := checkRange("minute", m, 0, 59); err != nil {
		return 0, err
	}
	return decToBcd(m), nil
}

// packHours takes an hour in 0-23. In 12-hour mode midnight is 12 AM and noon is 12 PM.
func packHours(h int, mode HourMode) (byte, error) {
	if err := checkRange("hour", h, 0, 23); err != nil {
		return 0, err
	}
	if mode != Hour12 {
		return decToBcd(h), nil
	}
	b := byte(flag12Hour)
	if h >= 12 {
		b |= flagPM
		h -= 12
	}
	if h == 0 {
		h = 12
	}
	return b | decToBcd(h), nil
}

// packWeekday stores the day of week as plain binary.
func packWeekday(w int) (byte, error) {
	if err := checkRange("weekday", w, 1, 7); err != nil {
		return 0, err
	}
	return byte(w), nil
}

func packDate(d int) (byte, error) {
	if err := checkRange("day", d, 1, 31); err != nil {
		return 0, err
	}
	return decToBcd(d), nil
}

func packMonth(m time.Month, century bool) (byte, error) {
	if err := checkRange("month", int(m), 1, 12); err != nil {
		return 0, err
	}
	b := decToBcd(int(m))
	if century {
		b |= flagCentury
	}
	return b, nil
}

// packYear returns the two-digit year register and whether the century bit must be set.
func packYear(year, baseYear int) (byte, bool, error) {
	if err := checkRange("year", year, baseYear, baseYear+199); err != nil {
		return 0, false, err
	}
	yy := year - baseYear
	century := yy >= 100
	if century {
		yy -= 100
	}
	return decToBcd(yy), century, nil
}

func unpackSeconds(b byte) (int, error) {
	return unpackBCD(Seconds, b, b, "second", 0, 59)
}

func unpackMinutes(b byte) (int, error) {
	return unpackBCD(Minutes, b, b, "minute", 0, 59)
}

func unpackHours(b byte) (int, error) {
	if b&flag12Hour == 0 {
		return unpackBCD(Hours, b, b&mask24Hour, "hour", 0, 23)
	}
	h, err := unpackBCD(Hours, b, b&mask12Hour, "hour", 1, 12)
	if err != nil {
		return 0, err
	}
	if h == 12 {
		h = 0
	}
	if b&flagPM != 0 {
		h += 12
	}
	return h, nil
}

func unpackWeekday(b byte) (int, error) {
	if !validBCD(b) {
		return 0, &CorruptDataError{Register: Day, Value: b}
	}
	w := int(b)
	if err := checkRange("weekday", w, 1, 7); err != nil {
		return 0, err
	}
	return w, nil
}

func unpackDate(b byte) (int, error) {
	return unpackBCD(Date, b, b, "day", 1, 31)
}

func unpackMonth(b byte) (time.Month, bool, error) {
	m, err := unpackBCD(Month, b, b&maskMonth, "month", 1, 12)
	if err != nil {
		return 0, false, err
	}
	return time.Month(m), b&flagCentury != 0, nil
}

func unpackYear(b byte, century bool, baseYear int) (int, error) {
	yy, err := unpackBCD(Year, b, b, "year", 0, 99)
	if err != nil {
		return 0, err
	}
	if century {
		yy += 100
	}
	return baseYear + yy, nil
}

// unpackBCD decodes the data bits v of register reg, whose raw value is raw, and checks the result against the
// field's domain.
func unpackBCD(reg uint8, raw, v byte, field string, min, max int) (int, error) {
	if !validBCD(v) {
		return 0, &CorruptDataError{Register: reg, Value: raw}
	}
	n := bcdToDec(v)
	if err := checkRange(field, n, min, max); err != nil {
		return 0, err
	}
	return n, nil
}

// decToBcd converts int to BCD
func decToBcd(dec int) uint8 {
	return uint8(dec + 6*(dec/10))
}

// bcdToDec converts BCD to int
func bcdToDec(bcd uint8) int {
	return int(bcd - 6*(bcd>>4))
}

func validBCD(b uint8) bool {
	return b&0x0F <= 9 && b>>4 <= 9
}
