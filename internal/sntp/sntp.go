// Package sntp queries the time from an NTP server with a single SNTP (RFC 4330) request.
package sntp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

const (
	packetSize = 48

	// seconds between the NTP epoch (1900) and the Unix epoch (1970)
	seventyYears = 2208988800

	modeClient = 3
	modeServer = 4
)

// Query sends one request to server (host or host:port, port 123 by default) and returns the server's transmit time.
// It gives up after timeout or when ctx is done, whichever comes first.
func Query(ctx context.Context, server string, timeout time.Duration) (time.Time, error) {
	addr := server
	if _, _, err := net.SplitHostPort(server); err != nil {
		addr = net.JoinHostPort(server, "123")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", addr)
	if err != nil {
		return time.Time{}, fmt.Errorf("dial ntp server: %w", err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return time.Time{}, err
		}
	}

	if _, err := conn.Write(request()); err != nil {
		return time.Time{}, fmt.Errorf("send ntp request: %w", err)
	}

	b := make([]byte, packetSize)
	for {
		n, err := conn.Read(b)
		if err != nil {
			return time.Time{}, fmt.Errorf("read ntp response: %w", err)
		}
		if n < packetSize {
			// not an NTP packet, keep waiting
			continue
		}
		return parse(b[:n])
	}
}

func request() []byte {
	b := make([]byte, packetSize)
	b[0] = 0b00_100_000 | modeClient // LI 0, version 4, mode
	return b
}

// parse extracts the transmit timestamp from a server response.
func parse(b []byte) (time.Time, error) {
	if len(b) < packetSize {
		return time.Time{}, fmt.Errorf("expected NTP packet size of %d: %d", packetSize, len(b))
	}
	if mode := b[0] & 0x07; mode != modeServer {
		return time.Time{}, fmt.Errorf("unexpected ntp mode %d", mode)
	}
	if b[1] == 0 {
		return time.Time{}, errors.New("ntp server sent kiss-o'-death")
	}
	// the transmit timestamp starts at byte 40: 32 bits of seconds since 1900, then 32 bits of fraction
	secs := uint32(b[40])<<24 | uint32(b[41])<<16 | uint32(b[42])<<8 | uint32(b[43])
	frac := uint32(b[44])<<24 | uint32(b[45])<<16 | uint32(b[46])<<8 | uint32(b[47])
	if secs == 0 {
		return time.Time{}, errors.New("ntp response has no transmit time")
	}
	nsec := (int64(frac) * int64(time.Second)) >> 32
	return time.Unix(int64(secs)-seventyYears, nsec).UTC(), nil
}
