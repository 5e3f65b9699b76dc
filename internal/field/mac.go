package field

import (
	"errors"
	"fmt"
)

// ErrMACFormat is returned by ParseMAC for inputs that are not a valid
// 12-hex-digit or 17-character delimited MAC address.
var ErrMACFormat = errors.New("invalid MAC address format")

// ParseMAC parses a MAC address string into 6 raw bytes.
//
// Two input forms are accepted:
//
//	aabbccddeeff        (12 hex digits, no delimiters)
//	aa:bb:cc:dd:ee:ff   (17 characters, ':' or '-' delimited)
//
// Any non-hex character rejects the input.
func ParseMAC(s string) ([6]byte, error) {
	var mac [6]byte

	switch len(s) {
	case 12:
		for i := 0; i < 6; i++ {
			hi, ok1 := hexNibble(s[i*2])
			lo, ok2 := hexNibble(s[i*2+1])
			if !ok1 || !ok2 {
				return mac, ErrMACFormat
			}
			mac[i] = hi<<4 | lo
		}
		return mac, nil

	case 17:
		delim := s[2]
		if delim != ':' && delim != '-' {
			return mac, ErrMACFormat
		}
		for i := 0; i < 6; i++ {
			pos := i * 3
			hi, ok1 := hexNibble(s[pos])
			lo, ok2 := hexNibble(s[pos+1])
			if !ok1 || !ok2 {
				return mac, ErrMACFormat
			}
			mac[i] = hi<<4 | lo
			if i < 5 && s[pos+2] != delim {
				return mac, ErrMACFormat
			}
		}
		return mac, nil
	}

	return mac, ErrMACFormat
}

// FormatMAC renders 6 raw bytes as a lowercase colon-delimited MAC string.
func FormatMAC(mac [6]byte) string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x",
		mac[0], mac[1], mac[2], mac[3], mac[4], mac[5])
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
