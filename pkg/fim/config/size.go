package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

var (
	// ErrInvalidSize is returned when a size string cannot be parsed.
	ErrInvalidSize = errors.New("invalid size format")

	// ErrNegativeSize is returned when a size string is negative.
	ErrNegativeSize = errors.New("size cannot be negative")
)

// ParseSize parses a size such as "10MB", "512k", or "1.5GiB" into bytes.
// Units are binary: K, KB, and KiB all mean 1024 bytes.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}
	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	n, err := humanize.ParseBytes(binaryUnits(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}
	return int64(n), nil
}

// binaryUnits rewrites K/KB/M/MB/... suffixes to their IEC spelling so that
// humanize does not read them as decimal units.
func binaryUnits(s string) string {
	lower := strings.ToLower(s)
	unit := strings.TrimLeft(lower, "0123456789. ")
	num := strings.TrimSpace(lower[:len(lower)-len(unit)])

	switch {
	case unit == "" || unit == "b":
		return num
	case strings.HasSuffix(unit, "ib"):
		return num + unit
	case len(unit) == 2 && unit[1] == 'b':
		return num + unit[:1] + "ib"
	case len(unit) == 1:
		return num + unit + "ib"
	}
	return s
}
