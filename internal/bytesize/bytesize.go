// Package bytesize parses and prints human-readable byte quantities used in
// configuration, such as "512Mi" or "2GB".
package bytesize

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ByteSize is a size in bytes.
//
// Accepted input: a plain number, or a number followed by a binary unit
// (Ki, Mi, Gi, Ti, optionally with a trailing B) or a decimal unit (K, M, G,
// T, optionally with a trailing B). Units are case-insensitive.
type ByteSize uint64

const (
	B  ByteSize = 1
	KB ByteSize = 1000
	MB ByteSize = 1000 * KB
	GB ByteSize = 1000 * MB
	TB ByteSize = 1000 * GB

	KiB ByteSize = 1024
	MiB ByteSize = 1024 * KiB
	GiB ByteSize = 1024 * MiB
	TiB ByteSize = 1024 * GiB
)

var units = map[string]ByteSize{
	"": B, "b": B,
	"k": KB, "kb": KB,
	"m": MB, "mb": MB,
	"g": GB, "gb": GB,
	"t": TB, "tb": TB,
	"ki": KiB, "kib": KiB,
	"mi": MiB, "mib": MiB,
	"gi": GiB, "gib": GiB,
	"ti": TiB, "tib": TiB,
}

// Parse converts s into a ByteSize.
func Parse(s string) (ByteSize, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	split := strings.IndexFunc(trimmed, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})
	numPart, unitPart := trimmed, ""
	if split >= 0 {
		numPart, unitPart = trimmed[:split], strings.TrimSpace(trimmed[split:])
	}
	if numPart == "" {
		return 0, fmt.Errorf("invalid byte size %q", s)
	}

	mult, ok := units[strings.ToLower(unitPart)]
	if !ok {
		return 0, fmt.Errorf("unknown byte size unit %q in %q", unitPart, s)
	}

	if !strings.Contains(numPart, ".") {
		n, err := strconv.ParseUint(numPart, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
		}
		return ByteSize(n) * mult, nil
	}

	f, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}
	return ByteSize(f * float64(mult)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, which lets viper and
// mapstructure decode ByteSize fields from strings.
func (b *ByteSize) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (b ByteSize) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// MarshalYAML writes the human-readable form so saved configs round-trip.
func (b ByteSize) MarshalYAML() (any, error) {
	return b.String(), nil
}

// String prints b with the largest binary unit that divides it exactly,
// falling back to a two-decimal approximation.
func (b ByteSize) String() string {
	steps := []struct {
		unit ByteSize
		name string
	}{
		{TiB, "Ti"}, {GiB, "Gi"}, {MiB, "Mi"}, {KiB, "Ki"},
	}
	for _, s := range steps {
		if b >= s.unit && b%s.unit == 0 {
			return fmt.Sprintf("%d%s", b/s.unit, s.name)
		}
	}
	for _, s := range steps {
		if b >= s.unit {
			return fmt.Sprintf("%.2f%s", float64(b)/float64(s.unit), s.name)
		}
	}
	return strconv.FormatUint(uint64(b), 10)
}

// Int64 returns b as an int64.
func (b ByteSize) Int64() int64 {
	return int64(b)
}
