package nimbus

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// size units as they appear in rclone transfer stats. Binary suffixes are
// powers of 1024, decimal ones powers of 1000. Order matters: longer
// suffixes must be tried before their single-letter prefixes.
var sizeUnits = []struct {
	suffix     string
	multiplier float64
}{
	{"KiB", 1024},
	{"MiB", 1024 * 1024},
	{"GiB", 1024 * 1024 * 1024},
	{"TiB", 1024 * 1024 * 1024 * 1024},
	{"KB", 1000},
	{"MB", 1000 * 1000},
	{"GB", 1000 * 1000 * 1000},
	{"TB", 1000 * 1000 * 1000 * 1000},
	{"B", 1},
}

// ParseByteSize converts a human readable size like "1.50 GiB", "500MB" or
// "42B" into a byte count. Commas and spaces are stripped before parsing.
func ParseByteSize(value string) (uint64, error) {
	cleaned := strings.NewReplacer(",", "", " ", "").Replace(strings.TrimSpace(value))
	if cleaned == "" {
		return 0, errors.New("empty size value")
	}

	for _, unit := range sizeUnits {
		if !strings.HasSuffix(cleaned, unit.suffix) {
			continue
		}
		num, err := strconv.ParseFloat(strings.TrimSuffix(cleaned, unit.suffix), 64)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid size value %q", value)
		}
		if num < 0 {
			return 0, errors.Errorf("negative size value %q", value)
		}
		return uint64(num * unit.multiplier), nil
	}

	// bare number, assume bytes
	num, err := strconv.ParseUint(cleaned, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid size value %q", value)
	}
	return num, nil
}

// FormatBytes renders a byte count using binary units, the way rclone does.
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %ciB", float64(n)/float64(div), "KMGT"[exp])
}
