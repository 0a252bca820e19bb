package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var sizePattern = regexp.MustCompile(`^([\d.]+)\s*([A-Z]+)?`)

// Size converts a display size such as "1.2 GiB", "500 MB" or "3.4G" into a
// byte count. Binary-prefix units (TiB/GiB/MiB/KiB) are 1024-based while the
// bare letter units (T/G/M/K, including MB/GB) are 1000-based; the upstream
// sites mix both conventions and the split is kept on purpose. Matching is
// by substring containment in the declared order. Unparseable input yields
// 0, never an error.
func Size(raw string) int64 {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0
	}

	m := sizePattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	number, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	unit := m[2]

	switch {
	case strings.Contains(unit, "TIB"):
		return int64(number * 1024 * 1024 * 1024 * 1024)
	case strings.Contains(unit, "GIB"):
		return int64(number * 1024 * 1024 * 1024)
	case strings.Contains(unit, "MIB"):
		return int64(number * 1024 * 1024)
	case strings.Contains(unit, "KIB"):
		return int64(number * 1024)
	case strings.Contains(unit, "G"):
		return int64(number * 1000 * 1000 * 1000)
	case strings.Contains(unit, "M"):
		return int64(number * 1000 * 1000)
	case strings.Contains(unit, "K"):
		return int64(number * 1000)
	}
	return int64(number)
}
