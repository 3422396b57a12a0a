package crawl

import "fmt"

// FormatBytes renders n with a binary unit, using one decimal from a
// kilobyte up.
func FormatBytes(n int) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	v := float64(n)
	var unit string
	for _, unit = range []string{"KB", "MB", "GB"} {
		v /= 1024
		if v < 1024 {
			break
		}
	}
	return fmt.Sprintf("%.1f %s", v, unit)
}
