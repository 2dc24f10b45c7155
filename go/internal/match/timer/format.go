package timer

import "fmt"

// Format renders milliseconds as "M:SS.D": whole minutes without padding, seconds padded to
// two digits and a single tenths digit. Every part is truncated, never rounded.
func Format(millis int64) string {
	if millis < 0 {
		millis = 0
	}
	minutes := millis / 60_000
	seconds := (millis / 1000) % 60
	tenths := (millis / 100) % 10
	return fmt.Sprintf("%d:%02d.%d", minutes, seconds, tenths)
}
