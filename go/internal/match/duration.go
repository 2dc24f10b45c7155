package match

import (
	"strconv"
	"strings"
	"time"
)

// ParseDurationAnswer validates a prompt answer as a positive whole number of seconds.
// Empty, non-numeric, zero and negative answers are rejected.
func ParseDurationAnswer(answer string) (time.Duration, bool) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return 0, false
	}

	secs, err := strconv.Atoi(answer)
	if err != nil || secs <= 0 {
		return 0, false
	}
	// guard against overflowing time.Duration
	if secs > int(time.Duration(1<<62)/time.Second) {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}
