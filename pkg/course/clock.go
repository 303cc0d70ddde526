package course

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/entrhq/autostudy/pkg/logging"
)

// maxClockSeconds is the longest clock that fits in a time.Duration.
const maxClockSeconds = math.MaxInt64 / int64(time.Second)

// ParseClock converts page clock text to a duration. It accepts "MM:SS"
// (minutes may exceed 59) and "HH:MM:SS". Clocks too long for a
// time.Duration are rejected.
func ParseClock(s string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid clock %q: want MM:SS", s)
	}

	var total int64
	for i, part := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid clock %q: %w", s, err)
		}
		if n < 0 {
			return 0, fmt.Errorf("invalid clock %q: negative component", s)
		}
		// every component after the first is base 60
		if i > 0 && n > 59 {
			return 0, fmt.Errorf("invalid clock %q: component %d out of range", s, n)
		}
		if n > maxClockSeconds || total > (maxClockSeconds-n)/60 {
			return 0, fmt.Errorf("invalid clock %q: too long", s)
		}
		total = total*60 + n
	}

	return time.Duration(total) * time.Second, nil
}

// Calculator converts study clock pairs into a completion percentage.
type Calculator struct {
	logger *logging.Logger
}

// NewCalculator creates a calculator that reports malformed input to logger.
func NewCalculator(logger *logging.Logger) *Calculator {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Calculator{logger: logger}
}

// Percent returns round(100 * studied / total). A zero total or malformed
// text yields 0. The result is not capped at 100.
func (c *Calculator) Percent(studied, total string) int {
	s, err := ParseClock(studied)
	if err != nil {
		c.logger.Debugf("progress calculation failed: %v", err)
		return 0
	}
	t, err := ParseClock(total)
	if err != nil {
		c.logger.Debugf("progress calculation failed: %v", err)
		return 0
	}
	if t == 0 {
		return 0
	}

	return int(math.Round(100 * float64(s) / float64(t)))
}

// Percent is Calculator.Percent without logging.
func Percent(studied, total string) int {
	return (&Calculator{logger: logging.Discard()}).Percent(studied, total)
}
