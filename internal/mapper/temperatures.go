package mapper

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"idm_bridge/internal/types"
)

// numericPrefix matches the longest leading decimal literal, like parseFloat does.
var numericPrefix = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// ParseFloat converts a vendor numeric string to float64.
// Leading whitespace is skipped and trailing units are ignored ("45.2 °C" is 45.2).
// Input without a numeric prefix yields NaN rather than zero.
func ParseFloat(s string) float64 {
	s = strings.TrimLeft(s, " \t\n\r\v\f\u00a0\ufeff")

	m := numericPrefix.FindString(s)
	if m == "" {
		return math.NaN()
	}

	switch m {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		// out of range literals still carry a sign and magnitude
		if errors.Is(err, strconv.ErrRange) {
			return f
		}
		return math.NaN()
	}
	return f
}

// ToFloat converts a raw payload value. Missing or null values yield NaN.
func ToFloat(v types.RawValue) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return ParseFloat(v.Text)
}

// ParseInstallationID returns the id as int64 when it is numeric.
// Non-numeric ids are returned as their raw string.
func ParseInstallationID(id string) any {
	if n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64); err == nil {
		return n
	}
	return id
}
