package history

import (
	"strconv"
	"strings"
)

const cSpace = " \t\n\r\v\f"

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// leadingInt reads an optionally signed integer off the front of s after
// skipping whitespace. ok is false when s does not start with a number.
func leadingInt(s string) (n int64, rest string, ok bool) {
	trimmed := strings.TrimLeft(s, cSpace)
	end := 0
	if end < len(trimmed) && (trimmed[end] == '-' || trimmed[end] == '+') {
		end++
	}
	digits := end
	for end < len(trimmed) && isDigit(trimmed[end]) {
		end++
	}
	if end == digits {
		return 0, s, false
	}
	n, err := strconv.ParseInt(trimmed[:end], 10, 64)
	if err != nil {
		return 0, s, false
	}
	return n, trimmed[end:], true
}

// ParseSeconds converts a remaining time such as "1 day 2 hours" or
// "45 min 3 sec" into seconds. Blank text and text starting with "--"
// yield 1, text containing "ended" yields 0 and an unknown unit yields -1.
func ParseSeconds(text string) int64 {
	s := strings.TrimLeft(text, cSpace)
	if s == "" || strings.HasPrefix(s, "--") {
		return 1
	}
	if strings.Contains(s, "ended") {
		return 0
	}

	var accum int64
	for s != "" {
		num, rest, _ := leadingInt(s)
		s = strings.TrimLeft(rest, cSpace)
		switch {
		// seconds are always the last unit shown
		case strings.HasPrefix(s, "sec"):
			return accum + num
		case strings.HasPrefix(s, "min"):
			accum += num * 60
		case strings.HasPrefix(s, "hour"):
			accum += num * 3600
		case strings.HasPrefix(s, "day"):
			accum += num * 86400
		default:
			return -1
		}
		s = strings.TrimLeftFunc(s, func(r rune) bool {
			return r < '0' || r > '9'
		})
	}
	return accum
}
