package instant

import (
	"regexp"
	"strconv"
	"strings"
)

const defaultTimerSeconds = 300

var timerPairPattern = regexp.MustCompile(`(?i)(\d+)\s*(h|hr|hrs|hour|hours|m|min|mins|minute|minutes|s|sec|secs|second|seconds)\b`)

func unitSeconds(unit string) int {
	switch strings.ToLower(unit) {
	case "h", "hr", "hrs", "hour", "hours":
		return 3600
	case "m", "min", "mins", "minute", "minutes":
		return 60
	default:
		return 1
	}
}

// EvaluateTimer sums every "N UNIT" pair found in query into total
// seconds. Bare "timer"/"stopwatch" defaults to 300s.
func EvaluateTimer(query string) Answer {
	trimmed := strings.ToLower(strings.TrimSpace(query))
	if trimmed == "timer" || trimmed == "stopwatch" {
		return Answer{Kind: KindTimer, Value: strconv.Itoa(defaultTimerSeconds)}
	}

	matches := timerPairPattern.FindAllStringSubmatch(query, -1)

	total := 0

	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		total += n * unitSeconds(m[2])
	}

	if total == 0 {
		total = defaultTimerSeconds
	}

	return Answer{Kind: KindTimer, Value: strconv.Itoa(total)}
}
