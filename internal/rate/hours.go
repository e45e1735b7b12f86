package rate

import "strings"

// hoursPerTimeUnit converts billing time units to hours. A week is 192 hours
// and a month 30 days; existing rates were published with these figures.
var hoursPerTimeUnit = map[string]int64{
	"HOUR":  1,
	"DAY":   24,
	"WEEK":  192,
	"MONTH": 720,
	"YEAR":  8760,
}

// HoursPer returns the number of hours in a billing time unit. Matching is
// case-insensitive.
func HoursPer(timeUnit string) (int64, bool) {
	h, ok := hoursPerTimeUnit[strings.ToUpper(strings.TrimSpace(timeUnit))]
	return h, ok
}
