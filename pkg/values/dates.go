package values

import "time"

// Canonical output formats.
const (
	isoDate     = "2006-01-02"
	isoDateTime = "2006-01-02T15:04:05"
	isoTime     = "15:04:05"
)

// calendarLayouts are the accepted source date formats, tried in order.
// ISO forms come first; the fractional layout matches event dates as the
// server returns them.
var calendarLayouts = []string{
	isoDate,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	isoDateTime,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02 Jan 2006",
}

// clockLayouts are the accepted time-of-day formats.
var clockLayouts = []string{
	isoTime,
	"15:04",
	"3:04 PM",
}

func parseCalendar(raw string) (time.Time, bool) {
	for _, layout := range calendarLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseClock(raw string) (time.Time, bool) {
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Date parses a raw calendar value and returns it as an ISO date
// (YYYY-MM-DD). The second return is false when the value does not parse.
func Date(raw string) (string, bool) {
	t, ok := parseCalendar(raw)
	if !ok {
		return "", false
	}
	return t.Format(isoDate), true
}

// DateOnly reduces a date or datetime string to its ISO date part, used when
// comparing event dates that may carry time components. Unparseable input is
// returned unchanged so comparisons stay exact rather than silently loose.
func DateOnly(raw string) string {
	if d, ok := Date(raw); ok {
		return d
	}
	return raw
}
