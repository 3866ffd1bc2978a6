// Package timeframe resolves symbolic reporting periods into concrete time
// ranges and their bucketing scheme.
package timeframe

import (
	"fmt"
	"strconv"
	"time"
)

// Period is a symbolic reporting period for the visit series.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

var monthLabels = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// InvalidPeriodError is returned when a period string is not one of
// day, month or year.
type InvalidPeriodError struct {
	Value string
}

func (e *InvalidPeriodError) Error() string {
	return fmt.Sprintf("invalid period: %q (must be day, month or year)", e.Value)
}

// ParsePeriod validates a period string against the closed set of periods.
// Callers must parse before resolving; Resolve has no fallback.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodDay, PeriodMonth, PeriodYear:
		return Period(s), nil
	default:
		return "", &InvalidPeriodError{Value: s}
	}
}

// Timeframe is a resolved [Start, End] range with its bucketing scheme.
// Start and End carry the location used for both range computation and
// bucket-key extraction, so an event lands in the bucket matching the same
// local-time interpretation that produced the range.
type Timeframe struct {
	Period Period
	Start  time.Time
	End    time.Time
}

// Resolve maps a period to its concrete range relative to now:
//
//	day   -> [midnight of now's day, now], 24 hourly buckets "00".."23"
//	month -> [first of the month, now], one bucket per day "1".."N"
//	year  -> [Jan 1, now], 12 monthly buckets "Jan".."Dec"
//
// All boundaries use now's location. Not zone-aware per visitor.
func Resolve(period Period, now time.Time) (Timeframe, error) {
	loc := now.Location()
	year, month, day := now.Date()

	var start time.Time
	switch period {
	case PeriodDay:
		start = time.Date(year, month, day, 0, 0, 0, 0, loc)
	case PeriodMonth:
		start = time.Date(year, month, 1, 0, 0, 0, 0, loc)
	case PeriodYear:
		start = time.Date(year, 1, 1, 0, 0, 0, 0, loc)
	default:
		return Timeframe{}, &InvalidPeriodError{Value: string(period)}
	}

	return Timeframe{Period: period, Start: start, End: now}, nil
}

// BucketCount returns the fixed number of buckets for the timeframe,
// independent of how many events fall into them.
func (tf Timeframe) BucketCount() int {
	switch tf.Period {
	case PeriodDay:
		return 24
	case PeriodMonth:
		return daysInMonth(tf.Start)
	default:
		return 12
	}
}

// BucketLabels returns the ordered bucket labels: hours zero-padded to two
// digits, days of month as plain numbers, months as short names.
func (tf Timeframe) BucketLabels() []string {
	labels := make([]string, tf.BucketCount())
	switch tf.Period {
	case PeriodDay:
		for h := range labels {
			labels[h] = fmt.Sprintf("%02d", h)
		}
	case PeriodMonth:
		for d := range labels {
			labels[d] = strconv.Itoa(d + 1)
		}
	default:
		copy(labels, monthLabels[:])
	}
	return labels
}

// BucketIndex returns the bucket position for a timestamp, interpreting it in
// the timeframe's location. Returns -1 when the computed key falls outside
// the bucket set; callers drop such events rather than failing.
func (tf Timeframe) BucketIndex(t time.Time) int {
	local := t.In(tf.Start.Location())

	var idx int
	switch tf.Period {
	case PeriodDay:
		idx = local.Hour()
	case PeriodMonth:
		idx = local.Day() - 1
	default:
		idx = int(local.Month()) - 1
	}

	if idx < 0 || idx >= tf.BucketCount() {
		return -1
	}
	return idx
}

// LookbackRange maps the legacy dashboard's relative range selector
// (24h, 7d, 30d, 90d) to a concrete [start, end] window ending at now.
func LookbackRange(period string, now time.Time) (time.Time, time.Time, error) {
	switch period {
	case "24h":
		return now.Add(-24 * time.Hour), now, nil
	case "7d":
		return now.AddDate(0, 0, -7), now, nil
	case "30d":
		return now.AddDate(0, 0, -30), now, nil
	case "90d":
		return now.AddDate(0, 0, -90), now, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("invalid range: %q (must be 24h, 7d, 30d or 90d)", period)
	}
}

func daysInMonth(t time.Time) int {
	year, month, _ := t.Date()
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
