// Package usage describes language model token consumption reports.
package usage

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/learnscout/internal/domain"
)

// Period is the aggregation granularity.
type Period string

// Aggregation period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod validates a period name. Empty means day.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "", PeriodDay:
		return PeriodDay, nil
	case PeriodMonth:
		return PeriodMonth, nil
	}
	return "", fmt.Errorf("period %q: %w", s, domain.ErrInvalidQuery)
}

// Bounds returns the UTC period containing now, end exclusive.
func (p Period) Bounds(now time.Time) (start, end time.Time) {
	now = now.UTC()
	if p == PeriodMonth {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	}
	start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// Report is the token budget state of one provider for a period.
type Report struct {
	provider  string
	period    Period
	start     time.Time
	end       time.Time
	limit     int64
	used      int64
	remaining int64
}

// NewReport creates a usage report. A zero limit is unlimited and remaining is -1.
func NewReport(provider string, period Period, start, end time.Time, limit, used, remaining int64) Report {
	return Report{
		provider:  provider,
		period:    period,
		start:     start,
		end:       end,
		limit:     limit,
		used:      used,
		remaining: remaining,
	}
}

// Provider returns the language model provider name.
func (r Report) Provider() string { return r.provider }

// Period returns the aggregation granularity.
func (r Report) Period() Period { return r.period }

// Start returns the period start.
func (r Report) Start() time.Time { return r.start }

// End returns the period end, which is also when the budget resets.
func (r Report) End() time.Time { return r.end }

// Limit returns the token limit (0 = unlimited).
func (r Report) Limit() int64 { return r.limit }

// Used returns tokens consumed in the period.
func (r Report) Used() int64 { return r.used }

// Remaining returns tokens left (-1 = unlimited).
func (r Report) Remaining() int64 { return r.remaining }

// Exhausted reports whether a limited budget has no tokens left.
func (r Report) Exhausted() bool { return r.limit > 0 && r.remaining <= 0 }
