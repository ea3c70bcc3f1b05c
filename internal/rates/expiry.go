package rates

import (
	"time"
)

// WeekdaysOnly is the provider's publication calendar: no new rate sets
// on Saturdays and Sundays.
func WeekdaysOnly(d time.Weekday) bool {
	return d != time.Saturday && d != time.Sunday
}

// ExpiryCalculator computes how long a freshly fetched rate set may live:
// until the provider's next publication instant (a fixed wall-clock hour in
// the provider's timezone), skipping non-business days.
type ExpiryCalculator struct {
	Location      *time.Location
	RefreshHour   int
	IsBusinessDay func(time.Weekday) bool
}

func NewExpiryCalculator(loc *time.Location, refreshHour int) ExpiryCalculator {
	return ExpiryCalculator{
		Location:      loc,
		RefreshHour:   refreshHour,
		IsBusinessDay: WeekdaysOnly,
	}
}

// NextRefreshDelay returns the strictly positive duration until the next
// publication instant after nowUTC. Exactly at the boundary counts as
// already past, so the result never collapses to zero.
func (c ExpiryCalculator) NextRefreshDelay(nowUTC time.Time) time.Duration {
	now := nowUTC.In(c.Location)

	candidate := time.Date(now.Year(), now.Month(), now.Day(), c.RefreshHour, 0, 0, 0, c.Location)
	if !now.Before(candidate) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	// Skip whole days, landing on the next business day at the same hour.
	for !c.IsBusinessDay(candidate.Weekday()) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate.Sub(now)
}
