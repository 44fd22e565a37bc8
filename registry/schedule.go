package registry

import (
	"fmt"
	"time"

	"tripkit/trip"
)

// maxScheduleDays caps schedule generation so a typo'd end date a decade
// out cannot balloon the document.
const maxScheduleDays = 60

// GenerateSchedule builds an empty itinerary skeleton from a trip's date
// range: one ScheduleDay per calendar day, inclusive of both endpoints.
// Dates must be "2006-01-02"; an unparseable or inverted range is an error
// (callers log it and skip generation — trip creation itself still
// succeeds).
func GenerateSchedule(startDate, endDate string) ([]trip.ScheduleDay, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", endDate, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s is before start date %s", endDate, startDate)
	}

	var days []trip.ScheduleDay
	for d, i := start, 1; !d.After(end) && i <= maxScheduleDays; d, i = d.AddDate(0, 0, 1), i+1 {
		days = append(days, trip.ScheduleDay{
			Day:    fmt.Sprintf("Day %d", i),
			Date:   fmt.Sprintf("%d/%d", d.Month(), d.Day()),
			Events: []trip.ScheduleEvent{},
		})
	}
	return days, nil
}
