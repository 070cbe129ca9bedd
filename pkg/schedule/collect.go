package schedule

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Day is one queried offset and its calendar date.
type Day struct {
	Offset int
	Date   string
}

// Days lists the offsets 0..days counted from now in the given location.
func Days(now time.Time, loc *time.Location, days int) []Day {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)

	out := make([]Day, 0, days+1)
	for offset := 0; offset <= days; offset++ {
		out = append(out, Day{
			Offset: offset,
			Date:   local.AddDate(0, 0, offset).Format(DateLayout),
		})
	}
	return out
}

// Collect queries source once per day and returns the union of the events in
// offset order. A failed day contributes no events and is logged.
func Collect(ctx context.Context, source Source, days []Day, loc *time.Location, logger *logrus.Logger) []Event {
	if source == nil {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	var all []Event
	for _, day := range days {
		date, err := time.ParseInLocation(DateLayout, day.Date, loc)
		if err != nil {
			continue
		}

		events, err := source.EventsOn(ctx, date)
		if err != nil {
			logger.WithError(err).WithField("date", day.Date).Warn("Failed to fetch match schedule")
			continue
		}

		for _, e := range events {
			e.DayOffset = day.Offset
			e.Date = day.Date
			all = append(all, e)
		}

		logger.WithFields(logrus.Fields{
			"date":   day.Date,
			"offset": day.Offset,
			"events": len(events),
		}).Debug("Fetched match schedule")
	}

	return all
}
