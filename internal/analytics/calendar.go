package analytics

import "time"

// Calendar fixes the time zone and week start used for bucketing. Buckets
// follow the user's local calendar, never UTC.
type Calendar struct {
	Location     *time.Location
	FirstWeekday time.Weekday
}

func DefaultCalendar() Calendar {
	return Calendar{Location: time.Local, FirstWeekday: time.Sunday}
}

func (c Calendar) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

func (c Calendar) StartOfDay(t time.Time) time.Time {
	t = t.In(c.location())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.location())
}

func (c Calendar) StartOfWeek(t time.Time) time.Time {
	day := c.StartOfDay(t)
	offset := (int(day.Weekday()) - int(c.FirstWeekday) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

func (c Calendar) StartOfMonth(t time.Time) time.Time {
	t = t.In(c.location())
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, c.location())
}

func (c Calendar) StartOfYear(t time.Time) time.Time {
	t = t.In(c.location())
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, c.location())
}
