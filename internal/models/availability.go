package models

import (
	"fmt"
	"time"
)

// AvailabilityWindow is a recurring weekly open interval for a resource.
// Times are wall-clock "HH:MM" strings local to the resource's timezone;
// StartTime must sort strictly before EndTime.
type AvailabilityWindow struct {
	ID         string    `db:"id" json:"id"`
	ResourceID string    `db:"resource_id" json:"resource_id"`
	DayOfWeek  int       `db:"day_of_week" json:"day_of_week"`
	StartTime  string    `db:"start_time" json:"start_time"`
	EndTime    string    `db:"end_time" json:"end_time"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// AvailabilityException overrides the recurring windows for a single date:
// either the whole day is blocked, or a single custom interval replaces them.
// A row with IsBlocked false and no custom times is treated as no override.
type AvailabilityException struct {
	ID          string    `db:"id" json:"id"`
	ResourceID  string    `db:"resource_id" json:"resource_id"`
	Date        time.Time `db:"date" json:"date"`
	IsBlocked   bool      `db:"is_blocked" json:"is_blocked"`
	CustomStart *string   `db:"custom_start" json:"custom_start,omitempty"`
	CustomEnd   *string   `db:"custom_end" json:"custom_end,omitempty"`
	Reason      string    `db:"reason" json:"reason"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// HasCustomHours reports whether the exception carries a usable custom interval.
func (e *AvailabilityException) HasCustomHours() bool {
	return e != nil && e.CustomStart != nil && *e.CustomStart != "" && e.CustomEnd != nil && *e.CustomEnd != ""
}

// ParseClock converts an "HH:MM" wall-clock string into minutes from midnight.
func ParseClock(value string) (int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", value, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ClockOnDate anchors an "HH:MM" wall-clock string onto a calendar date in
// the given location.
func ClockOnDate(value string, date time.Time, loc *time.Location) (time.Time, error) {
	minutes, err := ParseClock(value)
	if err != nil {
		return time.Time{}, err
	}
	year, month, day := date.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, loc).Add(time.Duration(minutes) * time.Minute), nil
}
