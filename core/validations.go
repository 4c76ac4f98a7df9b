package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NewEvent validates the fields and only then draws an identifier, so a
// rejected event never consumes one.
func NewEvent(ids IDGenerator, name string, timeDate string, duration int) (*Event, error) {
	var event Event

	err := ValidateEvent(name, timeDate, duration)
	if err != nil {
		return nil, err
	}

	_ = event.SetName(name)
	_ = event.SetTimeDate(timeDate)
	_ = event.SetDuration(duration)

	event.ID, err = ids.Next()
	if err != nil {
		return nil, err
	}

	return &event, nil
}

func ValidateEvent(name string, timeDate string, duration int) error {
	err := validateName(name)
	if err != nil {
		return err
	}

	_, err = parseTimeDate(timeDate)
	if err != nil {
		return err
	}

	return validateDuration(duration)
}

func validateName(name string) error {
	if len(strings.TrimSpace(name)) == 0 {
		return fmt.Errorf("%w: name is required", ErrInvalidEvent)
	}

	return nil
}

func validateDuration(duration int) error {
	if duration <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidEvent)
	}

	return nil
}

// parseTimeDate accepts exactly 'YYYY-MM-DD HH:MM'. time.Parse rejects
// out-of-range months, hours and minutes and days past the end of the month,
// including February 29 outside leap years.
func parseTimeDate(timeDate string) (time.Time, error) {
	if len(timeDate) != len(TimeDateLayout) {
		return time.Time{}, fmt.Errorf("%w: time_date %q must use 'YYYY-MM-DD HH:MM'", ErrInvalidEvent, timeDate)
	}

	start, err := time.Parse(TimeDateLayout, timeDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time_date %q: %w", ErrInvalidEvent, timeDate, err)
	}

	return start, nil
}

func parseDate(date string) (time.Time, error) {
	if len(date) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("%w: date %q must use 'YYYY-MM-DD'", ErrInvalidQuery, date)
	}

	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q: %w", ErrInvalidQuery, date, err)
	}

	return day, nil
}

// parseClock turns 'HH:MM' into minutes since midnight. 24:00 is accepted as
// the end of the day.
func parseClock(clock string) (int, error) {
	hh, mm, ok := strings.Cut(clock, ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, fmt.Errorf("%w: time %q must use 'HH:MM'", ErrInvalidQuery, clock)
	}

	hour, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("%w: time %q: %w", ErrInvalidQuery, clock, err)
	}

	minute, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("%w: time %q: %w", ErrInvalidQuery, clock, err)
	}

	if hour < 0 || minute < 0 || minute > 59 || hour > 24 || (hour == 24 && minute != 0) {
		return 0, fmt.Errorf("%w: time %q out of range", ErrInvalidQuery, clock)
	}

	return hour*60 + minute, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
