package core

import "time"

const (
	TimeDateLayout = "2006-01-02 15:04"
	DateLayout     = "2006-01-02"
	MinutesPerDay  = 24 * 60
)

// Event is a single scheduled occurrence. The identifier is fixed at
// construction; the remaining fields are validated on every set.
type Event struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	TimeDate string `json:"time_date"`
	Duration int    `json:"duration"`

	start time.Time
}

func (e *Event) SetName(name string) error {
	err := validateName(name)
	if err != nil {
		return err
	}

	e.Name = name

	return nil
}

func (e *Event) SetTimeDate(timeDate string) error {
	start, err := parseTimeDate(timeDate)
	if err != nil {
		return err
	}

	e.TimeDate = timeDate
	e.start = start

	return nil
}

func (e *Event) SetDuration(duration int) error {
	err := validateDuration(duration)
	if err != nil {
		return err
	}

	e.Duration = duration

	return nil
}

// Start is the instant the event begins. Events carry no timezone; all
// instants are expressed in UTC.
func (e *Event) Start() time.Time {
	return e.start
}

// End is Start plus the duration, rolled over into the next day, month or
// year as needed.
func (e *Event) End() time.Time {
	return e.start.Add(time.Duration(e.Duration) * time.Minute)
}

func (e *Event) Date() string {
	return e.start.Format(DateLayout)
}

func (e *Event) StartMinute() int {
	return e.start.Hour()*60 + e.start.Minute()
}

// EndMinute is the minute-of-day of End, so an event that crosses midnight
// reports an EndMinute smaller than its StartMinute.
func (e *Event) EndMinute() int {
	end := e.End()
	return end.Hour()*60 + end.Minute()
}

// Overlaps reports whether the half-open intervals of both events intersect.
// Touching boundaries do not overlap.
func (e *Event) Overlaps(other *Event) bool {
	return e.start.Before(other.End()) && other.start.Before(e.End())
}

func (e *Event) clone() Event {
	return *e
}

// FreeSlot is a gap of the day window with no scheduled event, in HH:MM form.
type FreeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}
