package core

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/emersion/go-ical"
)

const calendarProductID = "-//event-scheduler//EN"

// ErrEmptyCalendar is returned for an export with no events, which is not a
// valid VCALENDAR.
var ErrEmptyCalendar = errors.New("calendar has no events")

// WriteCalendar encodes events as an iCalendar stream. Times carry no zone
// and are written as UTC.
func WriteCalendar(w io.Writer, events []Event, stamp time.Time) error {
	if len(events) == 0 {
		return ErrEmptyCalendar
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, calendarProductID)

	for i := range events {
		event := &events[i]

		vevent := ical.NewEvent()
		vevent.Props.SetText(ical.PropUID, "event-"+strconv.Itoa(event.ID))
		vevent.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
		vevent.Props.SetDateTime(ical.PropDateTimeStart, event.Start().UTC())
		vevent.Props.SetDateTime(ical.PropDateTimeEnd, event.End().UTC())
		vevent.Props.SetText(ical.PropSummary, event.Name)

		cal.Children = append(cal.Children, vevent.Component)
	}

	err := ical.NewEncoder(w).Encode(cal)
	if err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}

	return nil
}
