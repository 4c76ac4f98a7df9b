package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type Scheduler interface {
	AddEvent(ctx context.Context, event *Event) error
	CreateEvent(ctx context.Context, name string, timeDate string, duration int) (*Event, error)
	UpdateEvent(ctx context.Context, id int, name string, timeDate string, duration int) (*Event, error)
	DeleteEvent(ctx context.Context, id int) error
	FindEvent(ctx context.Context, id int) (*Event, error)
	Events(ctx context.Context) []Event
	EventsForDay(ctx context.Context, date string) ([]Event, error)
	FindOverlappingEvents(ctx context.Context, date string, start string, end string, opts ...QueryOption) ([]Event, error)
	FindFreeTimeSlots(ctx context.Context, date string) ([]FreeSlot, error)
	FindFreeTimeSlotsBetween(ctx context.Context, date string, from string, to string) ([]FreeSlot, error)
	PrintFullSchedule(w io.Writer) error
	Close() int
}

// DayWindow bounds free-slot searches, in minutes since midnight.
type DayWindow struct {
	Start int
	End   int
}

var FullDay = DayWindow{Start: 0, End: MinutesPerDay}

func ParseDayWindow(from string, to string) (DayWindow, error) {
	start, err := parseClock(from)
	if err != nil {
		return DayWindow{}, err
	}

	end, err := parseClock(to)
	if err != nil {
		return DayWindow{}, err
	}

	if end <= start {
		return DayWindow{}, fmt.Errorf("%w: window end %s must be after start %s", ErrInvalidQuery, to, from)
	}

	return DayWindow{Start: start, End: end}, nil
}

type Option func(*scheduler)

func WithIDGenerator(ids IDGenerator) Option {
	return func(s *scheduler) {
		s.ids = ids
	}
}

func WithDayWindow(window DayWindow) Option {
	return func(s *scheduler) {
		s.window = window
	}
}

func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(s *scheduler) {
		s.tracer = provider.Tracer("event-scheduler/core")
	}
}

func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(s *scheduler) {
		s.metrics = NewSchedulerMetrics(provider)
	}
}

type queryOptions struct {
	inclusive bool
}

type QueryOption func(*queryOptions)

// WithInclusiveBoundaries makes an overlap query also match events that end
// exactly when the window starts or start exactly when it ends.
func WithInclusiveBoundaries() QueryOption {
	return func(o *queryOptions) {
		o.inclusive = true
	}
}

type scheduler struct {
	store   *EventStore
	ids     IDGenerator
	window  DayWindow
	tracer  trace.Tracer
	metrics *SchedulerMetrics
}

func NewScheduler(opts ...Option) Scheduler {
	s := &scheduler{
		store:   NewEventStore(),
		ids:     NewRandomIDGenerator(DefaultMaxID),
		window:  FullDay,
		tracer:  otel.GetTracerProvider().Tracer("event-scheduler/core"),
		metrics: NewSchedulerMetrics(otel.GetMeterProvider()),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *scheduler) observe(ctx context.Context, op string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "scheduler."+op)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		span.End()
		s.metrics.Observe(ctx, op, start, err)
	}
}

// AddEvent inserts an event built by the caller. Its fields are validated
// and its identifier is reserved so generated identifiers never collide
// with it.
func (s *scheduler) AddEvent(ctx context.Context, event *Event) (err error) {
	ctx, done := s.observe(ctx, "add_event")
	defer func() { done(err) }()

	if event == nil {
		return fmt.Errorf("%w: nil event", ErrInvalidEvent)
	}

	err = ValidateEvent(event.Name, event.TimeDate, event.Duration)
	if err != nil {
		return err
	}

	// Derives the start instant, which a struct literal or a decoded event
	// does not carry.
	err = event.SetTimeDate(event.TimeDate)
	if err != nil {
		return err
	}

	err = s.add(ctx, event)
	if err != nil {
		return err
	}

	s.ids.Reserve(event.ID)

	return nil
}

func (s *scheduler) CreateEvent(ctx context.Context, name string, timeDate string, duration int) (_ *Event, err error) {
	ctx, done := s.observe(ctx, "create_event")
	defer func() { done(err) }()

	event, err := NewEvent(s.ids, name, timeDate, duration)
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("event rejected")
		return nil, err
	}

	err = s.add(ctx, event)
	if err != nil {
		return nil, err
	}

	created := event.clone()

	return &created, nil
}

func (s *scheduler) add(ctx context.Context, event *Event) error {
	if _, err := s.store.FindByID(event.ID); err == nil {
		return fmt.Errorf("%w: id %d", ErrEventExists, event.ID)
	}

	err := s.store.Insert(event)
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Int("event_id", event.ID).Msg("event rejected")
		return err
	}

	s.metrics.Stored(ctx, 1)
	log.Ctx(ctx).Debug().Int("event_id", event.ID).Str("time_date", event.TimeDate).Msg("event added")

	return nil
}

func (s *scheduler) UpdateEvent(ctx context.Context, id int, name string, timeDate string, duration int) (_ *Event, err error) {
	ctx, done := s.observe(ctx, "update_event")
	defer func() { done(err) }()

	event, err := s.store.Reschedule(id, func(e *Event) error {
		return errors.Join(e.SetName(name), e.SetTimeDate(timeDate), e.SetDuration(duration))
	})
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Int("event_id", id).Msg("event update rejected")
		return nil, err
	}

	log.Ctx(ctx).Debug().Int("event_id", id).Str("time_date", event.TimeDate).Msg("event updated")

	updated := event.clone()

	return &updated, nil
}

func (s *scheduler) DeleteEvent(ctx context.Context, id int) (err error) {
	ctx, done := s.observe(ctx, "delete_event")
	defer func() { done(err) }()

	_, err = s.store.Delete(id)
	if err != nil {
		return err
	}

	s.metrics.Stored(ctx, -1)
	log.Ctx(ctx).Debug().Int("event_id", id).Msg("event deleted")

	return nil
}

func (s *scheduler) FindEvent(ctx context.Context, id int) (_ *Event, err error) {
	_, done := s.observe(ctx, "find_event")
	defer func() { done(err) }()

	event, err := s.store.FindByID(id)
	if err != nil {
		return nil, err
	}

	found := event.clone()

	return &found, nil
}

func (s *scheduler) Events(ctx context.Context) []Event {
	_, done := s.observe(ctx, "events")
	defer done(nil)

	events := make([]Event, 0, s.store.Len())
	for event := range s.store.All() {
		events = append(events, event.clone())
	}

	return events
}

func (s *scheduler) EventsForDay(ctx context.Context, date string) (_ []Event, err error) {
	_, done := s.observe(ctx, "events_for_day")
	defer func() { done(err) }()

	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}

	return onDate(s.store.Overlapping(day, day.AddDate(0, 0, 1), false), date), nil
}

// FindOverlappingEvents returns the events dated on date whose interval
// intersects [start, end). Boundaries are exclusive unless
// WithInclusiveBoundaries is given.
func (s *scheduler) FindOverlappingEvents(ctx context.Context, date string, start string, end string, opts ...QueryOption) (_ []Event, err error) {
	ctx, done := s.observe(ctx, "find_overlapping_events")
	defer func() { done(err) }()

	var options queryOptions
	for _, opt := range opts {
		opt(&options)
	}

	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}

	window, err := ParseDayWindow(start, end)
	if err != nil {
		return nil, err
	}

	from := day.Add(time.Duration(window.Start) * time.Minute)
	to := day.Add(time.Duration(window.End) * time.Minute)

	events := onDate(s.store.Overlapping(from, to, options.inclusive), date)

	log.Ctx(ctx).Debug().Str("date", date).Str("start", start).Str("end", end).
		Bool("inclusive", options.inclusive).Int("matches", len(events)).Msg("overlap query")

	return events, nil
}

func (s *scheduler) FindFreeTimeSlots(ctx context.Context, date string) ([]FreeSlot, error) {
	return s.FindFreeTimeSlotsBetween(ctx, date, formatClock(s.window.Start), formatClock(s.window.End))
}

// FindFreeTimeSlotsBetween sweeps [from, to) of date and returns the gaps not
// covered by any event. Events spilling over from the previous day or into
// the next are clipped to the window.
func (s *scheduler) FindFreeTimeSlotsBetween(ctx context.Context, date string, from string, to string) (_ []FreeSlot, err error) {
	_, done := s.observe(ctx, "find_free_time_slots")
	defer func() { done(err) }()

	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}

	window, err := ParseDayWindow(from, to)
	if err != nil {
		return nil, err
	}

	windowStart := day.Add(time.Duration(window.Start) * time.Minute)
	windowEnd := day.Add(time.Duration(window.End) * time.Minute)

	slots := make([]FreeSlot, 0)
	cursor := window.Start

	for _, event := range s.store.Overlapping(windowStart, windowEnd, false) {
		start := clamp(minutesSince(day, event.Start()), window)
		end := clamp(minutesSince(day, event.End()), window)

		if start > cursor {
			slots = append(slots, FreeSlot{Start: formatClock(cursor), End: formatClock(start)})
		}

		cursor = max(cursor, end)
	}

	if cursor < window.End {
		slots = append(slots, FreeSlot{Start: formatClock(cursor), End: formatClock(window.End)})
	}

	return slots, nil
}

func (s *scheduler) PrintFullSchedule(w io.Writer) error {
	for event := range s.store.All() {
		_, err := fmt.Fprintf(w, "Event ID: %d\nEvent Name: %s\nEvent Date & Time: %s\nEvent Duration: %d minutes\n\n",
			event.ID, event.Name, event.TimeDate, event.Duration)
		if err != nil {
			return fmt.Errorf("failed to print schedule: %w", err)
		}
	}

	return nil
}

// Close releases every stored event and returns how many were released.
func (s *scheduler) Close() int {
	released := s.store.Clear()
	s.metrics.Stored(context.Background(), -int64(released))

	return released
}

func onDate(events []*Event, date string) []Event {
	out := make([]Event, 0, len(events))

	for _, event := range events {
		if event.Date() == date {
			out = append(out, event.clone())
		}
	}

	return out
}

func minutesSince(day time.Time, t time.Time) int {
	return int(t.Sub(day) / time.Minute)
}

func clamp(minutes int, window DayWindow) int {
	return min(max(minutes, window.Start), window.End)
}
