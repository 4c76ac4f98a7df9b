package core

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type Handlers interface {
	PostEvents(gctx *gin.Context)
	ListEvents(gctx *gin.Context)
	GetEvents(gctx *gin.Context)
	PutEvents(gctx *gin.Context)
	DeleteEvents(gctx *gin.Context)
	GetDay(gctx *gin.Context)
	GetOverlaps(gctx *gin.Context)
	GetFreeSlots(gctx *gin.Context)
	GetCalendar(gctx *gin.Context)
}

type EventRequest struct {
	Name     string `json:"name"`
	TimeDate string `json:"time_date"`
	Duration int    `json:"duration"`
}

// handlers serializes every call into the scheduler, which is not safe for
// concurrent use.
type handlers struct {
	mu        sync.Mutex
	scheduler Scheduler
}

func NewHandlers(scheduler Scheduler) Handlers {
	return &handlers{scheduler: scheduler}
}

func (h *handlers) PostEvents(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var request EventRequest

	err := gctx.ShouldBindJSON(&request)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to bind JSON")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("failed to bind JSON", err))

		return
	}

	h.mu.Lock()
	event, err := h.scheduler.CreateEvent(ctx, request.Name, request.TimeDate, request.Duration)
	h.mu.Unlock()

	if err != nil {
		abortWithError(gctx, "creating event failed", err)
		return
	}

	gctx.JSON(http.StatusCreated, event)
}

func (h *handlers) ListEvents(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	if gctx.Query("format") == "text" {
		var buf bytes.Buffer

		h.mu.Lock()
		err := h.scheduler.PrintFullSchedule(&buf)
		h.mu.Unlock()

		if err != nil {
			abortWithError(gctx, "printing schedule failed", err)
			return
		}

		gctx.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())

		return
	}

	h.mu.Lock()
	events := h.scheduler.Events(ctx)
	h.mu.Unlock()

	gctx.JSON(http.StatusOK, events)
}

func (h *handlers) GetEvents(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	id, ok := eventID(gctx)
	if !ok {
		return
	}

	h.mu.Lock()
	event, err := h.scheduler.FindEvent(ctx, id)
	h.mu.Unlock()

	if err != nil {
		abortWithError(gctx, "finding event failed", err)
		return
	}

	gctx.JSON(http.StatusOK, event)
}

func (h *handlers) PutEvents(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	id, ok := eventID(gctx)
	if !ok {
		return
	}

	var request EventRequest

	err := gctx.ShouldBindJSON(&request)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to bind JSON")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("failed to bind JSON", err))

		return
	}

	h.mu.Lock()
	event, err := h.scheduler.UpdateEvent(ctx, id, request.Name, request.TimeDate, request.Duration)
	h.mu.Unlock()

	if err != nil {
		abortWithError(gctx, "updating event failed", err)
		return
	}

	gctx.JSON(http.StatusOK, event)
}

func (h *handlers) DeleteEvents(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	id, ok := eventID(gctx)
	if !ok {
		return
	}

	h.mu.Lock()
	err := h.scheduler.DeleteEvent(ctx, id)
	h.mu.Unlock()

	if err != nil {
		abortWithError(gctx, "deleting event failed", err)
		return
	}

	gctx.Status(http.StatusNoContent)
}

func (h *handlers) GetDay(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	h.mu.Lock()
	events, err := h.scheduler.EventsForDay(ctx, gctx.Param("date"))
	h.mu.Unlock()

	if err != nil {
		abortWithError(gctx, "listing events failed", err)
		return
	}

	gctx.JSON(http.StatusOK, events)
}

func (h *handlers) GetOverlaps(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var opts []QueryOption

	if inclusive, _ := strconv.ParseBool(gctx.Query("inclusive")); inclusive {
		opts = append(opts, WithInclusiveBoundaries())
	}

	h.mu.Lock()
	events, err := h.scheduler.FindOverlappingEvents(ctx, gctx.Param("date"), gctx.Query("start"), gctx.Query("end"), opts...)
	h.mu.Unlock()

	if err != nil {
		abortWithError(gctx, "overlap query failed", err)
		return
	}

	gctx.JSON(http.StatusOK, events)
}

func (h *handlers) GetFreeSlots(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	date := gctx.Param("date")

	var (
		slots []FreeSlot
		err   error
	)

	h.mu.Lock()
	if from, to := gctx.Query("from"), gctx.Query("to"); from != "" || to != "" {
		slots, err = h.scheduler.FindFreeTimeSlotsBetween(ctx, date, gctx.DefaultQuery("from", "00:00"), gctx.DefaultQuery("to", "24:00"))
	} else {
		slots, err = h.scheduler.FindFreeTimeSlots(ctx, date)
	}
	h.mu.Unlock()

	if err != nil {
		abortWithError(gctx, "free slot query failed", err)
		return
	}

	gctx.JSON(http.StatusOK, slots)
}

func (h *handlers) GetCalendar(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	h.mu.Lock()
	events := h.scheduler.Events(ctx)
	h.mu.Unlock()

	if len(events) == 0 {
		gctx.Status(http.StatusNoContent)
		return
	}

	gctx.Header("Content-Type", "text/calendar; charset=utf-8")

	err := WriteCalendar(gctx.Writer, events, time.Now())
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("calendar export failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError("calendar export failed", err))
	}
}

func eventID(gctx *gin.Context) (int, bool) {
	id, err := strconv.Atoi(gctx.Param("id"))
	if err != nil {
		log.Ctx(gctx.Request.Context()).Error().Err(err).Msg("parameter 'id' must be an integer")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("parameter 'id' must be an integer", err))

		return 0, false
	}

	return id, true
}

func abortWithError(gctx *gin.Context, message string, err error) {
	ctx := gctx.Request.Context()
	status := statusFor(err)

	if status == http.StatusInternalServerError {
		log.Ctx(ctx).Error().Err(err).Msg(message)
	} else {
		log.Ctx(ctx).Info().Err(err).Msg(message)
	}

	gctx.AbortWithStatusJSON(status, NewError(message, err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEventOverlap), errors.Is(err, ErrEventExists):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidEvent), errors.Is(err, ErrInvalidQuery):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
