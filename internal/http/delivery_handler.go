package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/leehai1107/shop-service/internal/delivery"
	"github.com/leehai1107/shop-service/internal/domain"
)

// ScheduleProvider reads the full delivery schedule from the commerce API.
type ScheduleProvider interface {
	GetDeliverySchedule(ctx context.Context) ([]domain.Interval, error)
}

type DeliveryHandler struct {
	schedule ScheduleProvider
	timeout  time.Duration
}

func NewDeliveryHandler(schedule ScheduleProvider, timeout time.Duration) *DeliveryHandler {
	return &DeliveryHandler{
		schedule: schedule,
		timeout:  timeout,
	}
}

type IntervalsResponseDTO struct {
	Date      int64             `json:"date"`
	Intervals []domain.Interval `json:"intervals"`
}

// GET /api/v1/delivery/intervals?date=<epoch millis>
//
// Returns the schedule intervals overlapping the UTC calendar day of the
// given date.
func (h *DeliveryHandler) GetIntervals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	dateStr := r.URL.Query().Get("date")
	dateMillis, err := strconv.ParseInt(dateStr, 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_date", "date must be epoch milliseconds")
		return
	}

	intervals, err := h.schedule.GetDeliverySchedule(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	target := time.UnixMilli(dateMillis).UTC()
	matching := delivery.FilterIntervalsForDate(intervals, target)
	if matching == nil {
		matching = []domain.Interval{}
	}

	respondJSON(w, http.StatusOK, IntervalsResponseDTO{
		Date:      dateMillis,
		Intervals: matching,
	})
}
