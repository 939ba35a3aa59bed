package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/leehai1107/shop-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scheduleMock struct {
	intervals []domain.Interval
	err       error
}

func (m *scheduleMock) GetDeliverySchedule(context.Context) ([]domain.Interval, error) {
	return m.intervals, m.err
}

func TestGetIntervals_FiltersToRequestedDay(t *testing.T) {
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	inDay := domain.Interval{
		Start: day.Add(10 * time.Hour).UnixMilli(),
		End:   day.Add(12 * time.Hour).UnixMilli(),
	}
	nextDay := domain.Interval{
		Start: day.Add(30 * time.Hour).UnixMilli(),
		End:   day.Add(32 * time.Hour).UnixMilli(),
	}
	mock := &scheduleMock{intervals: []domain.Interval{inDay, nextDay}}
	handler := NewDeliveryHandler(mock, 5*time.Second)

	recorder := httptest.NewRecorder()
	url := fmt.Sprintf("/?date=%d", day.Add(15*time.Hour).UnixMilli())
	request := httptest.NewRequest("GET", url, nil)

	handler.GetIntervals(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)

	var response IntervalsResponseDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	require.Len(t, response.Intervals, 1)
	assert.Equal(t, inDay, response.Intervals[0])
}

func TestGetIntervals_NoMatchesIsEmptyArray(t *testing.T) {
	mock := &scheduleMock{}
	handler := NewDeliveryHandler(mock, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/?date=1700000000000", nil)

	handler.GetIntervals(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"intervals":[]`)
}

func TestGetIntervals_BadDate(t *testing.T) {
	handler := NewDeliveryHandler(&scheduleMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/?date=tomorrow", nil)

	handler.GetIntervals(recorder, request)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestGetIntervals_ScheduleError(t *testing.T) {
	handler := NewDeliveryHandler(&scheduleMock{err: fmt.Errorf("commerce API down")}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/?date=1700000000000", nil)

	handler.GetIntervals(recorder, request)

	require.Equal(t, http.StatusInternalServerError, recorder.Code)
}
