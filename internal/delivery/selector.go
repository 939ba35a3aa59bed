// Package delivery holds the delivery slot selection rules: how an
// update replaces the current selection and which schedule intervals
// belong to a calendar day.
package delivery

import (
	"time"

	"github.com/leehai1107/shop-service/internal/domain"
)

// Update carries the fields of a delivery change. A nil Interval means
// "not provided": the current interval is carried over, everything else
// is replaced unconditionally.
type Update struct {
	ProductID       int64            `json:"product_id"`
	DateEpochMillis int64            `json:"date"`
	TimeLabel       string           `json:"time_label"`
	Address         string           `json:"address"`
	Interval        *domain.Interval `json:"interval,omitempty"`
}

// SetDelivery builds the new singleton selection from an update. Date,
// time label, address and delivery product always come from the update;
// an omitted interval keeps whatever the current selection had.
func SetDelivery(current *domain.DeliverySelection, upd Update) *domain.DeliverySelection {
	next := &domain.DeliverySelection{
		ProductID:       upd.ProductID,
		DateEpochMillis: upd.DateEpochMillis,
		TimeLabel:       upd.TimeLabel,
		Address:         upd.Address,
		Interval:        upd.Interval,
	}
	if next.Interval == nil && current != nil {
		next.Interval = current.Interval
	}
	return next
}

// FilterIntervalsForDate returns the intervals overlapping the UTC
// calendar day of targetDate. Day boundaries are always computed in UTC,
// whatever zone targetDate carries: the schedule data is UTC-anchored and
// local-day boundaries would shift slots across days near timezone edges.
func FilterIntervalsForDate(intervals []domain.Interval, targetDate time.Time) []domain.Interval {
	utc := targetDate.UTC()
	dayStart := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	startMillis := dayStart.UnixMilli()
	endMillis := dayEnd.UnixMilli()

	var matched []domain.Interval
	for _, iv := range intervals {
		if iv.Start < endMillis && iv.End > startMillis {
			matched = append(matched, iv)
		}
	}
	return matched
}
