package domain

// Interval is a delivery time window. Bounds are epoch milliseconds, the
// schedule data is UTC-anchored.
type Interval struct {
	Start int64 `bson:"start" json:"start"`
	End   int64 `bson:"end" json:"end"`
}

// DeliverySelection is the user's chosen delivery slot. A cart holds at
// most one; updates replace it as a whole (see the delivery package for
// the field carry-over rule).
type DeliverySelection struct {
	ProductID       int64     `bson:"product_id" json:"product_id"`
	DateEpochMillis int64     `bson:"date" json:"date"`
	TimeLabel       string    `bson:"time_label" json:"time_label"`
	Address         string    `bson:"address" json:"address"`
	Interval        *Interval `bson:"interval,omitempty" json:"interval,omitempty"`
}
