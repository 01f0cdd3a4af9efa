package model

import "time"

// TimeSlot is a derived, never-persisted view of one bookable time point.
// It is recomputed from schedules, blocks and appointments on every request.
type TimeSlot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
	Capacity  int    `json:"capacity"`
	Booked    int    `json:"booked"`
}

// SlotLock is a short-lived advisory lock serializing concurrent creates for
// the same professional/date/time triple. A unique _id plus a TTL index on
// expires_at is the whole mechanism.
type SlotLock struct {
	ID        string    `json:"id" bson:"_id"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
