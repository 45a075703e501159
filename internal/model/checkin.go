package model

import "time"

// DateLayout is the calendar-date format used everywhere a check-in date
// crosses a boundary (local cache, remote rows, API payloads).
const DateLayout = "2006-01-02"

// Checkin is one day of confirmed reading for a user. Rows are keyed by
// (user_id, date) remotely, so writing the same day twice overwrites.
type Checkin struct {
	UserID    string    `db:"user_id" json:"user_id"`
	Date      string    `db:"date" json:"date"`
	AyatCount int       `db:"ayat_count" json:"ayat_count"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CheckinPayload is the opaque body stored in the pending queue and
// replayed against the remote backend.
type CheckinPayload struct {
	UserID    string `json:"user_id"`
	Date      string `json:"date"`
	AyatCount int    `json:"ayat_count"`
}

// PendingCheckin is a queued check-in that has not been confirmed
// remotely yet. Replay order is FIFO by id.
type PendingCheckin struct {
	ID        int64  `db:"id"`
	Payload   []byte `db:"payload_json"`
	CreatedAt int64  `db:"created_at"`
}

// RecentCheckin is a row of the local read cache, kept so "did I read
// today?" never needs a network round trip.
type RecentCheckin struct {
	UserID    string `db:"user_id" json:"user_id"`
	Date      string `db:"date" json:"date"`
	AyatCount int    `db:"ayat_count" json:"ayat_count"`
}
