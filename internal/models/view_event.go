package models

import "time"

// ViewEvent is one append-only row of the view log.
type ViewEvent struct {
	ID         string    `db:"id"`
	MediaID    string    `db:"media_id"`
	ViewedByIP string    `db:"viewed_by_ip"`
	Timestamp  time.Time `db:"viewed_at"`
}
