package model

import "time"

// RunwayLock is an advisory lock preventing two concurrent schedule
// writes from checking the same runway and day at the same time. The
// document id encodes the runway and date, so a duplicate-key insert
// means another request holds the lock.
type RunwayLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
