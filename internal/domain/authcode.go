package domain

import "time"

// AuthCode binds a numeric one-time code to an email address until ExpiresAt.
// Records are immutable after insert; expiry is computed on read.
type AuthCode struct {
	ID        string    `json:"authcode_id"`
	Code      string    `json:"code"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expire_datetime"`
	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ExpiredAt reports whether the code is no longer valid at now.
func (c AuthCode) ExpiredAt(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// RemainingAt returns the validity left at now, never negative.
func (c AuthCode) RemainingAt(now time.Time) time.Duration {
	if d := c.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}
