package domain

import "time"

// OneTimeCode is the persisted form of an issued OTP. Only the hash of the
// code is stored; the row is deleted on successful verification.
type OneTimeCode struct {
	ID           int64
	Mobile       string
	CodeHash     string
	ExpiresAt    time.Time
	AttemptCount int
	CreatedAt    time.Time
}

func (c *OneTimeCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
