package models

import "time"

// Challenge is an issued one-time code waiting to be verified by UserName.
type Challenge struct {
	Code      string    `json:"code"`
	UserName  string    `json:"username"`
	Purpose   string    `json:"purpose"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired treats the expiry instant itself as expired.
func (c *Challenge) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
