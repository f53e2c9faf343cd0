package expirestalematches

import "time"

// Input carries no required variables; the sweep always covers every live record.
type Input struct {
	RequestedBy string `json:"requestedBy,omitempty"`
}

type Output struct {
	ExpiredCount int       `json:"expiredCount"`
	SweptAt      time.Time `json:"sweptAt"`
}
