package models

import (
	"time"

	"github.com/samber/mo"
)

// RateLimitSnapshot is the advisory budget reported by a single response
type RateLimitSnapshot struct {
	Remaining  mo.Option[int]
	ResetAfter mo.Option[time.Duration]
}

// IsExhausted reports whether the snapshot says to wait before the next request
func (s RateLimitSnapshot) IsExhausted() bool {
	remaining, hasRemaining := s.Remaining.Get()
	return hasRemaining && remaining <= 0 && s.ResetAfter.IsPresent()
}
