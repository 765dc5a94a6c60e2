package services

import "time"

// SetNowFunc overrides the order clock so tests can pin placement time.
func (s *OrderService) SetNowFunc(now func() time.Time) {
	s.now = now
}
