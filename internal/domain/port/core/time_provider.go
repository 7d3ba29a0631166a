package core

import "time"

// TimeProvider abstracts time so order expiry and ledger timestamps are
// deterministic under test.
type TimeProvider interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	Until(t time.Time) time.Duration
}
