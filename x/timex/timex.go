package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// ResetTimer stops, drains, and re-arms t. Safe whether or not t has
// already fired. Negative durations are coerced to 0.
func ResetTimer(t *time.Timer, d time.Duration) {
	if d < 0 {
		d = 0
	}
	if !t.Stop() {
		DrainTimer(t)
	}
	t.Reset(d)
}

// DrainTimer empties a fired timer's channel without blocking.
func DrainTimer(t *time.Timer) {
	select {
	case <-t.C:
	default:
	}
}
