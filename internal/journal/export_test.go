package journal

import "time"

// SetClock replaces the journal clock.
func (j *Journal) SetClock(now func() time.Time) {
	j.now = now
}
