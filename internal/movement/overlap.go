package movement

import (
	"fmt"
	"time"

	"github.com/erazemk/palete/internal/model"
)

// Interval is the occupancy interval [Start, End) of a completed movement.
type Interval struct {
	MovementID int64
	Start      time.Time
	End        time.Time
}

// Overlaps reports whether i and o intersect. Intervals that only touch at a
// single instant do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return o.Start.Before(i.End) && o.End.After(i.Start)
}

// CheckOverlap returns model.ErrOverlappingInterval if candidate intersects
// any of existing.
func CheckOverlap(candidate Interval, existing []Interval) error {
	for _, e := range existing {
		if candidate.Overlaps(e) {
			return fmt.Errorf("interval %s..%s conflicts with movement %d (%s..%s): %w",
				candidate.Start.Format(time.RFC3339), candidate.End.Format(time.RFC3339),
				e.MovementID, e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339),
				model.ErrOverlappingInterval)
		}
	}
	return nil
}

// intervalsOf converts completed movements to intervals. Movements missing
// an in_at are skipped.
func intervalsOf(movements []model.Movement) []Interval {
	out := make([]Interval, 0, len(movements))
	for _, m := range movements {
		if m.InAt == nil {
			continue
		}
		out = append(out, Interval{MovementID: m.ID, Start: m.OutAt, End: *m.InAt})
	}
	return out
}
