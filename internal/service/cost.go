package service

import (
	"math"
	"time"

	"github.com/iliyamo/parking-lot-reservation/internal/repository"
)

// ReservationCost computes the charge for occupying a spot from in to
// out at the given hourly price.  Billing is by fractional hours with
// no rounding of partial hours and no minimum charge; the final
// amount is rounded to two decimal places.  A zero duration costs
// exactly 0.00.  A negative duration means the clocks disagree and
// is rejected rather than silently producing a negative cost.
func ReservationCost(in, out time.Time, pricePerHour float64) (float64, error) {
	if out.Before(in) {
		return 0, repository.ErrInvalidTimestamp
	}
	hours := out.Sub(in).Seconds() / 3600
	return math.Round(hours*pricePerHour*100) / 100, nil
}
