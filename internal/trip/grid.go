package trip

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leavetime/leavetime/internal/geo"
	"github.com/leavetime/leavetime/internal/routing"
)

// GridResult is the latest feasible departure found by a grid scan.
type GridResult struct {
	LeaveAt           time.Time
	BaseTravelMinutes int
	Feasible          bool
	Probes            int
}

// GridSearch probes every step from `from` to `adjusted` and returns the
// latest departure whose arrival is not after adjusted. It makes no
// monotonicity assumption, so it costs one probe per step and is meant for
// verifying Searcher, not for serving requests.
func GridSearch(ctx context.Context, durations routing.DurationProvider, origin routing.Waypoint, dest geo.Coordinate, from, adjusted time.Time, step time.Duration) (GridResult, error) {
	if step <= 0 {
		return GridResult{}, errors.New("grid step must be positive")
	}

	var res GridResult
	for at := from; !at.After(adjusted); at = at.Add(step) {
		mins, err := durations.Duration(ctx, at, origin, dest)
		if err != nil {
			return GridResult{}, fmt.Errorf("grid probe at %s: %w", at.Format(time.RFC3339), err)
		}
		res.Probes++

		if !at.Add(time.Duration(mins) * time.Minute).After(adjusted) {
			res.LeaveAt = at
			res.BaseTravelMinutes = mins
			res.Feasible = true
		}
	}
	return res, nil
}
