package trip

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/leavetime/leavetime/internal/geo"
	"github.com/leavetime/leavetime/internal/geocoding"
	"github.com/leavetime/leavetime/internal/routing"
)

// SearchIterations is the fixed bisection budget. 2^22 halvings resolve a
// window of several days to well under a minute.
const SearchIterations = 22

// MaxProbes bounds the routing calls of one search: the bisection plus a
// fallback probe, or a single leave-now probe.
const MaxProbes = SearchIterations + 1

const millisPerMinute = int64(time.Minute / time.Millisecond)

// SearchParams describe one departure search.
type SearchParams struct {
	Now      time.Time
	Deadline time.Time

	// FixedDelayMinutes is cab buffer plus weather penalty.
	FixedDelayMinutes int

	Origin      Origin
	Destination geo.Coordinate
}

// SearchResult is the outcome of a departure search.
type SearchResult struct {
	LeaveAt           time.Time
	BaseTravelMinutes int

	// Probes is the number of duration lookups issued.
	Probes int
	// LeaveNow is set when the adjusted deadline had already passed.
	LeaveNow bool
	// FellBack is set when no bisection probe was feasible.
	FellBack bool
}

// Searcher finds the latest departure that still meets the adjusted deadline.
//
// Bisection assumes feasibility is monotonic in departure time, which real
// traffic does not guarantee. The answer is the latest feasible probe found,
// not a proven optimum; GridSearch is the exhaustive comparison.
type Searcher struct {
	durations routing.DurationProvider
	geocoder  geocoding.Geocoder
	logger    zerolog.Logger
}

// NewSearcher creates a searcher. geocoder may be nil when every origin
// carries a place id.
func NewSearcher(durations routing.DurationProvider, geocoder geocoding.Geocoder, logger zerolog.Logger) *Searcher {
	return &Searcher{durations: durations, geocoder: geocoder, logger: logger}
}

// Search runs the departure search. It is detached from ctx cancellation:
// once started it finishes or stops at the first provider failure, which is
// returned. Each probe is still bounded by the provider timeout.
func (s *Searcher) Search(ctx context.Context, p SearchParams) (SearchResult, error) {
	ctx = context.WithoutCancel(ctx)

	run := &searchRun{
		searcher: s,
		origin:   newOriginResolver(p.Origin, s.geocoder),
		dest:     p.Destination,
	}

	now := p.Now.UnixMilli()
	adjusted := p.Deadline.UnixMilli() - int64(p.FixedDelayMinutes)*millisPerMinute

	if adjusted <= now {
		mins, err := run.probe(ctx, now)
		if err != nil {
			return SearchResult{}, fmt.Errorf("leave-now probe: %w", err)
		}
		return SearchResult{
			LeaveAt:           time.UnixMilli(now).UTC(),
			BaseTravelMinutes: mins,
			Probes:            run.probes,
			LeaveNow:          true,
		}, nil
	}

	lo, hi := now, adjusted
	best, bestMins := now, -1

	for i := 0; i < SearchIterations; i++ {
		mid := lo + (hi-lo)/2

		mins, err := run.probe(ctx, mid)
		if err != nil {
			return SearchResult{}, fmt.Errorf("search probe %d: %w", i+1, err)
		}

		if mid+int64(mins)*millisPerMinute > adjusted {
			hi = mid
		} else {
			lo = mid
			best, bestMins = mid, mins
		}
	}

	result := SearchResult{LeaveAt: time.UnixMilli(best).UTC(), BaseTravelMinutes: bestMins}

	if bestMins < 0 {
		mins, err := run.probe(ctx, now)
		if err != nil {
			return SearchResult{}, fmt.Errorf("fallback probe: %w", err)
		}
		result = SearchResult{
			LeaveAt:           time.UnixMilli(now).UTC(),
			BaseTravelMinutes: mins,
			FellBack:          true,
		}
	}

	result.Probes = run.probes
	return result, nil
}

// searchRun is the per-search state. Nothing in it outlives one Search call.
type searchRun struct {
	searcher *Searcher
	origin   *originResolver
	dest     geo.Coordinate
	probes   int
}

func (r *searchRun) probe(ctx context.Context, atMillis int64) (int, error) {
	wp, err := r.origin.waypoint(ctx)
	if err != nil {
		return 0, err
	}

	at := time.UnixMilli(atMillis).UTC()
	r.probes++

	mins, err := r.searcher.durations.Duration(ctx, at, wp, r.dest)
	if err != nil {
		return 0, err
	}

	r.searcher.logger.Debug().
		Int("probe", r.probes).
		Time("depart_at", at).
		Int("minutes", mins).
		Msg("duration probe")

	return mins, nil
}

// originResolver turns an Origin into a routing waypoint, geocoding a
// free-text address at most once per search.
type originResolver struct {
	origin   Origin
	geocoder geocoding.Geocoder
	resolved *routing.Waypoint
}

func newOriginResolver(origin Origin, geocoder geocoding.Geocoder) *originResolver {
	return &originResolver{origin: origin, geocoder: geocoder}
}

func (o *originResolver) waypoint(ctx context.Context) (routing.Waypoint, error) {
	if o.resolved != nil {
		return *o.resolved, nil
	}

	var wp routing.Waypoint
	switch {
	case o.origin.PlaceID != "":
		wp = routing.PlaceWaypoint(o.origin.PlaceID)
	case o.geocoder == nil:
		return routing.Waypoint{}, fmt.Errorf("resolve origin %q: no geocoder configured", o.origin.Address)
	default:
		coord, err := o.geocoder.Resolve(ctx, o.origin.Address)
		if err != nil {
			return routing.Waypoint{}, fmt.Errorf("resolve origin: %w", err)
		}
		wp = routing.LocationWaypoint(coord)
	}

	o.resolved = &wp
	return wp, nil
}
