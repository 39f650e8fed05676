package trip_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leavetime/leavetime/internal/geo"
	"github.com/leavetime/leavetime/internal/provider"
	"github.com/leavetime/leavetime/internal/routing"
	"github.com/leavetime/leavetime/internal/trip"
)

// scriptedDurations answers duration probes from a function of departure time.
type scriptedDurations struct {
	mu      sync.Mutex
	fn      func(at time.Time) (int, error)
	calls   []time.Time
	origins []routing.Waypoint
	ctxErrs []error
}

func (s *scriptedDurations) Duration(ctx context.Context, at time.Time, origin routing.Waypoint, _ geo.Coordinate) (int, error) {
	s.mu.Lock()
	s.calls = append(s.calls, at)
	s.origins = append(s.origins, origin)
	s.ctxErrs = append(s.ctxErrs, ctx.Err())
	s.mu.Unlock()
	return s.fn(at)
}

func constant(minutes int) *scriptedDurations {
	return &scriptedDurations{fn: func(time.Time) (int, error) { return minutes, nil }}
}

type countingGeocoder struct {
	calls int
	coord geo.Coordinate
	err   error
}

func (g *countingGeocoder) Resolve(_ context.Context, _ string) (geo.Coordinate, error) {
	g.calls++
	return g.coord, g.err
}

var (
	searchNow  = time.Date(2025, 12, 20, 14, 0, 0, 0, time.UTC)
	jfkCoord   = mustAirport(geo.AirportJFK)
	placeStart = trip.Origin{PlaceID: "ChIJstart"}
)

func mustAirport(code geo.AirportCode) geo.Coordinate {
	c, ok := geo.AirportLocation(code)
	if !ok {
		panic("unknown airport " + code)
	}
	return c
}

func newSearcher(d routing.DurationProvider, g *countingGeocoder) *trip.Searcher {
	if g == nil {
		return trip.NewSearcher(d, nil, zerolog.Nop())
	}
	return trip.NewSearcher(d, g, zerolog.Nop())
}

func TestSearch_LeaveNowWhenAdjustedDeadlinePassed(t *testing.T) {
	tests := []struct {
		name     string
		deadline time.Time
		fixed    int
	}{
		{"deadline in the past", searchNow.Add(-time.Hour), 0},
		{"deadline exactly now", searchNow, 0},
		{"buffers push past now", searchNow.Add(10 * time.Minute), 12},
		{"buffers land exactly on now", searchNow.Add(12 * time.Minute), 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := constant(35)
			res, err := newSearcher(d, nil).Search(context.Background(), trip.SearchParams{
				Now:               searchNow,
				Deadline:          tt.deadline,
				FixedDelayMinutes: tt.fixed,
				Origin:            placeStart,
				Destination:       jfkCoord,
			})
			require.NoError(t, err)

			assert.True(t, res.LeaveAt.Equal(searchNow))
			assert.Equal(t, 35, res.BaseTravelMinutes)
			assert.True(t, res.LeaveNow)
			assert.Equal(t, 1, res.Probes)
			require.Len(t, d.calls, 1)
			assert.True(t, d.calls[0].Equal(searchNow))
		})
	}
}

func TestSearch_ConstantDurationConverges(t *testing.T) {
	tests := []struct {
		name    string
		window  time.Duration
		minutes int
		fixed   int
	}{
		{"two hours", 2 * time.Hour, 40, 12},
		{"one day", 24 * time.Hour, 55, 0},
		{"five days", 5 * 24 * time.Hour, 90, 25},
		{"odd window", 3*time.Hour + 17*time.Minute + 3*time.Second, 61, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := constant(tt.minutes)
			deadline := searchNow.Add(tt.window)

			res, err := newSearcher(d, nil).Search(context.Background(), trip.SearchParams{
				Now:               searchNow,
				Deadline:          deadline,
				FixedDelayMinutes: tt.fixed,
				Origin:            placeStart,
				Destination:       jfkCoord,
			})
			require.NoError(t, err)

			adjusted := deadline.Add(-time.Duration(tt.fixed) * time.Minute)
			ideal := adjusted.Add(-time.Duration(tt.minutes) * time.Minute)

			assert.False(t, res.LeaveAt.After(ideal), "must still arrive by the adjusted deadline")
			assert.False(t, res.LeaveAt.After(adjusted))
			assert.Less(t, ideal.Sub(res.LeaveAt), time.Minute)
			assert.Equal(t, tt.minutes, res.BaseTravelMinutes)
			assert.Equal(t, trip.SearchIterations, res.Probes)
			assert.False(t, res.LeaveNow)
			assert.False(t, res.FellBack)
		})
	}
}

func TestSearch_ProbesStayInWindowAndAreMillisecondAligned(t *testing.T) {
	d := constant(30)
	deadline := searchNow.Add(4 * time.Hour)

	_, err := newSearcher(d, nil).Search(context.Background(), trip.SearchParams{
		Now:         searchNow.Add(123456789 * time.Nanosecond),
		Deadline:    deadline,
		Origin:      placeStart,
		Destination: jfkCoord,
	})
	require.NoError(t, err)

	for _, at := range d.calls {
		assert.False(t, at.Before(searchNow))
		assert.False(t, at.After(deadline))
		assert.Zero(t, at.Nanosecond()%int(time.Millisecond))
		assert.Equal(t, time.UTC, at.Location())
	}
}

func TestSearch_FallbackWhenNothingFeasible(t *testing.T) {
	// 10 minutes of slack but every trip takes an hour
	d := constant(60)

	res, err := newSearcher(d, nil).Search(context.Background(), trip.SearchParams{
		Now:         searchNow,
		Deadline:    searchNow.Add(10 * time.Minute),
		Origin:      placeStart,
		Destination: jfkCoord,
	})
	require.NoError(t, err)

	assert.True(t, res.FellBack)
	assert.False(t, res.LeaveNow)
	assert.True(t, res.LeaveAt.Equal(searchNow))
	assert.Equal(t, 60, res.BaseTravelMinutes)
	assert.Equal(t, trip.SearchIterations+1, res.Probes)
	assert.Equal(t, trip.MaxProbes, res.Probes)
	assert.True(t, d.calls[len(d.calls)-1].Equal(searchNow))
}

func TestSearch_ProviderFailureAborts(t *testing.T) {
	failAt := 5
	d := &scriptedDurations{}
	d.fn = func(time.Time) (int, error) {
		if len(d.calls) == failAt {
			return 0, provider.FromStatus("google-routes", 503, "")
		}
		return 30, nil
	}

	_, err := newSearcher(d, nil).Search(context.Background(), trip.SearchParams{
		Now:         searchNow,
		Deadline:    searchNow.Add(3 * time.Hour),
		Origin:      placeStart,
		Destination: jfkCoord,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrUnavailable)
	assert.Len(t, d.calls, failAt, "no probes after the failure")
}

func TestSearch_LeaveNowFailureIsFatal(t *testing.T) {
	d := &scriptedDurations{fn: func(time.Time) (int, error) {
		return 0, provider.NoResults("google-routes", "no routes returned")
	}}

	_, err := newSearcher(d, nil).Search(context.Background(), trip.SearchParams{
		Now:         searchNow,
		Deadline:    searchNow.Add(-time.Minute),
		Origin:      placeStart,
		Destination: jfkCoord,
	})
	assert.ErrorIs(t, err, provider.ErrNoResults)
}

func TestSearch_GeocodesAddressOncePerSearch(t *testing.T) {
	d := constant(30)
	g := &countingGeocoder{coord: geo.Coordinate{Lat: 40.7484, Lon: -73.9857}}
	s := newSearcher(d, g)

	params := trip.SearchParams{
		Now:         searchNow,
		Deadline:    searchNow.Add(3 * time.Hour),
		Origin:      trip.Origin{Address: "350 5th Ave"},
		Destination: jfkCoord,
	}

	_, err := s.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, 1, g.calls)
	for _, wp := range d.origins {
		assert.Equal(t, routing.LocationWaypoint(g.coord), wp)
	}

	// a second search resolves again
	_, err = s.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, 2, g.calls)
}

func TestSearch_PlaceIDSkipsGeocoder(t *testing.T) {
	d := constant(30)
	g := &countingGeocoder{}

	_, err := newSearcher(d, g).Search(context.Background(), trip.SearchParams{
		Now:         searchNow,
		Deadline:    searchNow.Add(time.Hour),
		Origin:      trip.Origin{PlaceID: "ChIJstart", Address: "ignored"},
		Destination: jfkCoord,
	})
	require.NoError(t, err)
	assert.Zero(t, g.calls)
	assert.Equal(t, routing.PlaceWaypoint("ChIJstart"), d.origins[0])
}

func TestSearch_GeocodeFailureIsFatal(t *testing.T) {
	d := constant(30)
	g := &countingGeocoder{err: provider.NoResults("google-geocode", "0 results")}

	_, err := newSearcher(d, g).Search(context.Background(), trip.SearchParams{
		Now:         searchNow,
		Deadline:    searchNow.Add(time.Hour),
		Origin:      trip.Origin{Address: "nowhere"},
		Destination: jfkCoord,
	})
	assert.ErrorIs(t, err, provider.ErrNoResults)
	assert.Empty(t, d.calls)
}

func TestSearch_NoGeocoderForAddress(t *testing.T) {
	_, err := newSearcher(constant(30), nil).Search(context.Background(), trip.SearchParams{
		Now:         searchNow,
		Deadline:    searchNow.Add(time.Hour),
		Origin:      trip.Origin{Address: "350 5th Ave"},
		Destination: jfkCoord,
	})
	assert.Error(t, err)
}

func TestSearch_IgnoresCallerCancellation(t *testing.T) {
	d := constant(30)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newSearcher(d, nil).Search(ctx, trip.SearchParams{
		Now:         searchNow,
		Deadline:    searchNow.Add(2 * time.Hour),
		Origin:      placeStart,
		Destination: jfkCoord,
	})
	require.NoError(t, err)
	assert.Equal(t, trip.SearchIterations, res.Probes)
	for _, e := range d.ctxErrs {
		assert.NoError(t, e)
	}
}

func TestSearch_RushHourMatchesGridOnMonotonicProfile(t *testing.T) {
	// travel time grows by a minute for every ten minutes of delay
	d := &scriptedDurations{fn: func(at time.Time) (int, error) {
		return 30 + int(at.Sub(searchNow)/(10*time.Minute)), nil
	}}
	deadline := searchNow.Add(4 * time.Hour)

	res, err := newSearcher(d, nil).Search(context.Background(), trip.SearchParams{
		Now:         searchNow,
		Deadline:    deadline,
		Origin:      placeStart,
		Destination: jfkCoord,
	})
	require.NoError(t, err)

	grid, err := trip.GridSearch(context.Background(), d, routing.PlaceWaypoint("ChIJstart"), jfkCoord, searchNow, deadline, time.Minute)
	require.NoError(t, err)
	require.True(t, grid.Feasible)

	assert.False(t, res.LeaveAt.Add(time.Duration(res.BaseTravelMinutes)*time.Minute).After(deadline))
	assert.InDelta(t, grid.LeaveAt.Sub(searchNow).Minutes(), res.LeaveAt.Sub(searchNow).Minutes(), 1)
}

func TestSearch_DipThenRiseIsAnApproximation(t *testing.T) {
	// a jam between 100 and 150 minutes from now makes the midpoint infeasible
	// while later departures are fine again
	d := &scriptedDurations{fn: func(at time.Time) (int, error) {
		m := at.Sub(searchNow).Minutes()
		if m >= 100 && m < 150 {
			return 200, nil
		}
		return 30, nil
	}}
	deadline := searchNow.Add(240 * time.Minute)

	res, err := newSearcher(d, nil).Search(context.Background(), trip.SearchParams{
		Now:         searchNow,
		Deadline:    deadline,
		Origin:      placeStart,
		Destination: jfkCoord,
	})
	require.NoError(t, err)

	grid, err := trip.GridSearch(context.Background(), d, routing.PlaceWaypoint("ChIJstart"), jfkCoord, searchNow, deadline, time.Minute)
	require.NoError(t, err)

	// still feasible
	assert.False(t, res.LeaveAt.Add(time.Duration(res.BaseTravelMinutes)*time.Minute).After(deadline))
	// but earlier than the true latest departure
	assert.True(t, grid.LeaveAt.Equal(searchNow.Add(210*time.Minute)))
	assert.True(t, res.LeaveAt.Before(searchNow.Add(100*time.Minute)))
	assert.Greater(t, grid.LeaveAt.Sub(res.LeaveAt), time.Hour)
}

func TestGridSearch(t *testing.T) {
	d := constant(20)

	grid, err := trip.GridSearch(context.Background(), d, routing.PlaceWaypoint("p"), jfkCoord, searchNow, searchNow.Add(time.Hour), 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, grid.Feasible)
	assert.True(t, grid.LeaveAt.Equal(searchNow.Add(40*time.Minute)))
	assert.Equal(t, 20, grid.BaseTravelMinutes)
	assert.Equal(t, 13, grid.Probes)

	grid, err = trip.GridSearch(context.Background(), constant(90), routing.PlaceWaypoint("p"), jfkCoord, searchNow, searchNow.Add(time.Hour), 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, grid.Feasible)

	_, err = trip.GridSearch(context.Background(), d, routing.PlaceWaypoint("p"), jfkCoord, searchNow, searchNow.Add(time.Hour), 0)
	assert.Error(t, err)

	boom := errors.New("boom")
	failing := &scriptedDurations{fn: func(time.Time) (int, error) { return 0, boom }}
	_, err = trip.GridSearch(context.Background(), failing, routing.PlaceWaypoint("p"), jfkCoord, searchNow, searchNow.Add(time.Hour), time.Minute)
	assert.ErrorIs(t, err, boom)
}
