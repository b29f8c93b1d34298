package geospatial

import (
	"fmt"
	"math"
	"sort"

	"github.com/samirrijal/flightpath/internal/core/domain"
)

// TruncateForMarker drops the last len(route)/divisor points so that an icon
// placed at the end of the result stays short of the arrival marker.
func TruncateForMarker(route domain.Route, divisor int) (domain.Route, error) {
	if divisor < 1 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidDivisor, divisor)
	}
	keep := len(route) - len(route)/divisor
	out := make(domain.Route, keep)
	copy(out, route[:keep])
	return out, nil
}

// SegmentBetweenWeatherSamples interpolates n points between two wind samples.
func SegmentBetweenWeatherSamples(a, b domain.WeatherSample, n int) (domain.Route, error) {
	return Interpolate(a.Coord, b.Coord, n)
}

// OrderAlongRoute sorts samples by the index of the route point nearest to
// each of them, so successive samples follow the direction of travel.
func OrderAlongRoute(route domain.Route, samples []domain.WeatherSample) []domain.WeatherSample {
	if len(route) == 0 || len(samples) < 2 {
		return samples
	}

	type ranked struct {
		sample domain.WeatherSample
		index  int
	}
	ranks := make([]ranked, len(samples))
	for i, s := range samples {
		best, bestDist := 0, math.Inf(1)
		for j, p := range route {
			if d := DistanceKm(s.Coord, p); d < bestDist {
				best, bestDist = j, d
			}
		}
		ranks[i] = ranked{sample: s, index: best}
	}
	sort.SliceStable(ranks, func(i, j int) bool { return ranks[i].index < ranks[j].index })

	out := make([]domain.WeatherSample, len(ranks))
	for i, r := range ranks {
		out[i] = r.sample
	}
	return out
}

// UnwrapLongitudes shifts longitudes by multiples of 360 so that consecutive
// points never jump by more than 180 degrees. Web maps then draw an
// antimeridian crossing as a continuous line.
func UnwrapLongitudes(route domain.Route) domain.Route {
	out := make(domain.Route, len(route))
	copy(out, route)
	for i := 1; i < len(out); i++ {
		for out[i].Lon-out[i-1].Lon > 180 {
			out[i].Lon -= 360
		}
		for out[i].Lon-out[i-1].Lon < -180 {
			out[i].Lon += 360
		}
	}
	return out
}
