package geo

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

var ErrBadCoordinate = errors.New("coordinate out of range")

type Coordinate struct {
	Lat  float64
	Long float64
}

func (c Coordinate) valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Long) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Long >= -180 && c.Long <= 180
}

// Distance returns the great-circle distance between a and b in meters.
// Callers are expected to substitute 0 when an error is returned; listings
// must always render even when a coordinate is unusable.
func Distance(a, b Coordinate) (float64, error) {
	if !a.valid() || !b.valid() {
		return 0, ErrBadCoordinate
	}

	d := orbgeo.DistanceHaversine(
		orb.Point{a.Long, a.Lat},
		orb.Point{b.Long, b.Lat},
	)
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, ErrBadCoordinate
	}

	return d, nil
}
