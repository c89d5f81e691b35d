package kernel

import (
	"errors"
	"fmt"
	"math"

	"ordertracker/internal/pkg/errs"
	"ordertracker/internal/pkg/guard"
)

const (
	LatitudeMin  = -90.0
	LatitudeMax  = 90.0
	LongitudeMin = -180.0
	LongitudeMax = 180.0
)

// ErrGeoPointIsNotConstructed is returned when a zero-value GeoPoint is validated.
var ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError("geo point must be created via NewGeoPoint")

// GeoPoint is a WGS84 latitude/longitude pair in decimal degrees.
// Bounds are inclusive: -90 <= lat <= 90 and -180 <= lng <= 180.
//
// Example:
//
//	p, err := kernel.NewGeoPoint(52.52, 13.405)
//	if err != nil {
//	    // errs.IsValidation(err) == true
//	}
//	fmt.Println(p) // GeoPoint(52.520000,13.405000)
type GeoPoint struct { //nolint:recvcheck //using for validation
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewGeoPoint validates both coordinates and reports every violation at once.
func NewGeoPoint(lat, lng float64) (GeoPoint, error) {
	p := GeoPoint{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(p.setLat(lat), p.setLng(lng)); err != nil {
		return GeoPoint{}, err
	}

	return p, nil
}

// NewOptionalGeoPoint builds a point from a pair of optional coordinates.
// Both absent yields (nil, nil); only one present is a validation error.
func NewOptionalGeoPoint(lat, lng *float64) (*GeoPoint, error) {
	switch {
	case lat == nil && lng == nil:
		return nil, nil //nolint:nilnil // absent coordinate is not an error
	case lat == nil:
		return nil, errs.NewValueIsRequiredErrorWithCause("lat", errors.New("lng given without lat"))
	case lng == nil:
		return nil, errs.NewValueIsRequiredErrorWithCause("lng", errors.New("lat given without lng"))
	}

	p, err := NewGeoPoint(*lat, *lng)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate reports whether the point was built by a constructor.
func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

// Lat returns the latitude.
func (p GeoPoint) Lat() float64 {
	return p.lat
}

// Lng returns the longitude.
func (p GeoPoint) Lng() float64 {
	return p.lng
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("GeoPoint(%f,%f)", p.lat, p.lng)
}

// IsEqual compares two constructed points.
func (p GeoPoint) IsEqual(other GeoPoint) (bool, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return false, err
	}
	return p.lat == other.lat && p.lng == other.lng, nil
}

// setLat and setLng use pointer receivers so the constructor can collect
// every violation before returning.
func (p *GeoPoint) setLat(lat float64) error {
	if math.IsNaN(lat) {
		return errs.NewValueIsInvalidErrorWithCause("lat", errors.New("NaN is not a coordinate"))
	}
	if lat < LatitudeMin || lat > LatitudeMax {
		return errs.NewValueIsOutOfRangeError("lat", lat, LatitudeMin, LatitudeMax)
	}

	p.lat = lat
	return nil
}

func (p *GeoPoint) setLng(lng float64) error {
	if math.IsNaN(lng) {
		return errs.NewValueIsInvalidErrorWithCause("lng", errors.New("NaN is not a coordinate"))
	}
	if lng < LongitudeMin || lng > LongitudeMax {
		return errs.NewValueIsOutOfRangeError("lng", lng, LongitudeMin, LongitudeMax)
	}

	p.lng = lng
	return nil
}
