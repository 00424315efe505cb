package geolocation

import (
	"context"
	"errors"

	"dine-server/models"
)

// ErrLocationUnavailable covers denial, missing capability and timeouts alike.
var ErrLocationUnavailable = errors.New("location unavailable")

// Locator is the one-shot "current device position" capability.
type Locator interface {
	CurrentPosition(ctx context.Context) (models.UserLocation, error)
}

// LocatorFunc adapts a plain function to a Locator.
type LocatorFunc func(ctx context.Context) (models.UserLocation, error)

func (f LocatorFunc) CurrentPosition(ctx context.Context) (models.UserLocation, error) {
	return f(ctx)
}

// StaticLocator reports a coordinate pair the browser already resolved.
type StaticLocator struct {
	Location models.UserLocation
}

func NewStaticLocator(lat, lon float64) *StaticLocator {
	return &StaticLocator{Location: models.UserLocation{Latitude: lat, Longitude: lon}}
}

func (l *StaticLocator) CurrentPosition(ctx context.Context) (models.UserLocation, error) {
	if err := ctx.Err(); err != nil {
		return models.UserLocation{}, ErrLocationUnavailable
	}
	return l.Location, nil
}

// UnavailableLocator is used when the user denied access or the browser has no API.
type UnavailableLocator struct{}

func (UnavailableLocator) CurrentPosition(context.Context) (models.UserLocation, error) {
	return models.UserLocation{}, ErrLocationUnavailable
}

// Resolve asks l once. Any failure, including a nil locator, comes back as
// ErrLocationUnavailable.
func Resolve(ctx context.Context, l Locator) (*models.UserLocation, error) {
	if l == nil {
		return nil, ErrLocationUnavailable
	}
	loc, err := l.CurrentPosition(ctx)
	if err != nil {
		if errors.Is(err, ErrLocationUnavailable) {
			return nil, err
		}
		return nil, errors.Join(ErrLocationUnavailable, err)
	}
	if !Valid(loc) {
		return nil, ErrLocationUnavailable
	}
	return &loc, nil
}

// Valid reports whether loc is a real coordinate pair.
func Valid(loc models.UserLocation) bool {
	return loc.Latitude >= -90 && loc.Latitude <= 90 &&
		loc.Longitude >= -180 && loc.Longitude <= 180
}
