package location

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fjod/go_grocery/internal/domain"
)

var ErrPermissionDenied = errors.New("location permission denied")

// Provider is the device geolocation collaborator.
type Provider interface {
	RequestPermission(ctx context.Context) (bool, error)
	CurrentPosition(ctx context.Context) (domain.Coordinates, error)
}

// Geocoder turns coordinates into a street address. Best effort.
type Geocoder interface {
	Reverse(ctx context.Context, at domain.Coordinates) (*domain.DeliveryAddress, error)
}

type Fix struct {
	Coordinates domain.Coordinates
	Address     *domain.DeliveryAddress
}

// Capture asks for permission, reads the position and reverse-geocodes it.
// Failures are not fatal to checkout: the error is logged and returned so the
// caller can fall back to manual entry, and a geocoding failure still yields a
// fix without an address.
func Capture(ctx context.Context, p Provider, g Geocoder, log *slog.Logger) (*Fix, error) {
	granted, err := p.RequestPermission(ctx)
	if err != nil {
		log.WarnContext(ctx, "location permission request failed", "error", err)
		return nil, err
	}
	if !granted {
		return nil, ErrPermissionDenied
	}

	at, err := p.CurrentPosition(ctx)
	if err != nil {
		log.WarnContext(ctx, "location fetch failed", "error", err)
		return nil, err
	}

	fix := &Fix{Coordinates: at}
	if g == nil {
		return fix, nil
	}
	addr, err := g.Reverse(ctx, at)
	if err != nil {
		log.InfoContext(ctx, "reverse geocoding failed, keeping coordinates only", "error", err)
		return fix, nil
	}
	if addr != nil {
		withCoords := *addr
		withCoords.Location = at
		fix.Address = &withCoords
	}
	return fix, nil
}

// Apply folds a captured fix into the checkout input; a nil fix turns current
// location off so the form falls back to saved or manual addresses.
func (in AddressInput) Apply(fix *Fix) AddressInput {
	if fix == nil {
		in.UseCurrentLocation = false
		in.CurrentLocation = nil
		return in
	}
	at := fix.Coordinates
	in.UseCurrentLocation = true
	in.CurrentLocation = &at
	if fix.Address != nil && !in.Manual.Complete() {
		in.Manual = ManualAddress{
			Street:  fix.Address.Street,
			City:    fix.Address.City,
			State:   fix.Address.State,
			Pincode: fix.Address.Pincode,
		}
	}
	return in
}
