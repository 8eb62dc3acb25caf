package location

import (
	"strings"

	"github.com/fjod/go_grocery/internal/domain"
)

// CurrentLocationStreet labels an address built from a live location fix.
const CurrentLocationStreet = "Current Location"

type ManualAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

func (m ManualAddress) Complete() bool {
	return domain.DeliveryAddress{Street: m.Street, City: m.City, State: m.State, Pincode: m.Pincode}.HasAllFields()
}

// AddressInput is everything the checkout form knows about where to deliver.
type AddressInput struct {
	UseCurrentLocation        bool                     `json:"use_current_location"`
	CurrentLocation           *domain.Coordinates      `json:"current_location,omitempty"`
	SelectedSavedAddressIndex int                      `json:"selected_saved_address_index"`
	SavedAddresses            []domain.DeliveryAddress `json:"saved_addresses,omitempty"`
	Manual                    ManualAddress            `json:"manual"`
}

// NoSavedAddress is the SelectedSavedAddressIndex value for "none selected".
const NoSavedAddress = -1

type Source string

const (
	SourceCurrentLocation Source = "current_location"
	SourceSavedAddress    Source = "saved_address"
	SourceManual          Source = "manual"
)

type Resolved struct {
	Address domain.DeliveryAddress
	Source  Source
	// HasCoordinates is false when a manual address got the {0,0} placeholder.
	HasCoordinates bool
}

func (in AddressInput) currentFix() bool {
	return in.UseCurrentLocation && in.CurrentLocation != nil
}

func (in AddressInput) savedAddress() (domain.DeliveryAddress, bool) {
	i := in.SelectedSavedAddressIndex
	if i < 0 || i >= len(in.SavedAddresses) {
		return domain.DeliveryAddress{}, false
	}
	return in.SavedAddresses[i], true
}

// ResolveEffectiveAddress picks one address: current location, then the
// selected saved address, then the manual fields. It never rejects input.
func ResolveEffectiveAddress(in AddressInput) Resolved {
	if in.currentFix() {
		return Resolved{
			Address: domain.DeliveryAddress{
				Street:   CurrentLocationStreet,
				Location: *in.CurrentLocation,
			},
			Source:         SourceCurrentLocation,
			HasCoordinates: true,
		}
	}

	if saved, ok := in.savedAddress(); ok {
		return Resolved{Address: saved, Source: SourceSavedAddress, HasCoordinates: true}
	}

	addr := domain.DeliveryAddress{
		Street:  strings.TrimSpace(in.Manual.Street),
		City:    strings.TrimSpace(in.Manual.City),
		State:   strings.TrimSpace(in.Manual.State),
		Pincode: strings.TrimSpace(in.Manual.Pincode),
	}
	if in.CurrentLocation != nil {
		addr.Location = *in.CurrentLocation
	}
	return Resolved{Address: addr, Source: SourceManual, HasCoordinates: in.CurrentLocation != nil}
}

// HasDeliverableAddress is the delivery precondition checked before submit.
func HasDeliverableAddress(in AddressInput) bool {
	if in.currentFix() {
		return true
	}
	if _, ok := in.savedAddress(); ok {
		return true
	}
	return in.Manual.Complete()
}
