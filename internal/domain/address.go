package domain

import "strings"

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinates) IsZero() bool {
	return c.Lat == 0 && c.Lng == 0
}

type DeliveryAddress struct {
	Street   string      `json:"street"`
	City     string      `json:"city"`
	State    string      `json:"state"`
	Pincode  string      `json:"pincode"`
	Location Coordinates `json:"location"`
}

// HasAllFields reports whether street, city, state and pincode are all non-blank.
func (a DeliveryAddress) HasAllFields() bool {
	for _, f := range []string{a.Street, a.City, a.State, a.Pincode} {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}
	return true
}
