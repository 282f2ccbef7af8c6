package models

import "time"

// DefaultCountryCode marks a destination whose country is not known yet.
const DefaultCountryCode = "XX"

// Destination is a stop of a trip.
type Destination struct {
	ID            string    `json:"id"`
	TripID        string    `json:"tripId"`
	OwnerID       int64     `json:"-"`
	Name          string    `json:"name"`
	CountryCode   string    `json:"countryCode"`
	City          *string   `json:"city"`
	Latitude      *float64  `json:"latitude"`
	Longitude     *float64  `json:"longitude"`
	ArrivalDate   *Date     `json:"arrivalDate"`
	DepartureDate *Date     `json:"departureDate"`
	OrderIndex    int       `json:"orderIndex"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// DestinationPatch is the typed form of a destination change payload.
type DestinationPatch struct {
	TripID        Optional[string]  `json:"tripId"`
	Name          Optional[string]  `json:"name"`
	CountryCode   Optional[string]  `json:"countryCode"`
	City          Optional[string]  `json:"city"`
	Latitude      Optional[float64] `json:"latitude"`
	Longitude     Optional[float64] `json:"longitude"`
	ArrivalDate   Optional[Date]    `json:"arrivalDate"`
	DepartureDate Optional[Date]    `json:"departureDate"`
	OrderIndex    Optional[int]     `json:"orderIndex"`
}
