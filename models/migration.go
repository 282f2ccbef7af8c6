package models

import "time"

// MigrationRequest carries a client's entire offline dataset. Each record
// kind has its own typed shape so that missing required fields are caught
// before the importer touches the database.
type MigrationRequest struct {
	Trips        []TripRecord        `json:"trips" validate:"dive"`
	Destinations []DestinationRecord `json:"destinations" validate:"dive"`
	Expenses     []ExpenseRecord     `json:"expenses" validate:"dive"`
}

// Total is the number of records across all kinds.
func (r MigrationRequest) Total() int {
	return len(r.Trips) + len(r.Destinations) + len(r.Expenses)
}

type TripRecord struct {
	ID             string     `json:"id" validate:"required,max=64"`
	Name           string     `json:"name" validate:"required,max=255"`
	Description    *string    `json:"description"`
	StartDate      *Date      `json:"startDate" validate:"required"`
	EndDate        *Date      `json:"endDate"`
	Budget         *float64   `json:"budget" validate:"omitempty,gte=0"`
	BudgetCurrency string     `json:"budgetCurrency" validate:"omitempty,len=3"`
	CreatedAt      *time.Time `json:"createdAt"`
}

type DestinationRecord struct {
	ID            string     `json:"id" validate:"required,max=64"`
	TripID        string     `json:"tripId" validate:"required,max=64"`
	Name          string     `json:"name" validate:"required,max=255"`
	CountryCode   string     `json:"countryCode" validate:"omitempty,len=2"`
	City          *string    `json:"city"`
	Latitude      *float64   `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude     *float64   `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	ArrivalDate   *Date      `json:"arrivalDate"`
	DepartureDate *Date      `json:"departureDate"`
	OrderIndex    int        `json:"orderIndex" validate:"gte=0"`
	CreatedAt     *time.Time `json:"createdAt"`
}

type ExpenseRecord struct {
	ID            string     `json:"id" validate:"required,max=64"`
	TripID        string     `json:"tripId" validate:"required,max=64"`
	DestinationID *string    `json:"destinationId"`
	Amount        *float64   `json:"amount" validate:"required"`
	Currency      string     `json:"currency" validate:"omitempty,len=3"`
	Category      string     `json:"category"`
	PaymentMethod string     `json:"paymentMethod"`
	Description   *string    `json:"description"`
	ExpenseDate   *Date      `json:"expenseDate"`
	ExpenseTime   *TimeOfDay `json:"expenseTime"`
	CreatedAt     *time.Time `json:"createdAt"`
}

// ImportCounts tallies records per entity type.
type ImportCounts struct {
	Trips        int `json:"trips"`
	Destinations int `json:"destinations"`
	Expenses     int `json:"expenses"`
}

// Add increments the counter of the given entity type.
func (c *ImportCounts) Add(entityType EntityType) {
	switch entityType {
	case EntityTrip:
		c.Trips++
	case EntityDestination:
		c.Destinations++
	case EntityExpense:
		c.Expenses++
	}
}

// MigrationResult summarizes a finished import. Failed counts records that
// were skipped because the database rejected them; Conflicts lists trips
// that already existed.
type MigrationResult struct {
	Imported  ImportCounts `json:"imported"`
	Failed    ImportCounts `json:"failed"`
	Conflicts []Conflict   `json:"conflicts"`
	Message   string       `json:"message"`
}
