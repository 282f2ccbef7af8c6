package models

import "time"

// DefaultBudgetCurrency is applied to trips created without a currency.
const DefaultBudgetCurrency = "KRW"

// Trip is the root of the ownership tree: destinations and expenses belong
// to a user only through their trip.
type Trip struct {
	ID             string    `json:"id"`
	UserID         int64     `json:"-"`
	Name           string    `json:"name"`
	Description    *string   `json:"description"`
	StartDate      Date      `json:"startDate"`
	EndDate        *Date     `json:"endDate"`
	Budget         *float64  `json:"budget"`
	BudgetCurrency string    `json:"budgetCurrency"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TripPatch is the typed form of a trip change payload.
type TripPatch struct {
	Name           Optional[string]  `json:"name"`
	Description    Optional[string]  `json:"description"`
	StartDate      Optional[Date]    `json:"startDate"`
	EndDate        Optional[Date]    `json:"endDate"`
	Budget         Optional[float64] `json:"budget"`
	BudgetCurrency Optional[string]  `json:"budgetCurrency"`
}
