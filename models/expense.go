package models

import "time"

const (
	DefaultPaymentMethod   = "card"
	DefaultExpenseCurrency = "KRW"
	DefaultExpenseCategory = "other"
)

// Expense is money spent on a trip, optionally attributed to a destination.
type Expense struct {
	ID            string     `json:"id"`
	TripID        string     `json:"tripId"`
	OwnerID       int64      `json:"-"`
	DestinationID *string    `json:"destinationId"`
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency"`
	Category      string     `json:"category"`
	PaymentMethod string     `json:"paymentMethod"`
	Description   *string    `json:"description"`
	ExpenseDate   Date       `json:"expenseDate"`
	ExpenseTime   *TimeOfDay `json:"expenseTime"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// ExpensePatch is the typed form of an expense change payload.
type ExpensePatch struct {
	TripID        Optional[string]    `json:"tripId"`
	DestinationID Optional[string]    `json:"destinationId"`
	Amount        Optional[float64]   `json:"amount"`
	Currency      Optional[string]    `json:"currency"`
	Category      Optional[string]    `json:"category"`
	PaymentMethod Optional[string]    `json:"paymentMethod"`
	Description   Optional[string]    `json:"description"`
	ExpenseDate   Optional[Date]      `json:"expenseDate"`
	ExpenseTime   Optional[TimeOfDay] `json:"expenseTime"`
}
