package domain

import "time"

// PaymentRecord is a ledger row for every payment intent the service created.
type PaymentRecord struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	UserID      string    `json:"user_id" gorm:"index;not null"`
	RideID      string    `json:"ride_id" gorm:"index;not null"`
	IntentID    string    `json:"intent_id" gorm:"uniqueIndex;not null"`
	CustomerID  string    `json:"customer_id"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Refund      bool      `json:"refund"`
	CreatedAt   time.Time `json:"created_at"`
}
