package dto

import "github.com/shopspring/decimal"

// PaymentSheetRequest accepts amount as a JSON number or a numeric string.
type PaymentSheetRequest struct {
	RideID string          `json:"rideId" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
	Refund bool            `json:"refund"`
}

type PaymentSheetResponse struct {
	PaymentIntent  string `json:"paymentIntent"`
	EphemeralKey   string `json:"ephemeralKey"`
	Customer       string `json:"customer"`
	PublishableKey string `json:"publishableKey"`
}
