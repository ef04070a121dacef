package dto

import "roadbuddy-backend/internal/ride/domain"

// PostRideRequest is validated in the usecase so every entry point gets the
// same rules.
type PostRideRequest struct {
	From          string   `json:"from" validate:"required"`
	To            string   `json:"to" validate:"required"`
	Date          string   `json:"date" validate:"required,datetime=2006-01-02"`
	DepartureTime string   `json:"departureTime" validate:"required"`
	MaxPassengers int      `json:"maxPassengers" validate:"required,min=1"`
	Cost          *float64 `json:"cost" validate:"required,gte=0"`
	Car           string   `json:"car"`
	LicensePlate  string   `json:"licensePlate"`
}

type PostRideResponse struct {
	RideID string `json:"rideId"`
}

type RideResponse struct {
	ID                string   `json:"id"`
	OwnerID           string   `json:"ownerId"`
	OwnerName         string   `json:"ownerName"`
	From              string   `json:"from"`
	To                string   `json:"to"`
	Date              string   `json:"date"`
	DepartureTime     string   `json:"departureTime"`
	MaxPassengers     int      `json:"maxPassengers"`
	SeatsLeft         int      `json:"seatsLeft"`
	Cost              string   `json:"cost"`
	CurrentPassengers []string `json:"currentPassengers"`
	Car               string   `json:"car,omitempty"`
	LicensePlate      string   `json:"licensePlate,omitempty"`
	Status            string   `json:"status"`
	IsOwner           bool     `json:"isOwner"`
}

type UpcomingRidesResponse struct {
	Posted []RideResponse `json:"posted"`
	Joined []RideResponse `json:"joined"`
}

type JoinRideResponse struct {
	Ride             RideResponse `json:"ride"`
	AlreadyPassenger bool         `json:"alreadyPassenger"`
}

type DeleteRideResponse struct {
	RideID        string   `json:"rideId"`
	RefundedUsers []string `json:"refundedUsers"`
	RefundPerUser string   `json:"refundPerUser"`
}

// SweepResult summarizes one expiry sweep.
type SweepResult struct {
	Expired int `json:"expired"`
	Failed  int `json:"failed"`
}

func NewRideResponse(r *domain.Ride, viewerID string, cost string) RideResponse {
	passengers := r.CurrentPassengers
	if passengers == nil {
		passengers = []string{}
	}
	return RideResponse{
		ID:                r.ID,
		OwnerID:           r.OwnerID,
		OwnerName:         r.OwnerName,
		From:              r.From,
		To:                r.To,
		Date:              r.Date,
		DepartureTime:     r.DepartureTime,
		MaxPassengers:     r.MaxPassengers,
		SeatsLeft:         r.SeatsLeft(),
		Cost:              cost,
		CurrentPassengers: passengers,
		Car:               r.Car,
		LicensePlate:      r.LicensePlate,
		Status:            string(r.Status),
		IsOwner:           r.OwnerID == viewerID,
	}
}
