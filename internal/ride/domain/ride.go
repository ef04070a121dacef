package domain

import "slices"

type RideStatus string

const (
	RideStatusOpen   RideStatus = "open"
	RideStatusClosed RideStatus = "closed"
)

// Ride is the rides/{id} document. OwnerName is a snapshot taken at posting
// time and is not kept in sync with the owner's profile.
type Ride struct {
	ID                string     `json:"id" firestore:"-"`
	OwnerID           string     `json:"ownerId" firestore:"ownerId"`
	OwnerName         string     `json:"ownerName" firestore:"ownerName"`
	From              string     `json:"from" firestore:"from"`
	To                string     `json:"to" firestore:"to"`
	Date              string     `json:"date" firestore:"date"`
	DepartureTime     string     `json:"departureTime" firestore:"departureTime"`
	MaxPassengers     int        `json:"maxPassengers" firestore:"maxPassengers"`
	Cost              float64    `json:"cost" firestore:"cost"`
	CurrentPassengers []string   `json:"currentPassengers" firestore:"currentPassengers"`
	Car               string     `json:"car,omitempty" firestore:"car,omitempty"`
	LicensePlate      string     `json:"licensePlate,omitempty" firestore:"licensePlate,omitempty"`
	Status            RideStatus `json:"status" firestore:"status"`
}

func (r *Ride) HasPassenger(userID string) bool {
	return slices.Contains(r.CurrentPassengers, userID)
}

func (r *Ride) IsFull() bool {
	return len(r.CurrentPassengers) >= r.MaxPassengers
}

// StatusForSeats is closed once every seat is taken and open otherwise.
func (r *Ride) StatusForSeats() RideStatus {
	if r.IsFull() {
		return RideStatusClosed
	}
	return RideStatusOpen
}

func (r *Ride) SeatsLeft() int {
	return max(r.MaxPassengers-len(r.CurrentPassengers), 0)
}

// SameTrip reports whether two rides share route, date and departure time.
func (r *Ride) SameTrip(other *Ride) bool {
	return r.From == other.From &&
		r.To == other.To &&
		r.Date == other.Date &&
		r.DepartureTime == other.DepartureTime
}
