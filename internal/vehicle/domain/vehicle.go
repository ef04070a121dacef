package domain

// Vehicle is a users/{uid}/cars/{id} document.
type Vehicle struct {
	ID           string `json:"id" firestore:"-"`
	Make         string `json:"make" firestore:"make"`
	Model        string `json:"model" firestore:"model"`
	LicensePlate string `json:"licensePlate" firestore:"licensePlate"`
	VIN          string `json:"vin" firestore:"vin"`
	Year         int    `json:"year" firestore:"year"`
	Color        string `json:"color" firestore:"color"`
	IsPrimary    bool   `json:"isPrimary" firestore:"isPrimary"`
}

// Matches is the duplicate rule: plate and VIN must both be equal.
func (v *Vehicle) Matches(other *Vehicle) bool {
	return v.LicensePlate == other.LicensePlate && v.VIN == other.VIN
}
