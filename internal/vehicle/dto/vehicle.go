package dto

type AddVehicleRequest struct {
	Make         string `json:"make" validate:"required"`
	Model        string `json:"model" validate:"required"`
	LicensePlate string `json:"licensePlate" validate:"required"`
	VIN          string `json:"vin" validate:"required"`
	Year         int    `json:"year" validate:"required,min=1900,max=2100"`
	Color        string `json:"color"`
	IsPrimary    bool   `json:"isPrimary"`
}
