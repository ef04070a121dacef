package dto

type NotificationResponse struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	RideID    string `json:"rideId"`
	Read      bool   `json:"read"`
	New       bool   `json:"new"`
	CreatedAt string `json:"createdAt"`
}

type RegisterDeviceRequest struct {
	Token      string `json:"token" binding:"required"`
	DeviceInfo string `json:"device_info"`
}
