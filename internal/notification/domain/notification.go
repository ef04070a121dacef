package domain

import "time"

// Notification is a users/{uid}/notifications/{id} document.
type Notification struct {
	ID        string    `json:"id" firestore:"-"`
	Message   string    `json:"message" firestore:"message"`
	RideID    string    `json:"rideId" firestore:"rideId"`
	Read      bool      `json:"read" firestore:"read"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

// DeviceToken is a Firebase Cloud Messaging registration token for push
// delivery of notifications.
type DeviceToken struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	UserID     string    `json:"user_id" gorm:"index;not null"`
	Token      string    `json:"-" gorm:"uniqueIndex;not null"`
	DeviceInfo string    `json:"device_info"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
