package domain

import "time"

// RideChat is the ride_chats/{rideId} document. Route and owner fields are
// snapshots taken when the ride is posted.
type RideChat struct {
	RideID               string    `json:"rideId" firestore:"rideId"`
	OwnerID              string    `json:"ownerId" firestore:"ownerId"`
	OwnerName            string    `json:"ownerName" firestore:"ownerName"`
	From                 string    `json:"from" firestore:"from"`
	To                   string    `json:"to" firestore:"to"`
	Date                 string    `json:"date" firestore:"date"`
	DepartureTime        string    `json:"departureTime" firestore:"departureTime"`
	Participants         []string  `json:"participants" firestore:"participants"`
	LastMessage          string    `json:"lastMessage" firestore:"lastMessage"`
	LastMessageSender    string    `json:"lastMessageSender" firestore:"lastMessageSender"`
	LastMessageTimestamp time.Time `json:"lastMessageTimestamp" firestore:"lastMessageTimestamp"`
}

func (c *RideChat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Message is a ride_chats/{rideId}/messages/{id} document. IsOwner is fixed
// when the message is sent.
type Message struct {
	ID         string    `json:"id" firestore:"-"`
	SenderID   string    `json:"senderId" firestore:"senderId"`
	SenderName string    `json:"senderName" firestore:"senderName"`
	Text       string    `json:"text" firestore:"text"`
	Timestamp  time.Time `json:"timestamp" firestore:"timestamp"`
	IsOwner    bool      `json:"isOwner" firestore:"isOwner"`
}
