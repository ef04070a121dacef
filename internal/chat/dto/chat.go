package dto

import "time"

type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

type MessageResponse struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"senderId"`
	SenderName  string    `json:"senderName"`
	Text        string    `json:"text"`
	IsOwner     bool      `json:"isOwner"`
	Timestamp   time.Time `json:"timestamp"`
	DisplayTime string    `json:"displayTime"`
}

type ChatSummary struct {
	RideID            string `json:"rideId"`
	OwnerName         string `json:"ownerName"`
	From              string `json:"from"`
	To                string `json:"to"`
	Date              string `json:"date"`
	DepartureTime     string `json:"departureTime"`
	IsOwner           bool   `json:"isOwner"`
	LastMessage       string `json:"lastMessage"`
	LastMessageSender string `json:"lastMessageSender"`
	LastMessageTime   string `json:"lastMessageTime"`
}
