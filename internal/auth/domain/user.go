package domain

// User is the users/{uid} document. Identity fields come from the identity
// provider; the ride lists and the unread counter are maintained by the ride
// and notification features.
type User struct {
	ID                      string   `json:"id" firestore:"-"`
	Name                    string   `json:"name" firestore:"name"`
	Email                   string   `json:"email" firestore:"email"`
	RidesPosted             []string `json:"ridesPosted" firestore:"ridesPosted"`
	RidesJoined             []string `json:"ridesJoined" firestore:"ridesJoined"`
	UnreadNotificationCount int64    `json:"unreadNotificationCount" firestore:"unreadNotificationCount"`
	StripeCustomerID        string   `json:"stripeCustomerId,omitempty" firestore:"stripeCustomerId,omitempty"`
}

// Identity is a verified caller.
type Identity struct {
	UID   string `json:"uid"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
