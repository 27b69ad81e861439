package models

// UserSubscription is a telegram user subscribed to gateway events.
type UserSubscription struct {
	UserID int    `json:"user_id" bson:"user_id"`
	User   string `json:"user" bson:"user"`
}
