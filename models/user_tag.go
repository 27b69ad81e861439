package models

type UserTag struct {
	IdTag     string `json:"id_tag" bson:"id_tag"`
	UserId    string `json:"user_id" bson:"user_id"`
	Username  string `json:"username" bson:"username"`
	IsEnabled bool   `json:"is_enabled" bson:"is_enabled"`
	Note      string `json:"note" bson:"note"`
}
