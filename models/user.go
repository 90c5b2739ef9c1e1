package models

// User is provisioned by the identity provider; this service only reads it.
type User struct {
	ID        int64  `json:"id" example:"1"`
	Email     string `json:"email" example:"john@example.com"`
	FirstName string `json:"first_name" example:"John"`
	LastName  string `json:"last_name" example:"Doe"`
}
