package domain

import "time"

// Profile is the provisional data of a staged registration.
type Profile struct {
	DisplayName string    `json:"account_name"`
	Email       string    `json:"email"`
	Birthdate   time.Time `json:"birthday"`
}
