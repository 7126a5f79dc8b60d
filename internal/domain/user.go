package domain

import "time"

// Account is a permanent user promoted from a staged registration.
// Username and Email are globally unique; rows are soft-deleted only.
type Account struct {
	ID               int64     `json:"user_id"`
	Username         string    `json:"username"`
	DisplayName      string    `json:"account_name"`
	Email            string    `json:"email"`
	Birthdate        time.Time `json:"birthday"`
	SelfIntroduction *string   `json:"self_introduction,omitempty"`
	ProfileImage     *string   `json:"profile_image,omitempty"`
	HeaderImage      *string   `json:"header_image,omitempty"`
	Verified         bool      `json:"verified"`
	AuthFailureCount int       `json:"auth_failure_count"`
	Locked           bool      `json:"account_locked"`
	Deleted          bool      `json:"deleted"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Active reports whether the account may hold sessions.
func (a Account) Active() bool {
	return !a.Locked && !a.Deleted
}
