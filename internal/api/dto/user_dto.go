package dto

import (
	"time"

	"github.com/spec-kit/signup-service/internal/domain"
)

// BirthdayLayout is the wire format of birthdays.
const BirthdayLayout = "2006-01-02"

// UserRegisterRequest payload for staging a new account.
type UserRegisterRequest struct {
	AccountName string `json:"account_name" validate:"required,min=1,max=50"`
	Email       string `json:"email" validate:"required,email,max=255"`
	Birthday    string `json:"birthday" validate:"required,datetime=2006-01-02"`
}

// Profile converts the request into the staged registration profile.
// Call after validation; the birthday layout is already checked there.
func (r UserRegisterRequest) Profile() (domain.Profile, error) {
	birthdate, err := time.Parse(BirthdayLayout, r.Birthday)
	if err != nil {
		return domain.Profile{}, err
	}
	return domain.Profile{
		DisplayName: r.AccountName,
		Email:       r.Email,
		Birthdate:   birthdate,
	}, nil
}

// UserResponse is the public view of an account.
type UserResponse struct {
	UserID           int64     `json:"user_id"`
	Username         string    `json:"username"`
	AccountName      string    `json:"account_name"`
	Email            string    `json:"email"`
	Birthday         string    `json:"birthday"`
	SelfIntroduction *string   `json:"self_introduction,omitempty"`
	ProfileImage     *string   `json:"profile_image,omitempty"`
	HeaderImage      *string   `json:"header_image,omitempty"`
	Verified         bool      `json:"verified"`
	CreatedAt        time.Time `json:"create_datetime"`
}

// NewUserResponse maps an account.
func NewUserResponse(account domain.Account) UserResponse {
	return UserResponse{
		UserID:           account.ID,
		Username:         account.Username,
		AccountName:      account.DisplayName,
		Email:            account.Email,
		Birthday:         account.Birthdate.Format(BirthdayLayout),
		SelfIntroduction: account.SelfIntroduction,
		ProfileImage:     account.ProfileImage,
		HeaderImage:      account.HeaderImage,
		Verified:         account.Verified,
		CreatedAt:        account.CreatedAt,
	}
}

// RegisterVerifyResponse is returned once a registration becomes an account.
type RegisterVerifyResponse struct {
	User  UserResponse  `json:"user"`
	Token TokenResponse `json:"token"`
}
