package models

import "time"

type User struct {
	ID           int64     `json:"id" db:"id"`
	GoogleID     string    `json:"googleId" db:"google_id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	Picture      string    `json:"picture" db:"picture"`
	ReferralCode string    `json:"referralCode" db:"referral_code"`
	ReferredBy   *string   `json:"referredBy" db:"referred_by"`
	FikaPoints   int       `json:"fikaPoints" db:"fika_points"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// ExternalIdentity is a verified identity returned by the OAuth provider.
type ExternalIdentity struct {
	GoogleID string
	Email    string
	Name     string
	Picture  string
}

type UserResponse struct {
	User User `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
