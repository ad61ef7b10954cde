package models

import "time"

// UserToken represents a stored refresh token
type UserToken struct {
	ID           int       `json:"id"`
	UserID       int       `json:"userId"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RefreshRequest represents a token refresh request body
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenPair is the response carrying freshly issued tokens
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
