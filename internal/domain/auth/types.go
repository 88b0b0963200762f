package auth

import "time"

// Config drives token issuing and validation.
type Config struct {
	Secret   string
	TokenTTL time.Duration
}

// Claims describe the caller behind a validated token.
type Claims struct {
	Subject   string
	TokenID   string
	ExpiresAt time.Time
}
