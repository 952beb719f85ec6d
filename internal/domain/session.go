package domain

import "time"

// Session is the client-held proof of authentication plus the identity fields
// needed to build attendance payloads. It is the single source of truth for
// "is someone logged in and with what role".
type Session struct {
	Token          string    `json:"token"`
	UserID         string    `json:"userId"`
	Name           string    `json:"name"`
	RegisterNumber string    `json:"registerNumber"`
	Department     string    `json:"department"`
	Role           Role      `json:"role"`
	SavedAt        time.Time `json:"savedAt"`
}
