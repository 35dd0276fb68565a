package models

import "time"

// TokenBlacklist stores JWTs revoked by logout. Rows are consulted by the
// auth middleware on every request and purged once the token itself expires.
type TokenBlacklist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Token     string    `gorm:"size:512;uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
