package models

import (
	"time"
)

// User is a local snapshot of the profile service's user table, populated by
// the sync worker. The badge engine needs the bot flag for rating statistics
// and the credential count for the security badge.
type User struct {
	ID                  string     `gorm:"primaryKey;type:uuid" json:"id"`
	Username            string     `gorm:"uniqueIndex;not null" json:"username"`
	IsBot               bool       `gorm:"default:false" json:"is_bot"`
	WebAuthnCredentials int        `gorm:"default:0" json:"webauthn_credentials"`
	CreatedAt           time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	LastSyncedAt        *time.Time `json:"last_synced_at,omitempty"`
}
