package models

import "time"

// Reset link lifecycle. Active links expire 24 hours after creation;
// used and expired are terminal.
const (
	ResetActive  = 1
	ResetUsed    = 2
	ResetExpired = 3
)

type PassReset struct {
	ID          string    `json:"_id,omitempty"`
	Email       string    `json:"user_email"`
	ResetPhrase string    `json:"reset_phrase"`
	Status      int       `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
