package models

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID        string    `json:"_id,omitempty"`
	Username  string    `json:"username"`
	Email     string    `json:"user_email"`
	Password  string    `json:"password"`
	Role      string    `json:"user_role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
