package models

import "time"

// User accounts come in two flavours: real registered users and ML
// users created by the MovieLens ratings import (ML=true, no
// credentials).
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email,omitempty"`
	Username  string    `json:"username,omitempty"`
	ML        bool      `json:"ml"`
	CreatedAt time.Time `json:"created_at"`
}
