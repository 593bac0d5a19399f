package models

import (
	"fmt"
	"time"
)

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateUserParams struct {
	UserName string   `json:"userName"`
	Items    []string `json:"items"`
	Year     int      `json:"year"`
}

// NewUserID builds the opaque user identifier from a creation timestamp.
// The format is part of the stored data contract and must stay stable.
func NewUserID(now time.Time) string {
	return fmt.Sprintf("user_%d", now.UTC().UnixMilli())
}
