package domain

import (
	"context"
	"time"
)

// UserFields is a user that has not been written to the store yet.
type UserFields struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// User is a persisted user row.
type User struct {
	ID int64 `json:"user_id"`
	UserFields
}

// UserRepository stores users keyed on their email.
type UserRepository interface {
	Upsert(ctx context.Context, user UserFields) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
