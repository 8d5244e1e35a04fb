package model

import "github.com/google/uuid"

// User is an account that can sign in with credentials. Password holds the
// bcrypt hash and is never serialized.
type User struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Name     string    `json:"name" db:"name"`
	Email    string    `json:"email" db:"email"`
	Password string    `json:"-" db:"password"`
}

// Customer is who an invoice is billed to.
type Customer struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Name     string    `json:"name" db:"name"`
	Email    string    `json:"email" db:"email"`
	ImageURL string    `json:"imageUrl" db:"image_url"`
}
