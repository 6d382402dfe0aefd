package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrOperatorNotFound = errors.New("operator not found")
var ErrOperatorExists = errors.New("operator already exists")
var ErrAccountNotFound = errors.New("account not found")

// Operator models an authenticated console user (admin or support operator).
type Operator struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
