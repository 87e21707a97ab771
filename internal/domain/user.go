// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const (
	MaxUsernameLen = 36
	MinPasswordLen = 4
)

var (
	ErrUsernameEmpty    = errors.New("username empty")
	ErrUsernameTooLong  = errors.New("username too long")
	ErrPasswordTooShort = errors.New("password too short")
)

type UserID int64

// User is an authenticated identity. It is attached to a connection once,
// at upgrade time, and never changes for that connection's lifetime.
type User struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// ValidateCredentials checks a registration request before it reaches
// the store or the hasher.
func ValidateCredentials(username, password string) error {
	if len(username) == 0 {
		return ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	if len(password) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	return nil
}
