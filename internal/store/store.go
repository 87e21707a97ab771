// Package store is the durable side of the service: users and rooms in
// PostgreSQL. Live membership never lives here.
package store

import "errors"

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateName is returned when a unique constraint on a name
	// column rejects an insert.
	ErrDuplicateName = errors.New("duplicate name")
)
