package userapi

import "context"

// Service is the remote user service consumed by the store, the form
// controller and the views. Every call is a single attempt; callers decide
// whether to retry.
type Service interface {
	// ListUsers fetches the full user collection in server order.
	ListUsers(ctx context.Context) ([]User, error)

	// GetUser fetches a single user by id.
	GetUser(ctx context.Context, id int) (*User, error)

	// CreateUser sends u as a new record and returns the server's copy,
	// including the assigned id.
	CreateUser(ctx context.Context, u User) (*User, error)

	// UpdateUser replaces the record with the given id and returns the
	// server's copy.
	UpdateUser(ctx context.Context, id int, u User) (*User, error)

	// DeleteUser removes the record with the given id.
	DeleteUser(ctx context.Context, id int) error
}

// Lister is the subset of Service needed to populate a store.
type Lister interface {
	ListUsers(ctx context.Context) ([]User, error)
}
