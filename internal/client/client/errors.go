package client

import "errors"

var (
	ErrUnavailable     = errors.New("server unavailable")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrAlreadyExists   = errors.New("email already registered")
	ErrInvalidArgument = errors.New("invalid input")
	ErrNotLoggedIn     = errors.New("not logged in")
)
