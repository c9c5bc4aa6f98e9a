package auth

import "errors"

var (
	ErrInvalidRole        = errors.New("invalid user role")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
