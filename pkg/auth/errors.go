package auth

import "errors"

var (
	ErrNoProviders        = errors.New("no oauth provider configured")
	ErrUnknownProvider    = errors.New("unknown oauth provider")
	ErrMissingBearerToken = errors.New("missing bearer token")
)
