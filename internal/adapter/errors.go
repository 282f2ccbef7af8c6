package adapter

import "errors"

// Errors mapped from the sync server's HTTP status codes.
var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrNotFound            = errors.New("not found")
	ErrInternalServerError = errors.New("internal server error")
	ErrBadGateway          = errors.New("bad gateway")

	// ErrUnsuccessful is returned for a 2xx response whose envelope reports
	// success=false.
	ErrUnsuccessful = errors.New("server reported failure")

	ErrInvalidAddress = errors.New("invalid adapter http address")
)
