package client

import (
	"errors"

	"google.golang.org/grpc/codes"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("not logged in")
)

// RemoteError is a call rejected by the server. Err is the sentinel the
// server named, if it named a known one.
type RemoteError struct {
	Code    codes.Code
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
