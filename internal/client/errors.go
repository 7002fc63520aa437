package client

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks a product URL that failed syntactic validation.
// No network call is made for inputs that trip this.
var ErrInvalidInput = errors.New("invalid product URL")

// StartError means the service rejected or failed the start call.
type StartError struct {
	Status int
	Detail string
}

func (e *StartError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("starting pipeline run: %s (status %d)", e.Detail, e.Status)
	}
	return fmt.Sprintf("starting pipeline run: status %d", e.Status)
}

// TransportError means a status request came back unusable: non-2xx, or a
// body that is not JSON. These are terminal for the polling loop.
type TransportError struct {
	Op          string
	Status      int
	ContentType string
}

func (e *TransportError) Error() string {
	if e.ContentType != "" {
		return fmt.Sprintf("%s: unexpected content type %q (status %d)", e.Op, e.ContentType, e.Status)
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.Status)
}
