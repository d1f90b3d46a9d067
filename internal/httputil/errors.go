package httputil

import "errors"

var (
	ErrInvalidBody      = errors.New("the request body could not be parsed as JSON")
	ErrRequestBodyEmpty = errors.New("the request body is empty, send the resource fields as JSON")
	ErrInvalidUUID      = errors.New("the ID in the URL is not a valid UUID")
)
