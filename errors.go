package main

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a request that is missing required input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when the targeted expense does not exist.
	ErrNotFound = errors.New("expense not found")
)

// ConnectionError reports that the store could not be reached or rejected
// the configured credentials.
type ConnectionError struct {
	Host string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("could not connect to the database at %s: %v", e.Host, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
