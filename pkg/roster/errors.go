package roster

import (
	"fmt"
	"net/http"
)

// NotFoundError is returned when a contact id is not in the roster.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("contact with ID %d not found", e.ID)
}

// StatusCode returns the HTTP status code for this error.
func (e *NotFoundError) StatusCode() int {
	return http.StatusNotFound
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *NotFoundError) Hint() string {
	return "Use GET /contacts to list stored contacts and their IDs."
}

// ConflictError is returned when a contact name already exists. Name
// comparison is case-insensitive, so "Gamora" conflicts with "gamora".
type ConflictError struct {
	Name string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("contact named %q already exists", e.Name)
}

// StatusCode returns the HTTP status code for this error. The API
// reports duplicates as 400 rather than 409 to match its published
// contract.
func (e *ConflictError) StatusCode() int {
	return http.StatusBadRequest
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *ConflictError) Hint() string {
	return "Contact names are unique ignoring case. Pick a different name."
}
