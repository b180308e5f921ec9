package catalog

import (
	"fmt"
	"net/http"
)

// NotFoundError is returned when a gadget id is not in the inventory.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("gadget with ID %d not found in inventory", e.ID)
}

// StatusCode returns the HTTP status code for this error.
func (e *NotFoundError) StatusCode() int {
	return http.StatusNotFound
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *NotFoundError) Hint() string {
	return "Use GET /status for inventory totals. Gadget IDs start at 1."
}
