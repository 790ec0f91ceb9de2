package loader

import (
	"errors"
	"fmt"
	"net/http"
)

// Messages shown on page errors
const (
	MsgUnauthorizedDashboard = "Unauthorized access to dashboard"
	MsgUnauthorized          = "Unauthorized"
	MsgInvalidToken          = "Invalid or expired token"
	MsgInvalidResponse       = "Invalid response from server"
	MsgInvalidUser           = "Invalid user data from server"
	MsgInvalidProducts       = "Invalid product data from server"
	MsgProductsUnavailable   = "Failed to load products"
	MsgAPIUnavailable        = "Unable to reach the PriceTracker API"
)

// PageError aborts a page load with a status and a user facing message.
type PageError struct {
	Status  int
	Message string
	Err     error
}

func (e *PageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// Fail builds a PageError
func Fail(status int, message string, cause error) *PageError {
	return &PageError{Status: status, Message: message, Err: cause}
}

// Redirect aborts a page load and sends the browser elsewhere.
type Redirect struct {
	Status   int
	Location string
}

func (r *Redirect) Error() string {
	return fmt.Sprintf("redirect %d to %s", r.Status, r.Location)
}

// RedirectTo builds a Redirect
func RedirectTo(status int, location string) *Redirect {
	return &Redirect{Status: status, Location: location}
}

// IsUnauthorized reports whether err is a 401 page error.
func IsUnauthorized(err error) bool {
	var pe *PageError
	return errors.As(err, &pe) && pe.Status == http.StatusUnauthorized
}
