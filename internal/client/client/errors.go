package client

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/gigbook/internal/common"
)

// APIError is a non-2xx answer from the remote API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps the status code onto the common error taxonomy.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusBadRequest, e.StatusCode == http.StatusUnprocessableEntity:
		return common.ErrValidation
	case e.StatusCode == http.StatusUnauthorized, e.StatusCode == http.StatusForbidden:
		return common.ErrUnauthorized
	case e.StatusCode == http.StatusNotFound:
		return common.ErrNotFound
	case e.StatusCode == http.StatusConflict:
		return common.ErrDuplicate
	case e.StatusCode >= 500:
		return common.ErrServer
	default:
		return nil
	}
}
