package oauth

import (
	"errors"
	"fmt"

	"github.com/guarzo/tokenguard/common/model"
)

var (
	// ErrMalformedExpiry is returned when a credential's expiresAt is not an integer.
	ErrMalformedExpiry = model.ErrMalformedExpiry
	// ErrMissingRefreshToken is returned when a refresh is needed but no refresh token is available.
	ErrMissingRefreshToken = errors.New("no refresh token available")
	// ErrInvalidTokenResponse is returned when a successful token response lacks an access token.
	ErrInvalidTokenResponse = errors.New("token response missing access_token")
)

// ExchangeError captures a non-success status from the token endpoint.
type ExchangeError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("token refresh failed: %d %s - %s", e.StatusCode, e.Status, e.Body)
}
