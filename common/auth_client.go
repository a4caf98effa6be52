package common

import (
	"context"

	"github.com/guarzo/tokenguard/common/model"
)

// AuthClient defines the ability to exchange a refresh token for a new credential.
type AuthClient interface {
	// RefreshToken attempts to refresh using the given refresh token string.
	// Returns a new Credential on success, or an error if refresh fails.
	RefreshToken(ctx context.Context, refreshToken string) (model.Credential, error)
}
