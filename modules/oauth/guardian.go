package oauth

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/guarzo/tokenguard/common"
	"github.com/guarzo/tokenguard/common/model"
)

// Guardian keeps a credential usable by refreshing it shortly before it expires.
//
// Guardian carries no mutable state. Two callers that find the same credential
// expiring will each perform their own exchange; callers sharing a credential
// must coordinate themselves.
type Guardian struct {
	authClient    common.AuthClient
	bufferMinutes int
	now           func() time.Time
	logger        logrus.FieldLogger
	onRefresh     func(model.Credential) error
}

// NewGuardian creates a Guardian that refreshes through authClient.
func NewGuardian(authClient common.AuthClient, options ...Option) *Guardian {
	ret := &Guardian{
		authClient:    authClient,
		bufferMinutes: DefaultBufferMinutes,
		now:           time.Now,
		logger:        logrus.StandardLogger(),
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

// IsTokenExpiringSoon applies the guardian's clock and buffer to cred.
func (g *Guardian) IsTokenExpiringSoon(cred model.Credential) (bool, error) {
	return IsTokenExpiringSoon(cred, g.now(), g.bufferMinutes)
}

// EnsureValidToken returns cred unchanged while it is not expiring soon,
// otherwise the credential obtained by refreshing it. Refresh errors are
// returned as is.
func (g *Guardian) EnsureValidToken(ctx context.Context, cred model.Credential) (model.Credential, error) {
	now := g.now()
	expiring, err := IsTokenExpiringSoon(cred, now, g.bufferMinutes)
	if err != nil {
		return model.Credential{}, err
	}
	if !expiring {
		return cred, nil
	}

	expiresAt, _ := cred.ExpiresAtUnix()
	g.logger.WithField("expires_in_seconds", expiresAt-now.Unix()).Info("token expiring soon, refreshing")
	return g.authClient.RefreshToken(ctx, cred.RefreshToken)
}
