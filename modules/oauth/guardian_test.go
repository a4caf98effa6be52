package oauth_test

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guarzo/tokenguard/common/model"
	"github.com/guarzo/tokenguard/modules/oauth"
)

type mockAuth struct {
	calls       int
	refreshFunc func(ctx context.Context, refreshToken string) (model.Credential, error)
}

func (m *mockAuth) RefreshToken(ctx context.Context, refreshToken string) (model.Credential, error) {
	m.calls++
	if m.refreshFunc != nil {
		return m.refreshFunc(ctx, refreshToken)
	}
	return model.Credential{}, errors.New("mockAuth called refresh, but no func set")
}

func newTestGuardian(auth *mockAuth, options ...oauth.Option) *oauth.Guardian {
	logger, _ := logtest.NewNullLogger()
	options = append([]oauth.Option{
		oauth.WithGuardianClock(func() time.Time { return fixedNow }),
		oauth.WithLogger(logger),
	}, options...)
	return oauth.NewGuardian(auth, options...)
}

func TestGuardian_EnsureValidToken_NotExpiring(t *testing.T) {
	auth := &mockAuth{}
	cred := credentialExpiringIn(900)

	got, err := newTestGuardian(auth).EnsureValidToken(context.Background(), cred)
	require.NoError(t, err)
	assert.Equal(t, cred, got)
	assert.Zero(t, auth.calls)
}

func TestGuardian_EnsureValidToken_Refreshes(t *testing.T) {
	refreshed := model.Credential{
		AccessToken:  "new-access-token",
		RefreshToken: "new-refresh-token",
		ExpiresAt:    strconv.FormatInt(fixedNow.Unix()+3600, 10),
	}
	auth := &mockAuth{
		refreshFunc: func(ctx context.Context, refreshToken string) (model.Credential, error) {
			assert.Equal(t, "old-refresh", refreshToken)
			return refreshed, nil
		},
	}
	cred := credentialExpiringIn(300)
	cred.AccessToken = "old-token"
	cred.RefreshToken = "old-refresh"

	got, err := newTestGuardian(auth).EnsureValidToken(context.Background(), cred)
	require.NoError(t, err)
	assert.Equal(t, refreshed, got)
	assert.Equal(t, 1, auth.calls)
}

func TestGuardian_EnsureValidToken_ExpiredRefreshes(t *testing.T) {
	auth := &mockAuth{
		refreshFunc: func(ctx context.Context, refreshToken string) (model.Credential, error) {
			return credentialExpiringIn(3600), nil
		},
	}

	_, err := newTestGuardian(auth).EnsureValidToken(context.Background(), credentialExpiringIn(-60))
	require.NoError(t, err)
	assert.Equal(t, 1, auth.calls)
}

func TestGuardian_EnsureValidToken_PropagatesError(t *testing.T) {
	exchangeErr := &oauth.ExchangeError{StatusCode: http.StatusBadRequest, Status: "Bad Request", Body: "Invalid refresh token"}
	auth := &mockAuth{
		refreshFunc: func(ctx context.Context, refreshToken string) (model.Credential, error) {
			return model.Credential{}, exchangeErr
		},
	}

	got, err := newTestGuardian(auth).EnsureValidToken(context.Background(), credentialExpiringIn(300))
	assert.Same(t, exchangeErr, err)
	assert.Zero(t, got)
}

func TestGuardian_EnsureValidToken_Malformed(t *testing.T) {
	auth := &mockAuth{}
	cred := model.Credential{AccessToken: "a", RefreshToken: "r", ExpiresAt: "not-a-number"}

	_, err := newTestGuardian(auth).EnsureValidToken(context.Background(), cred)
	assert.ErrorIs(t, err, oauth.ErrMalformedExpiry)
	assert.Zero(t, auth.calls)
}

func TestGuardian_BufferMinutes(t *testing.T) {
	auth := &mockAuth{}
	cred := credentialExpiringIn(900)

	guardian := newTestGuardian(auth)
	expiring, err := guardian.IsTokenExpiringSoon(cred)
	require.NoError(t, err)
	assert.False(t, expiring)

	guardian = newTestGuardian(auth, oauth.WithBufferMinutes(20))
	expiring, err = guardian.IsTokenExpiringSoon(cred)
	require.NoError(t, err)
	assert.True(t, expiring)
}

func TestGuardian_EnsureValidToken_LogsRefresh(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	auth := &mockAuth{
		refreshFunc: func(ctx context.Context, refreshToken string) (model.Credential, error) {
			return credentialExpiringIn(3600), nil
		},
	}
	guardian := oauth.NewGuardian(auth,
		oauth.WithGuardianClock(func() time.Time { return fixedNow }),
		oauth.WithLogger(logger),
	)

	_, err := guardian.EnsureValidToken(context.Background(), credentialExpiringIn(300))
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "token expiring soon, refreshing", entry.Message)
	assert.Equal(t, int64(300), entry.Data["expires_in_seconds"])
}

// End to end against a stand-in token endpoint.
func TestGuardian_WithClient(t *testing.T) {
	ts, requests := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"access_token":  "new-access-token",
			"refresh_token": "new-refresh-token",
			"expires_in":    3600,
		})
	})
	logger, _ := logtest.NewNullLogger()
	guardian := oauth.NewGuardian(newTestClient(ts, logger),
		oauth.WithGuardianClock(func() time.Time { return fixedNow }),
		oauth.WithLogger(logger),
	)

	valid := credentialExpiringIn(900)
	got, err := guardian.EnsureValidToken(context.Background(), valid)
	require.NoError(t, err)
	assert.Equal(t, valid, got)
	assert.Empty(t, requests.all())

	got, err = guardian.EnsureValidToken(context.Background(), credentialExpiringIn(300))
	require.NoError(t, err)
	assert.Equal(t, model.Credential{
		AccessToken:  "new-access-token",
		RefreshToken: "new-refresh-token",
		ExpiresAt:    strconv.FormatInt(fixedNow.Unix()+3600, 10),
	}, got)
	require.Len(t, requests.all(), 1)
	assert.Equal(t, "grant_type=refresh_token&refresh_token=test-refresh", requests.all()[0].body)
}
