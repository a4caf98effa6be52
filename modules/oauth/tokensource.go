package oauth

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"

	"github.com/guarzo/tokenguard/common/model"
)

var _ oauth2.TokenSource = (*TokenSource)(nil)

// TokenSource adapts a Guardian to oauth2.TokenSource, holding the latest credential.
// The mutex guards the held value only; concurrent Token calls may each refresh.
type TokenSource struct {
	ctx      context.Context
	guardian *Guardian
	mux      sync.Mutex
	cred     model.Credential
}

// TokenSource returns an oauth2.TokenSource seeded with cred.
func (g *Guardian) TokenSource(ctx context.Context, cred model.Credential) *TokenSource {
	return &TokenSource{
		ctx:      ctx,
		guardian: g,
		cred:     cred,
	}
}

// HTTPClient returns an *http.Client that authorizes every request with a valid bearer token.
// The source is not wrapped in oauth2.ReuseTokenSource, whose own expiry delta
// would bypass the guardian's buffer.
func (g *Guardian) HTTPClient(ctx context.Context, cred model.Credential) *http.Client {
	return &http.Client{
		Transport: &oauth2.Transport{Source: g.TokenSource(ctx, cred)},
	}
}

// Credential returns the currently held credential.
func (s *TokenSource) Credential() model.Credential {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.cred
}

// Token returns a bearer token, refreshing the held credential when it is expiring soon.
func (s *TokenSource) Token() (*oauth2.Token, error) {
	current := s.Credential()
	next, err := s.guardian.EnsureValidToken(s.ctx, current)
	if err != nil {
		return nil, err
	}
	if next != current {
		s.mux.Lock()
		s.cred = next
		s.mux.Unlock()
		if onRefresh := s.guardian.onRefresh; onRefresh != nil {
			if err := onRefresh(next); err != nil {
				return nil, fmt.Errorf("failed to store refreshed credential: %w", err)
			}
		}
	}
	return next.Token()
}
