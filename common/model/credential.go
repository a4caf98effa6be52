package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

// ErrMalformedExpiry is returned when a Credential's ExpiresAt is not an integer.
var ErrMalformedExpiry = errors.New("malformed expiresAt")

// Credential is the OAuth credential shared with the hosting application.
// ExpiresAt holds absolute Unix epoch seconds encoded as a decimal string.
type Credential struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    string `json:"expiresAt"`
}

// ExpiresAtUnix parses ExpiresAt into Unix seconds.
func (c Credential) ExpiresAtUnix() (int64, error) {
	secs, err := strconv.ParseInt(c.ExpiresAt, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", ErrMalformedExpiry, c.ExpiresAt, err)
	}
	return secs, nil
}

// Usable reports whether all three fields are set.
func (c Credential) Usable() bool {
	return c.AccessToken != "" && c.RefreshToken != "" && c.ExpiresAt != ""
}

// Token converts the credential into a bearer *oauth2.Token.
func (c Credential) Token() (*oauth2.Token, error) {
	secs, err := c.ExpiresAtUnix()
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: c.RefreshToken,
		Expiry:       time.Unix(secs, 0),
	}, nil
}

// FromToken builds a Credential from an *oauth2.Token.
// A zero Expiry yields an empty ExpiresAt.
func FromToken(token *oauth2.Token) Credential {
	if token == nil {
		return Credential{}
	}
	cred := Credential{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if !token.Expiry.IsZero() {
		cred.ExpiresAt = FormatExpiresAt(token.Expiry)
	}
	return cred
}

// FormatExpiresAt encodes t as Unix seconds the way ExpiresAt stores it.
func FormatExpiresAt(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}

// JSONUnmarshal decodes data into out.
func JSONUnmarshal(data []byte, out interface{}) error {
	return json.Unmarshal(data, out)
}
