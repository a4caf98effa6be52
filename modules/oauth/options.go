package oauth

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/guarzo/tokenguard/common"
	"github.com/guarzo/tokenguard/common/model"
)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTokenURL sets the token endpoint.
func WithTokenURL(tokenURL string) ClientOption {
	return func(c *Client) {
		c.tokenURL = tokenURL
	}
}

// WithHttpClient sets the HTTP client used for the exchange. An *http.Client satisfies common.HttpClient.
func WithHttpClient(httpClient common.HttpClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithUserAgent sets the User-Agent of the default HTTP client.
// Ignored when WithHttpClient is used.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithClock sets the clock used to compute expiresAt.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// WithClientLogger sets the client logger.
func WithClientLogger(logger logrus.FieldLogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// Option configures a Guardian.
type Option func(*Guardian)

// WithBufferMinutes sets how many minutes before expiry a refresh is triggered.
func WithBufferMinutes(minutes int) Option {
	return func(g *Guardian) {
		g.bufferMinutes = minutes
	}
}

// WithGuardianClock sets the clock used by the expiry check.
func WithGuardianClock(now func() time.Time) Option {
	return func(g *Guardian) {
		g.now = now
	}
}

// WithLogger sets the guardian logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(g *Guardian) {
		g.logger = logger
	}
}

// WithOnRefresh registers a callback invoked by TokenSource after each refresh,
// typically to persist the new credential.
func WithOnRefresh(onRefresh func(model.Credential) error) Option {
	return func(g *Guardian) {
		g.onRefresh = onRefresh
	}
}
