package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/guarzo/tokenguard/common"
	"github.com/guarzo/tokenguard/common/model"
)

const (
	// DefaultTokenURL is the Anthropic OAuth token endpoint.
	DefaultTokenURL = "https://api.anthropic.com/v1/oauth/token"
	// DefaultUserAgent is sent on refresh requests made with the default HTTP client.
	DefaultUserAgent = "tokenguard"
)

var _ common.AuthClient = (*Client)(nil)

// tokenResponse is the token endpoint's success body.
type tokenResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    json.Number `json:"expires_in"`
}

// Client performs the refresh_token grant against a token endpoint.
// It holds no per-call state and is safe for concurrent use.
type Client struct {
	tokenURL   string
	userAgent  string
	httpClient common.HttpClient
	now        func() time.Time
	logger     logrus.FieldLogger
}

// NewClient creates a Client for DefaultTokenURL unless configured otherwise.
func NewClient(options ...ClientOption) *Client {
	ret := &Client{
		tokenURL:  DefaultTokenURL,
		userAgent: DefaultUserAgent,
		now:       time.Now,
		logger:    logrus.StandardLogger(),
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.httpClient == nil {
		ret.httpClient = common.NewHttpClient(ret.userAgent, &http.Client{})
	}
	return ret
}

// RefreshToken exchanges refreshToken for a new credential with a single POST.
// A non-2xx response yields an *ExchangeError; nothing is retried.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (model.Credential, error) {
	if refreshToken == "" {
		return model.Credential{}, ErrMissingRefreshToken
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return model.Credential{}, fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("making token refresh request")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Credential{}, fmt.Errorf("token refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// body is best effort; the status alone is enough to fail
		body, _ := io.ReadAll(resp.Body)
		exchangeErr := &ExchangeError{
			StatusCode: resp.StatusCode,
			Status:     statusText(resp),
			Body:       string(body),
		}
		c.logger.WithFields(logrus.Fields{
			"status_code":   exchangeErr.StatusCode,
			"status":        exchangeErr.Status,
			"response_body": exchangeErr.Body,
		}).Error("token refresh failed")
		return model.Credential{}, exchangeErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Credential{}, fmt.Errorf("failed to read token response: %w", err)
	}
	var data tokenResponse
	if err = model.JSONUnmarshal(body, &data); err != nil {
		return model.Credential{}, fmt.Errorf("failed to decode token response: %w", err)
	}
	if data.AccessToken == "" {
		return model.Credential{}, ErrInvalidTokenResponse
	}
	expiresIn, err := seconds(data.ExpiresIn)
	if err != nil {
		return model.Credential{}, fmt.Errorf("failed to decode token response: %w", err)
	}
	// keep the old refresh token if the server didn't rotate it
	if data.RefreshToken == "" {
		data.RefreshToken = refreshToken
	}

	c.logger.Info("token refresh successful")
	return model.Credential{
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
		ExpiresAt:    strconv.FormatInt(c.now().Unix()+expiresIn, 10),
	}, nil
}

// seconds reads expires_in, truncating a fractional value such as 3600.0.
func seconds(n json.Number) (int64, error) {
	if n == "" {
		return 0, nil
	}
	if secs, err := n.Int64(); err == nil {
		return secs, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("invalid expires_in %q: %w", n, err)
	}
	return int64(f), nil
}

// statusText returns the reason phrase, e.g. "Bad Request" for 400.
func statusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
}
