package common

import (
	"net/http"
)

// HttpClient is the subset of *http.Client the token exchange needs.
// This allows mocking or custom transport layers in testing.
type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
	CloseIdleConnections()
}

// userAgentRoundTripper is a custom RoundTripper that adds a User-Agent header.
type userAgentRoundTripper struct {
	Wrapped   http.RoundTripper
	UserAgent string
}

func (rt *userAgentRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone request to avoid mutating the original
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", rt.UserAgent)
	return rt.Wrapped.RoundTrip(clone)
}

// Implementation of HttpClient that wraps a standard *http.Client.
type httpClient struct {
	client *http.Client
}

// NewHttpClient returns a new HttpClient that stamps every request with userAgent.
// base is copied, never modified. No timeout is added: the caller's client
// (or the transport default) decides.
func NewHttpClient(userAgent string, base *http.Client) HttpClient {
	if base == nil {
		base = &http.Client{}
	}
	wrapped := *base
	if wrapped.Transport == nil {
		wrapped.Transport = http.DefaultTransport
	}
	if userAgent != "" {
		wrapped.Transport = &userAgentRoundTripper{
			Wrapped:   wrapped.Transport,
			UserAgent: userAgent,
		}
	}

	return &httpClient{client: &wrapped}
}

func (h *httpClient) Do(req *http.Request) (*http.Response, error) {
	return h.client.Do(req)
}

func (h *httpClient) CloseIdleConnections() {
	h.client.CloseIdleConnections()
}
