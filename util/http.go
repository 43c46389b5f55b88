package util

import (
	"net"
	"net/http"
	"time"
)

// UserAgent is sent with every outbound request; the GitHub API rejects
// requests without one.
const UserAgent = "protonup-go"

type userAgentTransport struct {
	Base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", UserAgent)
	}
	return base.RoundTrip(req)
}

// NewHTTPClient returns the client shared by the release index and the
// download pipeline. There is no overall timeout: archives are hundreds of
// megabytes and cancellation is driven by the request context instead.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &userAgentTransport{
			Base: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				ResponseHeaderTimeout: 30 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				MaxIdleConnsPerHost:   4,
			},
		},
	}
}
