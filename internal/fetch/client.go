// Package fetch provides the shared HTTP plumbing for source connectors:
// a pooled client, a transient-error taxonomy, a scoped retry policy, and
// a rate limiter serializing outbound calls.
package fetch

import (
	"crypto/tls"
	"net/http"
	"time"
)

// defaultHeaders mirror a desktop browser; several upstream fund-data
// endpoints refuse requests without them.
var defaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.5",
	"Connection":      "keep-alive",
}

// ClientOptions configure the shared HTTP client.
type ClientOptions struct {
	Timeout time.Duration
	// InsecureTLS skips certificate verification. Some distributor
	// document hosts present broken chains; default is off.
	InsecureTLS bool
}

type headerTransport struct {
	base http.RoundTripper
}

func (t headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	for k, v := range defaultHeaders {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	return t.base.RoundTrip(req)
}

// NewClient returns a pooled HTTP client applying the default headers to
// every request. The connection pool is shared across funds; there is no
// cross-fund mutable state beyond it.
func NewClient(opts ClientOptions) *http.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 4
	if opts.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: headerTransport{base: transport},
	}
}
