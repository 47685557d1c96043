package client

import "net/http"

type config struct {
	client *http.Client
}

type Option func(*config)

// WithHTTPClient overrides the transport. Pooling, tls and timeouts all
// belong to the injected client.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *config) {
		cfg.client = c
	}
}
