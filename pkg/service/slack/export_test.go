package slack

import "time"

// API is exported for testing
type API = api

// NewWithAPI creates a client on a fake API
func NewWithAPI(a API, now func() time.Time, opts ...Option) *Client {
	c := newClient(a, opts...)
	c.now = now
	return c
}
