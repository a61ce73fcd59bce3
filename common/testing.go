// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0

package common

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	"github.com/smartcaptcha-go/apiclient/auth"
	"go.uber.org/zap"
)

// NewTestingHTTPClient creates an HTTP test server (with a configurable request
// handler), an API Client and connects them together.  The API client and the
// server's shutdown switch are returned. Whatever host the client targets,
// the connection ends up at the test server.
func NewTestingHTTPClient(handler http.Handler, a auth.IAuthenticator) (cli *Client, closerFn func()) {
	srv := httptest.NewServer(handler)

	cli = &Client{
		HTTPClient: http.Client{
			Transport: &http.Transport{
				DialContext: func(_ context.Context, network, _ string) (net.Conn, error) {
					return net.Dial(network, srv.Listener.Addr().String())
				},
			},
		},
		Auth:    a,
		Logger:  zap.NewNop(),
		Timeout: DefaultTimeout,
	}

	closerFn = srv.Close

	return
}

// CountingTransport is an http.RoundTripper that counts the calls it sees
// before handing them to Next (or failing them, if Next is nil).
type CountingTransport struct {
	Next  http.RoundTripper
	calls atomic.Int64
}

// RoundTrip implements http.RoundTripper
func (o *CountingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	o.calls.Add(1)

	if o.Next == nil {
		return nil, errNoTransport
	}

	return o.Next.RoundTrip(req)
}

// Calls returns the number of round trips attempted so far
func (o *CountingTransport) Calls() int64 {
	return o.calls.Load()
}

var errNoTransport = errors.New("counting transport: no next round tripper")
