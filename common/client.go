// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0

package common

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smartcaptcha-go/apiclient/auth"
	"go.uber.org/zap"
)

const (
	DefaultTimeout = 30 * time.Second

	// RequestIDHeader carries a per-call correlation ID on management requests
	RequestIDHeader = "X-Client-Request-Id"

	maxBodySize = 1 << 20
)

// Client holds configuration data associated with the HTTP(s) session
type Client struct {
	HTTPClient http.Client
	// Auth supplies the Authorization header. nil (or a NullAuthenticator)
	// restricts the session to unauthenticated calls.
	Auth auth.IAuthenticator
	// Logger receives request diagnostics. It never sees tokens, secrets or
	// response bodies of successful calls.
	Logger *zap.Logger
	// Timeout bounds every call made through Do. Zero means DefaultTimeout.
	Timeout time.Duration
}

// NewClient instantiates a new Client with the supplied authenticator (which
// may be nil)
func NewClient(a auth.IAuthenticator) *Client {
	return &Client{
		HTTPClient: http.Client{},
		Auth:       a,
		Logger:     zap.NewNop(),
		Timeout:    DefaultTimeout,
	}
}

// Request describes a single call issued through Client.Do
type Request struct {
	Method string
	// URL is the absolute target URL.
	URL    *url.URL
	Query  url.Values
	JSON   interface{}
	Form   url.Values
	Header http.Header
	// Anonymous suppresses the Authorization header even if the session has
	// an authenticator.
	Anonymous bool
}

// Authenticated reports whether the session carries a usable credential
// source.
func (o *Client) Authenticated() bool {
	if o.Auth == nil {
		return false
	}

	_, isNull := o.Auth.(*auth.NullAuthenticator)

	return !isNull
}

// EnsureAuthenticated fails with an authentication error when the session
// has no credential source. It never touches the network.
func (o *Client) EnsureAuthenticated() error {
	if !o.Authenticated() {
		return NewError(KindAuthentication, 0, nil,
			"credential is required for this operation: supply an OAuth or IAM token")
	}
	return nil
}

func (o *Client) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Do issues exactly one HTTP call and decodes its JSON body. An empty body on
// a 2xx response decodes to an empty map. Any non-2xx response is returned as
// a *ServiceError whose kind is derived from the status code.
func (o *Client) Do(ctx context.Context, r *Request) (map[string]interface{}, error) {
	status, header, body, err := o.roundTrip(ctx, r)
	if err != nil {
		return nil, err
	}

	if status < 200 || status > 299 {
		se := ErrorFromResponse(status, header, body, nil)
		o.logger().Error("API error",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status_code", status),
			zap.String("error", se.Message),
		)
		return nil, se
	}

	return DecodeJSONObject(status, body)
}

// DoStatus issues exactly one HTTP call and returns its status and raw body
// without interpreting the status code. Transport failures are still
// returned as *ServiceError.
func (o *Client) DoStatus(ctx context.Context, r *Request) (int, http.Header, []byte, error) {
	return o.roundTrip(ctx, r)
}

func (o *Client) roundTrip(ctx context.Context, r *Request) (int, http.Header, []byte, error) {
	req, cancel, err := o.newRequest(ctx, r)
	if err != nil {
		return 0, nil, nil, err
	}
	defer cancel()

	log := o.logger().With(
		zap.String("method", r.Method),
		zap.String("path", req.URL.Path),
	)
	if id := req.Header.Get(RequestIDHeader); id != "" {
		log = log.With(zap.String("request_id", id))
	}

	log.Debug("sending request")

	res, err := o.HTTPClient.Do(req)
	if err != nil {
		log.Error("request failed", zap.Error(err))
		return 0, nil, nil, NewError(KindGeneric, 0, err, "%s %s request failed: %v", r.Method, req.URL.Path, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		log.Error("reading response failed", zap.Error(err))
		return res.StatusCode, res.Header, nil, NewError(KindGeneric, res.StatusCode, err, "reading response: %v", err)
	}

	log.Debug("received response", zap.Int("status_code", res.StatusCode))

	return res.StatusCode, res.Header, body, nil
}

// newRequest builds the *http.Request for r, bound to a context carrying the
// session timeout. The returned cancel func must always be called.
func (o *Client) newRequest(ctx context.Context, r *Request) (*http.Request, context.CancelFunc, error) {
	if r.URL == nil {
		return nil, nil, NewError(KindGeneric, 0, nil, "no request URL")
	}

	if r.JSON != nil && r.Form != nil {
		return nil, nil, NewError(KindGeneric, 0, nil, "only one of JSON or form body can be set")
	}

	// Resolve the credential before anything else so that a missing or
	// failing token never results in network traffic.
	var authz string
	if !r.Anonymous && o.Auth != nil {
		h, err := o.Auth.EncodeHeader(ctx)
		if err != nil {
			// a caller giving up is not a credential problem
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, nil, NewError(KindGeneric, 0, err, "obtaining bearer token: %v", err)
			}
			return nil, nil, NewError(KindAuthentication, 0, err, "obtaining bearer token: %v", err)
		}
		authz = h
	}

	var (
		body io.Reader = http.NoBody
		ct   string
	)

	switch {
	case r.JSON != nil:
		b, err := json.Marshal(r.JSON)
		if err != nil {
			return nil, nil, NewError(KindGeneric, 0, err, "encoding request body: %v", err)
		}
		body = bytes.NewReader(b)
		ct = "application/json"
	case r.Form != nil:
		body = strings.NewReader(r.Form.Encode())
		ct = "application/x-www-form-urlencoded"
	}

	u := *r.URL
	if len(r.Query) > 0 {
		u.RawQuery = r.Query.Encode()
	}

	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)

	req, err := http.NewRequestWithContext(ctx, r.Method, u.String(), body)
	if err != nil {
		cancel()
		return nil, nil, NewError(KindGeneric, 0, err, "%s %q, request creation failed: %v", r.Method, u.String(), err)
	}

	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	req.Header.Set("Accept", "application/json")
	if ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	if !r.Anonymous && req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}

	return req, cancel, nil
}
