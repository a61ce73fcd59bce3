// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0

package verification

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
)

const (
	// TokenField is the form field the SmartCaptcha widget fills in
	TokenField  = "smart-token"
	TokenHeader = "X-Smart-Token"
)

// Validator is satisfied by *Service and by the root smartcaptcha.Client
type Validator interface {
	Validate(ctx context.Context, token, secret, ip string) (*ValidationResult, error)
}

// Rejection describes why a request was turned away by the middleware
type Rejection struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	// Err is set when the service itself could not be reached or failed.
	Err error `json:"-"`
}

type FailureHandler func(http.ResponseWriter, *http.Request, Rejection)

type middlewareConfig struct {
	failureHandler FailureHandler
	ipExtractor    func(*http.Request) string
}

type MiddlewareOption func(*middlewareConfig)

// WithFailureHandler replaces the default JSON failure response
func WithFailureHandler(handler FailureHandler) MiddlewareOption {
	return func(cfg *middlewareConfig) {
		if handler != nil {
			cfg.failureHandler = handler
		}
	}
}

// WithIPExtractor overrides how the client IP is derived from the request,
// e.g. to honour a trusted X-Forwarded-For header.
func WithIPExtractor(fn func(*http.Request) string) MiddlewareOption {
	return func(cfg *middlewareConfig) {
		if fn != nil {
			cfg.ipExtractor = fn
		}
	}
}

// Middleware only lets requests through when they carry a captcha token
// that v accepts for secret.
func Middleware(v Validator, secret string, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := middlewareConfig{
		failureHandler: JSONFailureHandler,
		ipExtractor:    remoteIP,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				cfg.failureHandler(w, r, Rejection{
					Status:  "token_missing",
					Message: "Captcha token is required.",
				})
				return
			}

			res, err := v.Validate(r.Context(), token, secret, cfg.ipExtractor(r))
			if err != nil {
				cfg.failureHandler(w, r, Rejection{
					Status:  "error",
					Message: "Captcha validation error. Please try again.",
					Err:     err,
				})
				return
			}

			if !res.IsValid() {
				msg := res.Message
				if msg == "" {
					msg = "Captcha validation failed."
				}
				cfg.failureHandler(w, r, Rejection{Status: res.Status, Message: msg})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// JSONFailureHandler writes the rejection as JSON: 503 when the service
// failed, 400 otherwise.
func JSONFailureHandler(w http.ResponseWriter, _ *http.Request, rej Rejection) {
	status := http.StatusBadRequest
	if rej.Err != nil {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(rej)
}

func extractToken(r *http.Request) string {
	if t := strings.TrimSpace(r.Header.Get(TokenHeader)); t != "" {
		return t
	}

	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return strings.TrimSpace(r.URL.Query().Get(TokenField))
	}

	return strings.TrimSpace(r.FormValue(TokenField))
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
