// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0

package verification

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubValidator struct {
	res     *ValidationResult
	err     error
	gotTok  string
	gotIP   string
	invoked int
}

func (o *stubValidator) Validate(_ context.Context, token, _, ip string) (*ValidationResult, error) {
	o.invoked++
	o.gotTok = token
	o.gotIP = ip
	return o.res, o.err
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func postForm(token string) *http.Request {
	form := url.Values{}
	if token != "" {
		form.Set(TokenField, token)
	}
	r := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.RemoteAddr = "192.0.2.10:5555"
	return r
}

func TestMiddleware_passes_valid_token(t *testing.T) {
	v := &stubValidator{res: &ValidationResult{Status: StatusOK}}

	w := httptest.NewRecorder()
	Middleware(v, "sec")(okHandler).ServeHTTP(w, postForm("tok"))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "tok", v.gotTok)
	assert.Equal(t, "192.0.2.10", v.gotIP)
}

func TestMiddleware_missing_token(t *testing.T) {
	v := &stubValidator{}

	w := httptest.NewRecorder()
	Middleware(v, "sec")(okHandler).ServeHTTP(w, postForm(""))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "token_missing")
	assert.Zero(t, v.invoked)
}

func TestMiddleware_rejected_token(t *testing.T) {
	v := &stubValidator{res: &ValidationResult{Status: StatusFailed}}

	w := httptest.NewRecorder()
	Middleware(v, "sec")(okHandler).ServeHTTP(w, postForm("tok"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status":"failed","message":"Captcha validation failed."}`, w.Body.String())
}

func TestMiddleware_service_error(t *testing.T) {
	v := &stubValidator{err: errors.New("boom")}

	var got Rejection
	h := Middleware(v, "sec",
		WithFailureHandler(func(w http.ResponseWriter, r *http.Request, rej Rejection) {
			got = rej
			JSONFailureHandler(w, r, rej)
		}),
		WithIPExtractor(func(r *http.Request) string { return r.Header.Get("X-Real-Ip") }),
	)(okHandler)

	r := postForm("")
	r.Header.Set(TokenHeader, "hdr-tok")
	r.Header.Set("X-Real-Ip", "203.0.113.7")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.EqualError(t, got.Err, "boom")
	assert.Equal(t, "hdr-tok", v.gotTok)
	assert.Equal(t, "203.0.113.7", v.gotIP)
}
