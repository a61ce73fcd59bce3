// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/smartcaptcha-go/apiclient/common"
	"github.com/smartcaptcha-go/apiclient/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/term"
	"golang.org/x/time/rate"
)

func TestApp_httpClient(t *testing.T) {
	cfg := config.Default()
	logger := zap.NewNop()

	a := &app{}
	hc, err := a.httpClient(&cfg, true, logger)
	require.NoError(t, err)
	assert.Nil(t, hc)

	a.retries = 2
	hc, err = a.httpClient(&cfg, false, logger)
	require.NoError(t, err)
	assert.Nil(t, hc)

	hc, err = a.httpClient(&cfg, true, logger)
	require.NoError(t, err)
	assert.NotNil(t, hc)

	a.retries = 0
	a.rate = 5
	hc, err = a.httpClient(&cfg, false, logger)
	require.NoError(t, err)
	assert.IsType(t, &rateLimitedTransport{}, hc.Transport)
}

func TestRateLimitedTransport(t *testing.T) {
	counter := &common.CountingTransport{Next: http.DefaultTransport}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	tr := &rateLimitedTransport{
		next:    counter,
		limiter: rate.NewLimiter(rate.Every(time.Hour), 1),
	}
	hc := &http.Client{Transport: tr}

	res, err := hc.Get(srv.URL)
	require.NoError(t, err)
	res.Body.Close()

	// the bucket is empty now: the next call has to wait and gives up with
	// its context
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	_, err = hc.Do(req)
	assert.Error(t, err)
	assert.Equal(t, int64(1), counter.Calls())
}

func TestValidate_prompt_needs_terminal(t *testing.T) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		t.Skip("stdin is a terminal")
	}

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := run(t, srv, "validate", "tok", "--prompt-secret")
	assert.ErrorIs(t, err, ErrNotTerminal)
}
