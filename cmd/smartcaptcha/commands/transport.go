// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/smartcaptcha-go/apiclient/config"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// httpClient returns the HTTP client for one command, or nil when the
// library default will do. Retries are only layered in when retry is true.
func (o *app) httpClient(cfg *config.Config, retry bool, logger *zap.Logger) (*http.Client, error) {
	retries := 0
	if retry {
		retries = o.retries
	}

	if retries <= 0 && o.rate <= 0 {
		return nil, nil
	}

	var base http.RoundTripper = http.DefaultTransport

	tr, err := cfg.Transport()
	if err != nil {
		return nil, err
	}
	if tr != nil {
		base = tr
	}

	if o.rate > 0 {
		base = &rateLimitedTransport{
			next:    base,
			limiter: rate.NewLimiter(rate.Limit(o.rate), 1),
		}
	}

	if retries <= 0 {
		return &http.Client{Transport: base}, nil
	}

	return retryingHTTPClient(base, retries, logger), nil
}

// retryingHTTPClient returns an http.Client retrying connection errors, 429
// and 5xx responses up to retries times. Once retries are exhausted the last
// response is handed back unchanged so that it is classified like any other.
func retryingHTTPClient(base http.RoundTripper, retries int, logger *zap.Logger) *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = retries
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = retryLogger{logger.Sugar()}
	rc.HTTPClient.Transport = base

	return rc.StandardClient()
}

// retryLogger adapts zap to retryablehttp.LeveledLogger
type retryLogger struct {
	s *zap.SugaredLogger
}

func (o retryLogger) Error(msg string, kv ...interface{}) { o.s.Errorw(msg, kv...) }
func (o retryLogger) Warn(msg string, kv ...interface{})  { o.s.Warnw(msg, kv...) }
func (o retryLogger) Info(msg string, kv ...interface{})  { o.s.Infow(msg, kv...) }
func (o retryLogger) Debug(msg string, kv ...interface{}) { o.s.Debugw(msg, kv...) }

// rateLimitedTransport spaces out outgoing requests, e.g. to stay within the
// API quota while paging through a large folder.
type rateLimitedTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

func (o *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := o.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}

	return o.next.RoundTrip(req)
}
