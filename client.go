// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0

package smartcaptcha

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/smartcaptcha-go/apiclient/auth"
	"github.com/smartcaptcha-go/apiclient/common"
	"github.com/smartcaptcha-go/apiclient/config"
	"github.com/smartcaptcha-go/apiclient/management"
	"github.com/smartcaptcha-go/apiclient/verification"
	"go.uber.org/zap"
)

const (
	// managementPath is appended to Config.BaseURL to reach the versioned API
	managementPath = "smartcaptcha/v1"

	iamExchangeTimeout = 10 * time.Second
)

// Client is the entry point of the library. It owns one HTTP session for the
// verification endpoint (never authenticated) and one for the management
// API (authenticated with the configured credential).
//
// A Client is safe for concurrent use. Swapping the credential with one of
// the Set* methods affects calls started afterwards.
type Client struct {
	mu sync.RWMutex

	verification *verification.Service
	management   *management.Service

	httpClient *http.Client
	logger     *zap.Logger
}

var _ verification.Validator = (*Client)(nil)

// Option customises a Client built by New.
type Option func(*options)

type options struct {
	httpClient *http.Client
	logger     *zap.Logger
	auth       auth.IAuthenticator
}

// WithHTTPClient makes both sessions use a copy of hc. Its Timeout is kept;
// per-call timeouts from the configuration still apply on top of it.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithLogger replaces the logger derived from the configuration.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithAuthenticator replaces the authenticator derived from the
// configuration credentials.
func WithAuthenticator(a auth.IAuthenticator) Option {
	return func(o *options) { o.auth = a }
}

// New builds a Client from cfg. A zero Config is completed with the
// defaults, so New(config.Config{}) yields a client that can only validate
// tokens.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	cfg = withDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		l, err := cfg.NewLogger()
		if err != nil {
			return nil, err
		}
		o.logger = l
	}

	if o.auth == nil {
		a, err := cfg.Authenticator()
		if err != nil {
			return nil, err
		}
		o.auth = a
	}

	if o.httpClient == nil {
		o.httpClient = &http.Client{}

		tr, err := cfg.Transport()
		if err != nil {
			return nil, err
		}
		if tr != nil {
			o.httpClient.Transport = tr
		}
	}

	c := &Client{httpClient: o.httpClient, logger: o.logger}

	if ia, ok := o.auth.(*auth.IAMAuthenticator); ok && ia.HTTPClient == nil {
		ia.HTTPClient = c.exchangeClient()
	}

	vs, err := verification.NewService(cfg.ValidateURL, c.newSession(nil, cfg.ValidateTimeout))
	if err != nil {
		return nil, fmt.Errorf("validate URL: %w", err)
	}

	ms, err := management.NewService(managementURL(cfg.BaseURL), c.newSession(o.auth, cfg.Timeout))
	if err != nil {
		return nil, fmt.Errorf("base URL: %w", err)
	}

	c.verification = vs
	c.management = ms

	return c, nil
}

func withDefaults(cfg config.Config) config.Config {
	d := config.Default()

	if cfg.BaseURL == "" {
		cfg.BaseURL = d.BaseURL
	}
	if cfg.ValidateURL == "" {
		cfg.ValidateURL = d.ValidateURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = d.Timeout
	}
	if cfg.ValidateTimeout == 0 {
		cfg.ValidateTimeout = d.ValidateTimeout
	}

	return cfg
}

func managementURL(base string) string {
	return strings.TrimRight(base, "/") + "/" + managementPath
}

func (o *Client) newSession(a auth.IAuthenticator, timeout time.Duration) *common.Client {
	s := common.NewClient(a)
	s.HTTPClient = *o.httpClient
	s.Logger = o.logger
	s.Timeout = timeout
	return s
}

// exchangeClient is the HTTP client used for OAuth -> IAM exchanges. It
// shares the transport of the API sessions, if one was supplied.
func (o *Client) exchangeClient() *http.Client {
	if o.httpClient.Transport == nil {
		return nil
	}
	return &http.Client{Transport: o.httpClient.Transport, Timeout: iamExchangeTimeout}
}

// SetOAuthToken switches management calls to the IAM tokens obtained by
// exchanging oauthToken. Any cached IAM token is discarded.
func (o *Client) SetOAuthToken(oauthToken string) {
	a := auth.NewIAMAuthenticator(oauthToken)
	a.HTTPClient = o.exchangeClient()
	o.SetAuthenticator(a)
}

// SetIAMToken switches management calls to a fixed IAM token. The token is
// not refreshed: once it expires calls fail with an authentication error.
func (o *Client) SetIAMToken(iamToken string) {
	o.SetAuthenticator(&auth.BearerAuthenticator{Token: iamToken})
}

// SetAuthenticator installs a as the credential source of management calls.
// nil removes the credential.
func (o *Client) SetAuthenticator(a auth.IAuthenticator) {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := *o.management.Client
	s.Auth = a

	ms := *o.management
	ms.Client = &s
	o.management = &ms
}

// Verification returns the underlying verification service.
func (o *Client) Verification() *verification.Service {
	return o.verification
}

// Management returns the management service currently in use.
func (o *Client) Management() *management.Service {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.management
}

// Validate checks a user token against secret; see verification.Service.
func (o *Client) Validate(ctx context.Context, token, secret, ip string) (*verification.ValidationResult, error) {
	return o.verification.Validate(ctx, token, secret, ip)
}

// CreateCaptcha creates a captcha; see management.Service.CreateCaptcha.
func (o *Client) CreateCaptcha(
	ctx context.Context,
	folderID string,
	name string,
	options map[string]interface{},
) (*management.CaptchaInfo, error) {
	return o.Management().CreateCaptcha(ctx, folderID, name, options)
}

// GetCaptcha returns a captcha by ID.
func (o *Client) GetCaptcha(ctx context.Context, captchaID string) (*management.CaptchaInfo, error) {
	return o.Management().GetCaptcha(ctx, captchaID)
}

// ListCaptchas returns one page of the captchas in folderID.
func (o *Client) ListCaptchas(
	ctx context.Context,
	folderID string,
	pageSize int,
	pageToken string,
) (*management.ListResult, error) {
	return o.Management().ListCaptchas(ctx, folderID, pageSize, pageToken)
}

// ListAllCaptchas returns every captcha in folderID.
func (o *Client) ListAllCaptchas(ctx context.Context, folderID string, pageSize int) ([]*management.CaptchaInfo, error) {
	return o.Management().ListAllCaptchas(ctx, folderID, pageSize)
}

// UpdateCaptcha applies updates to a captcha.
func (o *Client) UpdateCaptcha(
	ctx context.Context,
	captchaID string,
	updates map[string]interface{},
) (*management.CaptchaInfo, error) {
	return o.Management().UpdateCaptcha(ctx, captchaID, updates)
}

// DeleteCaptcha deletes a captcha.
func (o *Client) DeleteCaptcha(ctx context.Context, captchaID string) (map[string]interface{}, error) {
	return o.Management().DeleteCaptcha(ctx, captchaID)
}

// GetSecretKey returns the server key of a captcha.
func (o *Client) GetSecretKey(ctx context.Context, captchaID string) (*management.SecretKey, error) {
	return o.Management().GetSecretKey(ctx, captchaID)
}
