// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

const (
	DefaultIAMTokenURL = "https://iam.api.cloud.yandex.net/iam/v1/tokens"

	// IAM tokens are handed out for up to 12 hours; renew well before that.
	iamEarlyExpiry     = 5 * time.Minute
	iamExchangeTimeout = 10 * time.Second
)

// IAMAuthenticator exchanges a long-lived OAuth token for short-lived IAM
// tokens. The current IAM token is cached and only re-exchanged once it is
// about to expire.
type IAMAuthenticator struct {
	OAuthToken string
	TokenURL   string
	// HTTPClient is used for the exchange. nil means a client with a 10s
	// timeout.
	HTTPClient *http.Client

	mu  sync.Mutex
	tok *oauth2.Token
}

// NewIAMAuthenticator returns an IAMAuthenticator for the given OAuth token
// using the default token endpoint
func NewIAMAuthenticator(oauthToken string) *IAMAuthenticator {
	return &IAMAuthenticator{
		OAuthToken: oauthToken,
		TokenURL:   DefaultIAMTokenURL,
	}
}

func (o *IAMAuthenticator) Configure(cfg map[string]interface{}) error {
	decoded := struct {
		OAuthToken string                 `mapstructure:"oauth_token"`
		TokenURL   string                 `mapstructure:"token_url"`
		Rest       map[string]interface{} `mapstructure:",remain"`
	}{}

	if err := decodeConfig(cfg, &decoded, func() map[string]interface{} { return decoded.Rest }); err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.OAuthToken = decoded.OAuthToken
	o.TokenURL = decoded.TokenURL
	if o.TokenURL == "" {
		o.TokenURL = DefaultIAMTokenURL
	}
	o.tok = nil

	return o.validate()
}

func (o *IAMAuthenticator) EncodeHeader(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tok, err := o.token(ctx)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Bearer %s", tok.AccessToken), nil
}

// token returns the cached IAM token, exchanging a new one under ctx once the
// cached one is within the early-expiry window. The lock is held across the
// exchange so that concurrent callers share a single refresh.
func (o *IAMAuthenticator) token(ctx context.Context) (*oauth2.Token, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.validate(); err != nil {
		return nil, err
	}

	hc := o.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: iamExchangeTimeout}
	}

	tokenURL := o.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultIAMTokenURL
	}

	src := oauth2.ReuseTokenSourceWithExpiry(o.tok, &iamExchanger{
		ctx:        ctx,
		oauthToken: o.OAuthToken,
		tokenURL:   tokenURL,
		client:     hc,
	}, iamEarlyExpiry)

	tok, err := src.Token()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			return nil, fmt.Errorf("%w: %v", ctxErr, err)
		}
		return nil, err
	}

	o.tok = tok

	return tok, nil
}

func (o *IAMAuthenticator) validate() error {
	if o.OAuthToken == "" {
		return errors.New("missing oauth_token")
	}

	if o.TokenURL != "" {
		if _, err := url.Parse(o.TokenURL); err != nil {
			return fmt.Errorf("invalid token_url: %w", err)
		}
	}

	return nil
}

// iamExchanger is an oauth2.TokenSource performing one OAuth -> IAM exchange
// per call, bound to the context of the call that triggered it.
type iamExchanger struct {
	ctx        context.Context
	oauthToken string
	tokenURL   string
	client     *http.Client
}

func (o *iamExchanger) Token() (*oauth2.Token, error) {
	body, err := json.Marshal(map[string]string{
		"yandexPassportOauthToken": o.oauthToken,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(o.ctx, http.MethodPost, o.tokenURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building IAM token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("IAM token request failed: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<16))
	if err != nil {
		return nil, fmt.Errorf("reading IAM token response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("IAM token exchange failed with status %d: %s", res.StatusCode, string(raw))
	}

	var j struct {
		IAMToken  string    `json:"iamToken"`
		ExpiresAt time.Time `json:"expiresAt"`
	}

	if err := json.Unmarshal(raw, &j); err != nil {
		return nil, fmt.Errorf("decoding IAM token response: %w", err)
	}

	if j.IAMToken == "" {
		return nil, errors.New("IAM token response carries no token")
	}

	return &oauth2.Token{
		AccessToken: j.IAMToken,
		TokenType:   "Bearer",
		Expiry:      j.ExpiresAt,
	}, nil
}
