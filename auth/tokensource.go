// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// TokenSourceAuthenticator adapts any oauth2.TokenSource, for callers that
// already run their own token exchange. Wrap the source with
// oauth2.ReuseTokenSource if it does not cache by itself.
type TokenSourceAuthenticator struct {
	Source oauth2.TokenSource
}

// Configure accepts no settings: the source is supplied programmatically.
func (o *TokenSourceAuthenticator) Configure(cfg map[string]interface{}) error {
	if len(cfg) > 0 {
		return errors.New("token source authenticator takes no configuration")
	}

	return o.validate()
}

func (o *TokenSourceAuthenticator) EncodeHeader(ctx context.Context) (string, error) {
	if err := o.validate(); err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	tok, err := o.Source.Token()
	if err != nil {
		return "", err
	}

	if tok.AccessToken == "" {
		return "", errors.New("token source returned an empty token")
	}

	return fmt.Sprintf("%s %s", tok.Type(), tok.AccessToken), nil
}

func (o *TokenSourceAuthenticator) validate() error {
	if o.Source == nil {
		return errors.New("missing token source")
	}

	return nil
}
