// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0
package auth

import (
	"context"
	"errors"
	"fmt"
)

// BearerAuthenticator attaches a pre-obtained IAM token as-is. The token is
// never refreshed: once it expires the server will answer 401.
type BearerAuthenticator struct {
	Token string
}

func (o *BearerAuthenticator) Configure(cfg map[string]interface{}) error {
	decoded := struct {
		Token string                 `mapstructure:"iam_token"`
		Rest  map[string]interface{} `mapstructure:",remain"`
	}{}

	if err := decodeConfig(cfg, &decoded, func() map[string]interface{} { return decoded.Rest }); err != nil {
		return err
	}

	o.Token = decoded.Token

	return o.validate()
}

func (o *BearerAuthenticator) EncodeHeader(ctx context.Context) (string, error) {
	if err := o.validate(); err != nil {
		return "", err
	}

	return fmt.Sprintf("Bearer %s", o.Token), nil
}

func (o *BearerAuthenticator) validate() error {
	if o.Token == "" {
		return errors.New("missing iam_token")
	}

	return nil
}
