// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0
package auth

import "context"

// NullAuthenticator attaches no credentials. A session using it can only
// talk to the verification endpoint.
type NullAuthenticator struct{}

func (o *NullAuthenticator) Configure(cfg map[string]interface{}) error {
	return nil
}

func (o *NullAuthenticator) EncodeHeader(ctx context.Context) (string, error) {
	return "", nil
}
