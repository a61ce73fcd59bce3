// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0
package auth

import "context"

// IAuthenticator is the credential source of a client session.
// EncodeHeader returns the value of the Authorization header to attach to
// the next request (or "" for none), refreshing the underlying token first
// if it is absent or expired. Implementations must be safe for concurrent
// use.
type IAuthenticator interface {
	Configure(cfg map[string]interface{}) error
	EncodeHeader(ctx context.Context) (string, error)
}
