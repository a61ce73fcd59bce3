// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0

package auth

import "fmt"

// Method is the enumeration of authentication methods supported by the
// SmartCaptcha management API. It implements the pflag.Value interface.
type Method string

const (
	MethodNone   Method = "none"
	MethodBearer Method = "bearer"
	MethodOAuth  Method = "oauth"
)

// String representation of the Method
func (o *Method) String() string {
	return string(*o)
}

// Set the value of the Method
func (o *Method) Set(v string) error {
	switch v {
	case "", "none", "passthrough":
		*o = MethodNone
	case "bearer", "iam":
		*o = MethodBearer
	case "oauth", "oauth2":
		*o = MethodOAuth
	default:
		return fmt.Errorf("unexpected Method %q", v)
	}

	return nil
}

// Type returns the string representing the type name (used by pflag).
func (o *Method) Type() string {
	return "Method"
}

// New creates and configures the authenticator implementing method m.
func New(m Method, cfg map[string]interface{}) (IAuthenticator, error) {
	var a IAuthenticator

	switch m {
	case "", MethodNone:
		a = &NullAuthenticator{}
	case MethodBearer:
		a = &BearerAuthenticator{}
	case MethodOAuth:
		a = &IAMAuthenticator{}
	default:
		return nil, fmt.Errorf("unexpected Method %q", m)
	}

	if err := a.Configure(cfg); err != nil {
		return nil, fmt.Errorf("configuring %s authenticator: %w", m, err)
	}

	return a, nil
}
