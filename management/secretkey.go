// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0

package management

import "go.uber.org/zap/zapcore"

// SecretKey holds the server key of a captcha. It is what the verification
// endpoint expects as "secret"; keep it out of logs.
type SecretKey struct {
	ServerKey string `json:"serverKey" yaml:"serverKey"`
}

// SecretKeyFromMap accepts "serverKey" or "server_key"; a missing key yields
// an empty ServerKey.
func SecretKeyFromMap(m map[string]interface{}) SecretKey {
	for _, k := range []string{"serverKey", "server_key"} {
		if s, ok := m[k].(string); ok {
			return SecretKey{ServerKey: s}
		}
	}

	return SecretKey{}
}

// ToMap is the inverse of SecretKeyFromMap
func (o SecretKey) ToMap() map[string]interface{} {
	return map[string]interface{}{"serverKey": o.ServerKey}
}

// String redacts the key so that it does not leak through %v or %s
func (o SecretKey) String() string {
	return "SecretKey{ServerKey: [REDACTED]}"
}

// GoString redacts the key so that it does not leak through %#v
func (o SecretKey) GoString() string {
	return o.String()
}

// MarshalLogObject lets a SecretKey be passed to zap.Object without leaking
// the key itself.
func (o SecretKey) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("serverKey", "[REDACTED]")
	enc.AddBool("present", o.ServerKey != "")
	return nil
}
