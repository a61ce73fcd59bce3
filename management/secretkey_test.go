// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0

package management

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSecretKeyFromMap(t *testing.T) {
	assert.Equal(t, "k1", SecretKeyFromMap(map[string]interface{}{"serverKey": "k1"}).ServerKey)
	assert.Equal(t, "k2", SecretKeyFromMap(map[string]interface{}{"server_key": "k2"}).ServerKey)
	assert.Equal(t, "k1", SecretKeyFromMap(map[string]interface{}{
		"serverKey":  "k1",
		"server_key": "k2",
	}).ServerKey)
	assert.Equal(t, "", SecretKeyFromMap(map[string]interface{}{}).ServerKey)
	assert.Equal(t, "", SecretKeyFromMap(map[string]interface{}{"serverKey": 42}).ServerKey)
}

func TestSecretKey_ToMap(t *testing.T) {
	k := SecretKey{ServerKey: "k1"}

	assert.Equal(t, map[string]interface{}{"serverKey": "k1"}, k.ToMap())
	assert.Equal(t, k, SecretKeyFromMap(k.ToMap()))
}

func TestSecretKey_redacted(t *testing.T) {
	k := SecretKey{ServerKey: "ysc2_secret"}

	for _, s := range []string{
		fmt.Sprint(k),
		fmt.Sprintf("%v", k),
		fmt.Sprintf("%+v", k),
		fmt.Sprintf("%#v", k),
		fmt.Sprintf("%s", &k),
	} {
		assert.NotContains(t, s, "ysc2_secret")
	}
}

func TestSecretKey_MarshalLogObject(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	k := SecretKey{ServerKey: "ysc2_secret"}
	log.Info("fetched key", zap.Object("key", k), zap.Any("any", k))

	require.Equal(t, 1, logs.Len())

	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, map[string]interface{}{"serverKey": "[REDACTED]", "present": true}, ctx["key"])
	assert.Equal(t, ctx["key"], ctx["any"])
	assert.NotContains(t, fmt.Sprint(ctx), "ysc2_secret")
}
