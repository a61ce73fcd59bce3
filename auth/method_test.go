package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMethod_Set(t *testing.T) {
	var m Method

	for in, expected := range map[string]Method{
		"none":        MethodNone,
		"passthrough": MethodNone,
		"bearer":      MethodBearer,
		"iam":         MethodBearer,
		"oauth":       MethodOAuth,
		"oauth2":      MethodOAuth,
	} {
		require.NoError(t, m.Set(in), in)
		assert.Equal(t, expected, m, in)
	}

	assert.EqualError(t, m.Set("basic"), `unexpected Method "basic"`)
	assert.Equal(t, "Method", m.Type())
}

func TestNew(t *testing.T) {
	a, err := New(MethodNone, nil)
	require.NoError(t, err)
	assert.IsType(t, &NullAuthenticator{}, a)

	a, err = New(MethodBearer, map[string]interface{}{"iam_token": "t1"})
	require.NoError(t, err)
	assert.IsType(t, &BearerAuthenticator{}, a)

	a, err = New(MethodOAuth, map[string]interface{}{"oauth_token": "y0"})
	require.NoError(t, err)
	assert.IsType(t, &IAMAuthenticator{}, a)

	_, err = New(MethodOAuth, map[string]interface{}{})
	assert.EqualError(t, err, "configuring oauth authenticator: missing oauth_token")

	_, err = New(Method("kerberos"), nil)
	assert.EqualError(t, err, `unexpected Method "kerberos"`)
}
