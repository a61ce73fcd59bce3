package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type failingSource struct{}

func (failingSource) Token() (*oauth2.Token, error) {
	return nil, errors.New("exchange unavailable")
}

func TestTokenSource_EncodeHeader(t *testing.T) {
	a := &TokenSourceAuthenticator{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t1.static"}),
	}

	h, err := a.EncodeHeader(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer t1.static", h)

	a.Source = failingSource{}
	_, err = a.EncodeHeader(context.Background())
	assert.EqualError(t, err, "exchange unavailable")

	a.Source = nil
	_, err = a.EncodeHeader(context.Background())
	assert.EqualError(t, err, "missing token source")
}

func TestTokenSource_Configure(t *testing.T) {
	a := &TokenSourceAuthenticator{Source: failingSource{}}

	assert.NoError(t, a.Configure(nil))
	assert.EqualError(t, a.Configure(map[string]interface{}{"x": 1}),
		"token source authenticator takes no configuration")
}
