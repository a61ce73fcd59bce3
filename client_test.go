// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0

package smartcaptcha

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smartcaptcha-go/apiclient/auth"
	"github.com/smartcaptcha-go/apiclient/common"
	"github.com/smartcaptcha-go/apiclient/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.BaseURL = "http://api.example/"
	cfg.ValidateURL = "http://validate.example/validate"
	cfg.IAMTokenURL = "http://iam.example/tokens"
	return cfg
}

// newTestClient routes every request made by the client, whatever its host,
// to h.
func newTestClient(t *testing.T, cfg config.Config, h http.Handler, opts ...Option) (*Client, func()) {
	session, teardown := common.NewTestingHTTPClient(h, nil)

	c, err := New(cfg, append([]Option{WithHTTPClient(&session.HTTPClient)}, opts...)...)
	require.NoError(t, err)

	return c, teardown
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_defaults(t *testing.T) {
	c, err := New(config.Config{})
	require.NoError(t, err)

	assert.Equal(t, "https://smartcaptcha.cloud.yandex.ru/validate", c.Verification().EndPointURI.String())
	assert.Equal(t, "https://smartcaptcha.api.cloud.yandex.net/smartcaptcha/v1", c.Management().EndPointURI.String())
	assert.Equal(t, 10*time.Second, c.Verification().Client.Timeout)
	assert.Equal(t, 30*time.Second, c.Management().Client.Timeout)
	assert.False(t, c.Management().Client.Authenticated())
	assert.False(t, c.Verification().Client.Authenticated())
}

func TestNew_invalid_config(t *testing.T) {
	_, err := New(config.Config{OAuthToken: "o", IAMToken: "i"})
	assert.ErrorContains(t, err, "mutually exclusive")

	_, err = New(config.Config{BaseURL: "nope"})
	assert.ErrorContains(t, err, "BaseURL must be an absolute URL")
}

func TestNew_credentials(t *testing.T) {
	c, err := New(config.Config{IAMToken: "t1.iam"})
	require.NoError(t, err)
	assert.IsType(t, &auth.BearerAuthenticator{}, c.Management().Client.Auth)

	c, err = New(config.Config{OAuthToken: "y0"})
	require.NoError(t, err)
	assert.IsType(t, &auth.IAMAuthenticator{}, c.Management().Client.Auth)

	custom := &auth.BearerAuthenticator{Token: "custom"}
	c, err = New(config.Config{OAuthToken: "y0"}, WithAuthenticator(custom))
	require.NoError(t, err)
	assert.Same(t, custom, c.Management().Client.Auth)
}

func TestClient_Validate(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "validate.example", r.Host)
		assert.Equal(t, "/validate", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "user-token", r.PostForm.Get("token"))
		assert.Equal(t, "ysc2_secret", r.PostForm.Get("secret"))

		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "host": "example.com"})
	})

	cfg := testConfig()
	cfg.IAMToken = "t1.iam"

	c, teardown := newTestClient(t, cfg, h)
	defer teardown()

	res, err := c.Validate(context.Background(), "user-token", "ysc2_secret", "")
	require.NoError(t, err)
	assert.True(t, res.IsValid())
	assert.Equal(t, "example.com", res.Host)
}

func TestClient_management_without_credential(t *testing.T) {
	var calls atomic.Int64

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	c, teardown := newTestClient(t, testConfig(), h)
	defer teardown()

	_, err := c.GetCaptcha(context.Background(), "c1")
	assert.True(t, common.IsAuthentication(err))

	_, err = c.CreateCaptcha(context.Background(), "f1", "n", nil)
	assert.True(t, common.IsAuthentication(err))

	assert.Zero(t, calls.Load())
}

func TestClient_oauth_flow(t *testing.T) {
	var exchanges atomic.Int64

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Host {
		case "iam.example":
			exchanges.Add(1)

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "y0_oauth", body["yandexPassportOauthToken"])

			writeJSON(w, http.StatusOK, map[string]interface{}{
				"iamToken":  "t1.exchanged",
				"expiresAt": time.Now().Add(12 * time.Hour).Format(time.RFC3339),
			})
		case "api.example":
			assert.Equal(t, "Bearer t1.exchanged", r.Header.Get("Authorization"))

			switch {
			case r.Method == http.MethodPost && r.URL.Path == "/smartcaptcha/v1/captchas":
				writeJSON(w, http.StatusOK, map[string]interface{}{
					"id":       "op1",
					"done":     false,
					"metadata": map[string]interface{}{"id": "c1", "name": "name"},
				})
			case r.Method == http.MethodGet && r.URL.Path == "/smartcaptcha/v1/captchas/c1:getSecretKey":
				writeJSON(w, http.StatusOK, map[string]interface{}{"serverKey": "ysc2_secret"})
			case r.Method == http.MethodGet && r.URL.Path == "/smartcaptcha/v1/captchas/missing":
				writeJSON(w, http.StatusNotFound, map[string]interface{}{"message": "captcha not found"})
			default:
				t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
			}
		default:
			t.Errorf("unexpected host %s", r.Host)
		}
	})

	core, logs := observer.New(zapcore.DebugLevel)

	cfg := testConfig()
	cfg.OAuthToken = "y0_oauth"

	c, teardown := newTestClient(t, cfg, h, WithLogger(zap.New(core)))
	defer teardown()

	ctx := context.Background()

	captcha, err := c.CreateCaptcha(ctx, "f1", "name", map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "c1", captcha.ID)

	key, err := c.GetSecretKey(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "ysc2_secret", key.ServerKey)

	_, err = c.GetCaptcha(ctx, "missing")
	var se *common.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, common.KindNotFound, se.Kind)
	assert.Equal(t, "captcha not found", se.Message)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)

	assert.Equal(t, int64(1), exchanges.Load())

	for _, entry := range logs.All() {
		for _, f := range entry.Context {
			assert.NotContains(t, f.String, "ysc2_secret")
			assert.NotContains(t, f.String, "y0_oauth")
			assert.NotContains(t, f.String, "t1.exchanged")
		}
	}
}

func TestClient_SetIAMToken(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer t2.iam", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]interface{}{"captchas": []interface{}{}})
	})

	c, teardown := newTestClient(t, testConfig(), h)
	defer teardown()

	_, err := c.ListCaptchas(context.Background(), "f1", 0, "")
	require.True(t, common.IsAuthentication(err))

	c.SetIAMToken("t2.iam")

	res, err := c.ListCaptchas(context.Background(), "f1", 0, "")
	require.NoError(t, err)
	assert.Empty(t, res.Captchas)
	assert.Empty(t, res.NextPageToken)

	c.SetAuthenticator(nil)
	_, err = c.ListCaptchas(context.Background(), "f1", 0, "")
	assert.True(t, common.IsAuthentication(err))
}

func TestClient_SetOAuthToken(t *testing.T) {
	c, err := New(config.Config{IAMToken: "t1.iam"})
	require.NoError(t, err)

	before := c.Management()

	c.SetOAuthToken("y0_other")

	ia, ok := c.Management().Client.Auth.(*auth.IAMAuthenticator)
	require.True(t, ok)
	assert.Equal(t, "y0_other", ia.OAuthToken)
	assert.Equal(t, auth.DefaultIAMTokenURL, ia.TokenURL)

	// services handed out earlier keep their credential
	assert.IsType(t, &auth.BearerAuthenticator{}, before.Client.Auth)
}
