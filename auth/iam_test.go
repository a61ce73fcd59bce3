package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIAMServer(t *testing.T, expiresIn time.Duration, calls *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		if body["yandexPassportOauthToken"] != "y0_oauth" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"bad oauth token"}`))
			return
		}

		n := calls.Add(1)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"iamToken":  "t1.iam-" + string(rune('0'+n)),
			"expiresAt": time.Now().Add(expiresIn).UTC().Format(time.RFC3339Nano),
		})
	}))
}

func TestIAM_Configure(t *testing.T) {
	var ia IAMAuthenticator

	err := ia.Configure(map[string]interface{}{
		"oauth_token": "y0_oauth",
	})
	require.NoError(t, err)
	assert.Equal(t, "y0_oauth", ia.OAuthToken)
	assert.Equal(t, DefaultIAMTokenURL, ia.TokenURL)

	err = ia.Configure(map[string]interface{}{
		"oauth_token": "y0_oauth",
		"token_url":   "http://iam.example/tokens",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://iam.example/tokens", ia.TokenURL)

	err = ia.Configure(map[string]interface{}{
		"token_url": "http://iam.example/tokens",
	})
	assert.EqualError(t, err, "missing oauth_token")

	err = ia.Configure(map[string]interface{}{
		"oauth_token": "y0_oauth",
		"client_id":   "x",
	})
	assert.EqualError(t, err, "unexpected fields in config: client_id")
}

func TestIAM_EncodeHeader_caches_token(t *testing.T) {
	var calls atomic.Int32

	srv := newIAMServer(t, time.Hour, &calls)
	defer srv.Close()

	ia := &IAMAuthenticator{OAuthToken: "y0_oauth", TokenURL: srv.URL}

	h1, err := ia.EncodeHeader(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer t1.iam-1", h1)

	h2, err := ia.EncodeHeader(context.Background())
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.EqualValues(t, 1, calls.Load())
}

func TestIAM_EncodeHeader_refreshes_expired_token(t *testing.T) {
	var calls atomic.Int32

	// expires within the early-expiry window, so every call re-exchanges
	srv := newIAMServer(t, time.Minute, &calls)
	defer srv.Close()

	ia := &IAMAuthenticator{OAuthToken: "y0_oauth", TokenURL: srv.URL}

	h1, err := ia.EncodeHeader(context.Background())
	require.NoError(t, err)

	h2, err := ia.EncodeHeader(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.EqualValues(t, 2, calls.Load())
}

func TestIAM_EncodeHeader_concurrent(t *testing.T) {
	var calls atomic.Int32

	srv := newIAMServer(t, time.Hour, &calls)
	defer srv.Close()

	ia := &IAMAuthenticator{OAuthToken: "y0_oauth", TokenURL: srv.URL}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := ia.EncodeHeader(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "Bearer t1.iam-1", h)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
}

func TestIAM_EncodeHeader_exchange_failure(t *testing.T) {
	var calls atomic.Int32

	srv := newIAMServer(t, time.Hour, &calls)
	defer srv.Close()

	ia := &IAMAuthenticator{OAuthToken: "y0_wrong", TokenURL: srv.URL}

	_, err := ia.EncodeHeader(context.Background())
	assert.ErrorContains(t, err, "IAM token exchange failed with status 401")
}

func TestIAM_EncodeHeader_missing_token(t *testing.T) {
	ia := &IAMAuthenticator{}

	_, err := ia.EncodeHeader(context.Background())
	assert.EqualError(t, err, "missing oauth_token")
}

func TestIAM_EncodeHeader_cancelled_context(t *testing.T) {
	ia := NewIAMAuthenticator("y0_oauth")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ia.EncodeHeader(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIAM_EncodeHeader_exchange_honours_context(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()

	ia := &IAMAuthenticator{OAuthToken: "y0_oauth", TokenURL: srv.URL}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := ia.EncodeHeader(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}
