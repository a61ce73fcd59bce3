// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0
package auth

import (
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTLSTransport_trusts_extra_ca(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	bundle := filepath.Join(t.TempDir(), "ca.pem")
	block := &pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw}
	require.NoError(t, os.WriteFile(bundle, pem.EncodeToMemory(block), 0o600))

	tr, err := NewTLSTransport([]string{bundle})
	require.NoError(t, err)

	res, err := (&http.Client{Transport: tr}).Get(srv.URL)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
}

func TestNewTLSTransport_untrusted(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	tr, err := NewTLSTransport(nil)
	require.NoError(t, err)

	_, err = (&http.Client{Transport: tr}).Get(srv.URL)
	assert.Error(t, err)
}

func TestNewTLSTransport_bad_bundles(t *testing.T) {
	_, err := NewTLSTransport([]string{filepath.Join(t.TempDir(), "missing.pem")})
	assert.ErrorContains(t, err, "reading CA bundle")

	junk := filepath.Join(t.TempDir(), "junk.pem")
	require.NoError(t, os.WriteFile(junk, []byte("not a certificate"), 0o600))

	_, err = NewTLSTransport([]string{junk})
	assert.ErrorContains(t, err, "no PEM certificate found in")
}
