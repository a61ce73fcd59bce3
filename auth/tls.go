// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0
package auth

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"
)

// NewTLSTransport returns a copy of http.DefaultTransport whose root CAs are
// the system pool extended with the PEM bundles found at caCertPaths. Used
// when the API is reached through a TLS-intercepting proxy or a private
// installation. With no paths the system pool is used unchanged.
func NewTLSTransport(caCertPaths []string) (*http.Transport, error) {
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil, errors.New("default transport is not an *http.Transport")
	}
	t := base.Clone()

	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}

	for _, p := range caCertPaths {
		pem, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading CA bundle: %w", err)
		}

		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no PEM certificate found in %s", p)
		}
	}

	t.TLSClientConfig = &tls.Config{
		RootCAs:    pool,
		MinVersion: tls.VersionTLS12,
	}

	return t, nil
}
