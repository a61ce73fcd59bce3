// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0

/*
Package verification implements the SmartCaptcha token check.

The widget on the page yields a one-time token which the backend checks
together with the server secret:

	svc, err := verification.NewService("", nil)
	if err != nil { ... }

	res, err := svc.Validate(ctx, token, serverKey, clientIP)
	if err != nil {
		// transport or service fault, e.g. a 5xx from the endpoint
	}

	if !res.IsValid() {
		// the user did not pass the captcha; res.Message may say why
	}

A rejected token is not an error: err is nil and res.IsValid() is false.

The check is unauthenticated. Even if the supplied Client carries an
authenticator no Authorization header is sent.

Middleware wraps an http.Handler and rejects requests whose "smart-token"
form field (or X-Smart-Token header) does not validate:

	mux.Handle("/signup", verification.Middleware(svc, serverKey)(signupHandler))
*/
package verification
