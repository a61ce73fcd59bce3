// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0

/*
Package smartcaptcha is a client for Yandex SmartCaptcha. It covers both the
token validation endpoint, used by web backends to check the token a user
obtained from the captcha widget, and the management API used to create and
maintain captchas.

# Validation

Validation needs no credential, only the server key of the captcha:

	c, err := smartcaptcha.New(config.Config{})
	if err != nil { ... }

	res, err := c.Validate(ctx, token, serverKey, r.RemoteAddr)
	if err != nil {
		// transport failure or unexpected response: the service could not
		// answer, decide whether to fail open or closed
	}

	if !res.IsValid() {
		// the user did not pass the captcha
	}

A rejected token is not an error. Errors are reserved for situations in which
no verdict could be obtained.

For net/http servers, verification.Middleware wraps a handler and rejects
requests that do not carry a valid token.

# Management

Management calls need a credential. An OAuth token is exchanged for IAM
tokens, which are cached and refreshed shortly before they expire:

	c, err := smartcaptcha.New(config.Config{OAuthToken: oauthToken})
	if err != nil { ... }

	captcha, err := c.CreateCaptcha(ctx, folderID, "signup", map[string]interface{}{
		"allowedSites": []string{"example.com"},
		"complexity":   "HARD",
	})

A fixed IAM token can be used instead (Config.IAMToken or SetIAMToken), as
can any oauth2.TokenSource through auth.TokenSourceAuthenticator and
WithAuthenticator.

Without a credential every management call fails with an authentication
error before anything is sent.

Mutations answer with an operation. The client does not wait for it to
complete: the returned CaptchaInfo is built from the operation response if
present, from its metadata otherwise.

# Errors

Every failure is a *common.ServiceError. Its Kind tells authentication
problems, missing resources, rate limiting and rejected payloads apart:

	if common.IsRateLimit(err) {
		// back off and try again later
	}

The library never retries on its own.

# Configuration

config.Load reads an optional YAML file and YANDEX_SMARTCAPTCHA_* environment
variables (YANDEX_SMARTCAPTCHA_OAUTH_TOKEN, YANDEX_SMARTCAPTCHA_TIMEOUT, ...):

	cfg, err := config.Load("/etc/smartcaptcha.yaml")
	if err != nil { ... }

	c, err := smartcaptcha.New(*cfg)
*/
package smartcaptcha
