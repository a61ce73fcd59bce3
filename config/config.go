// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0

// Package config loads client settings from an optional YAML file and
// YANDEX_SMARTCAPTCHA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/smartcaptcha-go/apiclient/auth"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	EnvPrefix = "YANDEX_SMARTCAPTCHA"

	DefaultBaseURL         = "https://smartcaptcha.api.cloud.yandex.net/"
	DefaultValidateURL     = "https://smartcaptcha.cloud.yandex.ru/validate"
	DefaultTimeout         = 30 * time.Second
	DefaultValidateTimeout = 10 * time.Second
	DefaultLogChannel      = "smartcaptcha"
)

// Logging controls the client's diagnostics.
type Logging struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Channel string `mapstructure:"channel" yaml:"channel"`
}

// Config holds everything needed to build a client. Only one of OAuthToken
// and IAMToken may be set; with neither, only token validation is possible.
type Config struct {
	OAuthToken string `mapstructure:"oauth_token" validate:"excluded_with=IAMToken"`
	IAMToken   string `mapstructure:"iam_token"`
	// IAMTokenURL overrides the OAuth -> IAM exchange endpoint.
	IAMTokenURL string `mapstructure:"iam_token_url" validate:"omitempty,url"`

	SecretKey string `mapstructure:"secret_key"`
	ClientKey string `mapstructure:"client_key"`
	FolderID  string `mapstructure:"folder_id"`

	BaseURL     string `mapstructure:"base_url" validate:"required,url"`
	ValidateURL string `mapstructure:"validate_url" validate:"required,url"`

	Timeout         time.Duration `mapstructure:"timeout" validate:"gte=0s"`
	ValidateTimeout time.Duration `mapstructure:"validate_timeout" validate:"gte=0s"`

	Logging Logging `mapstructure:"logging"`

	// CACerts lists PEM bundles trusted in addition to the system roots.
	CACerts []string `mapstructure:"ca_certs"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		BaseURL:         DefaultBaseURL,
		ValidateURL:     DefaultValidateURL,
		Timeout:         DefaultTimeout,
		ValidateTimeout: DefaultValidateTimeout,
		Logging:         Logging{Channel: DefaultLogChannel},
	}
}

// New returns a viper instance carrying the defaults and environment
// bindings. Callers may bind command line flags to it before calling
// Decode.
func New() *viper.Viper {
	v := viper.New()

	d := Default()
	v.SetDefault("oauth_token", "")
	v.SetDefault("iam_token", "")
	v.SetDefault("iam_token_url", "")
	v.SetDefault("secret_key", "")
	v.SetDefault("client_key", "")
	v.SetDefault("folder_id", "")
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("validate_url", d.ValidateURL)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("validate_timeout", d.ValidateTimeout)
	v.SetDefault("logging.enabled", d.Logging.Enabled)
	v.SetDefault("logging.channel", d.Logging.Channel)
	v.SetDefault("ca_certs", []string{})

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// short forms kept for existing deployments
	_ = v.BindEnv("logging.enabled", EnvPrefix+"_LOGGING_ENABLED", EnvPrefix+"_LOGGING")
	_ = v.BindEnv("logging.channel", EnvPrefix+"_LOGGING_CHANNEL", EnvPrefix+"_LOG_CHANNEL")

	return v
}

// Load reads the YAML file at path (if not empty) on top of the defaults and
// the environment, and returns the validated result.
func Load(path string) (*Config, error) {
	v := New()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	return Decode(v)
}

// Decode extracts and validates a Config from v.
func Decode(v *viper.Viper) (*Config, error) {
	var c Config

	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks c for inconsistent or malformed settings.
func (o Config) Validate() error {
	err := validate.Struct(o)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}

	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "url":
		return fmt.Sprintf("%s must be an absolute URL", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must not be negative", fe.Field())
	case "excluded_with":
		return fmt.Sprintf("%s and %s are mutually exclusive", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag())
	}
}

// AuthMethod returns the authentication method implied by the configured
// credentials.
func (o Config) AuthMethod() auth.Method {
	switch {
	case o.OAuthToken != "":
		return auth.MethodOAuth
	case o.IAMToken != "":
		return auth.MethodBearer
	default:
		return auth.MethodNone
	}
}

// AuthConfig returns the authenticator settings for AuthMethod, in the
// shape expected by auth.New.
func (o Config) AuthConfig() map[string]interface{} {
	return o.AuthConfigFor(o.AuthMethod())
}

// AuthConfigFor returns the authenticator settings for method m.
func (o Config) AuthConfigFor(m auth.Method) map[string]interface{} {
	switch m {
	case auth.MethodOAuth:
		cfg := map[string]interface{}{"oauth_token": o.OAuthToken}
		if o.IAMTokenURL != "" {
			cfg["token_url"] = o.IAMTokenURL
		}
		return cfg
	case auth.MethodBearer:
		return map[string]interface{}{"iam_token": o.IAMToken}
	default:
		return map[string]interface{}{}
	}
}

// Authenticator builds the authenticator for the configured credentials.
func (o Config) Authenticator() (auth.IAuthenticator, error) {
	return auth.New(o.AuthMethod(), o.AuthConfig())
}

// NewLogger returns a no-op logger unless logging is enabled, in which case
// a production zap logger named after the channel is returned.
func (o Config) NewLogger() (*zap.Logger, error) {
	if !o.Logging.Enabled {
		return zap.NewNop(), nil
	}

	l, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	if o.Logging.Channel != "" {
		l = l.Named(o.Logging.Channel)
	}

	return l, nil
}

// Transport returns an HTTP transport trusting CACerts, or nil when no extra
// CA is configured.
func (o Config) Transport() (http.RoundTripper, error) {
	if len(o.CACerts) == 0 {
		return nil, nil
	}

	t, err := auth.NewTLSTransport(o.CACerts)
	if err != nil {
		return nil, err
	}

	return t, nil
}
