// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0

// Package commands implements the smartcaptcha command line tool.
package commands

import (
	"errors"
	"fmt"

	smartcaptcha "github.com/smartcaptcha-go/apiclient"
	"github.com/smartcaptcha-go/apiclient/auth"
	"github.com/smartcaptcha-go/apiclient/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Output formats.
const (
	OutputFormatTable = "table"
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"
)

var (
	ErrTokenRejected  = errors.New("token rejected")
	ErrFolderRequired = errors.New("folder ID is required (use --folder or YANDEX_SMARTCAPTCHA_FOLDER_ID)")
	ErrSecretRequired = errors.New("secret key is required (use --secret or YANDEX_SMARTCAPTCHA_SECRET_KEY)")
)

// app carries the state shared by all commands of one invocation.
type app struct {
	v          *viper.Viper
	configPath string
	output     string
	method     auth.Method
	retries    int
	rate       float64
}

// NewRootCommand builds the smartcaptcha command tree.
func NewRootCommand(version string) *cobra.Command {
	a := &app{v: config.New()}

	cmd := &cobra.Command{
		Use:   "smartcaptcha",
		Short: "Yandex SmartCaptcha command line client",
		Long: `Validate SmartCaptcha tokens and manage captchas.

Settings are read from the config file given with --config, then from
YANDEX_SMARTCAPTCHA_* environment variables, then from flags.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.readConfig()
		},
	}

	fs := cmd.PersistentFlags()
	fs.StringVarP(&a.configPath, "config", "c", "", "config file (YAML)")
	fs.StringVarP(&a.output, "output", "o", OutputFormatTable, "output format (table, json, yaml)")
	fs.IntVar(&a.retries, "retries", 0, "retry read-only calls up to N times on transient failures")
	fs.Float64Var(&a.rate, "rate", 0, "maximum requests per second (0 means unlimited)")
	fs.String("oauth-token", "", "OAuth token, exchanged for IAM tokens")
	fs.String("iam-token", "", "IAM token")
	fs.String("api", "", "management API base URL")
	fs.String("validate-url", "", "token validation URL")
	fs.Duration("timeout", 0, "timeout of management calls")
	fs.BoolP("verbose", "v", false, "log requests to stderr")
	addAuthFlag(fs, &a.method)

	for key, flag := range map[string]string{
		"oauth_token":     "oauth-token",
		"iam_token":       "iam-token",
		"base_url":        "api",
		"validate_url":    "validate-url",
		"timeout":         "timeout",
		"logging.enabled": "verbose",
	} {
		_ = a.v.BindPFlag(key, fs.Lookup(flag))
	}

	cmd.AddCommand(newValidateCommand(a))
	cmd.AddCommand(newCaptchaCommand(a))

	return cmd
}

func addAuthFlag(fs *pflag.FlagSet, m *auth.Method) {
	fs.Var(m, "auth", "authentication method (none, bearer, oauth); derived from the credentials if unset")
}

func (o *app) readConfig() error {
	if o.configPath == "" {
		return nil
	}

	o.v.SetConfigFile(o.configPath)
	o.v.SetConfigType("yaml")

	if err := o.v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file %s: %w", o.configPath, err)
	}

	return nil
}

func (o *app) config() (*config.Config, error) {
	return config.Decode(o.v)
}

// client builds a library client from the effective configuration. Retries,
// if requested, are only layered in when retry is true.
func (o *app) client(retry bool) (*smartcaptcha.Client, *config.Config, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, nil, err
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, nil, err
	}

	opts := []smartcaptcha.Option{smartcaptcha.WithLogger(logger)}

	if o.method != "" {
		a, err := auth.New(o.method, cfg.AuthConfigFor(o.method))
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, smartcaptcha.WithAuthenticator(a))
	}

	hc, err := o.httpClient(cfg, retry, logger)
	if err != nil {
		return nil, nil, err
	}
	if hc != nil {
		opts = append(opts, smartcaptcha.WithHTTPClient(hc))
	}

	c, err := smartcaptcha.New(*cfg, opts...)
	if err != nil {
		return nil, nil, err
	}

	return c, cfg, nil
}
