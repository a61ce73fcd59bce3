// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newValidateCommand(a *app) *cobra.Command {
	var (
		secret, ip string
		prompt     bool
	)

	cmd := &cobra.Command{
		Use:   "validate TOKEN",
		Short: "Check a user token",
		Long: `Check a token produced by the captcha widget.

The command fails when the token is rejected. The server key defaults to
the configured secret_key; use --prompt-secret to type it in instead of
passing it on the command line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cfg, err := a.client(false)
			if err != nil {
				return err
			}

			if prompt {
				if secret, err = promptSecret(cmd, "Server key"); err != nil {
					return err
				}
			}
			if secret == "" {
				secret = cfg.SecretKey
			}
			if secret == "" {
				return ErrSecretRequired
			}

			res, err := c.Validate(cmd.Context(), args[0], secret, ip)
			if err != nil {
				return err
			}

			err = render(cmd.OutOrStdout(), a.output, res, func(t *tablewriter.Table) {
				t.Header("Status", "Host", "Message")
				_ = t.Append(res.Status, res.Host, res.Message)
			})
			if err != nil {
				return err
			}

			if !res.IsValid() {
				return ErrTokenRejected
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "server key of the captcha")
	cmd.Flags().StringVar(&ip, "ip", "", "IP address of the user")
	cmd.Flags().BoolVar(&prompt, "prompt-secret", false, "read the server key from the terminal")
	cmd.MarkFlagsMutuallyExclusive("secret", "prompt-secret")

	return cmd
}
