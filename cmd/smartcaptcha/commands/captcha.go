// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/smartcaptcha-go/apiclient/management"
	"github.com/spf13/cobra"
)

// newCaptchaCommand creates the captcha command group
func newCaptchaCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "captcha",
		Aliases: []string{"captchas"},
		Short:   "Manage captchas",
		Long:    "Create, inspect, update and delete SmartCaptcha captchas",
	}

	cmd.AddCommand(newCaptchaCreateCommand(a))
	cmd.AddCommand(newCaptchaGetCommand(a))
	cmd.AddCommand(newCaptchaListCommand(a))
	cmd.AddCommand(newCaptchaUpdateCommand(a))
	cmd.AddCommand(newCaptchaDeleteCommand(a))
	cmd.AddCommand(newCaptchaSecretCommand(a))

	return cmd
}

// captchaSettings are the flags shared by create and update
type captchaSettings struct {
	sites              []string
	complexity         string
	preCheck           string
	challenge          string
	deletionProtection bool
}

func (o *captchaSettings) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&o.sites, "site", nil, "allowed site (repeatable)")
	cmd.Flags().StringVar(&o.complexity, "complexity", "", "EASY, MEDIUM, HARD or FORCE_HARD")
	cmd.Flags().StringVar(&o.preCheck, "pre-check", "", "CHECKBOX or SLIDER")
	cmd.Flags().StringVar(&o.challenge, "challenge", "", "IMAGE_TEXT, SILHOUETTES or KALEIDOSCOPE")
	cmd.Flags().BoolVar(&o.deletionProtection, "deletion-protection", false, "protect the captcha from deletion")
}

// payload holds only the settings given on the command line
func (o *captchaSettings) payload(cmd *cobra.Command) map[string]interface{} {
	p := map[string]interface{}{}

	if cmd.Flags().Changed("site") {
		p["allowedSites"] = o.sites
	}
	if cmd.Flags().Changed("complexity") {
		p["complexity"] = o.complexity
	}
	if cmd.Flags().Changed("pre-check") {
		p["preCheckType"] = o.preCheck
	}
	if cmd.Flags().Changed("challenge") {
		p["challengeType"] = o.challenge
	}
	if cmd.Flags().Changed("deletion-protection") {
		p["deletionProtection"] = o.deletionProtection
	}

	return p
}

func folderOrDefault(folder, configured string) (string, error) {
	if folder != "" {
		return folder, nil
	}
	if configured != "" {
		return configured, nil
	}
	return "", ErrFolderRequired
}

func newCaptchaCreateCommand(a *app) *cobra.Command {
	var (
		folder   string
		settings captchaSettings
	)

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a captcha",
		Long: `Create a captcha. The command is never retried: a failure after the
request was sent may still have created the captcha.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cfg, err := a.client(false)
			if err != nil {
				return err
			}

			folderID, err := folderOrDefault(folder, cfg.FolderID)
			if err != nil {
				return err
			}

			captcha, err := c.CreateCaptcha(cmd.Context(), folderID, args[0], settings.payload(cmd))
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), a.output, captcha, captchaTable(captcha))
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "folder ID (default: configured folder_id)")
	settings.addFlags(cmd)

	return cmd
}

func newCaptchaGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show a captcha",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.client(true)
			if err != nil {
				return err
			}

			captcha, err := c.GetCaptcha(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), a.output, captcha, captchaTable(captcha))
		},
	}
}

func newCaptchaListCommand(a *app) *cobra.Command {
	var (
		folder    string
		pageSize  int
		pageToken string
		all       bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List captchas of a folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, cfg, err := a.client(true)
			if err != nil {
				return err
			}

			folderID, err := folderOrDefault(folder, cfg.FolderID)
			if err != nil {
				return err
			}

			res := &management.ListResult{}

			if all {
				res.Captchas, err = c.ListAllCaptchas(cmd.Context(), folderID, pageSize)
			} else {
				res, err = c.ListCaptchas(cmd.Context(), folderID, pageSize, pageToken)
			}
			if err != nil {
				return err
			}

			if a.output == OutputFormatTable && len(res.Captchas) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No captchas found")
				return err
			}

			err = render(cmd.OutOrStdout(), a.output, res, captchaTable(res.Captchas...))
			if err != nil {
				return err
			}

			if a.output == OutputFormatTable && res.NextPageToken != "" {
				_, err = fmt.Fprintf(cmd.OutOrStdout(),
					"\nMore captchas available. Use --page-token %s or --all.\n", res.NextPageToken)
			}

			return err
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "folder ID (default: configured folder_id)")
	cmd.Flags().IntVar(&pageSize, "page-size", management.DefaultPageSize, "results per page")
	cmd.Flags().StringVar(&pageToken, "page-token", "", "token of the page to fetch")
	cmd.Flags().BoolVar(&all, "all", false, "fetch all pages")

	return cmd
}

func newCaptchaUpdateCommand(a *app) *cobra.Command {
	var (
		name     string
		settings captchaSettings
	)

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a captcha",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.client(false)
			if err != nil {
				return err
			}

			updates := settings.payload(cmd)
			if cmd.Flags().Changed("name") {
				updates["name"] = name
			}

			captcha, err := c.UpdateCaptcha(cmd.Context(), args[0], updates)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), a.output, captcha, captchaTable(captcha))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	settings.addFlags(cmd)

	return cmd
}

func newCaptchaDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a captcha",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.client(false)
			if err != nil {
				return err
			}

			res, err := c.DeleteCaptcha(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), a.output, res, mapTable(res))
		},
	}
}

func newCaptchaSecretCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "secret ID",
		Short: "Print the server key of a captcha",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.client(true)
			if err != nil {
				return err
			}

			key, err := c.GetSecretKey(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), a.output, key, func(t *tablewriter.Table) {
				t.Header("Server key")
				_ = t.Append(key.ServerKey)
			})
		},
	}
}
