// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/smartcaptcha-go/apiclient/management"
	"gopkg.in/yaml.v3"
)

// render writes v to w in the requested format. table fills in the table
// used for the table format.
func render(w io.Writer, format string, v interface{}, table func(*tablewriter.Table)) error {
	switch format {
	case OutputFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode output as JSON: %w", err)
		}
	case OutputFormatYAML:
		enc := yaml.NewEncoder(w)

		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode output as YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode output as YAML: %w", err)
		}
	case OutputFormatTable, "":
		t := tablewriter.NewWriter(w)
		table(t)

		if err := t.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}

	return nil
}

var captchaHeader = []interface{}{"ID", "Name", "Folder", "Client key", "Complexity", "Pre-check", "Challenge", "Sites"}

func captchaRow(c *management.CaptchaInfo) []interface{} {
	return []interface{}{
		c.ID,
		c.Name,
		c.FolderID,
		c.ClientKey,
		c.Complexity,
		c.PreCheckType,
		c.ChallengeType,
		strings.Join(c.AllowedSites, ", "),
	}
}

func captchaTable(cs ...*management.CaptchaInfo) func(*tablewriter.Table) {
	return func(t *tablewriter.Table) {
		t.Header(captchaHeader...)
		for _, c := range cs {
			_ = t.Append(captchaRow(c)...)
		}
	}
}

// mapTable renders a loosely typed response as key/value rows.
func mapTable(m map[string]interface{}) func(*tablewriter.Table) {
	return func(t *tablewriter.Table) {
		t.Header("Key", "Value")
		for _, k := range sortedKeys(m) {
			_ = t.Append(k, fmt.Sprint(m[k]))
		}
	}
}

func sortedKeys(m map[string]interface{}) []string {
	return slices.Sorted(maps.Keys(m))
}
