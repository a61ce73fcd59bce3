// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0
package auth

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// decodeConfig decodes cfg into out, which must be a pointer to a struct
// with a `mapstructure:",remain"` map field named Rest. Keys that end up in
// Rest are reported as unexpected.
func decodeConfig(cfg map[string]interface{}, out interface{}, rest func() map[string]interface{}) error {
	if err := mapstructure.Decode(cfg, out); err != nil {
		return err
	}

	if r := rest(); len(r) > 0 {
		var unexpected []string
		for k := range r {
			unexpected = append(unexpected, k)
		}
		sort.Strings(unexpected)
		return fmt.Errorf("unexpected fields in config: %s",
			strings.Join(unexpected, ", "))
	}

	return nil
}
