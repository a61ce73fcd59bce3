// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0

package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
)

// ParseEndpointURI parses uri and makes sure it is in absolute form
func ParseEndpointURI(uri string) (*url.URL, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("malformed URI: %w", err)
	}

	if !u.IsAbs() {
		return nil, fmt.Errorf("URI is not absolute: %q", uri)
	}

	return u, nil
}

// DecodeJSONObject decodes a response body into a loosely typed map. An empty
// (or all-whitespace) body yields an empty map. Anything that is not a JSON
// object is rejected as a generic error carrying status, no partial recovery
// is attempted.
func DecodeJSONObject(status int, body []byte) (map[string]interface{}, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]interface{}{}, nil
	}

	var j map[string]interface{}

	if err := json.Unmarshal(body, &j); err != nil {
		return nil, NewError(KindGeneric, status, err, "Invalid JSON response: %v", err)
	}

	if j == nil {
		return map[string]interface{}{}, nil
	}

	return j, nil
}

// StringValue returns m[key] if it is a non-empty string
func StringValue(m map[string]interface{}, key string) (string, bool) {
	s, ok := m[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
