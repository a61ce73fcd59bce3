// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0

package verification

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// ValidationResult is the outcome of a single token check. A failed check
// (Status other than "ok") is a regular result, not an error.
type ValidationResult struct {
	Status  string `json:"status" yaml:"status"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
	// Host is the site the token was issued for, as reported by the service.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
}

// IsValid returns true iff the service accepted the token
func (o ValidationResult) IsValid() bool {
	return o.Status == StatusOK
}

// ValidationResultFromMap builds a ValidationResult from a decoded response
// body. A missing status is treated as "failed".
func ValidationResultFromMap(m map[string]interface{}) ValidationResult {
	r := ValidationResult{Status: StatusFailed}

	if s, ok := m["status"].(string); ok {
		r.Status = s
	}
	if s, ok := m["message"].(string); ok {
		r.Message = s
	}
	if s, ok := m["host"].(string); ok {
		r.Host = s
	}

	return r
}

// ToMap is the inverse of ValidationResultFromMap. Empty optional fields are
// left out.
func (o ValidationResult) ToMap() map[string]interface{} {
	m := map[string]interface{}{"status": o.Status}

	if o.Message != "" {
		m["message"] = o.Message
	}
	if o.Host != "" {
		m["host"] = o.Host
	}

	return m
}
