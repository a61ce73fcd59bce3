// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0

package management

// Operation is the envelope the service uses for long-running mutations.
// The client does not wait for operations to finish: whatever the first
// response holds is what callers get.
type Operation struct {
	ID       string
	Done     bool
	Metadata map[string]interface{}
	Response map[string]interface{}

	raw map[string]interface{}
}

// OperationFromMap wraps a decoded response body. Bodies that are not
// operation envelopes are accepted too; Payload then returns them as-is.
func OperationFromMap(m map[string]interface{}) Operation {
	op := Operation{raw: m}

	op.ID, _ = m["id"].(string)
	op.Done, _ = m["done"].(bool)
	op.Metadata, _ = m["metadata"].(map[string]interface{})
	op.Response, _ = m["response"].(map[string]interface{})

	return op
}

// IsEnvelope reports whether the body looked like an operation, i.e. had
// both an "id" and a "done" field.
func (o Operation) IsEnvelope() bool {
	_, hasID := o.raw["id"]
	_, hasDone := o.raw["done"]
	return hasID && hasDone
}

// Payload returns the resource carried by the response: "response" if
// present, else "metadata", else the body itself.
func (o Operation) Payload() map[string]interface{} {
	if o.Response != nil {
		return o.Response
	}
	if o.Metadata != nil {
		return o.Metadata
	}
	return o.raw
}
