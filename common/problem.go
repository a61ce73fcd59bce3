// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0

package common

import (
	"encoding/json"
	"mime"
	"net/http"

	"github.com/moogar0880/problems"
)

// ErrorFromResponse builds the ServiceError for a non-2xx response. The
// message is taken from a JSON "message" field when there is one, from an RFC
// 7807 problem document when the server sent one, and is the raw body text
// otherwise.
func ErrorFromResponse(status int, header http.Header, body []byte, cause error) *ServiceError {
	return ErrorFromResponseKind(KindForStatus(status), status, header, body, cause)
}

// ErrorFromResponseKind is ErrorFromResponse with the kind chosen by the
// caller rather than derived from status.
func ErrorFromResponseKind(kind Kind, status int, header http.Header, body []byte, cause error) *ServiceError {
	return &ServiceError{
		Kind:       kind,
		Message:    errorMessage(header, body),
		StatusCode: status,
		Err:        cause,
	}
}

func errorMessage(header http.Header, body []byte) string {
	var j struct {
		Message *string `json:"message"`
	}

	if err := json.Unmarshal(body, &j); err == nil && j.Message != nil {
		return *j.Message
	}

	if isProblem(header) {
		var prob problems.DefaultProblem

		if err := json.Unmarshal(body, &prob); err == nil {
			if prob.Detail != "" {
				return prob.Detail
			}
			if prob.Title != "" {
				return prob.Title
			}
		}
	}

	return string(body)
}

func isProblem(header http.Header) bool {
	if header == nil {
		return false
	}

	mt, _, err := mime.ParseMediaType(header.Get("Content-Type"))
	if err != nil {
		return false
	}

	return mt == problems.ProblemMediaType
}
