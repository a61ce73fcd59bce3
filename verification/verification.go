// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0

package verification

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/smartcaptcha-go/apiclient/common"
	"go.uber.org/zap"
)

const (
	DefaultValidateURI = "https://smartcaptcha.cloud.yandex.ru/validate"
	DefaultTimeout     = 10 * time.Second
)

// Service checks user tokens against the verification endpoint. It never
// sends credentials, whatever authenticator its Client carries.
type Service struct {
	// Client is the underlying client used for HTTP requests.
	Client *common.Client

	// EndPointURI is the URL of the validate endpoint.
	EndPointURI *url.URL
}

// NewService creates a new Service instance using the provided endpoint URI
// (DefaultValidateURI if empty). A nil client is replaced by a fresh
// unauthenticated one with a 10s timeout.
func NewService(uri string, client *common.Client) (*Service, error) {
	if uri == "" {
		uri = DefaultValidateURI
	}

	if client == nil {
		client = common.NewClient(nil)
		client.Timeout = DefaultTimeout
	}

	v := Service{Client: client}

	if err := v.SetEndpointURI(uri); err != nil {
		return nil, err
	}

	return &v, nil
}

// SetClient sets the HTTP(s) client connection configuration
func (o *Service) SetClient(client *common.Client) error {
	if client == nil {
		return errors.New("no client supplied")
	}
	o.Client = client
	return nil
}

// SetEndpointURI sets the URI of the validate endpoint.
func (o *Service) SetEndpointURI(uri string) error {
	u, err := common.ParseEndpointURI(uri)
	if err != nil {
		return err
	}

	o.EndPointURI = u

	return nil
}

// Validate checks token against secret. ip is optional and is only sent when
// non-empty.
//
// A token the service rejects is reported through the returned result
// (IsValid() == false) and a nil error. Errors are reserved for transport
// and service faults; any non-2xx response is a generic *common.ServiceError
// carrying the status code.
func (o *Service) Validate(ctx context.Context, token, secret, ip string) (*ValidationResult, error) {
	log := o.Client.Logger
	if log == nil {
		log = zap.NewNop()
	}

	log.Info("Validating SmartCaptcha token", zap.Bool("has_ip", ip != ""))

	form := url.Values{}
	form.Set("secret", secret)
	form.Set("token", token)
	if ip != "" {
		form.Set("ip", ip)
	}

	status, header, body, err := o.Client.DoStatus(ctx, &common.Request{
		Method:    http.MethodPost,
		URL:       o.EndPointURI,
		Form:      form,
		Anonymous: true,
	})
	if err != nil {
		return nil, err
	}

	if status < 200 || status > 299 {
		// the validate endpoint reports every failure as generic
		se := common.ErrorFromResponseKind(common.KindGeneric, status, header, body, nil)

		log.Error("SmartCaptcha validation request failed",
			zap.Int("status_code", status),
			zap.String("error", se.Message),
		)

		return nil, se
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, common.NewError(common.KindGeneric, status, nil, "Invalid JSON response: empty body")
	}

	j, err := common.DecodeJSONObject(status, body)
	if err != nil {
		return nil, err
	}

	res := ValidationResultFromMap(j)

	log.Info("SmartCaptcha validation result",
		zap.String("status", res.Status),
		zap.Bool("is_valid", res.IsValid()),
	)

	return &res, nil
}
