// Copyright 2025 Contributors to the SmartCaptcha Go client project.
// SPDX-License-Identifier: Apache-2.0

package management

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/smartcaptcha-go/apiclient/common"
	"go.uber.org/zap"
)

const (
	DefaultEndpointURI = "https://smartcaptcha.api.cloud.yandex.net/smartcaptcha/v1"
	DefaultPageSize    = 100
)

// Service is the primary interface to the captcha management API. Every
// operation requires the Client to carry an authenticator and fails with an
// authentication error, without any network traffic, when it does not.
type Service struct {
	// Client is the underlying client used for HTTP requests.
	Client *common.Client

	// EndPointURI is the versioned top-level API URL. Individual operations
	// endpoints are relative to this.
	EndPointURI *url.URL
}

// ListResult is one page of captchas
type ListResult struct {
	Captchas []*CaptchaInfo `json:"captchas" yaml:"captchas"`
	// NextPageToken is empty on the last page.
	NextPageToken string `json:"nextPageToken,omitempty" yaml:"nextPageToken,omitempty"`
}

// NewService creates a new Service instance using the provided endpoint
// URI (DefaultEndpointURI if empty) and client. A nil client is replaced by
// an unauthenticated default one.
func NewService(uri string, client *common.Client) (*Service, error) {
	if uri == "" {
		uri = DefaultEndpointURI
	}

	if client == nil {
		client = common.NewClient(nil)
	}

	m := Service{Client: client}

	if err := m.SetEndpointURI(uri); err != nil {
		return nil, err
	}

	return &m, nil
}

// SetClient sets the HTTP(s) client connection configuration
func (o *Service) SetClient(client *common.Client) error {
	if client == nil {
		return errors.New("no client supplied")
	}
	o.Client = client
	return nil
}

// SetEndpointURI sets the URI of the SmartCaptcha management endpoint.
func (o *Service) SetEndpointURI(uri string) error {
	u, err := common.ParseEndpointURI(uri)
	if err != nil {
		return err
	}

	o.EndPointURI = u

	return nil
}

// CreateCaptcha creates a captcha named name in folderID. Any options are
// merged into the request payload and take precedence over folderID and
// name on key collisions.
//
// The call is not idempotent. Retrying after an ambiguous failure (e.g. a
// timeout) may create a duplicate captcha.
func (o *Service) CreateCaptcha(
	ctx context.Context,
	folderID string,
	name string,
	options map[string]interface{},
) (*CaptchaInfo, error) {
	if err := o.Client.EnsureAuthenticated(); err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"folderId": folderID,
		"name":     name,
	}
	for k, v := range options {
		payload[k] = v
	}

	o.logger().Info("Creating SmartCaptcha",
		zap.String("folder_id", folderID),
		zap.String("name", name),
	)

	data, err := o.Client.Do(ctx, &common.Request{
		Method: http.MethodPost,
		URL:    o.EndPointURI.JoinPath("captchas"),
		JSON:   payload,
	})
	if err != nil {
		return nil, err
	}

	return o.captchaFromOperation(data)
}

// GetCaptcha returns the captcha with the given ID
func (o *Service) GetCaptcha(ctx context.Context, captchaID string) (*CaptchaInfo, error) {
	if err := o.Client.EnsureAuthenticated(); err != nil {
		return nil, err
	}

	u, err := o.captchaURL(captchaID, "")
	if err != nil {
		return nil, err
	}

	o.logger().Info("Getting SmartCaptcha info", zap.String("captcha_id", captchaID))

	data, err := o.Client.Do(ctx, &common.Request{
		Method: http.MethodGet,
		URL:    u,
	})
	if err != nil {
		return nil, err
	}

	return captchaFromMap(data)
}

// ListCaptchas returns a single page of the captchas in folderID. A
// non-positive pageSize means DefaultPageSize; pass the NextPageToken of
// the previous page to continue.
func (o *Service) ListCaptchas(
	ctx context.Context,
	folderID string,
	pageSize int,
	pageToken string,
) (*ListResult, error) {
	if err := o.Client.EnsureAuthenticated(); err != nil {
		return nil, err
	}

	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	qvals := url.Values{}
	qvals.Set("folderId", folderID)
	qvals.Set("pageSize", strconv.Itoa(pageSize))
	if pageToken != "" {
		qvals.Set("pageToken", pageToken)
	}

	o.logger().Info("Listing SmartCaptchas",
		zap.String("folder_id", folderID),
		zap.Int("page_size", pageSize),
	)

	data, err := o.Client.Do(ctx, &common.Request{
		Method: http.MethodGet,
		URL:    o.EndPointURI.JoinPath("captchas"),
		Query:  qvals,
	})
	if err != nil {
		return nil, err
	}

	return listFromMap(data)
}

// ListAllCaptchas follows NextPageToken until the last page and returns
// every captcha in folderID. It issues one request per page and stops at
// the first error.
func (o *Service) ListAllCaptchas(ctx context.Context, folderID string, pageSize int) ([]*CaptchaInfo, error) {
	var (
		all   = []*CaptchaInfo{}
		token string
	)

	for {
		page, err := o.ListCaptchas(ctx, folderID, pageSize, token)
		if err != nil {
			return nil, err
		}

		all = append(all, page.Captchas...)

		if page.NextPageToken == "" || page.NextPageToken == token {
			return all, nil
		}
		token = page.NextPageToken
	}
}

// UpdateCaptcha applies updates to the captcha with the given ID
func (o *Service) UpdateCaptcha(
	ctx context.Context,
	captchaID string,
	updates map[string]interface{},
) (*CaptchaInfo, error) {
	if err := o.Client.EnsureAuthenticated(); err != nil {
		return nil, err
	}

	u, err := o.captchaURL(captchaID, "")
	if err != nil {
		return nil, err
	}

	if updates == nil {
		updates = map[string]interface{}{}
	}

	o.logger().Info("Updating SmartCaptcha", zap.String("captcha_id", captchaID))

	data, err := o.Client.Do(ctx, &common.Request{
		Method: http.MethodPatch,
		URL:    u,
		JSON:   updates,
	})
	if err != nil {
		return nil, err
	}

	return o.captchaFromOperation(data)
}

// DeleteCaptcha deletes the captcha with the given ID and returns the
// decoded response (usually an operation) as-is.
func (o *Service) DeleteCaptcha(ctx context.Context, captchaID string) (map[string]interface{}, error) {
	if err := o.Client.EnsureAuthenticated(); err != nil {
		return nil, err
	}

	u, err := o.captchaURL(captchaID, "")
	if err != nil {
		return nil, err
	}

	o.logger().Info("Deleting SmartCaptcha", zap.String("captcha_id", captchaID))

	return o.Client.Do(ctx, &common.Request{
		Method: http.MethodDelete,
		URL:    u,
	})
}

// GetSecretKey returns the server key of the captcha with the given ID
func (o *Service) GetSecretKey(ctx context.Context, captchaID string) (*SecretKey, error) {
	if err := o.Client.EnsureAuthenticated(); err != nil {
		return nil, err
	}

	u, err := o.captchaURL(captchaID, ":getSecretKey")
	if err != nil {
		return nil, err
	}

	o.logger().Info("Getting SmartCaptcha secret key", zap.String("captcha_id", captchaID))

	data, err := o.Client.Do(ctx, &common.Request{
		Method: http.MethodGet,
		URL:    u,
	})
	if err != nil {
		return nil, err
	}

	key := SecretKeyFromMap(data)

	return &key, nil
}

func (o *Service) captchaFromOperation(data map[string]interface{}) (*CaptchaInfo, error) {
	op := OperationFromMap(data)

	if op.IsEnvelope() && !op.Done {
		o.logger().Info("SmartCaptcha operation started", zap.String("operation_id", op.ID))
	}

	return captchaFromMap(op.Payload())
}

// captchaURL returns the URL of a single captcha resource, with suffix
// appended to the escaped ID. IDs that are empty or could step out of the
// captchas collection are rejected without touching the network.
func (o *Service) captchaURL(captchaID, suffix string) (*url.URL, error) {
	if captchaID == "" ||
		strings.Contains(captchaID, "/") ||
		strings.Contains(captchaID, "..") {
		return nil, common.NewError(common.KindValidation, 0, nil, "invalid captcha ID %q", captchaID)
	}

	return o.EndPointURI.JoinPath("captchas", url.PathEscape(captchaID)+suffix), nil
}

func (o *Service) logger() *zap.Logger {
	if o.Client.Logger == nil {
		return zap.NewNop()
	}
	return o.Client.Logger
}

func captchaFromMap(m map[string]interface{}) (*CaptchaInfo, error) {
	c, err := CaptchaInfoFromMap(m)
	if err != nil {
		return nil, common.NewError(common.KindGeneric, 0, err, "%v", err)
	}
	return c, nil
}

func listFromMap(data map[string]interface{}) (*ListResult, error) {
	res := ListResult{Captchas: []*CaptchaInfo{}}

	if raw, ok := data["captchas"]; ok && raw != nil {
		items, ok := raw.([]interface{})
		if !ok {
			return nil, common.NewError(common.KindGeneric, 0, nil,
				"decoding captcha list: unexpected type %T for captchas", raw)
		}

		for i, item := range items {
			m, ok := item.(map[string]interface{})
			if !ok {
				return nil, common.NewError(common.KindGeneric, 0, nil,
					"decoding captcha list: item %d has unexpected type %T", i, item)
			}

			c, err := captchaFromMap(m)
			if err != nil {
				return nil, err
			}

			res.Captchas = append(res.Captchas, c)
		}
	}

	res.NextPageToken, _ = data["nextPageToken"].(string)

	return &res, nil
}
