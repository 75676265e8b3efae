package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
)

type (
	Params struct {
		Method      string
		Path        string
		Body        interface{}
		Response    interface{}
		QueryParams map[string]string
	}

	Client interface {
		Do(ctx context.Context, param Params) error
		SSE(ctx context.Context, param Params) (io.ReadCloser, error)
	}

	client struct {
		httpClient *http.Client
		baseUrl    string
		accessKey  string
	}
)

const (
	accessKeyHeader = "X-Access-Key"
)

func NewClient(host, accessKey string) Client {
	if !strings.HasSuffix(host, "/") {
		host += "/"
	}
	if !strings.HasSuffix(host, "v1/") {
		host += "v1/"
	}

	return &client{
		httpClient: &http.Client{},
		baseUrl:    host,
		accessKey:  accessKey,
	}
}

func (c client) Do(ctx context.Context, param Params) error {
	requestUrl, err := c.buildUrl(param)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, param.Method, requestUrl, nil)
	if err != nil {
		return err
	}
	if param.Body != nil {
		bodyBin, err := json.Marshal(param.Body)
		if err != nil {
			return err
		}
		req.Body = io.NopCloser(bytes.NewBuffer(bodyBin))
	}

	req.Header.Set("Content-Type", "application/json")
	if c.accessKey != "" {
		req.Header.Set(accessKeyHeader, c.accessKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.parseError(responseBody)
	}

	if param.Response != nil {
		if err := json.Unmarshal(responseBody, &param.Response); err != nil {
			return err
		}
	}
	return nil
}

func (c client) SSE(ctx context.Context, param Params) (io.ReadCloser, error) {
	sseUrl, err := c.buildUrl(param)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, param.Method, sseUrl, nil)
	if err != nil {
		return nil, err
	}

	if c.accessKey != "" {
		req.Header.Set(accessKeyHeader, c.accessKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c client) buildUrl(param Params) (string, error) {
	requestUrl, err := url.Parse(c.baseUrl + param.Path)
	if err != nil {
		return "", err
	}

	if len(param.QueryParams) > 0 {
		values := url.Values{}
		for k, v := range param.QueryParams {
			values.Add(k, v)
		}
		requestUrl.RawQuery = values.Encode()
	}
	return requestUrl.String(), nil
}

func (c client) parseError(b []byte) error {
	var errorResponse struct {
		Message string
	}
	if err := json.Unmarshal(b, &errorResponse); err != nil {
		return err
	}
	return errors.New(errorResponse.Message)
}
