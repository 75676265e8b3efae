package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type (
	Pinger interface {
		Ping(ctx context.Context, host, accessKey string) error
	}

	pinger struct {
		httpClient *http.Client
	}
)

func NewPinger() Pinger {
	return &pinger{httpClient: &http.Client{Timeout: 10 * time.Second}}
}

func (p pinger) Ping(ctx context.Context, host, accessKey string) error {
	if !strings.HasSuffix(host, "/") {
		host += "/"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, host+"v1/status", nil)
	if err != nil {
		return err
	}
	req.Header.Set(accessKeyHeader, accessKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("server rejected the access key")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected response from server: %s", resp.Status)
	}
	return nil
}
