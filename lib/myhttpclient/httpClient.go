package myhttpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

type jsonHTTPClient struct {
	httpClient *http.Client
}

func newJSONHTTPClient(timeout time.Duration) HTTPSender {
	return &jsonHTTPClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c jsonHTTPClient) Send(ctx context.Context, method string, url string, headers map[string]string, body []byte) (int, []byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return 0, []byte{}, fmt.Errorf("error creating http request for %s %s: %w", method, url, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, []byte{}, fmt.Errorf("error sending %s %s: %w", method, url, err)
	}
	defer httpResp.Body.Close()

	respPayload, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return 0, []byte{}, fmt.Errorf("error reading response %s %s: %w", method, url, err)
	}

	return httpResp.StatusCode, respPayload, nil
}
