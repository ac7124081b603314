package cloudkit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Endpoint paths under the photos service endpoint.
const (
	pathQuery  = "records/query"
	pathBatch  = "internal/records/query/batch"
	pathModify = "records/modify"
)

// The store expects request bodies as opaque text, not application/json.
const contentType = "text/plain"

// PostQuery executes a records/query call.
func PostQuery(ctx context.Context, httpClient *http.Client, endpoint string, params url.Values, req QueryRequest) (*QueryResponse, error) {
	var resp QueryResponse
	if err := post(ctx, httpClient, endpoint, pathQuery, params, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PostBatch executes a batched internal/records/query call.
func PostBatch(ctx context.Context, httpClient *http.Client, endpoint string, params url.Values, req BatchRequest) (*BatchResponse, error) {
	var resp BatchResponse
	if err := post(ctx, httpClient, endpoint, pathBatch, params, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PostModify executes a records/modify call. The response is returned raw;
// interpreting per-record results is left to the caller.
func PostModify(ctx context.Context, httpClient *http.Client, endpoint string, params url.Values, req ModifyRequest) (json.RawMessage, error) {
	var resp json.RawMessage
	if err := post(ctx, httpClient, endpoint, pathModify, params, req, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func post(ctx context.Context, httpClient *http.Client, endpoint, path string, params url.Values, reqBody, respBody any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}
	u := fmt.Sprintf("%s/%s?%s", endpoint, path, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return NewNetworkError(path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return NewHTTPError(resp.StatusCode, string(b), path)
	}

	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return NewNetworkError(path, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
