package accounting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/invoicing"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/shared"
)

// maxResponseSize is the maximum allowed response size from the
// accounting API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Client submits documents to the accounting system over its REST API.
// A business rejection is not an error: it comes back as a SubmitResult
// with a zero status so the caller can inspect the message.
type Client struct {
	config     *Config
	httpClient *http.Client
	tokens     *tokenSource
	logger     *zap.Logger
}

// NewClient creates a new accounting API client with the given
// configuration.
func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := &http.Client{
		Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
	}
	return &Client{
		config:     config,
		httpClient: httpClient,
		tokens:     newTokenSource(config, httpClient),
		logger:     logger,
	}, nil
}

// Submit posts one document to the endpoint for its type. A 401 response
// invalidates the cached token and the request is retried once with a
// fresh one.
func (c *Client) Submit(ctx context.Context, docType invoicing.DocumentType, payload any) (*invoicing.SubmitResult, error) {
	path, ok := documentPaths[docType]
	if !ok {
		return nil, fmt.Errorf("accounting: unknown document type %q", docType)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("accounting: failed to encode %s payload: %w", docType, err)
	}

	respBody, status, err := c.doRequest(ctx, path, body)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		c.tokens.Invalidate()
		respBody, status, err = c.doRequest(ctx, path, body)
		if err != nil {
			return nil, err
		}
	}
	if status == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: accounting rejected credentials", shared.ErrUnauthorized)
	}
	if status >= 400 {
		return nil, fmt.Errorf("%w: accounting %s returned HTTP %d", shared.ErrExternalService, docType, status)
	}

	item, err := parseSubmitResponse(respBody)
	if err != nil {
		return nil, fmt.Errorf("accounting: failed to parse %s response: %w", docType, err)
	}

	result := &invoicing.SubmitResult{
		Status:        item.Status,
		Message:       item.Message,
		CorrelationID: item.GUID,
		Raw:           string(respBody),
	}
	if !result.OK() {
		c.logger.Warn("accounting rejected document",
			zap.String("doc_type", string(docType)),
			zap.String("message", result.Message))
	}
	return result, nil
}

// doRequest posts the body to the path with a bearer token. The HTTP
// status is returned alongside the body so the caller can decide on the
// 401 retry.
func (c *Client) doRequest(ctx context.Context, path string, body []byte) ([]byte, int, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, 0, err
	}

	url := strings.TrimSuffix(c.config.BaseURL, "/") + "/" + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("accounting: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", shared.ErrExternalService, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, 0, fmt.Errorf("accounting: failed to read response: %w", err)
	}
	return respBody, resp.StatusCode, nil
}

// parseSubmitResponse reads the first result entry. The API wraps results
// in an array even for single-document posts; some legacy endpoints
// return a bare object instead.
func parseSubmitResponse(body []byte) (*submitResponseItem, error) {
	var items []submitResponseItem
	if err := json.Unmarshal(body, &items); err == nil {
		if len(items) == 0 {
			return nil, fmt.Errorf("empty result array")
		}
		return &items[0], nil
	}
	var item submitResponseItem
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Ensure Client implements the gateway interface
var _ invoicing.AccountingGateway = (*Client)(nil)
