package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// HTTPClient implements Client against the provider's REST API.
// The provider authenticates with a static token sent in the "token" header.
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

// NewHTTPClient creates a billing client.
func NewHTTPClient(baseURL, token string, logger *zap.Logger) *HTTPClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 20 * time.Second},
		logger:  logger,
	}
}

// StatusError is returned for non-2xx provider responses.
type StatusError struct {
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("billing: %s: %d %s", e.Path, e.Status, e.Body)
}

// FindCustomers searches customers by CPF/CNPJ.
func (c *HTTPClient) FindCustomers(ctx context.Context, taxID string) ([]Customer, error) {
	var resp struct {
		Data []Customer `json:"data"`
	}
	path := "/cliente?" + url.Values{"cpfcnpj": {taxID}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// DuplicateInvoice requests a duplicate of the given charge for a customer.
func (c *HTTPClient) DuplicateInvoice(ctx context.Context, chargeCode, customerCode int64) (*Invoice, error) {
	body := map[string]int64{
		"codcobranca": chargeCode,
		"codcliente":  customerCode,
	}
	var inv Invoice
	if err := c.do(ctx, http.MethodPost, "/cobranca/segundaVia", body, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("token", c.token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("billing request", zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
