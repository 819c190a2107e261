// Package api is a client for the Xpense REST API.
package api

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

	"github.com/xpense-dev/xpense/internal/model"
	"github.com/xpense-dev/xpense/internal/payload"
)

// Reference data endpoints.
const (
	AccountsEndpoint          = "/accounts/"
	ContactsEndpoint          = "/contacts/"
	ContactAccountsEndpoint   = "/contact-accounts/"
	LoansEndpoint             = "/loans/"
	ExpenseCategoriesEndpoint = "/expense-categories/"
	IncomeSourcesEndpoint     = "/income-sources/"
)

// maxPages bounds how many "next" links a list call follows.
const maxPages = 100

// ClientConfig represents the configuration for the API client.
type ClientConfig struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration // Default: 30 seconds
	HTTPClient *http.Client  // optional; Timeout is ignored when set
}

// Client talks to the Xpense API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates a new API client.
func NewClient(config ClientConfig) *Client {
	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		token:      config.Token,
	}
}

// Submit posts an assembled request. idempotencyKey is sent as the
// Idempotency-Key header when non-empty. Non-2xx responses return *Error.
func (c *Client) Submit(ctx context.Context, req payload.Request, idempotencyKey string) error {
	body, err := payload.Encode(req)
	if err != nil {
		return err
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, c.baseURL+req.Endpoint, bytes.NewReader(body.Data))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", body.ContentType)
	if idempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("posting %s: %w", req.Endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// ListAccounts returns the user's accounts.
func (c *Client) ListAccounts(ctx context.Context) ([]model.Account, error) {
	return list[model.Account](ctx, c, AccountsEndpoint)
}

// ListContacts returns the user's contacts.
func (c *Client) ListContacts(ctx context.Context) ([]model.Contact, error) {
	return list[model.Contact](ctx, c, ContactsEndpoint)
}

// ListContactAccounts returns every contact account.
func (c *Client) ListContactAccounts(ctx context.Context) ([]model.ContactAccount, error) {
	return list[model.ContactAccount](ctx, c, ContactAccountsEndpoint)
}

// ListLoans returns every loan, open or closed.
func (c *Client) ListLoans(ctx context.Context) ([]model.Loan, error) {
	return list[model.Loan](ctx, c, LoansEndpoint)
}

// ListExpenseCategories returns the expense categories.
func (c *Client) ListExpenseCategories(ctx context.Context) ([]model.ExpenseCategory, error) {
	return list[model.ExpenseCategory](ctx, c, ExpenseCategoriesEndpoint)
}

// ListIncomeSources returns the income sources.
func (c *Client) ListIncomeSources(ctx context.Context) ([]model.IncomeSource, error) {
	return list[model.IncomeSource](ctx, c, IncomeSourcesEndpoint)
}

// page is the paginated list envelope.
type page[T any] struct {
	Next    string `json:"next"`
	Results []T    `json:"results"`
}

// list GETs endpoint and decodes either a bare array or paginated pages,
// following "next" links.
func list[T any](ctx context.Context, c *Client, endpoint string) ([]T, error) {
	var all []T
	pageURL := c.baseURL + endpoint
	for n := 0; ; n++ {
		if n == maxPages {
			return nil, fmt.Errorf("listing %s: more than %d pages", endpoint, maxPages)
		}
		data, err := c.get(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", endpoint, err)
		}

		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			var items []T
			if err := json.Unmarshal(trimmed, &items); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", endpoint, err)
			}
			return append(all, items...), nil
		}

		var p page[T]
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", endpoint, err)
		}
		all = append(all, p.Results...)
		if p.Next == "" {
			return all, nil
		}
		if pageURL, err = c.resolveNext(p.Next); err != nil {
			return nil, fmt.Errorf("listing %s: %w", endpoint, err)
		}
	}
}

// resolveNext resolves a "next" link against the base URL. Links to another
// host are refused so the token never leaves the configured server.
func (c *Client) resolveNext(next string) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	ref, err := url.Parse(next)
	if err != nil {
		return "", fmt.Errorf("parsing next link %q: %w", next, err)
	}
	u := base.ResolveReference(ref)
	if u.Scheme != base.Scheme || u.Host != base.Host {
		return "", fmt.Errorf("next link %q leaves %s", next, base.Host)
	}
	return u.String(), nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseError(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return data, nil
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// parseError reads an error response into *Error.
func parseError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	msg := FlattenMessage(body)
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &Error{Status: resp.StatusCode, Message: msg}
}
