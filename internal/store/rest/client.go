// Package rest implements the store and profile collaborators against the
// budget tracker HTTP API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fjacquet/budget-tracker/internal/logging"
	"fjacquet/budget-tracker/internal/models"
	"fjacquet/budget-tracker/internal/parsererror"
	"fjacquet/budget-tracker/internal/profile"
	"fjacquet/budget-tracker/internal/store"

	"github.com/shopspring/decimal"
)

// DefaultTimeout applies when no timeout is configured.
const DefaultTimeout = 30 * time.Second

const maxBodyBytes = 4 << 20

// Client talks to the remote API. It implements store.Store and
// profile.RemoteStore.
type Client struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	logger     logging.Logger
}

var (
	_ store.Store         = (*Client)(nil)
	_ profile.RemoteStore = (*Client)(nil)
)

// NewClient creates a client for baseURL. token is sent as a bearer token
// when non-empty.
func NewClient(baseURL, token string, timeout time.Duration, logger logging.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Client{
		baseURL:    u,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// endpoint joins an already escaped path onto the base URL.
func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	raw := strings.TrimRight(c.baseURL.EscapedPath(), "/") + path
	if unescaped, err := url.PathUnescape(raw); err == nil {
		u.Path, u.RawPath = unescaped, raw
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends one request and decodes the payload into out when out is
// non-nil. Every failure is a *parsererror.StoreError.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return &parsererror.StoreError{Op: op, Msg: "failed to encode request", Err: err}
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return &parsererror.StoreError{Op: op, Msg: "failed to create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return &parsererror.StoreError{Op: op, Msg: "request failed", Err: err}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.WithError(cerr).Debug("Failed to close response body")
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &parsererror.StoreError{Op: op, Status: resp.StatusCode, Msg: "failed to read response", Err: err}
	}

	c.logger.WithFields(
		logging.F(logging.FieldOperation, op),
		logging.F(logging.FieldStatus, resp.StatusCode),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()),
	).Debug("API request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		storeErr := &parsererror.StoreError{Op: op, Status: resp.StatusCode, Msg: errorMessage(data)}
		if resp.StatusCode == http.StatusNotFound {
			storeErr.Err = store.ErrNotFound
		}
		return storeErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := decodePayload(data, out); err != nil {
		return &parsererror.StoreError{Op: op, Status: resp.StatusCode, Msg: "failed to decode response", Err: err}
	}
	return nil
}

func monthQuery(month string) url.Values {
	if month == "" {
		return nil
	}
	return url.Values{"month": []string{month}}
}

// ListExpenses implements store.ExpenseStore. Records the server sends with
// unreadable dates or amounts are skipped and logged.
func (c *Client) ListExpenses(ctx context.Context, month string) ([]models.ExpenseRecord, error) {
	var dtos []expenseDTO
	if err := c.do(ctx, "list expenses", http.MethodGet, "/expenses", monthQuery(month), nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]models.ExpenseRecord, 0, len(dtos))
	for _, d := range dtos {
		e, err := d.record()
		if err != nil {
			c.logger.WithFields(
				logging.F(logging.FieldExpenseID, d.id()),
				logging.F(logging.FieldReason, err.Error()),
			).Warn("Skipping unreadable expense")
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (c *Client) CreateExpense(ctx context.Context, e models.ExpenseRecord) (models.ExpenseRecord, error) {
	return c.sendExpense(ctx, "create expense", http.MethodPost, "/expenses", e)
}

func (c *Client) UpdateExpense(ctx context.Context, e models.ExpenseRecord) (models.ExpenseRecord, error) {
	if e.ID == "" {
		return models.ExpenseRecord{}, &parsererror.StoreError{Op: "update expense", Msg: "expense id is required"}
	}
	return c.sendExpense(ctx, "update expense", http.MethodPut, "/expenses/update/"+url.PathEscape(e.ID), e)
}

// sendExpense posts e and returns the server copy. A response without a
// body keeps the submitted record.
func (c *Client) sendExpense(ctx context.Context, op, method, path string, e models.ExpenseRecord) (models.ExpenseRecord, error) {
	var dto expenseDTO
	if err := c.do(ctx, op, method, path, nil, toExpenseDTO(e), &dto); err != nil {
		return models.ExpenseRecord{}, err
	}
	if dto.Date == "" {
		return e, nil
	}
	created, err := dto.record()
	if err != nil {
		return models.ExpenseRecord{}, &parsererror.StoreError{Op: op, Msg: "unreadable expense in response", Err: err}
	}
	return created, nil
}

func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	return c.do(ctx, "delete expense", http.MethodDelete, "/expenses/"+url.PathEscape(id), nil, nil, nil)
}

// ListBudgets implements store.BudgetStore.
func (c *Client) ListBudgets(ctx context.Context) ([]models.BudgetRecord, error) {
	var dtos []budgetDTO
	if err := c.do(ctx, "list budgets", http.MethodGet, "/budget", nil, nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]models.BudgetRecord, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.record())
	}
	return out, nil
}

// budgetPayload is the create/update body; spent is server-maintained.
type budgetPayload struct {
	Category string  `json:"category"`
	Period   string  `json:"period"`
	Budget   amount  `json:"budget"`
	Spent    *amount `json:"spent,omitempty"`
	Color    string  `json:"color,omitempty"`
}

func (c *Client) CreateBudget(ctx context.Context, b models.BudgetRecord) (models.BudgetRecord, error) {
	payload := budgetPayload{Category: b.Category, Period: string(b.Period), Budget: newAmount(b.Budget), Color: b.Color}
	return c.sendBudget(ctx, "create budget", http.MethodPost, "/budget", payload, b)
}

func (c *Client) UpdateBudget(ctx context.Context, b models.BudgetRecord) (models.BudgetRecord, error) {
	if b.ID == "" {
		return models.BudgetRecord{}, &parsererror.StoreError{Op: "update budget", Msg: "budget id is required"}
	}
	spent := newAmount(b.Spent)
	payload := budgetPayload{Category: b.Category, Period: string(b.Period), Budget: newAmount(b.Budget), Spent: &spent, Color: b.Color}
	return c.sendBudget(ctx, "update budget", http.MethodPut, "/budget/update/"+url.PathEscape(b.ID), payload, b)
}

func (c *Client) sendBudget(ctx context.Context, op, method, path string, payload budgetPayload, b models.BudgetRecord) (models.BudgetRecord, error) {
	var dto budgetDTO
	if err := c.do(ctx, op, method, path, nil, payload, &dto); err != nil {
		return models.BudgetRecord{}, err
	}
	if dto.Category == "" {
		return b, nil
	}
	return dto.record(), nil
}

func (c *Client) DeleteBudget(ctx context.Context, id string) error {
	return c.do(ctx, "delete budget", http.MethodDelete, "/budget/"+url.PathEscape(id), nil, nil, nil)
}

// ExpenseSummary implements store.SummaryStore.
func (c *Client) ExpenseSummary(ctx context.Context, month string) (store.Summary, error) {
	var dto summaryDTO
	if err := c.do(ctx, "expense summary", http.MethodGet, "/expenses/summary", monthQuery(month), nil, &dto); err != nil {
		return store.Summary{}, err
	}
	summary := store.Summary{
		TotalSpent: dto.TotalSpent.Value,
		Count:      dto.Count,
		ByCategory: make(map[string]decimal.Decimal, len(dto.ByCategory)),
	}
	for name, v := range dto.ByCategory {
		summary.ByCategory[name] = v.Value
	}
	return summary, nil
}

// FetchProfile implements profile.RemoteStore. A missing or reset profile
// yields profile.ErrNoProfile.
func (c *Client) FetchProfile(ctx context.Context) (*profile.Profile, error) {
	var dto profileDTO
	err := c.do(ctx, "fetch profile", http.MethodGet, "/financial/profile", nil, nil, &dto)
	if errors.Is(err, store.ErrNotFound) {
		return nil, profile.ErrNoProfile
	}
	if err != nil {
		return nil, err
	}
	if !dto.Completed && len(dto.Categories) == 0 {
		return nil, profile.ErrNoProfile
	}
	return dto.profile(), nil
}

func (c *Client) CompleteProfile(ctx context.Context, p *profile.Profile) error {
	return c.do(ctx, "complete profile", http.MethodPost, "/financial/complete-profile", nil, toProfileDTO(p), nil)
}

// ResetProfile clears the remote profile by completing it with no categories.
func (c *Client) ResetProfile(ctx context.Context) error {
	body := map[string]interface{}{"categories": []suggestionDTO{}}
	return c.do(ctx, "reset profile", http.MethodPost, "/financial/complete-profile", nil, body, nil)
}
