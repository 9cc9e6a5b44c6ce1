package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kendall-kelly/formalwear-orders-api/dto"
)

// Session identifies the API an operator works against and the bearer
// token sent with every call
type Session struct {
	BaseURL string
	Token   string
}

// APIError is a non-success answer of the order-management API
type APIError struct {
	Status  int
	Code    string
	Message string
	Details interface{}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s (HTTP %d)", e.Code, e.Message, e.Status)
}

// IsAPIError reports whether err carries an APIError with code
func IsAPIError(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string      `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details"`
	} `json:"error"`
}

// OrderAPIClient talks to the order-management API. It serves the intake
// wizard, the action coordinator and the order board.
type OrderAPIClient struct {
	session    Session
	httpClient *http.Client
}

// NewOrderAPIClient creates a client for session. A nil httpClient gets a
// 10 second timeout.
func NewOrderAPIClient(session Session, httpClient *http.Client) *OrderAPIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	session.BaseURL = strings.TrimRight(session.BaseURL, "/")
	return &OrderAPIClient{session: session, httpClient: httpClient}
}

// Session returns the session the client was created with
func (c *OrderAPIClient) Session() Session {
	return c.session
}

func (c *OrderAPIClient) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	target := c.session.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode, Code: "HTTP_ERROR", Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("failed to decode response of %s %s: %w", method, path, err)
	}

	if resp.StatusCode >= 300 || !env.Success {
		apiErr := &APIError{Status: resp.StatusCode, Code: "HTTP_ERROR", Message: http.StatusText(resp.StatusCode)}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Details = env.Error.Details
		}
		return apiErr
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode data of %s %s: %w", method, path, err)
	}
	return nil
}

func orderPath(id uint, suffix string) string {
	return "/orders/" + strconv.FormatUint(uint64(id), 10) + suffix
}

// CreateOrder persists a new order and returns its id
func (c *OrderAPIClient) CreateOrder(ctx context.Context, payload dto.OrderPayload) (uint, error) {
	var rec dto.OrderRecord
	if err := c.do(ctx, http.MethodPost, "/orders", nil, payload, &rec); err != nil {
		return 0, err
	}
	if rec.ID == 0 {
		return 0, fmt.Errorf("create order answered without an id")
	}
	return rec.ID, nil
}

// UpdateOrder replaces the content of order id
func (c *OrderAPIClient) UpdateOrder(ctx context.Context, id uint, payload dto.OrderPayload) error {
	return c.do(ctx, http.MethodPut, orderPath(id, ""), nil, payload, nil)
}

// GetOrder reads one order back
func (c *OrderAPIClient) GetOrder(ctx context.Context, id uint) (*dto.OrderRecord, error) {
	var rec dto.OrderRecord
	if err := c.do(ctx, http.MethodGet, orderPath(id, ""), nil, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListOrders lists orders matching filter
func (c *OrderAPIClient) ListOrders(ctx context.Context, filter dto.OrderFilter) ([]dto.OrderRecord, error) {
	query := url.Values{}
	if filter.Phase != "" {
		query.Set("phase", filter.Phase)
	}
	if filter.Overdue {
		query.Set("overdue", "true")
	}

	var out []dto.OrderRecord
	if err := c.do(ctx, http.MethodGet, "/orders", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountOrders returns the number of orders per phase plus OVERDUE
func (c *OrderAPIClient) CountOrders(ctx context.Context) (dto.PhaseCounts, error) {
	counts := dto.PhaseCounts{}
	if err := c.do(ctx, http.MethodGet, "/orders/counts", nil, nil, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// History lists the phase transitions of an order, oldest first
func (c *OrderAPIClient) History(ctx context.Context, id uint) ([]dto.PhaseEvent, error) {
	var out []dto.PhaseEvent
	if err := c.do(ctx, http.MethodGet, orderPath(id, "/history"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OrderAPIClient) transition(ctx context.Context, id uint, action string, body interface{}) (*dto.OrderRecord, error) {
	var rec dto.OrderRecord
	if err := c.do(ctx, http.MethodPost, orderPath(id, "/"+action), nil, body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Assign sets the attendant of a pending order
func (c *OrderAPIClient) Assign(ctx context.Context, id uint, req dto.AssignRequest) (*dto.OrderRecord, error) {
	return c.transition(ctx, id, "assign", req)
}

// StartProduction moves a pending order into production
func (c *OrderAPIClient) StartProduction(ctx context.Context, id uint) (*dto.OrderRecord, error) {
	return c.transition(ctx, id, "start-production", nil)
}

// MarkReady moves an order in production to awaiting pickup
func (c *OrderAPIClient) MarkReady(ctx context.Context, id uint) (*dto.OrderRecord, error) {
	return c.transition(ctx, id, "ready", nil)
}

// Pickup registers the pickup, with the reconciled payments if any
func (c *OrderAPIClient) Pickup(ctx context.Context, id uint, req dto.PickupRequest) (*dto.OrderRecord, error) {
	return c.transition(ctx, id, "pickup", req)
}

// MarkReturned completes an order awaiting return
func (c *OrderAPIClient) MarkReturned(ctx context.Context, id uint) (*dto.OrderRecord, error) {
	return c.transition(ctx, id, "returned", nil)
}

// Refuse refuses an order with a catalog reason
func (c *OrderAPIClient) Refuse(ctx context.Context, id uint, req dto.RefuseRequest) (*dto.OrderRecord, error) {
	return c.transition(ctx, id, "refuse", req)
}

// ReturnToPending reopens a refused order
func (c *OrderAPIClient) ReturnToPending(ctx context.Context, id uint) (*dto.OrderRecord, error) {
	return c.transition(ctx, id, "reopen", nil)
}

// ListEmployees lists employees, only active ones when activeOnly is set
func (c *OrderAPIClient) ListEmployees(ctx context.Context, activeOnly bool) ([]dto.EmployeeSummary, error) {
	query := url.Values{}
	if activeOnly {
		query.Set("active", "true")
	}
	var out []dto.EmployeeSummary
	if err := c.do(ctx, http.MethodGet, "/employees", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListRefusalReasons lists the active refusal reasons
func (c *OrderAPIClient) ListRefusalReasons(ctx context.Context) ([]dto.RefusalReason, error) {
	var out []dto.RefusalReason
	if err := c.do(ctx, http.MethodGet, "/refusal-reasons", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LookupPostalCode resolves a postal code through the API
func (c *OrderAPIClient) LookupPostalCode(ctx context.Context, postalCode string) (*dto.Address, error) {
	var out dto.Address
	if err := c.do(ctx, http.MethodGet, "/addresses/"+url.PathEscape(postalCode), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
