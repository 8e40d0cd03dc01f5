package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/yeremiapane/table-ordering/models"
	"github.com/yeremiapane/table-ordering/services"
	"github.com/yeremiapane/table-ordering/utils"
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

var sentinels = []error{
	utils.ErrInvalidPayload, utils.ErrInvalidCredentials, utils.ErrUnauthorized,
	utils.ErrForbidden, utils.ErrNotFound, utils.ErrDuplicateUsername,
	utils.ErrInvalidTransition, utils.ErrConflict, utils.ErrMethodNotAllowed,
}

// Unwrap recovers the server-side sentinel from the message so callers can
// use errors.Is(err, utils.ErrInvalidTransition) and friends.
func (e *APIError) Unwrap() error {
	for _, s := range sentinels {
		if e.Message == s.Error() || strings.HasPrefix(e.Message, s.Error()+":") {
			return s
		}
	}
	return nil
}

// Client is a typed client of the HTTP API. It is safe for concurrent use.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	mu    sync.RWMutex
	token string
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
	User    *models.User    `json:"user"`
	Token   string          `json:"token"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) (*envelope, error) {
	return c.doAs(ctx, c.Token(), method, path, body, out)
}

func (c *Client) doAs(ctx context.Context, token, method, path string, body, out interface{}) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && err != io.EOF {
		return nil, &APIError{Status: resp.StatusCode, Message: "invalid response body"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, err
		}
	}
	return &env, nil
}

// LoginResult is the authenticated account and its bearer token.
type LoginResult struct {
	User  *models.User
	Token string
}

func (c *Client) login(ctx context.Context, path string, body interface{}) (*LoginResult, error) {
	env, err := c.do(ctx, http.MethodPost, path, body, nil)
	if err != nil {
		return nil, err
	}
	c.SetToken(env.Token)
	return &LoginResult{User: env.User, Token: env.Token}, nil
}

// Login signs staff in; isEmployee=false signs in an admin.
func (c *Client) Login(ctx context.Context, username, password string, isEmployee bool) (*LoginResult, error) {
	return c.login(ctx, "/api/auth/login", map[string]interface{}{
		"username": username, "password": password, "isEmployee": isEmployee,
	})
}

func (c *Client) TableLogin(ctx context.Context, username, password string) (*LoginResult, error) {
	return c.login(ctx, "/api/auth/table-login", map[string]interface{}{
		"username": username, "password": password,
	})
}

func (c *Client) SlugLogin(ctx context.Context, slug string) (*LoginResult, error) {
	return c.login(ctx, "/api/auth/slug-login", map[string]interface{}{"slug": slug})
}

// Logout revokes the token server side and forgets it locally.
func (c *Client) Logout(ctx context.Context) error {
	return c.Revoke(ctx, c.Token())
}

// Revoke revokes token server side. The local token is only forgotten when
// it is still token, so a newer login survives.
func (c *Client) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	_, err := c.doAs(ctx, token, http.MethodPost, "/api/auth/logout", nil, nil)
	c.mu.Lock()
	if c.token == token {
		c.token = ""
	}
	c.mu.Unlock()
	return err
}

func (c *Client) Menu(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	_, err := c.do(ctx, http.MethodGet, "/api/menu", nil, &items)
	return items, err
}

func (c *Client) PlaceOrder(ctx context.Context, in services.PlaceOrderInput) (*models.Order, error) {
	var order models.Order
	if _, err := c.do(ctx, http.MethodPost, "/api/orders", in, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// MyOrders is the table's own order list.
func (c *Client) MyOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	_, err := c.do(ctx, http.MethodGet, "/api/orders/mine", nil, &orders)
	return orders, err
}

// ActiveOrders is the kitchen list of every visible order.
func (c *Client) ActiveOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	_, err := c.do(ctx, http.MethodGet, "/api/orders", nil, &orders)
	return orders, err
}

func (c *Client) Order(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if _, err := c.do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(id), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) Transition(ctx context.Context, id string, action models.OrderAction) (*models.Order, error) {
	var order models.Order
	path := fmt.Sprintf("/api/orders/%s/%s", url.PathEscape(id), action)
	if _, err := c.do(ctx, http.MethodPost, path, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) HideOrder(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/orders/"+url.PathEscape(id)+"/hide", nil, nil)
	return err
}

func (c *Client) CallWaiter(ctx context.Context) (*models.WaiterCall, error) {
	var call models.WaiterCall
	if _, err := c.do(ctx, http.MethodPost, "/api/waiter-calls", nil, &call); err != nil {
		return nil, err
	}
	return &call, nil
}

func (c *Client) PendingCalls(ctx context.Context) ([]models.WaiterCall, error) {
	var calls []models.WaiterCall
	_, err := c.do(ctx, http.MethodGet, "/api/waiter-calls", nil, &calls)
	return calls, err
}

func (c *Client) Sessions(ctx context.Context) ([]models.ActiveSession, error) {
	var sessions []models.ActiveSession
	_, err := c.do(ctx, http.MethodGet, "/api/sessions", nil, &sessions)
	return sessions, err
}

func (c *Client) Tables(ctx context.Context) ([]services.TableStatus, error) {
	var tables []services.TableStatus
	_, err := c.do(ctx, http.MethodGet, "/api/tables", nil, &tables)
	return tables, err
}

func (c *Client) PendingRegistrations(ctx context.Context) ([]models.User, error) {
	var users []models.User
	_, err := c.do(ctx, http.MethodGet, "/api/admin/registrations", nil, &users)
	return users, err
}

func (c *Client) Performance(ctx context.Context) ([]services.EmployeePerformance, error) {
	var perf []services.EmployeePerformance
	_, err := c.do(ctx, http.MethodGet, "/api/admin/performance", nil, &perf)
	return perf, err
}
