package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mesboard-dev/mesboard/internal/cli/auth"
)

// Sign-in failures are distinguishable so callers can react differently:
// bad credentials invite a retry, a disabled account does not, and an
// unreachable server is not the user's fault at all.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// Client represents an HTTP client for the Mesboard API
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     auth.TokenStore
}

// New creates a new API client for the given server base URL
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		tokens: auth.Default,
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// SetTokenStore sets a custom token store (used in tests)
func (c *Client) SetTokenStore(tokens auth.TokenStore) {
	c.tokens = tokens
}

// BaseURL returns the server base URL, which is also the keyring key for
// the server's token
func (c *Client) BaseURL() string {
	return c.baseURL
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserDetail represents user information returned by the API
type UserDetail struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Position   string `json:"position"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token string     `json:"token"`
	User  UserDetail `json:"user"`
}

// Login authenticates the user and returns a JWT token. Transport failures
// surface as ErrServiceUnavailable, a 401 as ErrInvalidCredentials and a
// 403 as ErrAccountDisabled.
func (c *Client) Login(username, password string) (*LoginResponse, error) {
	reqBody := LoginRequest{
		Username: username,
		Password: password,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.httpClient.Post(
		fmt.Sprintf("%s/api/auth/login", c.baseURL),
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusUnauthorized:
		return nil, ErrInvalidCredentials
	case http.StatusForbidden:
		return nil, ErrAccountDisabled
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("login failed (status %d): %s", resp.StatusCode, string(body))
	}

	var loginResp LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &loginResp, nil
}

// Setup creates the first admin account on a fresh server
func (c *Client) Setup(employeeID, name, username, password string) (*LoginResponse, error) {
	reqBody := map[string]string{
		"employee_id": employeeID,
		"name":        name,
		"username":    username,
		"password":    password,
	}

	var setupResp LoginResponse
	if err := c.doJSON("POST", "/api/setup", reqBody, http.StatusOK, &setupResp, false); err != nil {
		return nil, err
	}
	return &setupResp, nil
}

// Me returns the currently authenticated user
func (c *Client) Me() (*UserDetail, error) {
	var user UserDetail
	if err := c.doJSON("GET", "/api/auth/me", nil, http.StatusOK, &user, true); err != nil {
		return nil, err
	}
	return &user, nil
}

// WorkOrder represents a work order returned by the API
type WorkOrder struct {
	ID           string `json:"id"`
	OrderNo      string `json:"order_no"`
	ProductName  string `json:"product_name"`
	PlannedQty   int    `json:"planned_qty"`
	CompletedQty int    `json:"completed_qty"`
	Status       string `json:"status"`
	AssignedLine string `json:"assigned_line"`
	StartDate    string `json:"start_date"`
	DueDate      string `json:"due_date"`
}

// WorkOrderPage is one page of work orders
type WorkOrderPage struct {
	Orders   []WorkOrder `json:"orders"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// ListWorkOrdersParams filters and pages the work order list
type ListWorkOrdersParams struct {
	Keyword string
	Status  string
	Page    int
}

// ListWorkOrders returns a filtered, paged list of work orders
func (c *Client) ListWorkOrders(params ListWorkOrdersParams) (*WorkOrderPage, error) {
	query := url.Values{}
	if params.Keyword != "" {
		query.Set("keyword", params.Keyword)
	}
	if params.Status != "" {
		query.Set("status", params.Status)
	}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}

	path := "/api/work-orders"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var page WorkOrderPage
	if err := c.doJSON("GET", path, nil, http.StatusOK, &page, true); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateWorkOrderRequest represents the work-order entry form
type CreateWorkOrderRequest struct {
	OrderNo     string `json:"order_no"`
	ProductName string `json:"product_name"`
	PlannedQty  int    `json:"planned_qty"`
	StartDate   string `json:"start_date"`
}

// CreateWorkOrder creates a new work order
func (c *Client) CreateWorkOrder(req CreateWorkOrderRequest) (*WorkOrder, error) {
	var order WorkOrder
	if err := c.doJSON("POST", "/api/work-orders", req, http.StatusCreated, &order, true); err != nil {
		return nil, err
	}
	return &order, nil
}

// DeleteWorkOrder removes a work order and its production results
func (c *Client) DeleteWorkOrder(orderID string) error {
	return c.doJSON("DELETE", fmt.Sprintf("/api/work-orders/%s", orderID), nil, http.StatusNoContent, nil, true)
}

// ProductionResult represents a recorded performance entry
type ProductionResult struct {
	ID           string `json:"id"`
	WorkOrderID  string `json:"work_order_id"`
	ProductName  string `json:"product_name"`
	ProducedQty  int    `json:"produced_qty"`
	DefectQty    int    `json:"defect_qty"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	OperatorID   string `json:"operator_id"`
	OperatorName string `json:"operator_name"`
	Note         string `json:"note"`
}

// ListProductionResults returns all recorded results, newest first
func (c *Client) ListProductionResults() ([]ProductionResult, error) {
	var results []ProductionResult
	if err := c.doJSON("GET", "/api/production-results", nil, http.StatusOK, &results, true); err != nil {
		return nil, err
	}
	return results, nil
}

// CreateResultRequest represents a production performance entry
type CreateResultRequest struct {
	WorkOrderID string    `json:"work_order_id"`
	ProducedQty int       `json:"produced_qty"`
	DefectQty   int       `json:"defect_qty"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	OperatorID  string    `json:"operator_id"`
	Note        string    `json:"note"`
}

// CreateProductionResult records a performance entry
func (c *Client) CreateProductionResult(req CreateResultRequest) (*ProductionResult, error) {
	var result ProductionResult
	if err := c.doJSON("POST", "/api/production-results", req, http.StatusCreated, &result, true); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListUsers returns all accounts (admin only)
func (c *Client) ListUsers() ([]UserDetail, error) {
	var users []UserDetail
	if err := c.doJSON("GET", "/api/users", nil, http.StatusOK, &users, true); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUserRequest represents a request to create a new account
type CreateUserRequest struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Position   string `json:"position"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Role       string `json:"role"`
}

// CreateUserResponse includes the created user details
type CreateUserResponse struct {
	User UserDetail `json:"user"`
}

// CreateUser creates a new account (admin only)
func (c *Client) CreateUser(req CreateUserRequest) (*UserDetail, error) {
	var resp CreateUserResponse
	if err := c.doJSON("POST", "/api/users", req, http.StatusCreated, &resp, true); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// UpdateUserStatus activates or deactivates an account (admin only)
func (c *Client) UpdateUserStatus(userID, status string) (*UserDetail, error) {
	reqBody := map[string]string{"status": status}

	var user UserDetail
	if err := c.doJSON("PATCH", fmt.Sprintf("/api/users/%s/status", userID), reqBody, http.StatusOK, &user, true); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes an account (admin only)
func (c *Client) DeleteUser(userID string) error {
	return c.doJSON("DELETE", fmt.Sprintf("/api/users/%s", userID), nil, http.StatusNoContent, nil, true)
}

// DashboardSummary is the daily production snapshot
type DashboardSummary struct {
	Date            string  `json:"date"`
	PlannedQty      int     `json:"planned_qty"`
	ActualQty       int     `json:"actual_qty"`
	AchievementRate float64 `json:"achievement_rate"`
	DefectRate      float64 `json:"defect_rate"`
	ActiveEquipment int     `json:"active_equipment"`
	TotalEquipment  int     `json:"total_equipment"`
}

// GetDashboardSummary returns the daily snapshot for the given date
// (empty for today)
func (c *Client) GetDashboardSummary(date string) (*DashboardSummary, error) {
	path := "/api/dashboard/summary"
	if date != "" {
		path += "?date=" + url.QueryEscape(date)
	}

	var summary DashboardSummary
	if err := c.doJSON("GET", path, nil, http.StatusOK, &summary, true); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Equipment represents one row of the equipment board
type Equipment struct {
	ID            string  `json:"id"`
	Code          string  `json:"equipment_code"`
	Name          string  `json:"equipment_name"`
	Line          string  `json:"line"`
	Status        string  `json:"status"`
	OperationRate float64 `json:"operation_rate"`
}

// ListEquipment returns the equipment board
func (c *Client) ListEquipment() ([]Equipment, error) {
	var rows []Equipment
	if err := c.doJSON("GET", "/api/equipment", nil, http.StatusOK, &rows, true); err != nil {
		return nil, err
	}
	return rows, nil
}

// doJSON performs a JSON request against the API, optionally attaching the
// stored bearer token, and decodes the response into out when non-nil
func (c *Client) doJSON(method, path string, reqBody interface{}, wantStatus int, out interface{}, authed bool) error {
	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token, err := c.tokens.LoadToken(c.baseURL)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
