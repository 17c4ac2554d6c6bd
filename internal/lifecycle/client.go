package lifecycle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alfajarsadiq/admincontrol/internal/breaker"
	"github.com/alfajarsadiq/admincontrol/internal/session"
	"github.com/alfajarsadiq/admincontrol/pkg/models"
)

// Client talks to the order store over its HTTP/JSON contract and maps every
// response onto the lifecycle error taxonomy. A 401 that names the password
// stays local to the caller; any other 401 tears the session down.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Session
	breaker    *breaker.Breaker
	logger     *logrus.Logger
}

func NewClient(baseURL string, sess *session.Session, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		session: sess,
		breaker: breaker.New(breaker.Config{
			Name:        "order-store",
			MaxFailures: 5,
			Cooldown:    15 * time.Second,
		}, logger),
		logger: logger,
	}
}

// NormalizeOrderID trims surrounding whitespace and upcases the id so
// "ord-10001 " and "ORD-10001" address the same order.
func NormalizeOrderID(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Status fetches the current order snapshot. Read-only and safe to repeat;
// each call reflects the latest store state.
func (c *Client) Status(ctx context.Context, orderID string) (*models.Order, error) {
	orderID = NormalizeOrderID(orderID)
	if orderID == "" {
		return nil, fmt.Errorf("%w: order id", ErrMissingFields)
	}

	resp, err := c.do(ctx, http.MethodGet, "/orders/status/"+orderID, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.classify(resp); err != nil {
		return nil, err
	}

	var order models.Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("failed to decode order snapshot: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"order_id": order.OrderID,
		"status":   order.Status,
	}).Info("Fetched order status")
	return &order, nil
}

// ConfirmDispatch advances a Confirmed order to Dispatched. All fields must
// be present; only presence is validated here, the store owns everything else.
func (c *Client) ConfirmDispatch(ctx context.Context, req models.DispatchRequest) (*models.Order, error) {
	req.OrderID = NormalizeOrderID(req.OrderID)
	if req.OrderID == "" || req.Salesperson == "" || req.Password == "" ||
		req.DriverName == "" || req.VehicleName == "" {
		return nil, ErrMissingFields
	}
	return c.submit(ctx, http.MethodPut, "/orders/confirm-dispatch", req, req.OrderID)
}

// ConfirmDelivery advances a Dispatched order to Delivered.
func (c *Client) ConfirmDelivery(ctx context.Context, req models.DeliveryRequest) (*models.Order, error) {
	req.OrderID = NormalizeOrderID(req.OrderID)
	if req.OrderID == "" || req.Salesperson == "" || req.Password == "" {
		return nil, ErrMissingFields
	}
	return c.submit(ctx, http.MethodPut, "/orders/confirm-delivery", req, req.OrderID)
}

// Edit replaces the mutable fields of an order under the recorded
// salesperson's password. An empty item list never reaches the wire.
func (c *Client) Edit(ctx context.Context, orderID string, req models.EditRequest) (*models.Order, error) {
	orderID = NormalizeOrderID(orderID)
	if orderID == "" || req.SalespersonName == "" || req.SalespersonPassword == "" {
		return nil, ErrMissingFields
	}
	if len(req.UpdatedItems) == 0 {
		return nil, ErrEmptyItems
	}
	for _, item := range req.UpdatedItems {
		if item.ProductID == "" || item.Quantity <= 0 {
			return nil, fmt.Errorf("item %q: quantity must be positive", item.ProductID)
		}
	}
	return c.submit(ctx, http.MethodPatch, "/orders/"+orderID, req, orderID)
}

// Delete removes an order, gated by the recorded salesperson's password.
func (c *Client) Delete(ctx context.Context, orderID, password string) error {
	orderID = NormalizeOrderID(orderID)
	if orderID == "" || password == "" {
		return ErrMissingFields
	}

	resp, err := c.do(ctx, http.MethodDelete, "/orders/"+orderID, models.DeleteRequest{Password: password})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.classify(resp); err != nil {
		return err
	}
	c.logger.WithField("order_id", orderID).Info("Order deleted")
	return nil
}

// Login authenticates against the store and returns the profile and bearer
// token. The caller decides whether to persist them into the session.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AdminProfile, string, error) {
	if email == "" || password == "" {
		return nil, "", ErrMissingFields
	}

	resp, err := c.do(ctx, http.MethodPost, "/auth/login", models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	var loginResp models.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return nil, "", fmt.Errorf("failed to decode login response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !loginResp.Success {
		if loginResp.Message == "" {
			loginResp.Message = "login failed"
		}
		return nil, "", errors.New(loginResp.Message)
	}

	c.logger.WithFields(logrus.Fields{
		"email": loginResp.Profile.Email,
		"role":  loginResp.Profile.Role,
	}).Info("Logged in to order store")
	return loginResp.Profile, loginResp.Token, nil
}

func (c *Client) submit(ctx context.Context, method, path string, payload interface{}, orderID string) (*models.Order, error) {
	resp, err := c.do(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.classify(resp); err != nil {
		return nil, err
	}

	var orderResp models.OrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&orderResp); err != nil {
		return nil, fmt.Errorf("failed to decode order store response: %w", err)
	}
	if !orderResp.Success || orderResp.Order == nil {
		return nil, fmt.Errorf("order store rejected request: %s", orderResp.Message)
	}

	c.logger.WithFields(logrus.Fields{
		"order_id": orderID,
		"status":   orderResp.Order.Status,
	}).Info("Order store accepted request")
	return orderResp.Order, nil
}

// do sends one request through the circuit breaker. Transport errors and 5xx
// responses count against the breaker and surface as ErrTransient; any 4xx
// is a well-formed answer and passes through for classification.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}) (*http.Response, error) {
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(data)
	} else {
		body = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.session != nil {
		if token := c.session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	var resp *http.Response
	execErr := c.breaker.Execute(func() error {
		r, doErr := c.httpClient.Do(req)
		if doErr != nil {
			return doErr
		}
		if r.StatusCode >= http.StatusInternalServerError {
			r.Body.Close()
			return fmt.Errorf("order store returned status %d", r.StatusCode)
		}
		resp = r
		return nil
	})
	if execErr != nil {
		c.logger.WithError(execErr).WithFields(logrus.Fields{
			"method": method,
			"path":   path,
		}).Error("Order store request failed")
		return nil, fmt.Errorf("%w: %v", ErrTransient, execErr)
	}
	return resp, nil
}

// classify maps a non-2xx response onto the error taxonomy. The response body
// is consumed only on error paths.
func (c *Client) classify(resp *http.Response) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	var envelope struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&envelope)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrInvalidState, envelope.Message)
	case http.StatusUnauthorized:
		if strings.Contains(strings.ToLower(envelope.Message), "password") {
			return ErrInvalidPassword
		}
		// Global auth failure. Teardown supersedes the local dialog.
		if c.session != nil {
			c.session.Teardown()
		}
		return ErrSessionExpired
	default:
		if envelope.Message != "" {
			return errors.New(envelope.Message)
		}
		return fmt.Errorf("order store returned status %d", resp.StatusCode)
	}
}
