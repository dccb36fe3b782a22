package woo

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

	"github.com/storepulse/storepulse/internal/pkg/apperrors"
)

const apiBasePath = "/wp-json/wc/v3"

// Credentials is the per-store REST credential set issued by the handshake.
type Credentials struct {
	StoreURL       string
	ConsumerKey    string
	ConsumerSecret string
}

// Client talks to one upstream store's REST API using basic auth with the
// consumer key pair.
type Client struct {
	creds Credentials

	// BasePath overrides the default REST base path (tests).
	BasePath string

	HTTPClient *http.Client
}

// Order is the subset of the upstream order document this service reads.
type Order struct {
	ID          int64        `json:"id"`
	Number      string       `json:"number"`
	Status      string       `json:"status"`
	Currency    string       `json:"currency"`
	Total       string       `json:"total"`
	DateCreated string       `json:"date_created"`
	Billing     OrderBilling `json:"billing"`
}

// OrderBilling carries the buyer identity used in push notification bodies.
type OrderBilling struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Product is the subset of the upstream product document this service reads.
type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	StockStatus string `json:"stock_status"`
}

// Customer is the subset of the upstream customer document this service reads.
type Customer struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Webhook is the upstream representation of a provisioned event subscription.
type Webhook struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Topic       string `json:"topic"`
	Status      string `json:"status"`
	DeliveryURL string `json:"delivery_url"`
}

func NewClient(creds Credentials) *Client {
	return &Client{
		creds: creds,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// AuthorizeURL builds the upstream authorization page URL for the handshake.
// The userID carries the correlation token; the upstream posts issued keys to
// callbackURL and sends the user back to returnURL.
func AuthorizeURL(storeURL, appName, userID, returnURL, callbackURL string) (string, error) {
	base := strings.TrimRight(strings.TrimSpace(storeURL), "/")
	if base == "" {
		return "", apperrors.Validationf("store_url is required")
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	u, err := url.Parse(base + "/wc-auth/v1/authorize")
	if err != nil {
		return "", fmt.Errorf("invalid store url %q: %w", storeURL, err)
	}
	q := u.Query()
	q.Set("app_name", appName)
	q.Set("scope", "read_write")
	q.Set("user_id", userID)
	q.Set("return_url", returnURL)
	q.Set("callback_url", callbackURL)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// CreateWebhook registers an event subscription on the upstream store.
func (c *Client) CreateWebhook(ctx context.Context, name, topic, deliveryURL string) (*Webhook, error) {
	payload := map[string]any{
		"name":         name,
		"topic":        topic,
		"delivery_url": deliveryURL,
	}
	var hook Webhook
	if err := c.do(ctx, http.MethodPost, "/webhooks", nil, payload, &hook); err != nil {
		return nil, err
	}
	return &hook, nil
}

// ListOrders fetches the most recent orders.
func (c *Client) ListOrders(ctx context.Context, perPage int) ([]Order, error) {
	var orders []Order
	q := url.Values{"per_page": {fmt.Sprint(perPage)}, "orderby": {"date"}, "order": {"desc"}}
	if err := c.do(ctx, http.MethodGet, "/orders", q, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder fetches a single order by id.
func (c *Client) GetOrder(ctx context.Context, id int64) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListProducts fetches the product catalogue page.
func (c *Client) ListProducts(ctx context.Context, perPage int) ([]Product, error) {
	var products []Product
	q := url.Values{"per_page": {fmt.Sprint(perPage)}}
	if err := c.do(ctx, http.MethodGet, "/products", q, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ListCustomers fetches the customer list page.
func (c *Client) ListCustomers(ctx context.Context, perPage int) ([]Customer, error) {
	var customers []Customer
	q := url.Values{"per_page": {fmt.Sprint(perPage)}}
	if err := c.do(ctx, http.MethodGet, "/customers", q, nil, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	base := strings.TrimRight(strings.TrimSpace(c.creds.StoreURL), "/")
	if base == "" {
		return apperrors.Validationf("store url is required")
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	basePath := c.BasePath
	if basePath == "" {
		basePath = apiBasePath
	}
	u, err := url.Parse(base + basePath + path)
	if err != nil {
		return fmt.Errorf("invalid store url %q: %w", c.creds.StoreURL, err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.creds.ConsumerKey, c.creds.ConsumerSecret)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &apperrors.UpstreamError{StatusCode: resp.StatusCode, Service: "store api", Body: string(respBody)}
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("store api returned invalid JSON: %w", err)
		}
	}
	return nil
}
