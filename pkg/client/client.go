// Package client is the HTTP/JSON client for the inventory API.
//
// Every call is fallible: any non-2xx response comes back as an *APIError
// carrying the response's status text. Nothing is retried.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"cabin/internal/models"
	"cabin/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// DefaultBasePath is where the API is mounted on the server.
const DefaultBasePath = "/api"

// APIError is a non-success HTTP response.
type APIError struct {
	StatusCode int
	Status     string // status text, e.g. "Not Found"
	Message    string // the server's "error" field, if any
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return "API request failed: " + e.Status
	}
	return fmt.Sprintf("API request failed: %s: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client talks to one inventory server.
type Client struct {
	baseURL  string
	basePath string
	fc       *fiber.Client
	headers  map[string]string
	err      error
}

// Option configures a Client.
type Option func(*Client)

// WithBasePath overrides DefaultBasePath.
func WithBasePath(path string) Option {
	return func(c *Client) { c.basePath = "/" + strings.Trim(path, "/") }
}

// WithPrincipal sends user as the front-door identity header, the way the
// hosting platform would.
func WithPrincipal(user *models.User) Option {
	return func(c *Client) {
		encoded, err := services.EncodePrincipal(user)
		if err != nil {
			c.err = err
			return
		}
		c.headers[services.PrincipalHeader] = encoded
	}
}

// WithBearerToken authenticates with a signed token.
func WithBearerToken(token string) Option {
	return func(c *Client) { c.headers[fiber.HeaderAuthorization] = "Bearer " + token }
}

// New creates a client for the server at serverURL (scheme and host).
func New(serverURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(serverURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q", serverURL)
	}

	c := &Client{
		baseURL:  strings.TrimRight(serverURL, "/"),
		basePath: DefaultBasePath,
		fc:       &fiber.Client{UserAgent: "cabin-inventory-client"},
		headers:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.err != nil {
		return nil, c.err
	}
	return c, nil
}

// ListItems returns the caller's items.
func (c *Client) ListItems() ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := c.do(fiber.MethodGet, "/inventory", nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.InventoryItem{}
	}
	return items, nil
}

// CreateItem stores a new item.
func (c *Client) CreateItem(input models.ItemInput) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := c.do(fiber.MethodPost, "/inventory", input, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem applies a partial update.
func (c *Client) UpdateItem(id string, patch models.ItemPatch) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := c.do(fiber.MethodPut, "/inventory/"+url.PathEscape(id), patch, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem removes an item.
func (c *Client) DeleteItem(id string) error {
	return c.do(fiber.MethodDelete, "/inventory/"+url.PathEscape(id), nil, nil)
}

// Me returns the identity the server resolves for this client, or nil.
func (c *Client) Me() (*models.User, error) {
	var body struct {
		ClientPrincipal *models.User `json:"clientPrincipal"`
	}
	if err := c.do(fiber.MethodGet, "/me", nil, &body); err != nil {
		return nil, err
	}
	return body.ClientPrincipal, nil
}

func (c *Client) do(method, path string, in, out any) error {
	target := c.baseURL + c.basePath + path

	var agent *fiber.Agent
	switch method {
	case fiber.MethodGet:
		agent = c.fc.Get(target)
	case fiber.MethodPost:
		agent = c.fc.Post(target)
	case fiber.MethodPut:
		agent = c.fc.Put(target)
	case fiber.MethodDelete:
		agent = c.fc.Delete(target)
	default:
		return fmt.Errorf("unsupported method %s", method)
	}

	for k, v := range c.headers {
		agent.Set(k, v)
	}
	if in != nil {
		agent.JSON(in)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("%s %s: %w", method, path, errors.Join(errs...))
	}

	if code < 200 || code > 299 {
		apiErr := &APIError{StatusCode: code, Status: utils.StatusMessage(code)}
		var errBody struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &errBody) == nil {
			apiErr.Message = errBody.Error
		}
		return apiErr
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}
