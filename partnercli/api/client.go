// Package api is the partner CLI's HTTP client for the bazaar panel.
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bazaarpanel/bazaar/database/model"
	"github.com/bazaarpanel/bazaar/web/entity"

	json "github.com/goccy/go-json"
)

const requestTimeout = 10

var (
	// ErrUnauthorized marks a request the panel rejected for lack of a
	// valid session.
	ErrUnauthorized = errors.New("not authenticated")
	// ErrServerUnavailable marks a transport-level failure reaching the panel.
	ErrServerUnavailable = errors.New("panel unavailable")
)

// Client talks to the panel on behalf of a partner account.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient builds a client for the panel at baseURL. The token may be empty
// for unauthenticated calls and can be set later with SetToken.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: requestTimeout * time.Second},
	}
}

func (c *Client) SetToken(token string) {
	c.token = token
}

// Login authenticates and returns the issued access token together with the
// server-verified identity.
func (c *Client) Login(email, password, twoFactorCode string) (string, *model.Identity, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)
	if twoFactorCode != "" {
		form.Set("twoFactorCode", twoFactorCode)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}
	defer resp.Body.Close()

	var msg entity.Msg
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		return "", nil, err
	}
	if !msg.Success {
		return "", nil, errors.New(msg.Msg)
	}

	token := ""
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "accessToken" {
			token = cookie.Value
		}
	}
	if token == "" {
		return "", nil, errors.New("login succeeded but no access token was issued")
	}

	c.token = token
	identity, err := c.Me()
	if err != nil {
		return "", nil, err
	}
	return token, identity, nil
}

// Me fetches the caller's current identity from the panel.
func (c *Client) Me() (*model.Identity, error) {
	body, err := c.get("/panel/api/me")
	if err != nil {
		return nil, err
	}

	var msg struct {
		Success bool            `json:"success"`
		Obj     *model.Identity `json:"obj"`
	}
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, err
	}
	if !msg.Success || msg.Obj == nil {
		return nil, ErrUnauthorized
	}
	return msg.Obj, nil
}

// Dashboard fetches the caller's referral dashboard as raw JSON.
func (c *Client) Dashboard() ([]byte, error) {
	return c.get("/panel/referral/dashboard")
}

func (c *Client) get(path string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
