// Package client is a Go consumer of the roster API. It issues the same calls
// as the browser frontend: health polling, roster listing and deletes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/rosterhub/internal/domain/user"
	"github.com/geocoder89/rosterhub/internal/health"
)

// NetworkError is what a caller sees when a request does not produce a 2xx:
// either the transport failed (Status == 0) or the server answered with an error.
type NetworkError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: request failed (%d): %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: request failed (%d)", e.Op, e.Status)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne) && ne.Status == http.StatusNotFound
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

type UsersPage struct {
	Count int           `json:"count"`
	Items []user.Record `json:"items"`
}

type CreatedUser struct {
	Message string      `json:"message"`
	User    user.Record `json:"user"`
}

func (c *Client) Health(ctx context.Context) (health.Status, error) {
	var out health.Status
	err := c.do(ctx, "health", http.MethodGet, "/health", nil, &out)
	return out, err
}

func (c *Client) ListUsers(ctx context.Context) (UsersPage, error) {
	var out UsersPage
	err := c.do(ctx, "list users", http.MethodGet, "/users", nil, &out)
	return out, err
}

func (c *Client) CreateUser(ctx context.Context, req user.CreateRequest) (CreatedUser, error) {
	var out CreatedUser
	err := c.do(ctx, "create user", http.MethodPost, "/users", req, &out)
	return out, err
}

// DeleteUser returns the server confirmation message.
func (c *Client) DeleteUser(ctx context.Context, id int) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, "delete user", http.MethodDelete, "/users/"+strconv.Itoa(id), nil, &out)
	return out.Message, err
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&apiErr)

		return &NetworkError{Op: op, Status: resp.StatusCode, Message: apiErr.Message}
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	return nil
}
