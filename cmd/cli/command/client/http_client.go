package client

// http_client.go = typed access to the cinerate REST API for the CLI.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cinerate/internal/microservices/http-api/dto"
	"cinerate/internal/microservices/http-api/models"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
	Field      string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (%d, field %s)", e.Message, e.StatusCode, e.Field)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.StatusCode)
}

// defines the HTTP client structure and methods
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
	adminKey   string
}

// constructor for HTTP client
func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// set token for HTTP client
func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// SetAdminKey sets the key sent as X-Admin-Key on admin calls
func (c *HTTPClient) SetAdminKey(key string) {
	c.adminKey = key
}

func (c *HTTPClient) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.SignupResponse, error) {
	var out dto.SignupResponse
	if err := c.do(ctx, http.MethodPost, "/signup", req, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Signin(ctx context.Context, req *dto.SigninRequest) (*dto.SigninResponse, error) {
	var out dto.SigninResponse
	if err := c.do(ctx, http.MethodPost, "/signin", req, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Authenticated(ctx context.Context) (*dto.AuthenticatedResponse, error) {
	var out dto.AuthenticatedResponse
	if err := c.do(ctx, http.MethodGet, "/api/authenticated", nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) SubmitRating(ctx context.Context, req *dto.SubmitRatingRequest) (*dto.SubmitRatingResponse, error) {
	var out dto.SubmitRatingResponse
	if err := c.do(ctx, http.MethodPost, "/ratings", req, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListRatings(ctx context.Context, mediaID string) ([]models.Rating, error) {
	var out []models.Rating
	path := "/ratings?" + url.Values{"mediaId": {mediaID}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := c.do(ctx, http.MethodGet, "/admin/users", nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetUser(ctx context.Context, userID int64) (*dto.UserDetailResponse, error) {
	var out dto.UserDetailResponse
	if err := c.do(ctx, http.MethodGet, "/admin/users/"+strconv.FormatInt(userID, 10), nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteUser(ctx context.Context, userID int64) (*dto.DeleteUserResponse, error) {
	var out dto.DeleteUserResponse
	if err := c.do(ctx, http.MethodDelete, "/admin/users/"+strconv.FormatInt(userID, 10), nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteRating(ctx context.Context, ratingID int64) (*dto.DeleteRatingResponse, error) {
	var out dto.DeleteRatingResponse
	if err := c.do(ctx, http.MethodDelete, "/admin/ratings/"+strconv.FormatInt(ratingID, 10), nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do sends body as JSON and decodes a response with status want into out.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.adminKey != "" && strings.HasPrefix(path, "/admin/") {
		req.Header.Set("X-Admin-Key", c.adminKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() // Ensure the response body is closed

	if resp.StatusCode != want {
		var apiErr dto.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Error == "" {
			apiErr.Error = resp.Status
		}
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error, Field: apiErr.Field}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
