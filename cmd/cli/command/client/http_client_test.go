package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cinerate/internal/microservices/http-api/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/signin", r.URL.Path)

		var req dto.SigninRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a@x.com", req.Email)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(dto.SigninResponse{Message: "Login successful", Username: "alice", UserID: 1, Token: "tok"})
	}))
	defer srv.Close()

	resp, err := NewHTTPClient(srv.URL).Signin(context.Background(), &dto.SigninRequest{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, int64(1), resp.UserID)
}

func TestAPIErrorIsDecoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(dto.ErrorResponse{Error: "Email already registered", Field: "email"})
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL).Signup(context.Background(), &dto.SignupRequest{Username: "a", Email: "a@x.com", Password: "pw"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "Email already registered", apiErr.Message)
	assert.Equal(t, "email", apiErr.Field)
}

func TestHeaders(t *testing.T) {
	var auth, adminKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		adminKey = r.Header.Get("X-Admin-Key")
		switch r.URL.Path {
		case "/ratings":
			assert.Equal(t, "tt 01", r.URL.Query().Get("mediaId"))
			w.Write([]byte(`[]`))
		default:
			w.Write([]byte(`[{"userId":1,"username":"alice","email":"a@x.com"}]`))
		}
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL + "/")
	c.SetToken("tok")
	c.SetAdminKey("key")

	ratings, err := c.ListRatings(context.Background(), "tt 01")
	require.NoError(t, err)
	assert.Empty(t, ratings)
	assert.Equal(t, "Bearer tok", auth)
	assert.Empty(t, adminKey, "admin key only goes to admin routes")

	users, err := c.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "key", adminKey)
}
