package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingResponse struct {
	Message string `json:"message"`
}

func TestDo_GetDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/ping", r.URL.Path)
		w.Write([]byte(`{"message":"pong"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	out, err := Do[pingResponse](context.Background(), c, http.MethodGet, "/v1/ping", nil, false)
	require.NoError(t, err)
	assert.Equal(t, "pong", out.Message)
}

func TestDo_PostSendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message":"created"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	out, err := Do[pingResponse](context.Background(), c, http.MethodPost, "/v1/things", map[string]string{"name": "x"}, false)
	require.NoError(t, err)
	assert.Equal(t, "created", out.Message)
}

func TestDo_Non2xxReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"listing abc not found"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := Do[pingResponse](context.Background(), c, http.MethodGet, "/v1/listing/abc", nil, false)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "listing abc not found", apiErr.Message)
}

func TestDo_AuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, func() string { return "tok-123" })
	_, err := Do[pingResponse](context.Background(), c, http.MethodGet, "/v1/me", nil, true)
	require.NoError(t, err)
}

func TestDo_AuthRequiredWithoutToken(t *testing.T) {
	c := New("http://localhost:0", func() string { return "" })
	_, err := Do[pingResponse](context.Background(), c, http.MethodGet, "/v1/me", nil, true)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}
