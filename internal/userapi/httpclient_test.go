package userapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleUser(id int, name string) User {
	return User{
		ID:      id,
		Name:    name,
		Email:   name + "@example.com",
		Phone:   "555-0100",
		Website: "example.com",
		Address: Address{Street: "Main St", City: "Springfield"},
		Company: Company{Name: "Acme"},
	}
}

// jsonHandler asserts the request line and writes v as the JSON response.
func jsonHandler(t *testing.T, method, path string, status int, v any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, method, r.Method)
		assert.Equal(t, path, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if v != nil {
			require.NoError(t, json.NewEncoder(w).Encode(v))
		}
	}
}

func TestListUsers_HappyPath(t *testing.T) {
	want := []User{sampleUser(1, "Ann"), sampleUser(2, "Bo")}
	ts := httptest.NewServer(jsonHandler(t, http.MethodGet, "/users", http.StatusOK, want))
	defer ts.Close()

	client := NewHTTPClient(WithBaseURL(ts.URL))
	got, err := client.ListUsers(context.Background())

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestListUsers_NullBodyYieldsEmptySlice(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "null")
	}))
	defer ts.Close()

	got, err := NewHTTPClient(WithBaseURL(ts.URL)).ListUsers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetUser(t *testing.T) {
	want := sampleUser(7, "Gus")
	ts := httptest.NewServer(jsonHandler(t, http.MethodGet, "/users/7", http.StatusOK, want))
	defer ts.Close()

	got, err := NewHTTPClient(WithBaseURL(ts.URL+"/")).GetUser(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestGetUser_NotFound(t *testing.T) {
	ts := httptest.NewServer(jsonHandler(t, http.MethodGet, "/users/99", http.StatusNotFound, map[string]any{}))
	defer ts.Close()

	got, err := NewHTTPClient(WithBaseURL(ts.URL)).GetUser(context.Background(), 99)
	require.Error(t, err)
	assert.Nil(t, got)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "get user", te.Op)
	assert.Equal(t, http.StatusNotFound, te.StatusCode)
	assert.True(t, te.NotFound())
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestCreateUser_OmitsIDAndReturnsServerRecord(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users", r.URL.Path)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")

		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, hasID := raw["id"]
		assert.False(t, hasID, "create body must not carry an id")
		assert.Equal(t, "Cy", raw["name"])
		assert.Equal(t, "Elm St", raw["address"].(map[string]any)["street"])

		raw["id"] = 11
		w.WriteHeader(http.StatusCreated)
		require.NoError(t, json.NewEncoder(w).Encode(raw))
	}))
	defer ts.Close()

	draft := User{ID: 5, Name: "Cy", Address: Address{Street: "Elm St"}}
	got, err := NewHTTPClient(WithBaseURL(ts.URL)).CreateUser(context.Background(), draft)

	require.NoError(t, err)
	assert.Equal(t, 11, got.ID)
	assert.Equal(t, "Cy", got.Name)
	assert.Equal(t, "Elm St", got.Address.Street)
}

func TestUpdateUser_FillsMissingID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/users/3", r.URL.Path)

		var u User
		require.NoError(t, json.NewDecoder(r.Body).Decode(&u))
		assert.Equal(t, 3, u.ID)
		u.ID = 0
		require.NoError(t, json.NewEncoder(w).Encode(u))
	}))
	defer ts.Close()

	got, err := NewHTTPClient(WithBaseURL(ts.URL)).UpdateUser(context.Background(), 3, sampleUser(0, "Dee"))
	require.NoError(t, err)
	assert.Equal(t, 3, got.ID)
	assert.Equal(t, "Dee", got.Name)
}

func TestDeleteUser(t *testing.T) {
	ts := httptest.NewServer(jsonHandler(t, http.MethodDelete, "/users/2", http.StatusOK, map[string]any{}))
	defer ts.Close()

	err := NewHTTPClient(WithBaseURL(ts.URL)).DeleteUser(context.Background(), 2)
	assert.NoError(t, err)
}

func TestDo_ServerErrorKeepsBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "boom")
	}))
	defer ts.Close()

	err := NewHTTPClient(WithBaseURL(ts.URL)).DeleteUser(context.Background(), 1)
	require.Error(t, err)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusInternalServerError, te.StatusCode)
	assert.Equal(t, "boom", te.Body)
	assert.Equal(t, "userapi: delete user: HTTP 500: boom", err.Error())
}

func TestDo_MalformedJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "{not json")
	}))
	defer ts.Close()

	_, err := NewHTTPClient(WithBaseURL(ts.URL)).ListUsers(context.Background())
	require.Error(t, err)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusOK, te.StatusCode)
	assert.Contains(t, err.Error(), "decode response")
}

func TestDo_ConnectionRefused(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := NewHTTPClient(WithBaseURL(url)).ListUsers(context.Background())
	require.Error(t, err)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Zero(t, te.StatusCode)
	assert.NotNil(t, te.Unwrap())
}

func TestDo_ContextCanceled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTPClient(WithBaseURL(ts.URL)).ListUsers(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestWithTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()

	client := NewHTTPClient(WithBaseURL(ts.URL), WithTimeout(50*time.Millisecond))
	_, err := client.ListUsers(context.Background())
	require.Error(t, err)

	var te *TransportError
	assert.ErrorAs(t, err, &te)
}

func TestWithRateLimit_Throttles(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, "[]")
	}))
	defer ts.Close()

	client := NewHTTPClient(WithBaseURL(ts.URL), WithRateLimit(20, 1))

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := client.ListUsers(context.Background())
		require.NoError(t, err)
	}
	// Burst of one at 20/s: the second and third calls each wait ~50ms.
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	assert.Equal(t, int32(3), hits.Load())
}

func TestWithRateLimit_ZeroDisables(t *testing.T) {
	client := NewHTTPClient(WithRateLimit(0, 5))
	assert.Nil(t, client.limiter)
}

func TestNewHTTPClient_Defaults(t *testing.T) {
	client := NewHTTPClient()
	assert.Equal(t, DefaultBaseURL, client.BaseURL())
	assert.Equal(t, 30*time.Second, client.http.Timeout)
}
