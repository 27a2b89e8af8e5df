package sfmc

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteAuthenticatesLazilyExactlyOnce(t *testing.T) {
	authCalls := 0
	authServer := httptest.NewServer(authHandler(t, &authCalls))
	defer authServer.Close()

	apiCalls := 0
	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiCalls++
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer apiServer.Close()

	client := newTestClient(t, authServer.URL, apiServer.URL, apiServer.URL)

	spec := RequestSpec{Method: http.MethodGet, Path: "/data/v1/customobjects", AuthRequired: true}

	resp, err := client.Execute(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, authCalls)

	// Second call reuses the cached token.
	_, err = client.Execute(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, 1, authCalls)
	assert.Equal(t, 2, apiCalls)
}

func TestExecuteRefreshesAndRetriesOnceOn401(t *testing.T) {
	authCalls := 0
	authServer := httptest.NewServer(authHandler(t, &authCalls))
	defer authServer.Close()

	apiCalls := 0
	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiCalls++
		if apiCalls == 1 {
			assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "Bearer tok-2", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer apiServer.Close()

	client := newTestClient(t, authServer.URL, apiServer.URL, apiServer.URL)

	resp, err := client.Execute(context.Background(), RequestSpec{
		Method:       http.MethodGet,
		Path:         "/data/v1/customobjects",
		AuthRequired: true,
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, apiCalls)
	assert.Equal(t, 2, authCalls)
}

func TestExecuteFailsAfterSecondUnauthorized(t *testing.T) {
	authCalls := 0
	authServer := httptest.NewServer(authHandler(t, &authCalls))
	defer authServer.Close()

	apiCalls := 0
	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apiCalls++
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("token rejected"))
	}))
	defer apiServer.Close()

	client := newTestClient(t, authServer.URL, apiServer.URL, apiServer.URL)

	_, err := client.Execute(context.Background(), RequestSpec{
		Method:       http.MethodGet,
		Path:         "/data/v1/customobjects",
		AuthRequired: true,
	})
	require.Error(t, err)

	var authErr *AuthenticationError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
	assert.Equal(t, "token rejected", authErr.Body)

	// Exactly two attempts for the request, no further retries.
	assert.Equal(t, 2, apiCalls)
	assert.Equal(t, 2, authCalls)
}

func TestExecuteReplayResendsReaderBody(t *testing.T) {
	authCalls := 0
	authServer := httptest.NewServer(authHandler(t, &authCalls))
	defer authServer.Close()

	var bodies []string
	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		bodies = append(bodies, string(b))
		if len(bodies) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer apiServer.Close()

	client := newTestClient(t, authServer.URL, apiServer.URL, apiServer.URL)

	resp, err := client.Execute(context.Background(), RequestSpec{
		Method:       http.MethodPost,
		Path:         "/data/v1/customobjects",
		Body:         strings.NewReader(`{"name":"Orders"}`),
		AuthRequired: true,
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, bodies, 2)
	assert.Equal(t, `{"name":"Orders"}`, bodies[0])
	assert.Equal(t, `{"name":"Orders"}`, bodies[1])
}

func TestExecutePublicEndpointSkipsAuthentication(t *testing.T) {
	authCalls := 0
	authServer := httptest.NewServer(authHandler(t, &authCalls))
	defer authServer.Close()

	apiCalls := 0
	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiCalls++
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer apiServer.Close()

	client := newTestClient(t, authServer.URL, apiServer.URL, apiServer.URL)

	_, err := client.Execute(context.Background(), RequestSpec{
		Method: http.MethodGet,
		Path:   "/public/status",
	})
	require.Error(t, err)

	// A 401 on an unauthenticated request is an ordinary request failure,
	// not a token-expiry one: no auth call, no retry.
	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusUnauthorized, reqErr.StatusCode)
	assert.Equal(t, 0, authCalls)
	assert.Equal(t, 1, apiCalls)
}

func TestExecuteRequestErrorCarriesStatusAndBody(t *testing.T) {
	authCalls := 0
	authServer := httptest.NewServer(authHandler(t, &authCalls))
	defer authServer.Close()

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no such object"}`))
	}))
	defer apiServer.Close()

	client := newTestClient(t, authServer.URL, apiServer.URL, apiServer.URL)

	_, err := client.Execute(context.Background(), RequestSpec{
		Method:       http.MethodGet,
		Path:         "/data/v1/customobjects/missing",
		AuthRequired: true,
	})
	require.Error(t, err)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
	assert.Contains(t, reqErr.Body, "no such object")
}

func TestExecuteTransportError(t *testing.T) {
	authCalls := 0
	authServer := httptest.NewServer(authHandler(t, &authCalls))
	defer authServer.Close()

	client := newTestClient(t, authServer.URL, "http://127.0.0.1:1", "http://127.0.0.1:1")

	_, err := client.Execute(context.Background(), RequestSpec{
		Method:       http.MethodGet,
		Path:         "/data/v1/customobjects",
		AuthRequired: true,
	})
	require.Error(t, err)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Error(t, reqErr.Err)
}

func TestExecuteHonorsCallerTimeout(t *testing.T) {
	authCalls := 0
	authServer := httptest.NewServer(authHandler(t, &authCalls))
	defer authServer.Close()

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer apiServer.Close()

	client := newTestClient(t, authServer.URL, apiServer.URL, apiServer.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Execute(ctx, RequestSpec{
		Method:       http.MethodGet,
		Path:         "/data/v1/customobjects",
		AuthRequired: true,
	})
	require.Error(t, err)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestExecuteMergesQueryParams(t *testing.T) {
	authCalls := 0
	authServer := httptest.NewServer(authHandler(t, &authCalls))
	defer authServer.Close()

	var gotQuery string
	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{}`))
	}))
	defer apiServer.Close()

	client := newTestClient(t, authServer.URL, apiServer.URL, apiServer.URL)

	_, err := client.Execute(context.Background(), RequestSpec{
		Method:       http.MethodGet,
		Path:         "/data/v1/customobjects",
		QueryParams:  map[string]string{"$search": "My DE", "$page": "2"},
		AuthRequired: true,
	})
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "%24search=My+DE")
	assert.Contains(t, gotQuery, "%24page=2")
}

func TestExecuteAbsoluteURLBypassesBase(t *testing.T) {
	authCalls := 0
	authServer := httptest.NewServer(authHandler(t, &authCalls))
	defer authServer.Close()

	var gotPath string
	otherServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	}))
	defer otherServer.Close()

	client := newTestClient(t, authServer.URL, "http://127.0.0.1:1", "http://127.0.0.1:1")

	_, err := client.Execute(context.Background(), RequestSpec{
		Method:       http.MethodGet,
		Path:         otherServer.URL + "/legacy/v1/beta/folder",
		AuthRequired: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "/legacy/v1/beta/folder", gotPath)
}
