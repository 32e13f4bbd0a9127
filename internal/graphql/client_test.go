package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const teamsQuery = `query Teams($filter: TeamFilter) { teams(filter: $filter) { nodes { id name } } }`

func staticKey(key string) KeyFunc {
	return func(context.Context) (string, error) { return key, nil }
}

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *Metrics, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	metrics := NewMetrics(prometheus.NewRegistry())
	var debug bytes.Buffer
	c := New(Options{
		Endpoint: srv.URL,
		Key:      staticKey("suc_api_test"),
		Metrics:  metrics,
		Debug:    NewDebugLog(&debug),
	})
	return c, metrics, &debug
}

func TestDoSuccess(t *testing.T) {
	c, metrics, debug := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer suc_api_test", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		var req Request
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "Teams", req.OperationName)
		assert.Equal(t, map[string]any{"stateId": map[string]any{"equalTo": "ACTIVE"}}, req.Variables["filter"])

		w.Write([]byte(`{"data":{"teams":{"nodes":[{"id":"t1","name":"Leadership"}]}}}`))
	})

	var out struct {
		Teams struct {
			Nodes []struct{ ID, Name string }
		}
	}
	err := c.Do(context.Background(), Request{
		OperationName: "Teams",
		Query:         teamsQuery,
		Variables:     map[string]any{"filter": map[string]any{"stateId": map[string]any{"equalTo": "ACTIVE"}}},
	}, &out)
	require.NoError(t, err)
	require.Len(t, out.Teams.Nodes, 1)
	assert.Equal(t, "Leadership", out.Teams.Nodes[0].Name)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("Teams", "ok")))
	assert.Contains(t, debug.String(), `"operation":"Teams"`)
	assert.Contains(t, debug.String(), `"status":200`)
}

func TestDoFailureClasses(t *testing.T) {
	t.Run("non-2xx unparsable body", func(t *testing.T) {
		c, metrics, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("<html>bad gateway</html>"))
		})
		err := c.Do(context.Background(), Request{OperationName: "Teams", Query: teamsQuery}, nil)

		var he *HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusBadGateway, he.StatusCode)
		assert.False(t, he.Parsed)
		assert.Contains(t, he.Body, "bad gateway")
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("Teams", "http_error")))
	})

	t.Run("non-2xx parsable body", func(t *testing.T) {
		c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"errors":[{"message":"Invalid API key"}]}`))
		})
		err := c.Do(context.Background(), Request{OperationName: "Teams", Query: teamsQuery}, nil)

		var he *HTTPError
		require.ErrorAs(t, err, &he)
		assert.True(t, he.Parsed)
		assert.Equal(t, []string{"Invalid API key"}, he.Messages)
		assert.True(t, IsHTTPStatus(err, http.StatusUnauthorized))
		assert.Equal(t, "GraphQL HTTP 401: Invalid API key", err.Error())
	})

	t.Run("200 with errors and partial data", func(t *testing.T) {
		c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":{"teams":{"nodes":[{"id":"t1","name":"A"}]}},"errors":[{"message":"field desc denied"}]}`))
		})
		var out struct {
			Teams struct{ Nodes []struct{ ID string } }
		}
		err := c.Do(context.Background(), Request{OperationName: "Teams", Query: teamsQuery}, &out)

		var re *ResponseError
		require.ErrorAs(t, err, &re)
		assert.True(t, re.HasData)
		assert.True(t, Partial(err))
		assert.Len(t, out.Teams.Nodes, 1)
		assert.Equal(t, "GraphQL error: field desc denied", err.Error())
	})

	t.Run("200 with errors and null data", func(t *testing.T) {
		c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":null,"errors":[{"message":"boom"}]}`))
		})
		err := c.Do(context.Background(), Request{OperationName: "Teams", Query: teamsQuery}, nil)
		assert.False(t, Partial(err))
		var re *ResponseError
		assert.ErrorAs(t, err, &re)
	})

	t.Run("200 with garbage", func(t *testing.T) {
		c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		})
		err := c.Do(context.Background(), Request{OperationName: "Teams", Query: teamsQuery}, nil)
		assert.ErrorIs(t, err, ErrDecode)
	})
}

func TestDoRejectsBeforeSending(t *testing.T) {
	var calls atomic.Int32
	c, metrics, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	err := c.Do(context.Background(), Request{OperationName: "Broken", Query: `query Broken { teams( }`}, nil)
	assert.ErrorIs(t, err, ErrInvalidQuery)

	c.key = func(context.Context) (string, error) { return "", errors.New("none") }
	err = c.Do(context.Background(), Request{OperationName: "Teams", Query: teamsQuery}, nil)
	assert.True(t, IsNoAPIKey(err))

	assert.Equal(t, int32(0), calls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("Broken", "invalid")))
}

func TestDoTransportError(t *testing.T) {
	c := New(Options{Endpoint: "http://127.0.0.1:1", Key: staticKey("k")})
	err := c.Do(context.Background(), Request{OperationName: "Teams", Query: teamsQuery}, nil)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "graphql call:"))
	assert.Equal(t, "transport_error", outcome(err))
}

func TestCheckSyntax(t *testing.T) {
	assert.NoError(t, CheckSyntax(teamsQuery))
	assert.NoError(t, CheckSyntax(`mutation UpdateTodo($input: UpdateTodoInput!) { updateTodo(input: $input) { todo { id } } }`))
	assert.Error(t, CheckSyntax(`query { `))
}
