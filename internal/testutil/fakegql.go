// Package testutil provides a fake upstream GraphQL endpoint for tests.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"success-mcp/internal/graphql"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// Call is one operation received by the fake.
type Call struct {
	OperationName string
	Operation     ast.Operation
	Field         string
	Query         string
	Variables     map[string]any
	Auth          string
}

// Filter returns the filter variable, or nil.
func (c Call) Filter() map[string]any {
	f, _ := c.Variables["filter"].(map[string]any)
	return f
}

// Input returns the input variable of a mutation, or nil.
func (c Call) Input() map[string]any {
	in, _ := c.Variables["input"].(map[string]any)
	return in
}

// Response is what the fake answers for one call. A non-zero Status other
// than 200 sends Body verbatim.
type Response struct {
	Status int
	Body   string
	Data   any
	Errors []string
}

type Reply func(c Call) Response

// FakeGraphQL answers operations by name. Unregistered queries get an empty
// connection for their root field; unregistered mutations get an error.
type FakeGraphQL struct {
	*httptest.Server

	mu       sync.Mutex
	calls    []Call
	handlers map[string]Reply
}

func NewFakeGraphQL(t testing.TB) *FakeGraphQL {
	t.Helper()
	f := &FakeGraphQL{handlers: map[string]Reply{}}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

// Handle registers r for operation op.
func (f *FakeGraphQL) Handle(op string, r Reply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[op] = r
}

// Data registers a fixed data payload for op.
func (f *FakeGraphQL) Data(op string, data any) {
	f.Handle(op, func(Call) Response { return Response{Data: data} })
}

// Nodes registers a connection reply for op under root field.
func (f *FakeGraphQL) Nodes(op, field string, nodes ...map[string]any) {
	if nodes == nil {
		nodes = []map[string]any{}
	}
	f.Data(op, map[string]any{field: map[string]any{"totalCount": len(nodes), "nodes": nodes}})
}

// Paged registers a connection reply for op that honours the first and
// offset variables, reporting the full length as totalCount.
func (f *FakeGraphQL) Paged(op, field string, nodes []map[string]any) {
	f.Handle(op, func(c Call) Response {
		lo, _ := c.Variables["offset"].(float64)
		n, _ := c.Variables["first"].(float64)
		start := min(int(lo), len(nodes))
		end := len(nodes)
		if n > 0 {
			end = min(start+int(n), len(nodes))
		}
		page := append([]map[string]any{}, nodes[start:end]...)
		return Response{Data: map[string]any{field: map[string]any{"totalCount": len(nodes), "nodes": page}}}
	})
}

// Fail registers a GraphQL errors reply for op.
func (f *FakeGraphQL) Fail(op string, msg string) {
	f.Handle(op, func(Call) Response { return Response{Errors: []string{msg}} })
}

func (f *FakeGraphQL) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo returns the calls made for op, in order.
func (f *FakeGraphQL) CallsTo(op string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.OperationName == op {
			out = append(out, c)
		}
	}
	return out
}

// Ops returns operation names in call order.
func (f *FakeGraphQL) Ops() []string {
	var out []string
	for _, c := range f.Calls() {
		out = append(out, c.OperationName)
	}
	return out
}

// Client returns a graphql client pointed at the fake with a fixed key.
func (f *FakeGraphQL) Client() *graphql.Client {
	return graphql.New(graphql.Options{
		Endpoint: f.URL,
		Key:      func(context.Context) (string, error) { return "test-key", nil },
	})
}

func (f *FakeGraphQL) serve(w http.ResponseWriter, r *http.Request) {
	var req graphql.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "bad request body"})
		return
	}
	doc, err := parser.ParseQuery(&ast.Source{Input: req.Query})
	if err != nil || len(doc.Operations) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": []map[string]any{{"message": fmt.Sprint(err)}}})
		return
	}
	op := doc.Operations[0]
	call := Call{
		OperationName: req.OperationName,
		Operation:     op.Operation,
		Query:         req.Query,
		Variables:     req.Variables,
		Auth:          r.Header.Get("Authorization"),
	}
	if len(op.SelectionSet) > 0 {
		if field, ok := op.SelectionSet[0].(*ast.Field); ok {
			call.Field = field.Name
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	h := f.handlers[call.OperationName]
	f.mu.Unlock()

	var resp Response
	switch {
	case h != nil:
		resp = h(call)
	case call.Operation == ast.Query:
		resp = Response{Data: map[string]any{call.Field: map[string]any{"totalCount": 0, "nodes": []any{}}}}
	default:
		resp = Response{Errors: []string{"unexpected operation " + call.OperationName}}
	}

	if resp.Status != 0 && resp.Status != http.StatusOK {
		w.WriteHeader(resp.Status)
		_, _ = w.Write([]byte(resp.Body))
		return
	}
	body := map[string]any{}
	if resp.Data != nil {
		body["data"] = resp.Data
	}
	if len(resp.Errors) > 0 {
		errs := make([]map[string]any, 0, len(resp.Errors))
		for _, m := range resp.Errors {
			errs = append(errs, map[string]any{"message": m})
		}
		body["errors"] = errs
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
