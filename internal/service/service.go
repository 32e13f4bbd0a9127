// Package service turns validated tool arguments into GraphQL operations and
// reshapes the responses.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"success-mcp/internal/graphql"
	"success-mcp/internal/identity"
	"success-mcp/internal/logger"
	"success-mcp/internal/model"
)

var ErrLeadershipTeamNotFound = errors.New("could not find leadership team")

// Doer executes one GraphQL operation. *graphql.Client implements it.
type Doer interface {
	Do(ctx context.Context, req graphql.Request, out any) error
}

type KeySource interface {
	APIKey(ctx context.Context) (string, error)
}

type Service struct {
	gql      Doer
	identity *identity.Resolver
	keys     KeySource
	now      func() time.Time
}

// New builds a service. identity and keys may be nil; company and default
// user ids are then never filled in.
func New(gql Doer, id *identity.Resolver, keys KeySource) *Service {
	return &Service{gql: gql, identity: id, keys: keys, now: time.Now}
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

func (s *Service) Now() time.Time { return s.now() }

// Caller resolves the identity behind the API key in use.
func (s *Service) Caller(ctx context.Context) (identity.Identity, error) {
	if !s.identity.Available() || s.keys == nil {
		return identity.Identity{}, identity.ErrUnavailable
	}
	key, err := s.keys.APIKey(ctx)
	if err != nil {
		return identity.Identity{}, err
	}
	return s.identity.Resolve(ctx, key)
}

// caller is Caller with failures logged and reported as a zero identity.
func (s *Service) caller(ctx context.Context) identity.Identity {
	id, err := s.Caller(ctx)
	if err != nil && !errors.Is(err, identity.ErrUnavailable) {
		logger.Warn("identity.resolve", "err", err)
	}
	return id
}

// stamp adds companyId to a create input when the caller is known.
func (s *Service) stamp(ctx context.Context, fields map[string]any) map[string]any {
	if id := s.caller(ctx); id.CompanyID != "" {
		fields["companyId"] = id.CompanyID
	}
	return fields
}

// owner returns userID, falling back to the caller's user.
func (s *Service) owner(ctx context.Context, userID string) (string, error) {
	if userID != "" {
		return userID, nil
	}
	if id := s.caller(ctx); id.UserID != "" {
		return id.UserID, nil
	}
	return "", invalid("userId is required when the API key owner cannot be resolved")
}

func (s *Service) leadershipTeamID(ctx context.Context) (string, error) {
	f := Filter{}.Eq("isLeadership", true).Eq("stateId", "ACTIVE")
	c, err := list[model.Team](ctx, s, teamEntity, "LeadershipTeam", f, Page{First: 1})
	if err != nil {
		return "", fmt.Errorf("lookup leadership team: %w", err)
	}
	if len(c.Nodes) == 0 {
		return "", ErrLeadershipTeamNotFound
	}
	return c.Nodes[0].ID, nil
}

// teamScope returns teamID, or the leadership team id when only leadership
// is set, or "" for no team restriction.
func (s *Service) teamScope(ctx context.Context, teamID string, leadership bool) (string, error) {
	if teamID != "" || !leadership {
		return teamID, nil
	}
	return s.leadershipTeamID(ctx)
}

// PartialError reports a multi-step write or fan-out that did not complete.
// Completed steps are not rolled back.
type PartialError struct {
	Succeeded []string
	Failed    []string
}

func (e *PartialError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d of %d operations failed", len(e.Failed), len(e.Failed)+len(e.Succeeded)))
	for _, f := range e.Failed {
		sb.WriteString("\n  failed: " + f)
	}
	for _, ok := range e.Succeeded {
		sb.WriteString("\n  succeeded: " + ok)
	}
	return sb.String()
}

func (e *PartialError) ok(step string) { e.Succeeded = append(e.Succeeded, step) }

func (e *PartialError) fail(step string, err error) {
	e.Failed = append(e.Failed, fmt.Sprintf("%s: %v", step, err))
}

// err returns e when any step failed, else nil.
func (e *PartialError) err() error {
	if len(e.Failed) == 0 {
		return nil
	}
	return e
}

func IsPartial(err error) (*PartialError, bool) {
	var pe *PartialError
	ok := errors.As(err, &pe)
	return pe, ok
}

type connection[T any] struct {
	TotalCount int `json:"totalCount"`
	Nodes      []T `json:"nodes"`
}

// query runs the list query of e. On a GraphQL error any decoded rows are
// returned along with it.
func query[T any](ctx context.Context, s *Service, e entity, op string, f Filter, p Page, orderBy ...string) (connection[T], error) {
	vars := p.vars(map[string]any{"filter": f})
	if len(orderBy) > 0 {
		vars["orderBy"] = orderBy
	}
	var out map[string]connection[T]
	req := graphql.Request{OperationName: op, Query: e.listQuery(op), Variables: vars}
	err := s.gql.Do(ctx, req, &out)
	return out[e.Plural], err
}

// list runs the list query of e. An empty op uses the entity default.
func list[T any](ctx context.Context, s *Service, e entity, op string, f Filter, p Page, orderBy ...string) (connection[T], error) {
	if op == "" {
		op = e.listOp()
	}
	c, err := query[T](ctx, s, e, op, f, p, orderBy...)
	if err != nil {
		return connection[T]{}, err
	}
	return c, nil
}

// listPage is list for the page a read tool returns. Rows that arrive with
// GraphQL errors are kept and the errors come back as a *PartialError.
func listPage[T any](ctx context.Context, s *Service, e entity, op string, f Filter, p Page, orderBy ...string) (connection[T], error) {
	if op == "" {
		op = e.listOp()
	}
	c, err := query[T](ctx, s, e, op, f, p, orderBy...)
	if err == nil {
		return c, nil
	}
	if !graphql.Partial(err) {
		return connection[T]{}, err
	}
	pe := &PartialError{}
	pe.ok(fmt.Sprintf("%s returned %d rows", op, len(c.Nodes)))
	pe.fail(op, err)
	return c, pe
}

// splitPartial separates a *PartialError, which still carries a usable
// result, from a failure.
func splitPartial(err error) (warn, fatal error) {
	if _, ok := IsPartial(err); ok {
		return err, nil
	}
	return nil, err
}

// listAll pages through every row of e matching f. Rows are ordered by
// primary key unless orderBy is given so offsets stay stable.
func listAll[T any](ctx context.Context, s *Service, e entity, op string, f Filter, orderBy ...string) ([]T, error) {
	if len(orderBy) == 0 {
		orderBy = []string{"PRIMARY_KEY_ASC"}
	}
	var rows []T
	for {
		c, err := list[T](ctx, s, e, op, f, Page{First: maxFirst, Offset: len(rows)}, orderBy...)
		if err != nil {
			return nil, err
		}
		rows = append(rows, c.Nodes...)
		if len(c.Nodes) < maxFirst || len(rows) >= c.TotalCount {
			return rows, nil
		}
	}
}

// byID fetches a single row of e regardless of state.
func byID[T any](ctx context.Context, s *Service, e entity, id string) (T, bool, error) {
	var zero T
	c, err := list[T](ctx, s, e, e.Type+"ByID", Filter{}.Eq("id", id), Page{First: 1})
	if err != nil || len(c.Nodes) == 0 {
		return zero, false, err
	}
	return c.Nodes[0], true, nil
}

func create[T any](ctx context.Context, s *Service, e entity, fields map[string]any) (T, error) {
	vars := map[string]any{"input": map[string]any{e.single(): fields}}
	var out map[string]map[string]*T
	req := graphql.Request{OperationName: e.createOp(), Query: e.createMutation(), Variables: vars}
	if err := s.gql.Do(ctx, req, &out); err != nil {
		var zero T
		return zero, err
	}
	return unwrap[T](out, "create"+e.Type, e)
}

func update[T any](ctx context.Context, s *Service, e entity, id string, patch map[string]any) (T, error) {
	vars := map[string]any{"input": map[string]any{"id": id, "patch": patch}}
	var out map[string]map[string]*T
	req := graphql.Request{OperationName: e.updateOp(), Query: e.updateMutation(), Variables: vars}
	if err := s.gql.Do(ctx, req, &out); err != nil {
		var zero T
		return zero, err
	}
	return unwrap[T](out, "update"+e.Type, e)
}

func unwrap[T any](out map[string]map[string]*T, field string, e entity) (T, error) {
	if v := out[field][e.single()]; v != nil {
		return *v, nil
	}
	var zero T
	return zero, fmt.Errorf("%s returned no %s", field, e.single())
}

type idNode struct {
	ID      string `json:"id"`
	StateID string `json:"stateId"`
}

// softDelete marks a row DELETED.
func (s *Service) softDelete(ctx context.Context, e entity, id string) (model.Deleted, error) {
	if err := required("id", id); err != nil {
		return model.Deleted{}, err
	}
	n, err := update[idNode](ctx, s, e, id, map[string]any{"stateId": "DELETED"})
	if err != nil {
		return model.Deleted{}, err
	}
	return model.Deleted{Type: e.single(), ID: n.ID, StateID: n.StateID}, nil
}

// patch collects non-empty optional fields for an update.
type patch map[string]any

func (p patch) str(field, v string) patch {
	if v != "" {
		p[field] = v
	}
	return p
}

func (p patch) ptr(field string, v any) patch {
	switch x := v.(type) {
	case *bool:
		if x != nil {
			p[field] = *x
		}
	case *int:
		if x != nil {
			p[field] = *x
		}
	case *float64:
		if x != nil {
			p[field] = *x
		}
	case *string:
		if x != nil {
			p[field] = *x
		}
	}
	return p
}

func (p patch) empty() error {
	if len(p) == 0 {
		return invalid("no fields to update")
	}
	return nil
}
