package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"success-mcp/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, *testutil.FakeGraphQL) {
	t.Helper()
	fake := testutil.NewFakeGraphQL(t)
	s := New(fake.Client(), nil, nil)
	s.SetClock(func() time.Time { return fixedNow })
	return s, fake
}

// echoCreate answers the create mutation of e with its input plus id.
func echoCreate(fake *testutil.FakeGraphQL, e entity, id string) {
	fake.Handle(e.createOp(), func(c testutil.Call) testutil.Response {
		row := map[string]any{"id": id}
		if in, ok := c.Input()[e.single()].(map[string]any); ok {
			for k, v := range in {
				row[k] = v
			}
		}
		return testutil.Response{Data: map[string]any{"create" + e.Type: map[string]any{e.single(): row}}}
	})
}

// echoUpdate answers the update mutation of e with the patch applied to id.
func echoUpdate(fake *testutil.FakeGraphQL, e entity) {
	fake.Handle(e.updateOp(), func(c testutil.Call) testutil.Response {
		row := map[string]any{"id": c.Input()["id"]}
		if p, ok := c.Input()["patch"].(map[string]any); ok {
			for k, v := range p {
				row[k] = v
			}
		}
		return testutil.Response{Data: map[string]any{"update" + e.Type: map[string]any{e.single(): row}}}
	})
}

func clause(t *testing.T, c testutil.Call, field string) map[string]any {
	t.Helper()
	m, ok := c.Filter()[field].(map[string]any)
	require.True(t, ok, "filter has no %s clause: %v", field, c.Filter())
	return m
}

func TestStatusAllOmitsClause(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		op    string
		field string
		call  func(s *Service) error
	}{
		{"todos", "Todos", "todoStatusId", func(s *Service) error {
			_, err := s.GetTodos(ctx, TodoQuery{Status: "ALL"})
			return err
		}},
		{"todos lowercase", "Todos", "todoStatusId", func(s *Service) error {
			_, err := s.GetTodos(ctx, TodoQuery{Status: "all"})
			return err
		}},
		{"rocks", "Rocks", "rockStatusId", func(s *Service) error {
			_, err := s.GetRocks(ctx, RockQuery{Status: "ALL"})
			return err
		}},
		{"issues", "Issues", "issueStatusId", func(s *Service) error {
			_, err := s.GetIssues(ctx, IssueQuery{Status: "ALL"})
			return err
		}},
		{"headlines", "Headlines", "status", func(s *Service) error {
			_, err := s.GetHeadlines(ctx, HeadlineQuery{Status: "ALL"})
			return err
		}},
		{"milestones", "Milestones", "milestoneStatusId", func(s *Service) error {
			_, err := s.GetMilestones(ctx, MilestoneQuery{Status: "ALL"})
			return err
		}},
		{"meetings", "Meetings", "meetingStatusId", func(s *Service) error {
			_, err := s.GetMeetings(ctx, MeetingQuery{Status: "ALL"})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, fake := newService(t)
			require.NoError(t, tt.call(s))
			calls := fake.CallsTo(tt.op)
			require.Len(t, calls, 1)
			assert.NotContains(t, calls[0].Filter(), tt.field)
			assert.Equal(t, map[string]any{"equalTo": "ACTIVE"}, clause(t, calls[0], "stateId"))
			assert.NotContains(t, calls[0].Query, "ACTIVE", "values travel as variables")
		})
	}
}

func TestTodosStatusClause(t *testing.T) {
	s, fake := newService(t)
	_, err := s.GetTodos(context.Background(), TodoQuery{Status: "complete"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"equalTo": "COMPLETE"}, clause(t, fake.CallsTo("Todos")[0], "todoStatusId"))
}

func TestTodosOverdue(t *testing.T) {
	fake := testutil.NewFakeGraphQL(t)
	s := New(fake.Client(), nil, nil)

	before := time.Now().UTC().Truncate(time.Second)
	_, err := s.GetTodos(context.Background(), TodoQuery{Status: "OVERDUE"})
	require.NoError(t, err)
	after := time.Now().UTC()

	call := fake.CallsTo("Todos")[0]
	assert.Equal(t, map[string]any{"equalTo": "TODO"}, clause(t, call, "todoStatusId"))
	raw, ok := clause(t, call, "dueDate")["lessThan"].(string)
	require.True(t, ok)
	bound, err := time.Parse(time.RFC3339, raw)
	require.NoError(t, err)
	assert.False(t, bound.Before(before), "bound %s before %s", bound, before)
	assert.False(t, bound.After(after), "bound %s after %s", bound, after)
}

func TestTodosShapeOverdue(t *testing.T) {
	s, fake := newService(t)
	fake.Nodes("Todos", "todos",
		map[string]any{"id": "t1", "name": "late", "todoStatusId": "TODO", "dueDate": "2025-03-01", "stateId": "ACTIVE"},
		map[string]any{"id": "t2", "name": "done", "todoStatusId": "COMPLETE", "dueDate": "2025-03-01", "stateId": "ACTIVE"},
		map[string]any{"id": "t3", "name": "future", "todoStatusId": "TODO", "dueDate": "2025-04-01", "stateId": "ACTIVE"},
	)
	page, err := s.GetTodos(context.Background(), TodoQuery{})
	require.NoError(t, err)
	require.Len(t, page.Results, 3)
	assert.Equal(t, 3, page.TotalCount)
	assert.True(t, page.Results[0].Overdue)
	assert.False(t, page.Results[1].Overdue)
	assert.False(t, page.Results[2].Overdue)
	assert.Equal(t, "TODO", page.Results[0].Status)
}

func TestLeadershipTeamNotFound(t *testing.T) {
	ctx := context.Background()
	calls := map[string]func(s *Service) error{
		"getTodos": func(s *Service) error {
			_, err := s.GetTodos(ctx, TodoQuery{LeadershipTeam: true})
			return err
		},
		"getRocks": func(s *Service) error {
			_, err := s.GetRocks(ctx, RockQuery{LeadershipTeam: true})
			return err
		},
		"getIssues": func(s *Service) error {
			_, err := s.GetIssues(ctx, IssueQuery{LeadershipTeam: true})
			return err
		},
		"getHeadlines": func(s *Service) error {
			_, err := s.GetHeadlines(ctx, HeadlineQuery{LeadershipTeam: true})
			return err
		},
		"getUsers": func(s *Service) error {
			_, err := s.GetUsers(ctx, UserQuery{LeadershipTeam: true})
			return err
		},
		"getMeetings": func(s *Service) error {
			_, err := s.GetMeetings(ctx, MeetingQuery{LeadershipTeam: true})
			return err
		},
		"getMeetingDetails": func(s *Service) error {
			_, err := s.GetMeetingDetails(ctx, MeetingDetailsQuery{LeadershipTeam: true})
			return err
		},
		"getScorecardMeasurables": func(s *Service) error {
			_, err := s.GetScorecardMeasurables(ctx, ScorecardQuery{LeadershipTeam: true})
			return err
		},
		"createTodo": func(s *Service) error {
			_, err := s.CreateTodo(ctx, CreateTodoArgs{Name: "x", UserID: "u1", LeadershipTeam: true})
			return err
		},
		"createIssue": func(s *Service) error {
			_, err := s.CreateIssue(ctx, CreateIssueArgs{Name: "x", UserID: "u1", LeadershipTeam: true})
			return err
		},
		"createRock": func(s *Service) error {
			_, err := s.CreateRock(ctx, CreateRockArgs{Name: "x", UserID: "u1", LeadershipTeam: true})
			return err
		},
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			s, fake := newService(t)
			err := call(s)
			require.ErrorIs(t, err, ErrLeadershipTeamNotFound)
			assert.Equal(t, "could not find leadership team", err.Error())
			assert.Equal(t, []string{"LeadershipTeam"}, fake.Ops())

			lookup := fake.CallsTo("LeadershipTeam")[0]
			assert.Equal(t, map[string]any{"equalTo": true}, clause(t, lookup, "isLeadership"))
			assert.Equal(t, float64(1), lookup.Variables["first"])
		})
	}
}

func TestLeadershipTeamResolved(t *testing.T) {
	s, fake := newService(t)
	fake.Nodes("LeadershipTeam", "teams", map[string]any{"id": "lead", "name": "Leadership", "isLeadership": true})

	_, err := s.GetIssues(context.Background(), IssueQuery{LeadershipTeam: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"LeadershipTeam", "Issues"}, fake.Ops())
	assert.Equal(t, map[string]any{"equalTo": "lead"}, clause(t, fake.CallsTo("Issues")[0], "teamId"))
}

func TestExplicitTeamSkipsLeadershipLookup(t *testing.T) {
	s, fake := newService(t)
	_, err := s.GetTodos(context.Background(), TodoQuery{TeamID: "t9", LeadershipTeam: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Todos"}, fake.Ops())
}

func TestValidationBeforeNetwork(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		call func(s *Service) error
		msg  string
	}{
		{"state", func(s *Service) error {
			_, err := s.GetTeams(ctx, TeamQuery{StateID: "GONE"})
			return err
		}, `Invalid stateId "GONE". Must be one of: ACTIVE, DELETED, INACTIVE`},
		{"todo status", func(s *Service) error {
			_, err := s.GetTodos(ctx, TodoQuery{Status: "LATE", LeadershipTeam: true})
			return err
		}, `Invalid status "LATE". Must be one of: TODO, COMPLETE, OVERDUE, ALL`},
		{"issue type", func(s *Service) error {
			_, err := s.GetIssues(ctx, IssueQuery{Type: "mid-term"})
			return err
		}, `Invalid type "mid-term". Must be one of: SHORT-TERM, LONG-TERM, ALL`},
		{"date", func(s *Service) error {
			_, err := s.GetTodos(ctx, TodoQuery{CreatedAfter: "yesterday"})
			return err
		}, `Invalid createdAfter "yesterday". Use YYYY-MM-DD`},
		{"missing name", func(s *Service) error {
			_, err := s.CreateTodo(ctx, CreateTodoArgs{})
			return err
		}, "name is required"},
		{"no owner", func(s *Service) error {
			_, err := s.CreateTodo(ctx, CreateTodoArgs{Name: "x"})
			return err
		}, "userId is required when the API key owner cannot be resolved"},
		{"empty update", func(s *Service) error {
			_, err := s.UpdateTodo(ctx, UpdateTodoArgs{ID: "t1"})
			return err
		}, "no fields to update"},
		{"headline status", func(s *Service) error {
			_, err := s.CreateHeadline(ctx, CreateHeadlineArgs{Name: "x", Status: "Published"})
			return err
		}, `Invalid status "Published". Must be one of: Shared, Not shared`},
		{"delete id", func(s *Service) error {
			_, err := s.DeleteRock(ctx, "")
			return err
		}, "id is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, fake := newService(t)
			err := tt.call(s)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.Equal(t, tt.msg, err.Error())
			assert.Empty(t, fake.Calls())
		})
	}
}

func TestPaging(t *testing.T) {
	s, fake := newService(t)
	ctx := context.Background()

	_, err := s.GetTeams(ctx, TeamQuery{})
	require.NoError(t, err)
	_, err = s.GetTeams(ctx, TeamQuery{Page: Page{First: 10000, Offset: 20}})
	require.NoError(t, err)

	calls := fake.CallsTo("Teams")
	require.Len(t, calls, 2)
	assert.Equal(t, float64(defaultFirst), calls[0].Variables["first"])
	assert.NotContains(t, calls[0].Variables, "offset")
	assert.Equal(t, float64(maxFirst), calls[1].Variables["first"])
	assert.Equal(t, float64(20), calls[1].Variables["offset"])
}

func TestCreateTodoDefaults(t *testing.T) {
	s, fake := newService(t)
	echoCreate(fake, todoEntity, "t1")

	todo, err := s.CreateTodo(context.Background(), CreateTodoArgs{Name: "Call vendor", UserID: "u1", TeamID: "team1"})
	require.NoError(t, err)
	assert.Equal(t, "t1", todo.ID)
	assert.Equal(t, "2025-03-22", todo.DueDate)

	in := fake.CallsTo("CreateTodo")[0].Input()["todo"].(map[string]any)
	assert.Equal(t, "TODO", in["todoStatusId"])
	assert.Equal(t, "team1", in["teamId"])
	assert.NotContains(t, in, "companyId")
	assert.NotContains(t, in, "desc")
}

func TestDeleteIsStatePatch(t *testing.T) {
	s, fake := newService(t)
	echoUpdate(fake, issueEntity)

	d, err := s.DeleteIssue(context.Background(), "i1")
	require.NoError(t, err)
	assert.Equal(t, "issue", d.Type)
	assert.Equal(t, "DELETED", d.StateID)
	in := fake.CallsTo("UpdateIssue")[0].Input()
	assert.Equal(t, "i1", in["id"])
	assert.Equal(t, map[string]any{"stateId": "DELETED"}, in["patch"])
}

func TestUpstreamErrorPassesThrough(t *testing.T) {
	s, fake := newService(t)
	fake.Fail("Teams", "permission denied")

	_, err := s.GetTeams(context.Background(), TeamQuery{})
	require.Error(t, err)
	assert.False(t, IsValidation(err))
	assert.Contains(t, err.Error(), "permission denied")
}

func TestReadKeepsPartialRows(t *testing.T) {
	s, fake := newService(t)
	fake.Handle("Teams", func(testutil.Call) testutil.Response {
		return testutil.Response{
			Data:   map[string]any{"teams": map[string]any{"totalCount": 2, "nodes": []any{map[string]any{"id": "t1", "name": "Sales"}}}},
			Errors: []string{"cannot read team t2"},
		}
	})

	page, err := s.GetTeams(context.Background(), TeamQuery{})
	pe, ok := IsPartial(err)
	require.True(t, ok, "err = %v", err)
	assert.Equal(t, []string{"Teams returned 1 rows"}, pe.Succeeded)
	require.Len(t, pe.Failed, 1)
	assert.Contains(t, pe.Failed[0], "cannot read team t2")
	require.Len(t, page.Results, 1)
	assert.Equal(t, "t1", page.Results[0].ID)
}

func TestJoinFailsOnPartialRows(t *testing.T) {
	s, fake := newService(t)
	fake.Nodes("Rocks", "rocks", map[string]any{"id": "r1", "name": "Ship v2"})
	fake.Handle("TeamsOnRocks", func(testutil.Call) testutil.Response {
		return testutil.Response{
			Data:   map[string]any{"teamsOnRocks": map[string]any{"totalCount": 0, "nodes": []any{}}},
			Errors: []string{"timeout"},
		}
	})

	_, err := s.GetRocks(context.Background(), RockQuery{})
	require.Error(t, err)
	_, partial := IsPartial(err)
	assert.False(t, partial)
}

func TestListAllStopsOnShortPage(t *testing.T) {
	s, fake := newService(t)
	nodes := make([]map[string]any, 0, maxFirst+20)
	for i := range maxFirst + 20 {
		nodes = append(nodes, map[string]any{"id": fmt.Sprintf("l%d", i), "teamId": "t1", "userId": fmt.Sprintf("u%d", i)})
	}
	fake.Paged("TeamsOnUsers", "teamsOnUsers", nodes)

	ids, err := s.teamMemberIDs(context.Background(), "t1")
	require.NoError(t, err)
	assert.Len(t, ids, maxFirst+20)
	calls := fake.CallsTo("TeamsOnUsers")
	require.Len(t, calls, 2)
	assert.Equal(t, []any{"PRIMARY_KEY_ASC"}, calls[0].Variables["orderBy"])
}
