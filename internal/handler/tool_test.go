package handler

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"success-mcp/internal/apikey"
	"success-mcp/internal/graphql"
	"success-mcp/internal/service"
	"success-mcp/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTools(t *testing.T) (*ToolHandler, *testutil.FakeGraphQL, *apikey.Resolver) {
	t.Helper()
	fake := testutil.NewFakeGraphQL(t)
	keys := apikey.NewResolver("config-key", apikey.NewFileStore(filepath.Join(t.TempDir(), "api_key")))
	gql := graphql.New(graphql.Options{Endpoint: fake.URL, Key: keys.APIKey, Timeout: 5 * time.Second})
	svc := service.New(gql, nil, keys)
	svc.SetClock(func() time.Time { return time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC) })
	return NewToolHandler(svc, keys), fake, keys
}

func call(t *testing.T, h *ToolHandler, name string, args map[string]any) (string, bool) {
	t.Helper()
	res, err := h.Call(context.Background(), name, args)
	require.NoError(t, err)
	return Text(res), res.IsError
}

func TestToolSet(t *testing.T) {
	h, _, _ := newTools(t)
	want := []string{
		"createHeadline", "createIssue", "createMeeting", "createMilestone", "createRock",
		"createScorecardMeasurable", "createScorecardMeasurableEntry", "createTodo",
		"deleteHeadline", "deleteIssue", "deleteMilestone", "deleteRock", "deleteTodo",
		"fetch", "getAccountabilityChart", "getApiKey", "getHeadlines", "getIssues",
		"getLeadershipVTO", "getMeetingAgendas", "getMeetingDetails", "getMeetingInfos",
		"getMeetings", "getMilestones", "getOrgCheckups", "getPeopleAnalyzerSessions",
		"getRocks", "getScorecardMeasurables", "getTeams", "getTodos", "getUsers",
		"search", "setApiKey",
		"updateHeadline", "updateIssue", "updateMeeting", "updateMilestone", "updateRock",
		"updateScorecardMeasurable", "updateScorecardMeasurableEntry", "updateTodo",
	}
	assert.Equal(t, want, h.Names())
	for _, tool := range h.Tools() {
		assert.NotEmpty(t, tool.Tool.Description, tool.Tool.Name)
	}
}

func TestLeadershipTeamNotFoundText(t *testing.T) {
	h, fake, _ := newTools(t)
	for _, name := range []string{"getTodos", "getRocks", "getIssues", "getHeadlines", "getMeetings", "createIssue"} {
		t.Run(name, func(t *testing.T) {
			text, isErr := call(t, h, name, map[string]any{"leadershipTeam": true, "name": "x"})
			assert.True(t, isErr)
			assert.Equal(t, "Error: Could not find leadership team", text)
		})
	}
	for _, c := range fake.Calls() {
		assert.Equal(t, "LeadershipTeam", c.OperationName)
	}
}

func TestValidationErrorText(t *testing.T) {
	h, fake, _ := newTools(t)

	text, isErr := call(t, h, "getTodos", map[string]any{"status": "bogus"})
	assert.True(t, isErr)
	assert.True(t, strings.HasPrefix(text, `Error: Invalid status "bogus". Must be one of: `), text)

	text, isErr = call(t, h, "createTodo", map[string]any{})
	assert.True(t, isErr)
	assert.Equal(t, "Error: Name is required", text)

	text, isErr = call(t, h, "getTodos", map[string]any{"first": "ten"})
	assert.True(t, isErr)
	assert.Contains(t, text, "Error: Invalid first")

	assert.Empty(t, fake.Calls())
}

func TestUpstreamErrorText(t *testing.T) {
	h, fake, _ := newTools(t)
	fake.Fail("Teams", "permission denied")

	text, isErr := call(t, h, "getTeams", nil)
	assert.True(t, isErr)
	assert.Equal(t, "Error: GraphQL error: permission denied", text)
}

func TestListResultIsJSON(t *testing.T) {
	h, fake, _ := newTools(t)
	fake.Nodes("Teams", "teams", map[string]any{"id": "t1", "name": "Sales"})

	text, isErr := call(t, h, "getTeams", map[string]any{"first": 5})
	require.False(t, isErr, text)
	var page struct {
		TotalCount int `json:"totalCount"`
		Results    []struct {
			ID string `json:"id"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &page))
	assert.Equal(t, 1, page.TotalCount)
	assert.Equal(t, "t1", page.Results[0].ID)
	assert.Equal(t, float64(5), fake.Calls()[0].Variables["first"])
	assert.Equal(t, "Bearer config-key", fake.Calls()[0].Auth)
}

func TestPartialFailureWarning(t *testing.T) {
	h, fake, _ := newTools(t)
	fake.Data("CreateMeetingInfo", map[string]any{
		"createMeetingInfo": map[string]any{"meetingInfo": map[string]any{"id": "mi1", "name": "L10", "teamId": "t1"}},
	})

	text, isErr := call(t, h, "createMeeting", map[string]any{"name": "L10", "teamId": "t1", "date": "2025-03-20"})
	assert.False(t, isErr)
	body, warning, ok := strings.Cut(text, "\n\nWarning: ")
	require.True(t, ok, text)
	assert.True(t, json.Valid([]byte(body)), body)
	assert.Contains(t, warning, "1 of 2 operations failed")
	assert.Contains(t, warning, "succeeded: create meeting info mi1")
}

func TestPartialRowsWarning(t *testing.T) {
	h, fake, _ := newTools(t)
	fake.Handle("Teams", func(testutil.Call) testutil.Response {
		return testutil.Response{
			Data:   map[string]any{"teams": map[string]any{"totalCount": 2, "nodes": []any{map[string]any{"id": "t1", "name": "Sales"}}}},
			Errors: []string{"cannot read team t2"},
		}
	})

	text, isErr := call(t, h, "getTeams", nil)
	assert.False(t, isErr)
	body, warning, ok := strings.Cut(text, "\n\nWarning: ")
	require.True(t, ok, text)
	assert.Contains(t, body, `"id": "t1"`)
	assert.Contains(t, warning, "cannot read team t2")
}

func TestReportFormats(t *testing.T) {
	h, fake, _ := newTools(t)
	fake.Nodes("LeadershipVision", "visions", map[string]any{"id": "v1"})
	fake.Nodes("VisionCoreValues", "visionCoreValues", map[string]any{"id": "cv1", "name": "Candor"})

	text, isErr := call(t, h, "getLeadershipVTO", nil)
	require.False(t, isErr, text)
	assert.True(t, strings.HasPrefix(text, "# Leadership Vision/Traction Organizer"), text)
	assert.Contains(t, text, "- **Candor**")

	text, isErr = call(t, h, "getLeadershipVTO", map[string]any{"format": "json"})
	require.False(t, isErr, text)
	var vto map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &vto))
	assert.Equal(t, "v1", vto["visionId"])

	calls := len(fake.Calls())
	text, isErr = call(t, h, "getLeadershipVTO", map[string]any{"format": "pdf"})
	assert.True(t, isErr)
	assert.Equal(t, `Error: Invalid format "pdf". Must be one of: markdown, json`, text)
	assert.Len(t, fake.Calls(), calls)
}

func TestScorecardDefaultsToJSON(t *testing.T) {
	h, _, _ := newTools(t)
	text, isErr := call(t, h, "getScorecardMeasurables", nil)
	require.False(t, isErr, text)
	assert.True(t, json.Valid([]byte(text)), text)
}

func TestDeleteTool(t *testing.T) {
	h, fake, _ := newTools(t)
	fake.Data("UpdateTodo", map[string]any{
		"updateTodo": map[string]any{"todo": map[string]any{"id": "td1", "stateId": "DELETED"}},
	})

	text, isErr := call(t, h, "deleteTodo", map[string]any{"todoId": "td1"})
	require.False(t, isErr, text)
	assert.JSONEq(t, `{"type":"todo","id":"td1","stateId":"DELETED"}`, text)
	assert.Equal(t, map[string]any{"stateId": "DELETED"}, fake.Calls()[0].Input()["patch"])

	text, isErr = call(t, h, "deleteTodo", nil)
	assert.True(t, isErr)
	assert.Equal(t, "Error: Id is required", text)
}

func TestFetchUnknownPrefix(t *testing.T) {
	h, fake, _ := newTools(t)
	text, isErr := call(t, h, "fetch", map[string]any{"id": "abc123"})
	assert.True(t, isErr)
	assert.True(t, strings.HasPrefix(text, `Error: Invalid id "abc123"`), text)
	assert.Empty(t, fake.Calls())
}

func TestApiKeyTools(t *testing.T) {
	h, fake, keys := newTools(t)

	text, isErr := call(t, h, "getApiKey", nil)
	require.False(t, isErr, text)
	assert.Contains(t, text, `"source": "config"`)
	assert.Contains(t, text, `"key": "******-key"`)

	text, isErr = call(t, h, "setApiKey", map[string]any{"apiKey": "suc_api_new12345"})
	require.False(t, isErr, text)
	assert.Contains(t, text, `"source": "session"`)
	assert.Contains(t, text, "2345")
	assert.NotContains(t, text, "suc_api_new")

	stored, err := apikey.NewFileStore(keys.FilePath()).Load()
	require.NoError(t, err)
	assert.Equal(t, "suc_api_new12345", stored)

	call(t, h, "getTeams", nil)
	assert.Equal(t, "Bearer suc_api_new12345", fake.Calls()[0].Auth)

	text, isErr = call(t, h, "setApiKey", map[string]any{"apiKey": "  "})
	assert.True(t, isErr)
	assert.Equal(t, "Error: ApiKey is required", text)
}

func TestUnknownTool(t *testing.T) {
	h, _, _ := newTools(t)
	_, err := h.Call(context.Background(), "dropTables", nil)
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Could not", capitalize("could not"))
	assert.Equal(t, "Édition", capitalize("édition"))
	assert.Equal(t, "", capitalize(""))
}
