package service

import (
	"context"
	"testing"

	"success-mcp/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMeetingsMergesInfoAndTeam(t *testing.T) {
	s, fake := newService(t)
	fake.Nodes("TeamMeetingInfos", "meetingInfos", map[string]any{"id": "mi1", "teamId": "t1"})
	fake.Nodes("Meetings", "meetings",
		map[string]any{"id": "m1", "date": "2025-03-10", "meetingInfoId": "mi1", "meetingStatusId": "ENDED"},
	)
	fake.Nodes("MeetingInfosByID", "meetingInfos", map[string]any{"id": "mi1", "name": "Weekly L10", "teamId": "t1"})
	fake.Nodes("TeamNames", "teams", map[string]any{"id": "t1", "name": "Leadership"})

	page, err := s.GetMeetings(context.Background(), MeetingQuery{TeamID: "t1"})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	m := page.Results[0]
	assert.Equal(t, "Weekly L10", m.Name)
	assert.Equal(t, "Leadership", m.TeamName)
	assert.Equal(t, "ENDED", m.Status)
	assert.Equal(t, map[string]any{"in": []any{"mi1"}}, clause(t, fake.CallsTo("Meetings")[0], "meetingInfoId"))
}

func TestGetMeetingsTeamWithoutInfos(t *testing.T) {
	s, fake := newService(t)
	page, err := s.GetMeetings(context.Background(), MeetingQuery{TeamID: "t1"})
	require.NoError(t, err)
	assert.Empty(t, page.Results)
	assert.Equal(t, []string{"TeamMeetingInfos"}, fake.Ops())
}

func TestCreateMeetingTwoSteps(t *testing.T) {
	s, fake := newService(t)
	echoCreate(fake, meetingInfoEntity, "mi1")
	echoCreate(fake, meetingEntity, "m1")

	out, err := s.CreateMeeting(context.Background(), CreateMeetingArgs{Name: "L10", TeamID: "t1", Date: "2025-03-20", RepeatUnit: "weekly"})
	require.NoError(t, err)
	require.NotNil(t, out.Meeting)
	assert.Equal(t, "mi1", out.MeetingInfo.ID)
	assert.Equal(t, "L10", out.Meeting.Name)
	assert.Equal(t, []string{"CreateMeetingInfo", "CreateMeeting"}, fake.Ops())

	in := fake.CallsTo("CreateMeeting")[0].Input()["meeting"].(map[string]any)
	assert.Equal(t, "mi1", in["meetingInfoId"])
	assert.Equal(t, "2025-03-20", in["date"])
}

func TestCreateMeetingSecondStepFails(t *testing.T) {
	s, fake := newService(t)
	echoCreate(fake, meetingInfoEntity, "mi1")
	fake.Fail("CreateMeeting", "date is in the past")

	out, err := s.CreateMeeting(context.Background(), CreateMeetingArgs{Name: "L10", TeamID: "t1", Date: "2025-03-20"})
	pe, ok := IsPartial(err)
	require.True(t, ok, "want partial error, got %v", err)
	assert.Equal(t, []string{"create meeting info mi1"}, pe.Succeeded)
	assert.Contains(t, pe.Failed[0], "date is in the past")
	assert.Nil(t, out.Meeting)
	assert.Equal(t, "mi1", out.MeetingInfo.ID)
}

func TestCreateMeetingWithExistingInfo(t *testing.T) {
	s, fake := newService(t)
	fake.Fail("CreateMeeting", "boom")

	_, err := s.CreateMeeting(context.Background(), CreateMeetingArgs{MeetingInfoID: "mi1", Date: "2025-03-20"})
	require.Error(t, err)
	_, partial := IsPartial(err)
	assert.False(t, partial)
	assert.Equal(t, []string{"CreateMeeting"}, fake.Ops())
}

func TestGetMeetingDetailsGroups(t *testing.T) {
	s, fake := newService(t)
	fake.Nodes("MeetingDetails", "meetings",
		map[string]any{"id": "m1", "date": "2025-03-10", "meetingInfoId": "mi1"},
		map[string]any{"id": "m2", "date": "2025-03-03", "meetingInfoId": "mi1"},
	)
	fake.Nodes("MeetingHeadlines", "headlines",
		map[string]any{"id": "h1", "name": "Record month", "status": "DISCUSSED", "meetingId": "m1"},
	)
	fake.Nodes("MeetingTodos", "todos",
		map[string]any{"id": "t1", "name": "Send notes", "todoStatusId": "TODO", "meetingId": "m2"},
		map[string]any{"id": "t2", "name": "Book room", "todoStatusId": "COMPLETE", "meetingId": "m2"},
	)
	fake.Handle("MeetingIssues", func(c testutil.Call) testutil.Response {
		return testutil.Response{Data: map[string]any{"issues": map[string]any{"totalCount": 1, "nodes": []any{
			map[string]any{"id": "i1", "name": "Hiring", "type": "long-term", "meetingId": "m1"},
		}}}}
	})

	details, err := s.GetMeetingDetails(context.Background(), MeetingDetailsQuery{})
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "Shared", details[0].Headlines[0].Status)
	assert.Equal(t, "Long-term", details[0].Issues[0].Type)
	assert.Empty(t, details[0].Todos)
	assert.Len(t, details[1].Todos, 2)
	assert.Empty(t, details[1].Headlines)

	for _, op := range []string{"MeetingHeadlines", "MeetingTodos", "MeetingIssues"} {
		calls := fake.CallsTo(op)
		require.Len(t, calls, 1, op)
		assert.Equal(t, map[string]any{"in": []any{"m1", "m2"}}, clause(t, calls[0], "meetingId"))
	}
}

func TestGetMeetingDetailsByID(t *testing.T) {
	s, fake := newService(t)
	_, err := s.GetMeetingDetails(context.Background(), MeetingDetailsQuery{MeetingID: "m9", LeadershipTeam: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"MeetingDetails"}, fake.Ops())
	assert.Equal(t, map[string]any{"equalTo": "m9"}, clause(t, fake.CallsTo("MeetingDetails")[0], "id"))
}
