package handler

import (
	"context"

	"success-mcp/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (h *ToolHandler) readTools() []server.ServerTool {
	s := h.svc
	ro := mcp.WithReadOnlyHintAnnotation(true)
	return []server.ServerTool{
		{
			Tool: define("getTeams", "List teams.", join([]mcp.ToolOption{
				ro, state(), keyword(),
				flag("isLeadership", "Only the leadership team (true) or only other teams (false)."),
			}, paging())...),
			Handler: run(func(ctx context.Context, q service.TeamQuery) (any, error) { return s.GetTeams(ctx, q) }),
		},
		{
			Tool: define("getUsers", "List users, optionally restricted to the members of one team.", join([]mcp.ToolOption{
				ro, state(),
				str("keyword", "Case-insensitive match on first name, last name or email."),
				str("email", "Exact email address."),
			}, scope(), paging())...),
			Handler: run(func(ctx context.Context, q service.UserQuery) (any, error) { return s.GetUsers(ctx, q) }),
		},
		{
			Tool: define("getTodos", "List to-dos. OVERDUE means still open with a due date in the past.", join([]mcp.ToolOption{
				ro, state(), keyword(),
				enumStr("status", "To-do status (default ALL).", "TODO", "COMPLETE", "OVERDUE", "ALL"),
				str("userId", "Owner user id."),
				str("meetingId", "Only to-dos raised in this meeting."),
				flag("fromMeetings", "Only to-dos raised in any meeting."),
				str("createdAfter", "Created on or after (YYYY-MM-DD)."),
				str("createdBefore", "Created on or before (YYYY-MM-DD)."),
				str("completedAfter", "Completed on or after (YYYY-MM-DD)."),
				str("completedBefore", "Completed on or before (YYYY-MM-DD)."),
			}, scope(), paging())...),
			Handler: run(func(ctx context.Context, q service.TodoQuery) (any, error) { return s.GetTodos(ctx, q) }),
		},
		{
			Tool: define("getRocks", "List rocks (quarterly priorities) with their linked team ids.", join([]mcp.ToolOption{
				ro, state(), keyword(),
				enumStr("status", "Rock status (default ALL).", "ONTRACK", "OFFTRACK", "COMPLETE", "INCOMPLETE", "ALL"),
				enumStr("type", "Rock type (default ALL).", "PERSONAL", "COMPANY", "ALL"),
				str("userId", "Owner user id."),
				str("dueAfter", "Due on or after (YYYY-MM-DD)."),
				str("dueBefore", "Due on or before (YYYY-MM-DD)."),
			}, scope(), paging())...),
			Handler: run(func(ctx context.Context, q service.RockQuery) (any, error) { return s.GetRocks(ctx, q) }),
		},
		{
			Tool: define("getMeetings", "List meetings with their meeting name and team name.", join([]mcp.ToolOption{
				ro, state(),
				enumStr("status", "Meeting status (default ALL).", "NOT_STARTED", "IN_PROGRESS", "ENDED", "ALL"),
				str("meetingInfoId", "Only occurrences of this recurring meeting."),
				str("dateAfter", "On or after (YYYY-MM-DD)."),
				str("dateBefore", "On or before (YYYY-MM-DD)."),
			}, scope(), paging())...),
			Handler: run(func(ctx context.Context, q service.MeetingQuery) (any, error) { return s.GetMeetings(ctx, q) }),
		},
		{
			Tool: define("getMeetingInfos", "List recurring meeting definitions.", join([]mcp.ToolOption{
				ro, state(), str("keyword", "Case-insensitive match on name."),
			}, scope(), paging())...),
			Handler: run(func(ctx context.Context, q service.MeetingInfoQuery) (any, error) { return s.GetMeetingInfos(ctx, q) }),
		},
		{
			Tool: define("getMeetingAgendas", "List meeting agendas.", join([]mcp.ToolOption{
				ro, state(), str("keyword", "Case-insensitive match on name."),
				str("type", "Agenda type id."),
			}, scope(), paging())...),
			Handler: run(func(ctx context.Context, q service.MeetingAgendaQuery) (any, error) { return s.GetMeetingAgendas(ctx, q) }),
		},
		{
			Tool: define("getIssues", "List issues ordered by priority.", join([]mcp.ToolOption{
				ro, state(), keyword(),
				enumStr("status", "Issue status (default ALL).", "TODO", "COMPLETE", "ALL"),
				enumStr("type", "Issue type (default ALL).", "short-term", "long-term", "ALL"),
				str("userId", "Owner user id."),
				str("meetingId", "Only issues raised in this meeting."),
				str("createdAfter", "Created on or after (YYYY-MM-DD)."),
				str("createdBefore", "Created on or before (YYYY-MM-DD)."),
			}, scope(), paging())...),
			Handler: run(func(ctx context.Context, q service.IssueQuery) (any, error) { return s.GetIssues(ctx, q) }),
		},
		{
			Tool: define("getHeadlines", "List headlines, newest first.", join([]mcp.ToolOption{
				ro, state(), keyword(),
				enumStr("status", "Headline status (default ALL).", "Shared", "Not shared", "ALL"),
				str("userId", "Author user id."),
				str("meetingId", "Only headlines shared in this meeting."),
				str("createdAfter", "Created on or after (YYYY-MM-DD)."),
				str("createdBefore", "Created on or before (YYYY-MM-DD)."),
			}, scope(), paging())...),
			Handler: run(func(ctx context.Context, q service.HeadlineQuery) (any, error) { return s.GetHeadlines(ctx, q) }),
		},
		{
			Tool: define("getMilestones", "List rock milestones.", join([]mcp.ToolOption{
				ro, state(),
				enumStr("status", "Milestone status (default ALL).", "TODO", "COMPLETE", "ALL"),
				str("rockId", "Only milestones of this rock."),
				str("userId", "Owner user id."),
				str("dueAfter", "Due on or after (YYYY-MM-DD)."),
				str("dueBefore", "Due on or before (YYYY-MM-DD)."),
			}, scope(), paging())...),
			Handler: run(func(ctx context.Context, q service.MilestoneQuery) (any, error) { return s.GetMilestones(ctx, q) }),
		},
		{
			Tool: define("getPeopleAnalyzerSessions", "List people analyzer sessions.", join([]mcp.ToolOption{
				ro, state(),
				flag("includeScores", "Include the per-user scores of each session."),
			}, scope(), paging())...),
			Handler: run(func(ctx context.Context, q service.PeopleAnalyzerQuery) (any, error) {
				return s.GetPeopleAnalyzerSessions(ctx, q)
			}),
		},
		{
			Tool: define("getOrgCheckups", "List organization checkups.", join([]mcp.ToolOption{
				ro, state(),
				enumStr("status", "Checkup status (default ALL).", "IN_PROGRESS", "COMPLETE", "ALL"),
				flag("includeAnswers", "Include the answers of each checkup."),
			}, paging())...),
			Handler: run(func(ctx context.Context, q service.OrgCheckupQuery) (any, error) { return s.GetOrgCheckups(ctx, q) }),
		},
		{
			Tool: define("search", "Search names across resource types. Returns ids of the form <type>:<id> for fetch.",
				ro,
				str("query", "Text to match.", mcp.Required()),
				mcp.WithArray("types", mcp.Description("Resource types to search (default all searchable types)."),
					mcp.WithStringItems(mcp.Enum("team", "user", "todo", "rock", "issue", "headline", "milestone", "measurable", "meetingInfo"))),
				num("first", "Maximum results per type (default 10).", mcp.Min(1)),
			),
			Handler: run(func(ctx context.Context, a service.SearchArgs) (any, error) {
				res, err := s.Search(ctx, a)
				if err != nil {
					if _, partial := service.IsPartial(err); !partial {
						return nil, err
					}
				}
				return map[string]any{"results": res}, err
			}),
		},
		{
			Tool: define("fetch", "Fetch one resource by an id returned from search, e.g. rock:abc123.",
				ro, str("id", "Typed resource id <type>:<id>.", mcp.Required()),
			),
			Handler: run(func(ctx context.Context, a struct {
				ID string `json:"id"`
			}) (any, error) {
				return s.Fetch(ctx, a.ID)
			}),
		},
	}
}
