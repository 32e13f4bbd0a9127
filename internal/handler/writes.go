package handler

import (
	"context"

	"success-mcp/internal/model"
	"success-mcp/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// remove builds a soft-delete handler reading the id from key.
func remove(key string, del func(context.Context, string) (model.Deleted, error)) server.ToolHandlerFunc {
	return run(func(ctx context.Context, a map[string]any) (any, error) {
		id, _ := a[key].(string)
		return del(ctx, id)
	})
}

func deleteTool(name, what, key string) mcp.Tool {
	return define(name, "Delete a "+what+". The row is marked DELETED, not removed.",
		mcp.WithDestructiveHintAnnotation(true),
		str(key, "Id of the "+what+".", mcp.Required()),
	)
}

func (h *ToolHandler) writeTools() []server.ServerTool {
	s := h.svc
	owner := str("userId", "Owner user id (default: the owner of the API key).")
	return []server.ServerTool{
		// To-dos
		{
			Tool: define("createTodo", "Create a to-do. Due in 7 days unless dueDate is given.", join([]mcp.ToolOption{
				str("name", "To-do text.", mcp.Required()),
				str("desc", "Details."),
				owner,
				str("dueDate", "Due date (YYYY-MM-DD)."),
				str("meetingId", "Meeting the to-do was raised in."),
			}, scope())...),
			Handler: run(func(ctx context.Context, a service.CreateTodoArgs) (any, error) { return s.CreateTodo(ctx, a) }),
		},
		{
			Tool: define("updateTodo", "Update a to-do. Only the given fields change.",
				str("todoId", "Id of the to-do.", mcp.Required()),
				str("name", "To-do text."),
				str("desc", "Details."),
				enumStr("status", "New status.", "TODO", "COMPLETE"),
				str("dueDate", "Due date (YYYY-MM-DD)."),
				str("userId", "New owner user id."),
				str("teamId", "New team id."),
			),
			Handler: run(func(ctx context.Context, a service.UpdateTodoArgs) (any, error) { return s.UpdateTodo(ctx, a) }),
		},
		{Tool: deleteTool("deleteTodo", "to-do", "todoId"), Handler: remove("todoId", s.DeleteTodo)},

		// Issues
		{
			Tool: define("createIssue", "Create an issue on a team's issues list.", join([]mcp.ToolOption{
				str("name", "Issue title.", mcp.Required()),
				str("desc", "Details."),
				enumStr("type", "Issue type (default short-term).", "short-term", "long-term"),
				num("priorityNo", "Priority number."),
				owner,
				str("meetingId", "Meeting the issue was raised in."),
			}, scope())...),
			Handler: run(func(ctx context.Context, a service.CreateIssueArgs) (any, error) { return s.CreateIssue(ctx, a) }),
		},
		{
			Tool: define("updateIssue", "Update an issue. Only the given fields change.",
				str("issueId", "Id of the issue.", mcp.Required()),
				str("name", "Issue title."),
				str("desc", "Details."),
				enumStr("status", "New status.", "TODO", "COMPLETE"),
				enumStr("type", "New type.", "short-term", "long-term"),
				num("priorityNo", "Priority number."),
				str("teamId", "New team id."),
				str("userId", "New owner user id."),
			),
			Handler: run(func(ctx context.Context, a service.UpdateIssueArgs) (any, error) { return s.UpdateIssue(ctx, a) }),
		},
		{Tool: deleteTool("deleteIssue", "issue", "issueId"), Handler: remove("issueId", s.DeleteIssue)},

		// Rocks
		{
			Tool: define("createRock", "Create a rock. Due at the end of the current quarter unless dueDate is given.",
				str("name", "Rock title.", mcp.Required()),
				str("desc", "Details."),
				owner,
				str("dueDate", "Due date (YYYY-MM-DD)."),
				enumStr("status", "Status (default ONTRACK).", "ONTRACK", "OFFTRACK", "COMPLETE", "INCOMPLETE"),
				enumStr("type", "Rock type.", "PERSONAL", "COMPANY"),
				idList("teamIds", "Teams to link the rock to."),
				flag("leadershipTeam", "Link the rock to the leadership team."),
			),
			Handler: run(func(ctx context.Context, a service.CreateRockArgs) (any, error) { return s.CreateRock(ctx, a) }),
		},
		{
			Tool: define("updateRock", "Update a rock. When teamIds is given the team links are made to match it exactly.",
				str("rockId", "Id of the rock.", mcp.Required()),
				str("name", "Rock title."),
				str("desc", "Details."),
				enumStr("status", "New status.", "ONTRACK", "OFFTRACK", "COMPLETE", "INCOMPLETE"),
				enumStr("type", "New type.", "PERSONAL", "COMPANY"),
				str("dueDate", "Due date (YYYY-MM-DD)."),
				str("userId", "New owner user id."),
				idList("teamIds", "Complete set of linked teams. An empty list unlinks every team."),
				flag("leadershipTeam", "Link the rock to the leadership team."),
			),
			Handler: run(func(ctx context.Context, a service.UpdateRockArgs) (any, error) { return s.UpdateRock(ctx, a) }),
		},
		{Tool: deleteTool("deleteRock", "rock", "rockId"), Handler: remove("rockId", s.DeleteRock)},

		// Headlines
		{
			Tool: define("createHeadline", "Create a headline.", join([]mcp.ToolOption{
				str("name", "Headline text.", mcp.Required()),
				str("desc", "Details."),
				enumStr("status", "Status (default Not shared).", "Shared", "Not shared"),
				owner,
				str("meetingId", "Meeting the headline belongs to."),
				flag("isCascadingMessage", "Cascade the headline to other teams."),
			}, scope())...),
			Handler: run(func(ctx context.Context, a service.CreateHeadlineArgs) (any, error) { return s.CreateHeadline(ctx, a) }),
		},
		{
			Tool: define("updateHeadline", "Update a headline. Only the given fields change.",
				str("headlineId", "Id of the headline.", mcp.Required()),
				str("name", "Headline text."),
				str("desc", "Details."),
				enumStr("status", "New status.", "Shared", "Not shared"),
				str("teamId", "New team id."),
				str("userId", "New author user id."),
				flag("isCascadingMessage", "Cascade the headline to other teams."),
			),
			Handler: run(func(ctx context.Context, a service.UpdateHeadlineArgs) (any, error) { return s.UpdateHeadline(ctx, a) }),
		},
		{Tool: deleteTool("deleteHeadline", "headline", "headlineId"), Handler: remove("headlineId", s.DeleteHeadline)},

		// Milestones
		{
			Tool: define("createMilestone", "Create a milestone on a rock.",
				str("name", "Milestone text.", mcp.Required()),
				str("rockId", "Rock the milestone belongs to.", mcp.Required()),
				str("desc", "Details."),
				owner,
				str("dueDate", "Due date (YYYY-MM-DD)."),
			),
			Handler: run(func(ctx context.Context, a service.CreateMilestoneArgs) (any, error) { return s.CreateMilestone(ctx, a) }),
		},
		{
			Tool: define("updateMilestone", "Update a milestone. Only the given fields change.",
				str("milestoneId", "Id of the milestone.", mcp.Required()),
				str("name", "Milestone text."),
				str("desc", "Details."),
				enumStr("status", "New status.", "TODO", "COMPLETE"),
				str("userId", "New owner user id."),
				str("dueDate", "Due date (YYYY-MM-DD)."),
			),
			Handler: run(func(ctx context.Context, a service.UpdateMilestoneArgs) (any, error) { return s.UpdateMilestone(ctx, a) }),
		},
		{Tool: deleteTool("deleteMilestone", "milestone", "milestoneId"), Handler: remove("milestoneId", s.DeleteMilestone)},

		// Meetings
		{
			Tool: define("createMeeting", "Schedule a meeting. Creates the recurring meeting definition first unless meetingInfoId is given.", join([]mcp.ToolOption{
				str("meetingInfoId", "Existing recurring meeting to add an occurrence to."),
				str("name", "Name of a new recurring meeting."),
				str("meetingAgendaId", "Agenda for a new recurring meeting."),
				enumStr("repeatUnit", "Repeat unit for a new recurring meeting.", "WEEKLY", "MONTHLY", "QUARTERLY", "ANNUALLY", "NONE"),
				num("repeatInterval", "Repeat every n units."),
				str("date", "Meeting date (YYYY-MM-DD).", mcp.Required()),
				str("startTime", "Start time (HH:MM)."),
				str("endTime", "End time (HH:MM)."),
			}, scope())...),
			Handler: run(func(ctx context.Context, a service.CreateMeetingArgs) (any, error) { return s.CreateMeeting(ctx, a) }),
		},
		{
			Tool: define("updateMeeting", "Update a meeting occurrence.",
				str("meetingId", "Id of the meeting.", mcp.Required()),
				str("date", "Meeting date (YYYY-MM-DD)."),
				str("startTime", "Start time (HH:MM)."),
				str("endTime", "End time (HH:MM)."),
				enumStr("status", "New status.", "NOT_STARTED", "IN_PROGRESS", "ENDED"),
				num("averageRating", "Average meeting rating.", mcp.Min(0), mcp.Max(10)),
			),
			Handler: run(func(ctx context.Context, a service.UpdateMeetingArgs) (any, error) { return s.UpdateMeeting(ctx, a) }),
		},

		// Scorecard
		{
			Tool: define("createScorecardMeasurable", "Create a scorecard measurable.", measurableOpts(true)...),
			Handler: run(func(ctx context.Context, a service.MeasurableArgs) (any, error) {
				return s.CreateScorecardMeasurable(ctx, a)
			}),
		},
		{
			Tool: define("updateScorecardMeasurable", "Update a scorecard measurable. When teamIds is given the team links are made to match it exactly.",
				measurableOpts(false)...),
			Handler: run(func(ctx context.Context, a service.MeasurableArgs) (any, error) {
				return s.UpdateScorecardMeasurable(ctx, a)
			}),
		},
		{
			Tool: define("createScorecardMeasurableEntry", "Record a value for a measurable. The period defaults to the current one for the measurable's type.",
				str("dataFieldId", "Id of the measurable.", mcp.Required()),
				num("value", "Recorded value.", mcp.Required()),
				str("startDate", "Period start date (YYYY-MM-DD)."),
				str("note", "Note."),
				str("customGoalTarget", "Goal for this period only."),
			),
			Handler: run(func(ctx context.Context, a service.EntryArgs) (any, error) {
				return s.CreateScorecardMeasurableEntry(ctx, a)
			}),
		},
		{
			Tool: define("updateScorecardMeasurableEntry", "Update a recorded measurable value.",
				str("dataValueId", "Id of the entry.", mcp.Required()),
				num("value", "Recorded value."),
				str("startDate", "Period start date (YYYY-MM-DD)."),
				str("note", "Note."),
				str("customGoalTarget", "Goal for this period only."),
			),
			Handler: run(func(ctx context.Context, a service.EntryArgs) (any, error) {
				return s.UpdateScorecardMeasurableEntry(ctx, a)
			}),
		},
	}
}

func measurableOpts(create bool) []mcp.ToolOption {
	var opts []mcp.ToolOption
	if create {
		opts = append(opts, str("name", "Measurable name.", mcp.Required()))
	} else {
		opts = append(opts,
			str("dataFieldId", "Id of the measurable.", mcp.Required()),
			str("name", "Measurable name."),
		)
	}
	return append(opts,
		str("desc", "Details."),
		enumStr("type", "Reporting period.", "WEEKLY", "MONTHLY", "QUARTERLY", "ANNUALLY"),
		enumStr("unitType", "Unit of the values.", "NUMBER", "CURRENCY", "PERCENTAGE", "TIME"),
		enumStr("unitComparison", "How values compare to the goal.", "GTE", "LTE", "EQ", "RANGE"),
		str("goalTarget", "Goal value."),
		str("goalTargetEnd", "Upper goal value, required for RANGE."),
		str("goalCurrency", "Currency code for CURRENCY measurables."),
		flag("showAverage", "Show the average column."),
		flag("showTotal", "Show the total column."),
		str("userId", "Owner user id."),
		idList("teamIds", "Teams to link the measurable to."),
		flag("leadershipTeam", "Link the measurable to the leadership team."),
	)
}
