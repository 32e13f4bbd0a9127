package handler

import (
	"context"

	"success-mcp/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type meetingDetailsArgs struct {
	service.MeetingDetailsQuery
	formatArg
}

type scorecardArgs struct {
	service.ScorecardQuery
	formatArg
}

func (h *ToolHandler) reportTools() []server.ServerTool {
	s := h.svc
	ro := mcp.WithReadOnlyHintAnnotation(true)
	return []server.ServerTool{
		{
			Tool: define("getLeadershipVTO", "Leadership Vision/Traction Organizer: core values, core focus, 3-year picture and marketing strategy.",
				ro, formatOpt("markdown"),
			),
			Handler: run(func(ctx context.Context, a formatArg) (any, error) {
				md, err := a.markdown("markdown")
				if err != nil {
					return nil, err
				}
				vto, err := s.GetLeadershipVTO(ctx)
				if err != nil {
					return nil, err
				}
				if md {
					return markdown(service.RenderVTO(vto)), nil
				}
				return vto, nil
			}),
		},
		{
			Tool: define("getAccountabilityChart", "The primary accountability chart as a tree of seats with holders and roles.",
				ro, formatOpt("markdown"),
			),
			Handler: run(func(ctx context.Context, a formatArg) (any, error) {
				md, err := a.markdown("markdown")
				if err != nil {
					return nil, err
				}
				chart, err := s.GetAccountabilityChart(ctx)
				if err != nil {
					return nil, err
				}
				if md {
					return markdown(service.RenderChart(chart)), nil
				}
				return chart, nil
			}),
		},
		{
			Tool: define("getMeetingDetails", "Meetings with their headlines, to-dos and issues. Give meetingId for one meeting, or a team and date range.", join([]mcp.ToolOption{
				ro,
				str("meetingId", "A single meeting."),
				str("dateAfter", "On or after (YYYY-MM-DD)."),
				str("dateBefore", "On or before (YYYY-MM-DD)."),
				num("first", "Maximum meetings (default 10).", mcp.Min(1)),
				formatOpt("markdown"),
			}, scope())...),
			Handler: run(func(ctx context.Context, a meetingDetailsArgs) (any, error) {
				md, err := a.markdown("markdown")
				if err != nil {
					return nil, err
				}
				details, err := s.GetMeetingDetails(ctx, a.MeetingDetailsQuery)
				if err != nil {
					return nil, err
				}
				if md {
					return markdown(service.RenderMeetingDetails(details, s.Now())), nil
				}
				return details, nil
			}),
		},
		{
			Tool: define("getScorecardMeasurables", "Scorecard measurables with their recorded values. Without a date range the last 13 periods are returned.", join([]mcp.ToolOption{
				ro, state(),
				enumStr("type", "Reporting period (default WEEKLY).", "WEEKLY", "MONTHLY", "QUARTERLY", "ANNUALLY"),
				num("periods", "Number of periods back from today (default 13).", mcp.Min(1)),
				str("startDate", "Values from (YYYY-MM-DD)."),
				str("endDate", "Values until (YYYY-MM-DD)."),
				str("userId", "Owner user id."),
				str("dataFieldId", "A single measurable."),
				formatOpt("json"),
			}, scope(), paging())...),
			Handler: run(func(ctx context.Context, a scorecardArgs) (any, error) {
				md, err := a.markdown("json")
				if err != nil {
					return nil, err
				}
				sc, err := s.GetScorecardMeasurables(ctx, a.ScorecardQuery)
				if err != nil {
					return nil, err
				}
				if md {
					return markdown(service.RenderScorecard(sc)), nil
				}
				return sc, nil
			}),
		},
	}
}
