package service

import (
	"context"
	"strings"
	"time"

	"success-mcp/internal/model"
)

type issueNode struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Desc            string `json:"desc"`
	IssueStatusID   string `json:"issueStatusId"`
	Type            string `json:"type"`
	PriorityNo      int    `json:"priorityNo"`
	PriorityOrder   int    `json:"priorityOrder"`
	TeamID          string `json:"teamId"`
	UserID          string `json:"userId"`
	MeetingID       string `json:"meetingId"`
	CreatedAt       string `json:"createdAt"`
	StatusUpdatedAt string `json:"statusUpdatedAt"`
	StateID         string `json:"stateId"`
}

func (n issueNode) shape() model.Issue {
	return model.Issue{
		ID: n.ID, Name: n.Name, Desc: n.Desc, Status: n.IssueStatusID, Type: issueTypeLabel(n.Type),
		PriorityNo: n.PriorityNo, PriorityOrder: n.PriorityOrder, TeamID: n.TeamID, UserID: n.UserID,
		MeetingID: n.MeetingID, CreatedAt: n.CreatedAt, StatusUpdatedAt: n.StatusUpdatedAt, StateID: n.StateID,
	}
}

var (
	issueStatuses = []string{"TODO", "COMPLETE"}
	issueTypes    = []string{"SHORT-TERM", "LONG-TERM"}
)

// issueType validates a type argument and returns the stored lowercase form.
func issueType(v, def string) (string, error) {
	t, err := oneOf("type", v, def, append(issueTypes, "ALL")...)
	if err != nil || t == "ALL" {
		return t, err
	}
	return strings.ToLower(t), nil
}

// issueTypeLabel renders short-term as Short-term.
func issueTypeLabel(stored string) string {
	if stored == "" {
		return ""
	}
	return strings.ToUpper(stored[:1]) + strings.ToLower(stored[1:])
}

type IssueQuery struct {
	StateID        string `json:"stateId"`
	Status         string `json:"status"`
	Type           string `json:"type"`
	TeamID         string `json:"teamId"`
	LeadershipTeam bool   `json:"leadershipTeam"`
	UserID         string `json:"userId"`
	MeetingID      string `json:"meetingId"`
	Keyword        string `json:"keyword"`
	CreatedAfter   string `json:"createdAfter"`
	CreatedBefore  string `json:"createdBefore"`
	Page
}

func (s *Service) GetIssues(ctx context.Context, q IssueQuery) (model.Page[model.Issue], error) {
	var empty model.Page[model.Issue]
	state, err := stateID(q.StateID)
	if err != nil {
		return empty, err
	}
	status, err := oneOf("status", q.Status, "ALL", append(issueStatuses, "ALL")...)
	if err != nil {
		return empty, err
	}
	typ, err := issueType(q.Type, "ALL")
	if err != nil {
		return empty, err
	}
	f := Filter{}.Eq("stateId", state)
	if err := dateRange(f, "createdAt", "createdAfter", q.CreatedAfter, "createdBefore", q.CreatedBefore); err != nil {
		return empty, err
	}
	teamID, err := s.teamScope(ctx, q.TeamID, q.LeadershipTeam)
	if err != nil {
		return empty, err
	}
	if status != "ALL" {
		f.Eq("issueStatusId", status)
	}
	if typ != "ALL" {
		f.Eq("type", typ)
	}
	f.EqIf("teamId", teamID).EqIf("userId", q.UserID).EqIf("meetingId", q.MeetingID).Keyword(q.Keyword)

	c, err := listPage[issueNode](ctx, s, issueEntity, "", f, q.Page, "PRIORITY_ORDER_ASC")
	warn, err := splitPartial(err)
	if err != nil {
		return empty, err
	}
	return shapeIssues(c), warn
}

func shapeIssues(c connection[issueNode]) model.Page[model.Issue] {
	out := model.Page[model.Issue]{TotalCount: c.TotalCount, Results: make([]model.Issue, 0, len(c.Nodes))}
	for _, n := range c.Nodes {
		out.Results = append(out.Results, n.shape())
	}
	return out
}

type CreateIssueArgs struct {
	Name           string `json:"name"`
	Desc           string `json:"desc"`
	Type           string `json:"type"`
	PriorityNo     int    `json:"priorityNo"`
	TeamID         string `json:"teamId"`
	LeadershipTeam bool   `json:"leadershipTeam"`
	UserID         string `json:"userId"`
	MeetingID      string `json:"meetingId"`
}

func (s *Service) CreateIssue(ctx context.Context, a CreateIssueArgs) (model.Issue, error) {
	if err := required("name", a.Name); err != nil {
		return model.Issue{}, err
	}
	typ, err := oneOf("type", a.Type, "SHORT-TERM", issueTypes...)
	if err != nil {
		return model.Issue{}, err
	}
	if a.TeamID == "" && !a.LeadershipTeam {
		return model.Issue{}, invalid("teamId or leadershipTeam is required")
	}
	teamID, err := s.teamScope(ctx, a.TeamID, a.LeadershipTeam)
	if err != nil {
		return model.Issue{}, err
	}
	userID, err := s.owner(ctx, a.UserID)
	if err != nil {
		return model.Issue{}, err
	}
	fields := patch{
		"name": a.Name, "issueStatusId": "TODO", "type": strings.ToLower(typ),
		"priorityNo": a.PriorityNo, "teamId": teamID, "userId": userID, "stateId": "ACTIVE",
	}.str("desc", a.Desc).str("meetingId", a.MeetingID)
	n, err := create[issueNode](ctx, s, issueEntity, s.stamp(ctx, fields))
	if err != nil {
		return model.Issue{}, err
	}
	return n.shape(), nil
}

type UpdateIssueArgs struct {
	ID         string `json:"issueId"`
	Name       string `json:"name"`
	Desc       string `json:"desc"`
	Status     string `json:"status"`
	Type       string `json:"type"`
	PriorityNo *int   `json:"priorityNo"`
	TeamID     string `json:"teamId"`
	UserID     string `json:"userId"`
}

func (s *Service) UpdateIssue(ctx context.Context, a UpdateIssueArgs) (model.Issue, error) {
	if err := required("issueId", a.ID); err != nil {
		return model.Issue{}, err
	}
	status, err := oneOf("status", a.Status, "", issueStatuses...)
	if err != nil {
		return model.Issue{}, err
	}
	typ, err := oneOf("type", a.Type, "", issueTypes...)
	if err != nil {
		return model.Issue{}, err
	}
	p := patch{}.str("name", a.Name).str("desc", a.Desc).str("type", strings.ToLower(typ)).
		str("teamId", a.TeamID).str("userId", a.UserID).ptr("priorityNo", a.PriorityNo)
	if status != "" {
		p["issueStatusId"] = status
		p["statusUpdatedAt"] = s.now().UTC().Format(time.RFC3339)
	}
	if err := p.empty(); err != nil {
		return model.Issue{}, err
	}
	n, err := update[issueNode](ctx, s, issueEntity, a.ID, p)
	if err != nil {
		return model.Issue{}, err
	}
	return n.shape(), nil
}

func (s *Service) DeleteIssue(ctx context.Context, id string) (model.Deleted, error) {
	return s.softDelete(ctx, issueEntity, id)
}
