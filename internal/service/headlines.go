package service

import (
	"context"
	"strings"

	"success-mcp/internal/model"
)

// Headline status as shown to callers, keyed to the stored value. The two
// directions are exact inverses.
var (
	headlineStored = map[string]string{
		"Shared":     "DISCUSSED",
		"Not shared": "DISCUSS",
	}
	headlineShown = map[string]string{
		"DISCUSSED": "Shared",
		"DISCUSS":   "Not shared",
	}
)

// headlineStatus maps a caller status (any case) to the stored value.
func headlineStatus(v string) (string, error) {
	for shown, stored := range headlineStored {
		if strings.EqualFold(strings.TrimSpace(v), shown) {
			return stored, nil
		}
	}
	return "", invalid(`Invalid status %q. Must be one of: Shared, Not shared`, v)
}

func headlineLabel(stored string) string {
	if shown, ok := headlineShown[stored]; ok {
		return shown
	}
	return stored
}

type headlineNode struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Desc               string `json:"desc"`
	Status             string `json:"status"`
	TeamID             string `json:"teamId"`
	UserID             string `json:"userId"`
	MeetingID          string `json:"meetingId"`
	IsCascadingMessage bool   `json:"isCascadingMessage"`
	CreatedAt          string `json:"createdAt"`
	StateID            string `json:"stateId"`
}

func (n headlineNode) shape() model.Headline {
	return model.Headline{
		ID: n.ID, Name: n.Name, Desc: n.Desc, Status: headlineLabel(n.Status), TeamID: n.TeamID,
		UserID: n.UserID, MeetingID: n.MeetingID, IsCascading: n.IsCascadingMessage,
		CreatedAt: n.CreatedAt, StateID: n.StateID,
	}
}

type HeadlineQuery struct {
	StateID        string `json:"stateId"`
	Status         string `json:"status"`
	TeamID         string `json:"teamId"`
	LeadershipTeam bool   `json:"leadershipTeam"`
	UserID         string `json:"userId"`
	MeetingID      string `json:"meetingId"`
	Keyword        string `json:"keyword"`
	CreatedAfter   string `json:"createdAfter"`
	CreatedBefore  string `json:"createdBefore"`
	Page
}

func (s *Service) GetHeadlines(ctx context.Context, q HeadlineQuery) (model.Page[model.Headline], error) {
	var empty model.Page[model.Headline]
	state, err := stateID(q.StateID)
	if err != nil {
		return empty, err
	}
	f := Filter{}.Eq("stateId", state)
	if q.Status != "" && !strings.EqualFold(q.Status, "ALL") {
		stored, err := headlineStatus(q.Status)
		if err != nil {
			return empty, err
		}
		f.Eq("status", stored)
	}
	if err := dateRange(f, "createdAt", "createdAfter", q.CreatedAfter, "createdBefore", q.CreatedBefore); err != nil {
		return empty, err
	}
	teamID, err := s.teamScope(ctx, q.TeamID, q.LeadershipTeam)
	if err != nil {
		return empty, err
	}
	f.EqIf("teamId", teamID).EqIf("userId", q.UserID).EqIf("meetingId", q.MeetingID).Keyword(q.Keyword)

	c, err := listPage[headlineNode](ctx, s, headlineEntity, "", f, q.Page, "CREATED_AT_DESC")
	warn, err := splitPartial(err)
	if err != nil {
		return empty, err
	}
	return shapeHeadlines(c), warn
}

func shapeHeadlines(c connection[headlineNode]) model.Page[model.Headline] {
	out := model.Page[model.Headline]{TotalCount: c.TotalCount, Results: make([]model.Headline, 0, len(c.Nodes))}
	for _, n := range c.Nodes {
		out.Results = append(out.Results, n.shape())
	}
	return out
}

type CreateHeadlineArgs struct {
	Name           string `json:"name"`
	Desc           string `json:"desc"`
	Status         string `json:"status"`
	TeamID         string `json:"teamId"`
	LeadershipTeam bool   `json:"leadershipTeam"`
	UserID         string `json:"userId"`
	MeetingID      string `json:"meetingId"`
	IsCascading    bool   `json:"isCascadingMessage"`
}

func (s *Service) CreateHeadline(ctx context.Context, a CreateHeadlineArgs) (model.Headline, error) {
	if err := required("name", a.Name); err != nil {
		return model.Headline{}, err
	}
	status := "DISCUSS"
	if a.Status != "" {
		var err error
		if status, err = headlineStatus(a.Status); err != nil {
			return model.Headline{}, err
		}
	}
	teamID, err := s.teamScope(ctx, a.TeamID, a.LeadershipTeam)
	if err != nil {
		return model.Headline{}, err
	}
	userID, err := s.owner(ctx, a.UserID)
	if err != nil {
		return model.Headline{}, err
	}
	fields := patch{
		"name": a.Name, "status": status, "userId": userID,
		"isCascadingMessage": a.IsCascading, "stateId": "ACTIVE",
	}.str("desc", a.Desc).str("teamId", teamID).str("meetingId", a.MeetingID)
	n, err := create[headlineNode](ctx, s, headlineEntity, s.stamp(ctx, fields))
	if err != nil {
		return model.Headline{}, err
	}
	return n.shape(), nil
}

type UpdateHeadlineArgs struct {
	ID          string `json:"headlineId"`
	Name        string `json:"name"`
	Desc        string `json:"desc"`
	Status      string `json:"status"`
	TeamID      string `json:"teamId"`
	UserID      string `json:"userId"`
	IsCascading *bool  `json:"isCascadingMessage"`
}

func (s *Service) UpdateHeadline(ctx context.Context, a UpdateHeadlineArgs) (model.Headline, error) {
	if err := required("headlineId", a.ID); err != nil {
		return model.Headline{}, err
	}
	p := patch{}.str("name", a.Name).str("desc", a.Desc).str("teamId", a.TeamID).
		str("userId", a.UserID).ptr("isCascadingMessage", a.IsCascading)
	if a.Status != "" {
		stored, err := headlineStatus(a.Status)
		if err != nil {
			return model.Headline{}, err
		}
		p["status"] = stored
	}
	if err := p.empty(); err != nil {
		return model.Headline{}, err
	}
	n, err := update[headlineNode](ctx, s, headlineEntity, a.ID, p)
	if err != nil {
		return model.Headline{}, err
	}
	return n.shape(), nil
}

func (s *Service) DeleteHeadline(ctx context.Context, id string) (model.Deleted, error) {
	return s.softDelete(ctx, headlineEntity, id)
}
