package service

import (
	"context"

	"success-mcp/internal/model"
)

type milestoneNode struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Desc              string `json:"desc"`
	RockID            string `json:"rockId"`
	UserID            string `json:"userId"`
	DueDate           string `json:"dueDate"`
	MilestoneStatusID string `json:"milestoneStatusId"`
	CreatedAt         string `json:"createdAt"`
	StateID           string `json:"stateId"`
}

func (n milestoneNode) shape() model.Milestone {
	return model.Milestone{
		ID: n.ID, Name: n.Name, Desc: n.Desc, RockID: n.RockID, UserID: n.UserID,
		DueDate: n.DueDate, Status: n.MilestoneStatusID, CreatedAt: n.CreatedAt, StateID: n.StateID,
	}
}

var milestoneStatuses = []string{"TODO", "COMPLETE"}

type MilestoneQuery struct {
	StateID        string `json:"stateId"`
	Status         string `json:"status"`
	RockID         string `json:"rockId"`
	UserID         string `json:"userId"`
	TeamID         string `json:"teamId"`
	LeadershipTeam bool   `json:"leadershipTeam"`
	DueAfter       string `json:"dueAfter"`
	DueBefore      string `json:"dueBefore"`
	Page
}

func (s *Service) GetMilestones(ctx context.Context, q MilestoneQuery) (model.Page[model.Milestone], error) {
	var empty model.Page[model.Milestone]
	state, err := stateID(q.StateID)
	if err != nil {
		return empty, err
	}
	status, err := oneOf("status", q.Status, "ALL", append(milestoneStatuses, "ALL")...)
	if err != nil {
		return empty, err
	}
	f := Filter{}.Eq("stateId", state).EqIf("rockId", q.RockID).EqIf("userId", q.UserID)
	if status != "ALL" {
		f.Eq("milestoneStatusId", status)
	}
	if err := dayRange(f, "dueDate", "dueAfter", q.DueAfter, "dueBefore", q.DueBefore); err != nil {
		return empty, err
	}
	teamID, err := s.teamScope(ctx, q.TeamID, q.LeadershipTeam)
	if err != nil {
		return empty, err
	}
	if teamID != "" && q.RockID == "" {
		rocks, err := s.ownersForTeam(ctx, rockTeams, teamID)
		if err != nil {
			return empty, err
		}
		if len(rocks) == 0 {
			return model.Page[model.Milestone]{Results: []model.Milestone{}}, nil
		}
		f.In("rockId", rocks)
	}

	c, err := listPage[milestoneNode](ctx, s, milestoneEntity, "", f, q.Page, "DUE_DATE_ASC")
	warn, err := splitPartial(err)
	if err != nil {
		return empty, err
	}
	out := model.Page[model.Milestone]{TotalCount: c.TotalCount, Results: make([]model.Milestone, 0, len(c.Nodes))}
	for _, n := range c.Nodes {
		out.Results = append(out.Results, n.shape())
	}
	return out, warn
}

type CreateMilestoneArgs struct {
	Name    string `json:"name"`
	Desc    string `json:"desc"`
	RockID  string `json:"rockId"`
	UserID  string `json:"userId"`
	DueDate string `json:"dueDate"`
}

func (s *Service) CreateMilestone(ctx context.Context, a CreateMilestoneArgs) (model.Milestone, error) {
	if err := required("name", a.Name); err != nil {
		return model.Milestone{}, err
	}
	if err := required("rockId", a.RockID); err != nil {
		return model.Milestone{}, err
	}
	due, err := dueDate("dueDate", a.DueDate)
	if err != nil {
		return model.Milestone{}, err
	}
	userID, err := s.owner(ctx, a.UserID)
	if err != nil {
		return model.Milestone{}, err
	}
	fields := patch{"name": a.Name, "rockId": a.RockID, "userId": userID, "milestoneStatusId": "TODO", "stateId": "ACTIVE"}.
		str("desc", a.Desc).str("dueDate", due)
	n, err := create[milestoneNode](ctx, s, milestoneEntity, s.stamp(ctx, fields))
	if err != nil {
		return model.Milestone{}, err
	}
	return n.shape(), nil
}

type UpdateMilestoneArgs struct {
	ID      string `json:"milestoneId"`
	Name    string `json:"name"`
	Desc    string `json:"desc"`
	Status  string `json:"status"`
	UserID  string `json:"userId"`
	DueDate string `json:"dueDate"`
}

func (s *Service) UpdateMilestone(ctx context.Context, a UpdateMilestoneArgs) (model.Milestone, error) {
	if err := required("milestoneId", a.ID); err != nil {
		return model.Milestone{}, err
	}
	status, err := oneOf("status", a.Status, "", milestoneStatuses...)
	if err != nil {
		return model.Milestone{}, err
	}
	due, err := dueDate("dueDate", a.DueDate)
	if err != nil {
		return model.Milestone{}, err
	}
	p := patch{}.str("name", a.Name).str("desc", a.Desc).str("userId", a.UserID).
		str("dueDate", due).str("milestoneStatusId", status)
	if err := p.empty(); err != nil {
		return model.Milestone{}, err
	}
	n, err := update[milestoneNode](ctx, s, milestoneEntity, a.ID, p)
	if err != nil {
		return model.Milestone{}, err
	}
	return n.shape(), nil
}

func (s *Service) DeleteMilestone(ctx context.Context, id string) (model.Deleted, error) {
	return s.softDelete(ctx, milestoneEntity, id)
}
