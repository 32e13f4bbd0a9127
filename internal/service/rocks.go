package service

import (
	"context"
	"strings"
	"time"

	"success-mcp/internal/model"
)

type rockNode struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Desc            string `json:"desc"`
	RockStatusID    string `json:"rockStatusId"`
	DueDate         string `json:"dueDate"`
	Type            string `json:"type"`
	UserID          string `json:"userId"`
	CreatedAt       string `json:"createdAt"`
	StatusUpdatedAt string `json:"statusUpdatedAt"`
	StateID         string `json:"stateId"`
}

func (n rockNode) shape(teams []string) model.Rock {
	return model.Rock{
		ID: n.ID, Name: n.Name, Desc: n.Desc, Status: n.RockStatusID, DueDate: n.DueDate,
		Type: n.Type, UserID: n.UserID, TeamIDs: nonNil(teams), CreatedAt: n.CreatedAt,
		StatusUpdatedAt: n.StatusUpdatedAt, StateID: n.StateID,
	}
}

var (
	rockStatuses = []string{"ONTRACK", "OFFTRACK", "COMPLETE", "INCOMPLETE"}
	rockTypes    = []string{"PERSONAL", "COMPANY"}
)

type RockQuery struct {
	StateID        string `json:"stateId"`
	Status         string `json:"status"`
	Type           string `json:"type"`
	TeamID         string `json:"teamId"`
	LeadershipTeam bool   `json:"leadershipTeam"`
	UserID         string `json:"userId"`
	Keyword        string `json:"keyword"`
	DueAfter       string `json:"dueAfter"`
	DueBefore      string `json:"dueBefore"`
	Page
}

func (s *Service) GetRocks(ctx context.Context, q RockQuery) (model.Page[model.Rock], error) {
	var empty model.Page[model.Rock]
	state, err := stateID(q.StateID)
	if err != nil {
		return empty, err
	}
	status, err := oneOf("status", q.Status, "ALL", append(rockStatuses, "ALL")...)
	if err != nil {
		return empty, err
	}
	typ, err := oneOf("type", q.Type, "ALL", append(rockTypes, "ALL")...)
	if err != nil {
		return empty, err
	}
	f := Filter{}.Eq("stateId", state).EqIf("userId", q.UserID).Keyword(q.Keyword)
	if status != "ALL" {
		f.Eq("rockStatusId", status)
	}
	if typ != "ALL" {
		f.Eq("type", strings.ToLower(typ))
	}
	if err := dayRange(f, "dueDate", "dueAfter", q.DueAfter, "dueBefore", q.DueBefore); err != nil {
		return empty, err
	}
	teamID, err := s.teamScope(ctx, q.TeamID, q.LeadershipTeam)
	if err != nil {
		return empty, err
	}
	if teamID != "" {
		ids, err := s.ownersForTeam(ctx, rockTeams, teamID)
		if err != nil {
			return empty, err
		}
		if len(ids) == 0 {
			return model.Page[model.Rock]{Results: []model.Rock{}}, nil
		}
		f.In("id", ids)
	}

	c, err := listPage[rockNode](ctx, s, rockEntity, "", f, q.Page, "DUE_DATE_ASC")
	warn, err := splitPartial(err)
	if err != nil {
		return empty, err
	}
	ids := make([]string, 0, len(c.Nodes))
	for _, n := range c.Nodes {
		ids = append(ids, n.ID)
	}
	teams, err := s.activeTeams(ctx, rockTeams, ids)
	if err != nil {
		return empty, err
	}
	out := model.Page[model.Rock]{TotalCount: c.TotalCount, Results: make([]model.Rock, 0, len(c.Nodes))}
	for _, n := range c.Nodes {
		out.Results = append(out.Results, n.shape(teams[n.ID]))
	}
	return out, warn
}

type CreateRockArgs struct {
	Name           string   `json:"name"`
	Desc           string   `json:"desc"`
	UserID         string   `json:"userId"`
	DueDate        string   `json:"dueDate"`
	Status         string   `json:"status"`
	Type           string   `json:"type"`
	TeamIDs        []string `json:"teamIds"`
	LeadershipTeam bool     `json:"leadershipTeam"`
}

// CreateRock writes the rock, then its team links. A link failure leaves
// the rock in place and is reported as a *PartialError.
func (s *Service) CreateRock(ctx context.Context, a CreateRockArgs) (model.Rock, error) {
	if err := required("name", a.Name); err != nil {
		return model.Rock{}, err
	}
	status, err := oneOf("status", a.Status, "ONTRACK", rockStatuses...)
	if err != nil {
		return model.Rock{}, err
	}
	typ, err := oneOf("type", a.Type, "", rockTypes...)
	if err != nil {
		return model.Rock{}, err
	}
	due, err := dueDate("dueDate", a.DueDate)
	if err != nil {
		return model.Rock{}, err
	}
	teams := uniq(a.TeamIDs)
	if len(teams) == 0 && a.LeadershipTeam {
		id, err := s.leadershipTeamID(ctx)
		if err != nil {
			return model.Rock{}, err
		}
		teams = []string{id}
	}
	userID, err := s.owner(ctx, a.UserID)
	if err != nil {
		return model.Rock{}, err
	}
	if due == "" {
		due = s.identity.QuarterEnd(ctx, s.caller(ctx).CompanyID, s.now()).Format(dateLayout)
	}

	fields := patch{"name": a.Name, "rockStatusId": status, "dueDate": due, "userId": userID, "stateId": "ACTIVE"}.
		str("desc", a.Desc).str("type", strings.ToLower(typ))
	n, err := create[rockNode](ctx, s, rockEntity, s.stamp(ctx, fields))
	if err != nil {
		return model.Rock{}, err
	}
	changes, err := s.reconcileTeams(ctx, rockTeams, n.ID, teams)
	return n.shape(linkedTeams(changes)), err
}

type UpdateRockArgs struct {
	ID             string   `json:"rockId"`
	Name           string   `json:"name"`
	Desc           string   `json:"desc"`
	Status         string   `json:"status"`
	Type           string   `json:"type"`
	DueDate        string   `json:"dueDate"`
	UserID         string   `json:"userId"`
	TeamIDs        []string `json:"teamIds"`
	LeadershipTeam bool     `json:"leadershipTeam"`
}

// UpdateRock patches the rock. Team links are reconciled only when teamIds
// is present (an empty list unlinks every team) or leadershipTeam is set.
func (s *Service) UpdateRock(ctx context.Context, a UpdateRockArgs) (model.Rock, error) {
	if err := required("rockId", a.ID); err != nil {
		return model.Rock{}, err
	}
	status, err := oneOf("status", a.Status, "", rockStatuses...)
	if err != nil {
		return model.Rock{}, err
	}
	typ, err := oneOf("type", a.Type, "", rockTypes...)
	if err != nil {
		return model.Rock{}, err
	}
	due, err := dueDate("dueDate", a.DueDate)
	if err != nil {
		return model.Rock{}, err
	}
	p := patch{}.str("name", a.Name).str("desc", a.Desc).str("dueDate", due).
		str("userId", a.UserID).str("type", strings.ToLower(typ))
	if status != "" {
		p["rockStatusId"] = status
		p["statusUpdatedAt"] = s.now().UTC().Format(time.RFC3339)
	}

	relink := a.TeamIDs != nil || a.LeadershipTeam
	teams := uniq(a.TeamIDs)
	if len(teams) == 0 && a.LeadershipTeam {
		id, err := s.leadershipTeamID(ctx)
		if err != nil {
			return model.Rock{}, err
		}
		teams = []string{id}
	}
	if len(p) == 0 && !relink {
		return model.Rock{}, p.empty()
	}

	var n rockNode
	if len(p) > 0 {
		if n, err = update[rockNode](ctx, s, rockEntity, a.ID, p); err != nil {
			return model.Rock{}, err
		}
	} else {
		var found bool
		if n, found, err = byID[rockNode](ctx, s, rockEntity, a.ID); err != nil {
			return model.Rock{}, err
		} else if !found {
			return model.Rock{}, invalid("rock %q not found", a.ID)
		}
	}

	if !relink {
		teams, err := s.activeTeams(ctx, rockTeams, []string{n.ID})
		if err != nil {
			return model.Rock{}, err
		}
		return n.shape(teams[n.ID]), nil
	}
	changes, err := s.reconcileTeams(ctx, rockTeams, n.ID, teams)
	return n.shape(linkedTeams(changes)), err
}

func (s *Service) DeleteRock(ctx context.Context, id string) (model.Deleted, error) {
	return s.softDelete(ctx, rockEntity, id)
}
