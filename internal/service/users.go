package service

import (
	"context"
	"strings"

	"success-mcp/internal/model"
)

type userNode struct {
	ID               string `json:"id"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Email            string `json:"email"`
	JobTitle         string `json:"jobTitle"`
	Desc             string `json:"desc"`
	TimeZone         string `json:"timeZone"`
	Avatar           string `json:"avatar"`
	UserPermissionID string `json:"userPermissionId"`
	StateID          string `json:"stateId"`
}

func (n userNode) name() string {
	return strings.TrimSpace(n.FirstName + " " + n.LastName)
}

func (n userNode) shape() model.User {
	return model.User{
		ID: n.ID, Name: n.name(), FirstName: n.FirstName, LastName: n.LastName,
		Email: n.Email, JobTitle: n.JobTitle, Desc: n.Desc, TimeZone: n.TimeZone,
		Avatar: n.Avatar, Permission: n.UserPermissionID, StateID: n.StateID,
	}
}

type UserQuery struct {
	StateID        string `json:"stateId"`
	Keyword        string `json:"keyword"`
	Email          string `json:"email"`
	TeamID         string `json:"teamId"`
	LeadershipTeam bool   `json:"leadershipTeam"`
	Page
}

func (s *Service) GetUsers(ctx context.Context, q UserQuery) (model.Page[model.User], error) {
	var empty model.Page[model.User]
	state, err := stateID(q.StateID)
	if err != nil {
		return empty, err
	}
	teamID, err := s.teamScope(ctx, q.TeamID, q.LeadershipTeam)
	if err != nil {
		return empty, err
	}

	f := Filter{}.Eq("stateId", state).EqIf("email", q.Email)
	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		f.Or(Filter{}.Like("firstName", kw), Filter{}.Like("lastName", kw), Filter{}.Like("email", kw))
	}
	if teamID != "" {
		ids, err := s.teamMemberIDs(ctx, teamID)
		if err != nil {
			return empty, err
		}
		if len(ids) == 0 {
			return model.Page[model.User]{Results: []model.User{}}, nil
		}
		f.In("id", ids)
	}

	c, err := listPage[userNode](ctx, s, userEntity, "", f, q.Page, "FIRST_NAME_ASC")
	warn, err := splitPartial(err)
	if err != nil {
		return empty, err
	}
	out := model.Page[model.User]{TotalCount: c.TotalCount, Results: make([]model.User, 0, len(c.Nodes))}
	for _, n := range c.Nodes {
		out.Results = append(out.Results, n.shape())
	}
	return out, warn
}

type teamLink struct {
	ID      string `json:"id"`
	TeamID  string `json:"teamId"`
	UserID  string `json:"userId"`
	StateID string `json:"stateId"`
}

func (s *Service) teamMemberIDs(ctx context.Context, teamID string) ([]string, error) {
	f := Filter{}.Eq("teamId", teamID).Eq("stateId", "ACTIVE")
	rows, err := listAll[teamLink](ctx, s, teamsOnUserEntity, "", f)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, l := range rows {
		ids = append(ids, l.UserID)
	}
	return uniq(ids), nil
}

// usersByID loads users in batches of batchSize.
func (s *Service) usersByID(ctx context.Context, ids []string) (map[string]userNode, error) {
	out := map[string]userNode{}
	for _, batch := range chunk(uniq(ids), batchSize) {
		c, err := list[userNode](ctx, s, userEntity, "UsersByID", Filter{}.In("id", batch), Page{First: len(batch)})
		if err != nil {
			return nil, err
		}
		for _, u := range c.Nodes {
			out[u.ID] = u
		}
	}
	return out, nil
}

const batchSize = 50

func chunk(s []string, n int) [][]string {
	var out [][]string
	for len(s) > n {
		out = append(out, s[:n])
		s = s[n:]
	}
	if len(s) > 0 {
		out = append(out, s)
	}
	return out
}
