package service

import (
	"context"

	"success-mcp/internal/model"
)

type peopleAnalyzerNode struct {
	ID                            string `json:"id"`
	Name                          string `json:"name"`
	TeamID                        string `json:"teamId"`
	PeopleAnalyzerSessionStatusID string `json:"peopleAnalyzerSessionStatusId"`
	CreatedAt                     string `json:"createdAt"`
}

type peopleScoreNode struct {
	model.PeopleScore
	SessionID string `json:"peopleAnalyzerSessionId"`
}

type PeopleAnalyzerQuery struct {
	StateID        string `json:"stateId"`
	TeamID         string `json:"teamId"`
	LeadershipTeam bool   `json:"leadershipTeam"`
	IncludeScores  bool   `json:"includeScores"`
	Page
}

func (s *Service) GetPeopleAnalyzerSessions(ctx context.Context, q PeopleAnalyzerQuery) (model.Page[model.PeopleAnalyzerSession], error) {
	var empty model.Page[model.PeopleAnalyzerSession]
	state, err := stateID(q.StateID)
	if err != nil {
		return empty, err
	}
	teamID, err := s.teamScope(ctx, q.TeamID, q.LeadershipTeam)
	if err != nil {
		return empty, err
	}
	f := Filter{}.Eq("stateId", state).EqIf("teamId", teamID)
	c, err := listPage[peopleAnalyzerNode](ctx, s, peopleAnalyzerEntity, "", f, q.Page, "CREATED_AT_DESC")
	warn, err := splitPartial(err)
	if err != nil {
		return empty, err
	}
	out := model.Page[model.PeopleAnalyzerSession]{TotalCount: c.TotalCount, Results: make([]model.PeopleAnalyzerSession, 0, len(c.Nodes))}
	ids := make([]string, 0, len(c.Nodes))
	for _, n := range c.Nodes {
		ids = append(ids, n.ID)
		out.Results = append(out.Results, model.PeopleAnalyzerSession{
			ID: n.ID, Name: n.Name, TeamID: n.TeamID, Status: n.PeopleAnalyzerSessionStatusID, CreatedAt: n.CreatedAt,
		})
	}
	if !q.IncludeScores || len(ids) == 0 {
		return out, warn
	}

	sf := Filter{}.In("peopleAnalyzerSessionId", ids).Eq("stateId", "ACTIVE")
	scores, err := listAll[peopleScoreNode](ctx, s, peopleAnalyzerUserEntity, "", sf)
	if err != nil {
		return empty, err
	}
	bySession := map[string][]model.PeopleScore{}
	for _, sc := range scores {
		bySession[sc.SessionID] = append(bySession[sc.SessionID], sc.PeopleScore)
	}
	for i := range out.Results {
		out.Results[i].Scores = nonNil(bySession[out.Results[i].ID])
	}
	return out, warn
}

type orgCheckupNode struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Status      string  `json:"status"`
	Score       float64 `json:"score"`
	CreatedAt   string  `json:"createdAt"`
	CompletedAt string  `json:"completedAt"`
}

type orgCheckupAnswerNode struct {
	OrgCheckupID string  `json:"orgCheckupId"`
	Question     string  `json:"question"`
	Score        float64 `json:"score"`
}

type OrgCheckupQuery struct {
	StateID        string `json:"stateId"`
	Status         string `json:"status"`
	IncludeAnswers bool   `json:"includeAnswers"`
	Page
}

func (s *Service) GetOrgCheckups(ctx context.Context, q OrgCheckupQuery) (model.Page[model.OrgCheckup], error) {
	var empty model.Page[model.OrgCheckup]
	state, err := stateID(q.StateID)
	if err != nil {
		return empty, err
	}
	status, err := oneOf("status", q.Status, "ALL", "IN_PROGRESS", "COMPLETE", "ALL")
	if err != nil {
		return empty, err
	}
	f := Filter{}.Eq("stateId", state)
	if status != "ALL" {
		f.Eq("status", status)
	}
	c, err := listPage[orgCheckupNode](ctx, s, orgCheckupEntity, "", f, q.Page, "CREATED_AT_DESC")
	warn, err := splitPartial(err)
	if err != nil {
		return empty, err
	}
	out := model.Page[model.OrgCheckup]{TotalCount: c.TotalCount, Results: make([]model.OrgCheckup, 0, len(c.Nodes))}
	ids := make([]string, 0, len(c.Nodes))
	for _, n := range c.Nodes {
		ids = append(ids, n.ID)
		out.Results = append(out.Results, model.OrgCheckup{
			ID: n.ID, Name: n.Name, Status: n.Status, Score: n.Score, CreatedAt: n.CreatedAt, CompletedAt: n.CompletedAt,
		})
	}
	if !q.IncludeAnswers || len(ids) == 0 {
		return out, warn
	}

	af := Filter{}.In("orgCheckupId", ids).Eq("stateId", "ACTIVE")
	answers, err := listAll[orgCheckupAnswerNode](ctx, s, orgCheckupAnswerEntity, "", af)
	if err != nil {
		return empty, err
	}
	byCheckup := map[string][]model.OrgCheckupAnswer{}
	for _, a := range answers {
		byCheckup[a.OrgCheckupID] = append(byCheckup[a.OrgCheckupID], model.OrgCheckupAnswer{Question: a.Question, Score: a.Score})
	}
	for i := range out.Results {
		out.Results[i].Answers = nonNil(byCheckup[out.Results[i].ID])
	}
	return out, warn
}
