package service

import (
	"context"

	"success-mcp/internal/model"
)

type TeamQuery struct {
	StateID      string `json:"stateId"`
	Keyword      string `json:"keyword"`
	IsLeadership *bool  `json:"isLeadership"`
	Page
}

func (s *Service) GetTeams(ctx context.Context, q TeamQuery) (model.Page[model.Team], error) {
	state, err := stateID(q.StateID)
	if err != nil {
		return model.Page[model.Team]{}, err
	}
	f := Filter{}.Eq("stateId", state).Keyword(q.Keyword)
	if q.IsLeadership != nil {
		f.Eq("isLeadership", *q.IsLeadership)
	}
	c, err := listPage[model.Team](ctx, s, teamEntity, "", f, q.Page, "NAME_ASC")
	warn, err := splitPartial(err)
	if err != nil {
		return model.Page[model.Team]{}, err
	}
	return model.Page[model.Team]{TotalCount: c.TotalCount, Results: nonNil(c.Nodes)}, warn
}

// teamNames maps team id to name for ids, in one call.
func (s *Service) teamNames(ctx context.Context, ids []string) (map[string]string, error) {
	out := map[string]string{}
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := listAll[model.Team](ctx, s, teamEntity, "TeamNames", Filter{}.In("id", ids))
	if err != nil {
		return nil, err
	}
	for _, t := range rows {
		out[t.ID] = t.Name
	}
	return out, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// uniq returns the distinct non-empty values of s in first-seen order.
func uniq(s []string) []string {
	seen := make(map[string]bool, len(s))
	out := make([]string, 0, len(s))
	for _, v := range s {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
