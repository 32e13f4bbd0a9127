package service

import (
	"context"
	"fmt"
	"sort"

	"success-mcp/internal/model"
)

// linkTable is a many-to-many join between teams and an owner entity. Each
// row carries its own stateId.
type linkTable struct {
	entity entity
	owner  string
}

var (
	rockTeams      = linkTable{teamsOnRockEntity, "rockId"}
	dataFieldTeams = linkTable{teamsOnDataFieldEntity, "dataFieldId"}
)

type linkNode struct {
	ID          string `json:"id"`
	TeamID      string `json:"teamId"`
	RockID      string `json:"rockId"`
	DataFieldID string `json:"dataFieldId"`
	StateID     string `json:"stateId"`
}

func (l linkNode) ownerID(t linkTable) string {
	if t.owner == "rockId" {
		return l.RockID
	}
	return l.DataFieldID
}

func (s *Service) links(ctx context.Context, t linkTable, ownerIDs []string, activeOnly bool) ([]linkNode, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}
	f := Filter{}.In(t.owner, ownerIDs)
	if activeOnly {
		f.Eq("stateId", "ACTIVE")
	}
	return listAll[linkNode](ctx, s, t.entity, "", f)
}

// activeTeams maps owner id to its active team ids.
func (s *Service) activeTeams(ctx context.Context, t linkTable, ownerIDs []string) (map[string][]string, error) {
	rows, err := s.links(ctx, t, uniq(ownerIDs), true)
	if err != nil {
		return nil, err
	}
	out := map[string][]string{}
	for _, l := range rows {
		id := l.ownerID(t)
		out[id] = append(out[id], l.TeamID)
	}
	for id, teams := range out {
		out[id] = uniq(teams)
	}
	return out, nil
}

// ownersForTeam returns the owner ids actively linked to teamID.
func (s *Service) ownersForTeam(ctx context.Context, t linkTable, teamID string) ([]string, error) {
	f := Filter{}.Eq("teamId", teamID).Eq("stateId", "ACTIVE")
	rows, err := listAll[linkNode](ctx, s, t.entity, "", f)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, l := range rows {
		ids = append(ids, l.ownerID(t))
	}
	return uniq(ids), nil
}

// reconcileTeams makes the active links of ownerID equal desired. Links no
// longer wanted are soft-deleted, soft-deleted links are reactivated rather
// than duplicated, and missing links are created. Each write is independent;
// failures are collected into a *PartialError and nothing is rolled back.
func (s *Service) reconcileTeams(ctx context.Context, t linkTable, ownerID string, desired []string) (model.LinkChanges, error) {
	var changes model.LinkChanges
	existing, err := s.links(ctx, t, []string{ownerID}, false)
	if err != nil {
		return changes, fmt.Errorf("load team links: %w", err)
	}

	desired = uniq(desired)
	want := make(map[string]bool, len(desired))
	for _, id := range desired {
		want[id] = true
	}
	byTeam := map[string][]linkNode{}
	for _, l := range existing {
		byTeam[l.TeamID] = append(byTeam[l.TeamID], l)
	}
	teams := make([]string, 0, len(byTeam))
	for id := range byTeam {
		teams = append(teams, id)
	}
	sort.Strings(teams)

	pe := &PartialError{}
	setState := func(step, linkID, state string) bool {
		if _, err := update[linkNode](ctx, s, t.entity, linkID, map[string]any{"stateId": state}); err != nil {
			pe.fail(step, err)
			return false
		}
		pe.ok(step)
		return true
	}

	for _, team := range teams {
		var active []linkNode
		for _, l := range byTeam[team] {
			if l.StateID == "ACTIVE" {
				active = append(active, l)
			}
		}
		switch {
		case !want[team]:
			removed := false
			for _, l := range active {
				if setState("remove team "+team, l.ID, "DELETED") {
					removed = true
				}
			}
			if removed {
				changes.Removed = append(changes.Removed, team)
			}
		case len(active) > 0:
			changes.Unchanged = append(changes.Unchanged, team)
		default:
			if setState("reactivate team "+team, byTeam[team][0].ID, "ACTIVE") {
				changes.Reactivated = append(changes.Reactivated, team)
			}
		}
	}

	for _, team := range desired {
		if _, ok := byTeam[team]; ok {
			continue
		}
		step := "link team " + team
		fields := s.stamp(ctx, map[string]any{"teamId": team, t.owner: ownerID, "stateId": "ACTIVE"})
		if _, err := create[linkNode](ctx, s, t.entity, fields); err != nil {
			pe.fail(step, err)
			continue
		}
		pe.ok(step)
		changes.Created = append(changes.Created, team)
	}
	return changes, pe.err()
}

// linkedTeams lists the teams active after a reconciliation.
func linkedTeams(c model.LinkChanges) []string {
	out := append([]string{}, c.Unchanged...)
	out = append(out, c.Reactivated...)
	out = append(out, c.Created...)
	sort.Strings(out)
	return out
}
