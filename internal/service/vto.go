package service

import (
	"context"
	"errors"
	"fmt"

	"success-mcp/internal/model"

	"golang.org/x/sync/errgroup"
)

var ErrLeadershipVisionNotFound = errors.New("could not find leadership vision")

type visionNode struct {
	ID           string `json:"id"`
	TeamID       string `json:"teamId"`
	IsLeadership bool   `json:"isLeadership"`
}

// GetLeadershipVTO loads the leadership vision and its four sections in
// parallel.
func (s *Service) GetLeadershipVTO(ctx context.Context) (model.VTO, error) {
	f := Filter{}.Eq("isLeadership", true).Eq("stateId", "ACTIVE")
	c, err := list[visionNode](ctx, s, visionEntity, "LeadershipVision", f, Page{First: 1})
	if err != nil {
		return model.VTO{}, fmt.Errorf("lookup leadership vision: %w", err)
	}
	if len(c.Nodes) == 0 {
		return model.VTO{}, ErrLeadershipVisionNotFound
	}
	v := c.Nodes[0]
	return s.vision(ctx, v)
}

func (s *Service) vision(ctx context.Context, v visionNode) (model.VTO, error) {
	out := model.VTO{VisionID: v.ID, TeamID: v.TeamID}
	section := func() Filter { return Filter{}.Eq("visionId", v.ID).Eq("stateId", "ACTIVE") }

	var (
		values, focus, goals []model.VisionItem
		markets              []model.MarketStrategy
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		values, err = listAll[model.VisionItem](gctx, s, coreValueEntity, "", section(), "POSITION_ASC", "PRIMARY_KEY_ASC")
		return err
	})
	g.Go(func() (err error) {
		focus, err = listAll[model.VisionItem](gctx, s, coreFocusEntity, "", section())
		return err
	})
	g.Go(func() (err error) {
		goals, err = listAll[model.VisionItem](gctx, s, threeYearGoalEntity, "", section(), "POSITION_ASC", "PRIMARY_KEY_ASC")
		return err
	})
	g.Go(func() (err error) {
		markets, err = listAll[model.MarketStrategy](gctx, s, marketStrategyEntity, "", section())
		return err
	})
	if err := g.Wait(); err != nil {
		return model.VTO{}, err
	}

	out.CoreValues = nonNil(values)
	out.CoreFocus = nonNil(focus)
	out.ThreeYearGoals = nonNil(goals)
	out.MarketStrategies = nonNil(markets)
	out.Counts = map[string]int{
		"coreValues":       len(out.CoreValues),
		"coreFocus":        len(out.CoreFocus),
		"threeYearGoals":   len(out.ThreeYearGoals),
		"marketStrategies": len(out.MarketStrategies),
	}
	return out, nil
}
