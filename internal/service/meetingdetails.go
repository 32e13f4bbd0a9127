package service

import (
	"context"

	"success-mcp/internal/model"

	"golang.org/x/sync/errgroup"
)

type MeetingDetailsQuery struct {
	MeetingID      string `json:"meetingId"`
	TeamID         string `json:"teamId"`
	LeadershipTeam bool   `json:"leadershipTeam"`
	DateAfter      string `json:"dateAfter"`
	DateBefore     string `json:"dateBefore"`
	First          int    `json:"first"`
}

const defaultMeetingDetails = 10

// GetMeetingDetails loads meetings and, in parallel, the headlines, todos and
// issues attached to them, grouped per meeting.
func (s *Service) GetMeetingDetails(ctx context.Context, q MeetingDetailsQuery) ([]model.MeetingDetail, error) {
	first := q.First
	if first <= 0 {
		first = defaultMeetingDetails
	}
	var f Filter
	if q.MeetingID != "" {
		f = Filter{}.Eq("id", q.MeetingID)
	} else {
		var ok bool
		var err error
		f, ok, err = s.meetingFilter(ctx, MeetingQuery{
			TeamID: q.TeamID, LeadershipTeam: q.LeadershipTeam, DateAfter: q.DateAfter, DateBefore: q.DateBefore,
		})
		if err != nil {
			return nil, err
		}
		if !ok {
			return []model.MeetingDetail{}, nil
		}
	}
	c, err := list[meetingNode](ctx, s, meetingEntity, "MeetingDetails", f, Page{First: first}, "DATE_DESC")
	if err != nil {
		return nil, err
	}
	if len(c.Nodes) == 0 {
		return []model.MeetingDetail{}, nil
	}
	ids := make([]string, 0, len(c.Nodes))
	for _, n := range c.Nodes {
		ids = append(ids, n.ID)
	}

	var (
		meetings  []model.Meeting
		headlines []headlineNode
		todos     []todoNode
		issues    []issueNode
	)
	byMeeting := func() Filter { return Filter{}.In("meetingId", ids).Eq("stateId", "ACTIVE") }
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		meetings, err = s.decorateMeetings(gctx, c.Nodes)
		return err
	})
	g.Go(func() (err error) {
		headlines, err = listAll[headlineNode](gctx, s, headlineEntity, "MeetingHeadlines", byMeeting())
		return err
	})
	g.Go(func() (err error) {
		todos, err = listAll[todoNode](gctx, s, todoEntity, "MeetingTodos", byMeeting())
		return err
	})
	g.Go(func() (err error) {
		issues, err = listAll[issueNode](gctx, s, issueEntity, "MeetingIssues", byMeeting())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]model.MeetingDetail, len(meetings))
	index := make(map[string]int, len(meetings))
	for i, m := range meetings {
		out[i] = model.MeetingDetail{Meeting: m, Headlines: []model.Headline{}, Todos: []model.Todo{}, Issues: []model.Issue{}}
		index[m.ID] = i
	}
	now := s.now()
	for _, h := range headlines {
		if i, ok := index[h.MeetingID]; ok {
			out[i].Headlines = append(out[i].Headlines, h.shape())
		}
	}
	for _, t := range todos {
		if i, ok := index[t.MeetingID]; ok {
			out[i].Todos = append(out[i].Todos, t.shape(now))
		}
	}
	for _, is := range issues {
		if i, ok := index[is.MeetingID]; ok {
			out[i].Issues = append(out[i].Issues, is.shape())
		}
	}
	return out, nil
}
