package service

import (
	"context"
	"fmt"

	"success-mcp/internal/model"
)

type meetingNode struct {
	ID              string   `json:"id"`
	Date            string   `json:"date"`
	StartTime       string   `json:"startTime"`
	EndTime         string   `json:"endTime"`
	MeetingInfoID   string   `json:"meetingInfoId"`
	MeetingStatusID string   `json:"meetingStatusId"`
	AverageRating   *float64 `json:"averageRating"`
	CreatedAt       string   `json:"createdAt"`
	StateID         string   `json:"stateId"`
}

func (n meetingNode) shape() model.Meeting {
	return model.Meeting{
		ID: n.ID, Date: n.Date, StartTime: n.StartTime, EndTime: n.EndTime, Status: n.MeetingStatusID,
		AverageRating: n.AverageRating, MeetingInfoID: n.MeetingInfoID, CreatedAt: n.CreatedAt, StateID: n.StateID,
	}
}

type meetingInfoNode struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	TeamID           string `json:"teamId"`
	MeetingAgendaID  string `json:"meetingAgendaId"`
	MeetingRepeatsID string `json:"meetingRepeatsId"`
	RepeatInterval   int    `json:"repeatInterval"`
	RepeatUnit       string `json:"repeatUnit"`
	SelectedDays     string `json:"selectedDays"`
	CreatedAt        string `json:"createdAt"`
	StateID          string `json:"stateId"`
}

func (n meetingInfoNode) shape() model.MeetingInfo {
	return model.MeetingInfo{
		ID: n.ID, Name: n.Name, TeamID: n.TeamID, MeetingAgendaID: n.MeetingAgendaID,
		Repeats: n.MeetingRepeatsID, RepeatInterval: n.RepeatInterval, RepeatUnit: n.RepeatUnit,
		SelectedDays: n.SelectedDays, CreatedAt: n.CreatedAt, StateID: n.StateID,
	}
}

type meetingAgendaNode struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	TeamID              string `json:"teamId"`
	MeetingAgendaTypeID string `json:"meetingAgendaTypeId"`
	FacilitatorUserID   string `json:"facilitatorUserId"`
	CreatedAt           string `json:"createdAt"`
	StateID             string `json:"stateId"`
}

var (
	meetingStatuses = []string{"NOT_STARTED", "IN_PROGRESS", "ENDED"}
	repeatUnits     = []string{"WEEKLY", "MONTHLY", "QUARTERLY", "ANNUALLY", "NONE"}
)

type MeetingQuery struct {
	StateID        string `json:"stateId"`
	Status         string `json:"status"`
	TeamID         string `json:"teamId"`
	LeadershipTeam bool   `json:"leadershipTeam"`
	MeetingInfoID  string `json:"meetingInfoId"`
	DateAfter      string `json:"dateAfter"`
	DateBefore     string `json:"dateBefore"`
	Page
}

func (s *Service) meetingFilter(ctx context.Context, q MeetingQuery) (Filter, bool, error) {
	state, err := stateID(q.StateID)
	if err != nil {
		return nil, false, err
	}
	status, err := oneOf("status", q.Status, "ALL", append(meetingStatuses, "ALL")...)
	if err != nil {
		return nil, false, err
	}
	f := Filter{}.Eq("stateId", state).EqIf("meetingInfoId", q.MeetingInfoID)
	if status != "ALL" {
		f.Eq("meetingStatusId", status)
	}
	if err := dayRange(f, "date", "dateAfter", q.DateAfter, "dateBefore", q.DateBefore); err != nil {
		return nil, false, err
	}
	teamID, err := s.teamScope(ctx, q.TeamID, q.LeadershipTeam)
	if err != nil {
		return nil, false, err
	}
	if teamID != "" && q.MeetingInfoID == "" {
		infos, err := s.meetingInfoIDs(ctx, teamID)
		if err != nil {
			return nil, false, err
		}
		if len(infos) == 0 {
			return nil, false, nil
		}
		f.In("meetingInfoId", infos)
	}
	return f, true, nil
}

// GetMeetings lists meetings merged with their meeting-info and team names.
func (s *Service) GetMeetings(ctx context.Context, q MeetingQuery) (model.Page[model.Meeting], error) {
	var empty model.Page[model.Meeting]
	f, ok, err := s.meetingFilter(ctx, q)
	if err != nil {
		return empty, err
	}
	if !ok {
		return model.Page[model.Meeting]{Results: []model.Meeting{}}, nil
	}
	c, err := listPage[meetingNode](ctx, s, meetingEntity, "", f, q.Page, "DATE_DESC")
	warn, err := splitPartial(err)
	if err != nil {
		return empty, err
	}
	meetings, err := s.decorateMeetings(ctx, c.Nodes)
	if err != nil {
		return empty, err
	}
	return model.Page[model.Meeting]{TotalCount: c.TotalCount, Results: meetings}, warn
}

func (s *Service) meetingInfoIDs(ctx context.Context, teamID string) ([]string, error) {
	f := Filter{}.Eq("teamId", teamID).Eq("stateId", "ACTIVE")
	rows, err := listAll[meetingInfoNode](ctx, s, meetingInfoEntity, "TeamMeetingInfos", f)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, n := range rows {
		ids = append(ids, n.ID)
	}
	return ids, nil
}

func (s *Service) decorateMeetings(ctx context.Context, nodes []meetingNode) ([]model.Meeting, error) {
	infoIDs := make([]string, 0, len(nodes))
	for _, n := range nodes {
		infoIDs = append(infoIDs, n.MeetingInfoID)
	}
	infos := map[string]meetingInfoNode{}
	if ids := uniq(infoIDs); len(ids) > 0 {
		rows, err := listAll[meetingInfoNode](ctx, s, meetingInfoEntity, "MeetingInfosByID", Filter{}.In("id", ids))
		if err != nil {
			return nil, fmt.Errorf("load meeting infos: %w", err)
		}
		for _, in := range rows {
			infos[in.ID] = in
		}
	}
	teamIDs := make([]string, 0, len(infos))
	for _, in := range infos {
		teamIDs = append(teamIDs, in.TeamID)
	}
	names, err := s.teamNames(ctx, uniq(teamIDs))
	if err != nil {
		return nil, fmt.Errorf("load team names: %w", err)
	}

	out := make([]model.Meeting, 0, len(nodes))
	for _, n := range nodes {
		m := n.shape()
		if in, ok := infos[n.MeetingInfoID]; ok {
			m.Name, m.TeamID, m.TeamName = in.Name, in.TeamID, names[in.TeamID]
		}
		out = append(out, m)
	}
	return out, nil
}

type MeetingInfoQuery struct {
	StateID        string `json:"stateId"`
	TeamID         string `json:"teamId"`
	LeadershipTeam bool   `json:"leadershipTeam"`
	Keyword        string `json:"keyword"`
	Page
}

func (s *Service) GetMeetingInfos(ctx context.Context, q MeetingInfoQuery) (model.Page[model.MeetingInfo], error) {
	var empty model.Page[model.MeetingInfo]
	state, err := stateID(q.StateID)
	if err != nil {
		return empty, err
	}
	teamID, err := s.teamScope(ctx, q.TeamID, q.LeadershipTeam)
	if err != nil {
		return empty, err
	}
	f := Filter{}.Eq("stateId", state).EqIf("teamId", teamID)
	if q.Keyword != "" {
		f.Like("name", q.Keyword)
	}
	c, err := listPage[meetingInfoNode](ctx, s, meetingInfoEntity, "", f, q.Page, "NAME_ASC")
	warn, err := splitPartial(err)
	if err != nil {
		return empty, err
	}
	out := model.Page[model.MeetingInfo]{TotalCount: c.TotalCount, Results: make([]model.MeetingInfo, 0, len(c.Nodes))}
	for _, n := range c.Nodes {
		out.Results = append(out.Results, n.shape())
	}
	return out, warn
}

type MeetingAgendaQuery struct {
	StateID        string `json:"stateId"`
	TeamID         string `json:"teamId"`
	LeadershipTeam bool   `json:"leadershipTeam"`
	Type           string `json:"type"`
	Keyword        string `json:"keyword"`
	Page
}

func (s *Service) GetMeetingAgendas(ctx context.Context, q MeetingAgendaQuery) (model.Page[model.MeetingAgenda], error) {
	var empty model.Page[model.MeetingAgenda]
	state, err := stateID(q.StateID)
	if err != nil {
		return empty, err
	}
	teamID, err := s.teamScope(ctx, q.TeamID, q.LeadershipTeam)
	if err != nil {
		return empty, err
	}
	f := Filter{}.Eq("stateId", state).EqIf("teamId", teamID).EqIf("meetingAgendaTypeId", q.Type)
	if q.Keyword != "" {
		f.Like("name", q.Keyword)
	}
	c, err := listPage[meetingAgendaNode](ctx, s, meetingAgendaEntity, "", f, q.Page, "NAME_ASC")
	warn, err := splitPartial(err)
	if err != nil {
		return empty, err
	}
	out := model.Page[model.MeetingAgenda]{TotalCount: c.TotalCount, Results: make([]model.MeetingAgenda, 0, len(c.Nodes))}
	for _, n := range c.Nodes {
		out.Results = append(out.Results, model.MeetingAgenda{
			ID: n.ID, Name: n.Name, TeamID: n.TeamID, Type: n.MeetingAgendaTypeID,
			FacilitatorUserID: n.FacilitatorUserID, CreatedAt: n.CreatedAt, StateID: n.StateID,
		})
	}
	return out, warn
}

type CreateMeetingArgs struct {
	MeetingInfoID   string `json:"meetingInfoId"`
	Name            string `json:"name"`
	TeamID          string `json:"teamId"`
	LeadershipTeam  bool   `json:"leadershipTeam"`
	MeetingAgendaID string `json:"meetingAgendaId"`
	RepeatUnit      string `json:"repeatUnit"`
	RepeatInterval  int    `json:"repeatInterval"`
	Date            string `json:"date"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
}

// CreateMeeting creates the meeting info (unless one is given) and then the
// meeting. When the second write fails the first is left in place and its id
// is reported through a *PartialError.
func (s *Service) CreateMeeting(ctx context.Context, a CreateMeetingArgs) (model.CreatedMeeting, error) {
	var out model.CreatedMeeting
	if err := required("date", a.Date); err != nil {
		return out, err
	}
	date, err := dueDate("date", a.Date)
	if err != nil {
		return out, err
	}
	repeat, err := oneOf("repeatUnit", a.RepeatUnit, "", repeatUnits...)
	if err != nil {
		return out, err
	}

	infoID := a.MeetingInfoID
	pe := &PartialError{}
	if infoID == "" {
		if err := required("name", a.Name); err != nil {
			return out, err
		}
		if a.TeamID == "" && !a.LeadershipTeam {
			return out, invalid("teamId or leadershipTeam is required when meetingInfoId is not given")
		}
		teamID, err := s.teamScope(ctx, a.TeamID, a.LeadershipTeam)
		if err != nil {
			return out, err
		}
		fields := patch{"name": a.Name, "teamId": teamID, "stateId": "ACTIVE"}.
			str("meetingAgendaId", a.MeetingAgendaID).str("repeatUnit", repeat)
		if a.RepeatInterval > 0 {
			fields["repeatInterval"] = a.RepeatInterval
		}
		info, err := create[meetingInfoNode](ctx, s, meetingInfoEntity, s.stamp(ctx, fields))
		if err != nil {
			return out, err
		}
		shaped := info.shape()
		out.MeetingInfo = &shaped
		infoID = info.ID
		pe.ok("create meeting info " + info.ID)
	}

	fields := patch{"date": date, "meetingInfoId": infoID, "meetingStatusId": "NOT_STARTED", "stateId": "ACTIVE"}.
		str("startTime", a.StartTime).str("endTime", a.EndTime)
	n, err := create[meetingNode](ctx, s, meetingEntity, s.stamp(ctx, fields))
	if err != nil {
		if out.MeetingInfo == nil {
			return out, err
		}
		pe.fail("create meeting", err)
		return out, pe
	}
	m := n.shape()
	if out.MeetingInfo != nil {
		m.Name, m.TeamID = out.MeetingInfo.Name, out.MeetingInfo.TeamID
	}
	out.Meeting = &m
	return out, nil
}

type UpdateMeetingArgs struct {
	ID            string   `json:"meetingId"`
	Date          string   `json:"date"`
	StartTime     string   `json:"startTime"`
	EndTime       string   `json:"endTime"`
	Status        string   `json:"status"`
	AverageRating *float64 `json:"averageRating"`
}

func (s *Service) UpdateMeeting(ctx context.Context, a UpdateMeetingArgs) (model.Meeting, error) {
	if err := required("meetingId", a.ID); err != nil {
		return model.Meeting{}, err
	}
	status, err := oneOf("status", a.Status, "", meetingStatuses...)
	if err != nil {
		return model.Meeting{}, err
	}
	date, err := dueDate("date", a.Date)
	if err != nil {
		return model.Meeting{}, err
	}
	p := patch{}.str("date", date).str("startTime", a.StartTime).str("endTime", a.EndTime).
		str("meetingStatusId", status).ptr("averageRating", a.AverageRating)
	if err := p.empty(); err != nil {
		return model.Meeting{}, err
	}
	n, err := update[meetingNode](ctx, s, meetingEntity, a.ID, p)
	if err != nil {
		return model.Meeting{}, err
	}
	return n.shape(), nil
}
