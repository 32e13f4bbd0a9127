package service

import (
	"context"
	"sort"
	"time"

	"success-mcp/internal/model"

	"golang.org/x/sync/errgroup"
)

type dataFieldNode struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Desc           string `json:"desc"`
	Type           string `json:"type"`
	UnitType       string `json:"unitType"`
	UnitComparison string `json:"unitComparison"`
	GoalTarget     string `json:"goalTarget"`
	GoalTargetEnd  string `json:"goalTargetEnd"`
	GoalCurrency   string `json:"goalCurrency"`
	ShowAverage    bool   `json:"showAverage"`
	ShowTotal      bool   `json:"showTotal"`
	UserID         string `json:"userId"`
	Order          int    `json:"order"`
	CreatedAt      string `json:"createdAt"`
	StateID        string `json:"stateId"`
}

func (n dataFieldNode) shape(teams []string) model.Measurable {
	return model.Measurable{
		ID: n.ID, Name: n.Name, Desc: n.Desc, Type: n.Type, UnitType: n.UnitType,
		UnitComparison: n.UnitComparison, GoalTarget: n.GoalTarget, GoalTargetEnd: n.GoalTargetEnd,
		GoalCurrency: n.GoalCurrency, ShowAverage: n.ShowAverage, ShowTotal: n.ShowTotal,
		UserID: n.UserID, Order: n.Order, TeamIDs: nonNil(teams), StateID: n.StateID,
	}
}

type dataValueNode struct {
	ID               string  `json:"id"`
	DataFieldID      string  `json:"dataFieldId"`
	Value            float64 `json:"value"`
	StartDate        string  `json:"startDate"`
	Note             string  `json:"note"`
	CustomGoalTarget string  `json:"customGoalTarget"`
	CreatedAt        string  `json:"createdAt"`
	StateID          string  `json:"stateId"`
}

func (n dataValueNode) shape() model.MeasurableValue {
	return model.MeasurableValue{
		ID: n.ID, DataFieldID: n.DataFieldID, Value: n.Value, StartDate: n.StartDate,
		Note: n.Note, CustomGoalTarget: n.CustomGoalTarget, StateID: n.StateID,
	}
}

var (
	scorecardTypes  = []string{"WEEKLY", "MONTHLY", "QUARTERLY", "ANNUALLY"}
	unitTypes       = []string{"NUMBER", "CURRENCY", "PERCENTAGE", "TIME"}
	unitComparisons = []string{"GTE", "LTE", "EQ", "RANGE"}
)

const defaultPeriods = 13

// periodsBack returns now minus n periods of the given type.
func periodsBack(now time.Time, typ string, n int) time.Time {
	switch typ {
	case "MONTHLY":
		return now.AddDate(0, -n, 0)
	case "QUARTERLY":
		return now.AddDate(0, -3*n, 0)
	case "ANNUALLY":
		return now.AddDate(-n, 0, 0)
	default:
		return now.AddDate(0, 0, -7*n)
	}
}

// currentPeriodStart returns the first day of the period containing now:
// Monday for weekly, the first of the month, the fiscal quarter start, or
// January 1.
func (s *Service) currentPeriodStart(ctx context.Context, now time.Time, typ string) time.Time {
	day := dayStart(now)
	switch typ {
	case "MONTHLY":
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	case "QUARTERLY":
		end := s.identity.QuarterEnd(ctx, s.caller(ctx).CompanyID, day)
		return time.Date(end.Year(), end.Month()-2, 1, 0, 0, 0, 0, day.Location())
	case "ANNUALLY":
		return time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, day.Location())
	default:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	}
}

type ScorecardQuery struct {
	Type           string `json:"type"`
	Periods        int    `json:"periods"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	TeamID         string `json:"teamId"`
	LeadershipTeam bool   `json:"leadershipTeam"`
	UserID         string `json:"userId"`
	DataFieldID    string `json:"dataFieldId"`
	StateID        string `json:"stateId"`
	Page
}

// GetScorecardMeasurables lists measurables with their values in the date
// window. Without startDate the window opens periods units before now.
func (s *Service) GetScorecardMeasurables(ctx context.Context, q ScorecardQuery) (model.Scorecard, error) {
	typ, err := oneOf("type", q.Type, "WEEKLY", scorecardTypes...)
	if err != nil {
		return model.Scorecard{}, err
	}
	state, err := stateID(q.StateID)
	if err != nil {
		return model.Scorecard{}, err
	}
	periods := q.Periods
	if periods <= 0 {
		periods = defaultPeriods
	}
	now := s.now()
	start, end := periodsBack(now, typ, periods), now
	if q.StartDate != "" {
		if start, err = parseDate("startDate", q.StartDate); err != nil {
			return model.Scorecard{}, err
		}
	}
	if q.EndDate != "" {
		if end, err = parseDate("endDate", q.EndDate); err != nil {
			return model.Scorecard{}, err
		}
	}
	if end.Before(start) {
		return model.Scorecard{}, invalid("endDate must not be before startDate")
	}
	out := model.Scorecard{Type: typ, StartDate: start.Format(dateLayout), EndDate: end.Format(dateLayout), Measurables: []model.Measurable{}}

	f := Filter{}.Eq("stateId", state).Eq("type", typ).EqIf("userId", q.UserID).EqIf("id", q.DataFieldID)
	teamID, err := s.teamScope(ctx, q.TeamID, q.LeadershipTeam)
	if err != nil {
		return model.Scorecard{}, err
	}
	if teamID != "" {
		ids, err := s.ownersForTeam(ctx, dataFieldTeams, teamID)
		if err != nil {
			return model.Scorecard{}, err
		}
		if len(ids) == 0 {
			return out, nil
		}
		f.In("id", ids)
	}
	fields, err := list[dataFieldNode](ctx, s, dataFieldEntity, "", f, q.Page, "ORDER_ASC")
	if err != nil {
		return model.Scorecard{}, err
	}
	out.TotalCount = fields.TotalCount
	if len(fields.Nodes) == 0 {
		return out, nil
	}
	ids := make([]string, 0, len(fields.Nodes))
	for _, n := range fields.Nodes {
		ids = append(ids, n.ID)
	}

	var (
		values []dataValueNode
		teams  map[string][]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		vf := Filter{}.In("dataFieldId", ids).Eq("stateId", "ACTIVE").
			Gte("startDate", out.StartDate).Lte("startDate", out.EndDate)
		values, err = listAll[dataValueNode](gctx, s, dataValueEntity, "", vf, "START_DATE_ASC", "PRIMARY_KEY_ASC")
		return err
	})
	g.Go(func() (err error) {
		teams, err = s.activeTeams(gctx, dataFieldTeams, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.Scorecard{}, err
	}

	byField := map[string][]model.MeasurableValue{}
	for _, v := range values {
		byField[v.DataFieldID] = append(byField[v.DataFieldID], v.shape())
	}
	for _, n := range fields.Nodes {
		m := n.shape(teams[n.ID])
		vals := byField[n.ID]
		sort.SliceStable(vals, func(i, j int) bool { return vals[i].StartDate < vals[j].StartDate })
		m.Values = nonNil(vals)
		out.Measurables = append(out.Measurables, m)
	}
	return out, nil
}

type MeasurableArgs struct {
	ID             string   `json:"dataFieldId"`
	Name           string   `json:"name"`
	Desc           string   `json:"desc"`
	Type           string   `json:"type"`
	UnitType       string   `json:"unitType"`
	UnitComparison string   `json:"unitComparison"`
	GoalTarget     string   `json:"goalTarget"`
	GoalTargetEnd  string   `json:"goalTargetEnd"`
	GoalCurrency   string   `json:"goalCurrency"`
	ShowAverage    *bool    `json:"showAverage"`
	ShowTotal      *bool    `json:"showTotal"`
	UserID         string   `json:"userId"`
	TeamIDs        []string `json:"teamIds"`
	LeadershipTeam bool     `json:"leadershipTeam"`
}

func (a MeasurableArgs) fields(typeDef, unitDef, cmpDef string) (patch, error) {
	typ, err := oneOf("type", a.Type, typeDef, scorecardTypes...)
	if err != nil {
		return nil, err
	}
	unit, err := oneOf("unitType", a.UnitType, unitDef, unitTypes...)
	if err != nil {
		return nil, err
	}
	cmp, err := oneOf("unitComparison", a.UnitComparison, cmpDef, unitComparisons...)
	if err != nil {
		return nil, err
	}
	if cmp == "RANGE" && a.GoalTargetEnd == "" && a.ID == "" {
		return nil, invalid("goalTargetEnd is required when unitComparison is RANGE")
	}
	return patch{}.str("name", a.Name).str("desc", a.Desc).str("type", typ).str("unitType", unit).
		str("unitComparison", cmp).str("goalTarget", a.GoalTarget).str("goalTargetEnd", a.GoalTargetEnd).
		str("goalCurrency", a.GoalCurrency).ptr("showAverage", a.ShowAverage).ptr("showTotal", a.ShowTotal).
		str("userId", a.UserID), nil
}

func (s *Service) measurableTeams(ctx context.Context, a MeasurableArgs) ([]string, error) {
	teams := uniq(a.TeamIDs)
	if len(teams) == 0 && a.LeadershipTeam {
		id, err := s.leadershipTeamID(ctx)
		if err != nil {
			return nil, err
		}
		teams = []string{id}
	}
	return teams, nil
}

func (s *Service) CreateScorecardMeasurable(ctx context.Context, a MeasurableArgs) (model.Measurable, error) {
	if err := required("name", a.Name); err != nil {
		return model.Measurable{}, err
	}
	a.ID = ""
	fields, err := a.fields("WEEKLY", "NUMBER", "GTE")
	if err != nil {
		return model.Measurable{}, err
	}
	teams, err := s.measurableTeams(ctx, a)
	if err != nil {
		return model.Measurable{}, err
	}
	if fields["userId"], err = s.owner(ctx, a.UserID); err != nil {
		return model.Measurable{}, err
	}
	fields["stateId"] = "ACTIVE"
	n, err := create[dataFieldNode](ctx, s, dataFieldEntity, s.stamp(ctx, fields))
	if err != nil {
		return model.Measurable{}, err
	}
	changes, err := s.reconcileTeams(ctx, dataFieldTeams, n.ID, teams)
	return n.shape(linkedTeams(changes)), err
}

// UpdateScorecardMeasurable patches a measurable; team links follow the
// same rules as UpdateRock.
func (s *Service) UpdateScorecardMeasurable(ctx context.Context, a MeasurableArgs) (model.Measurable, error) {
	if err := required("dataFieldId", a.ID); err != nil {
		return model.Measurable{}, err
	}
	p, err := a.fields("", "", "")
	if err != nil {
		return model.Measurable{}, err
	}
	relink := a.TeamIDs != nil || a.LeadershipTeam
	teams, err := s.measurableTeams(ctx, a)
	if err != nil {
		return model.Measurable{}, err
	}
	if len(p) == 0 && !relink {
		return model.Measurable{}, p.empty()
	}

	var n dataFieldNode
	if len(p) > 0 {
		if n, err = update[dataFieldNode](ctx, s, dataFieldEntity, a.ID, p); err != nil {
			return model.Measurable{}, err
		}
	} else {
		var found bool
		if n, found, err = byID[dataFieldNode](ctx, s, dataFieldEntity, a.ID); err != nil {
			return model.Measurable{}, err
		} else if !found {
			return model.Measurable{}, invalid("measurable %q not found", a.ID)
		}
	}
	if !relink {
		current, err := s.activeTeams(ctx, dataFieldTeams, []string{n.ID})
		if err != nil {
			return model.Measurable{}, err
		}
		return n.shape(current[n.ID]), nil
	}
	changes, err := s.reconcileTeams(ctx, dataFieldTeams, n.ID, teams)
	return n.shape(linkedTeams(changes)), err
}

type EntryArgs struct {
	ID               string   `json:"dataValueId"`
	DataFieldID      string   `json:"dataFieldId"`
	Value            *float64 `json:"value"`
	StartDate        string   `json:"startDate"`
	Note             string   `json:"note"`
	CustomGoalTarget string   `json:"customGoalTarget"`
}

// CreateScorecardMeasurableEntry records a value. Without startDate the
// entry belongs to the current period of the measurable's type.
func (s *Service) CreateScorecardMeasurableEntry(ctx context.Context, a EntryArgs) (model.MeasurableValue, error) {
	if err := required("dataFieldId", a.DataFieldID); err != nil {
		return model.MeasurableValue{}, err
	}
	if a.Value == nil {
		return model.MeasurableValue{}, invalid("value is required")
	}
	start, err := dueDate("startDate", a.StartDate)
	if err != nil {
		return model.MeasurableValue{}, err
	}
	if start == "" {
		field, found, err := byID[dataFieldNode](ctx, s, dataFieldEntity, a.DataFieldID)
		if err != nil {
			return model.MeasurableValue{}, err
		}
		if !found {
			return model.MeasurableValue{}, invalid("measurable %q not found", a.DataFieldID)
		}
		start = s.currentPeriodStart(ctx, s.now(), field.Type).Format(dateLayout)
	}
	fields := patch{"dataFieldId": a.DataFieldID, "value": *a.Value, "startDate": start, "stateId": "ACTIVE"}.
		str("note", a.Note).str("customGoalTarget", a.CustomGoalTarget)
	n, err := create[dataValueNode](ctx, s, dataValueEntity, s.stamp(ctx, fields))
	if err != nil {
		return model.MeasurableValue{}, err
	}
	return n.shape(), nil
}

func (s *Service) UpdateScorecardMeasurableEntry(ctx context.Context, a EntryArgs) (model.MeasurableValue, error) {
	if err := required("dataValueId", a.ID); err != nil {
		return model.MeasurableValue{}, err
	}
	start, err := dueDate("startDate", a.StartDate)
	if err != nil {
		return model.MeasurableValue{}, err
	}
	p := patch{}.ptr("value", a.Value).str("startDate", start).str("note", a.Note).
		str("customGoalTarget", a.CustomGoalTarget)
	if err := p.empty(); err != nil {
		return model.MeasurableValue{}, err
	}
	n, err := update[dataValueNode](ctx, s, dataValueEntity, a.ID, p)
	if err != nil {
		return model.MeasurableValue{}, err
	}
	return n.shape(), nil
}
