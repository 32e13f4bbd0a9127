package service

import (
	"context"
	"time"

	"success-mcp/internal/model"
)

type todoNode struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Desc            string `json:"desc"`
	TodoStatusID    string `json:"todoStatusId"`
	DueDate         string `json:"dueDate"`
	TeamID          string `json:"teamId"`
	UserID          string `json:"userId"`
	MeetingID       string `json:"meetingId"`
	CreatedAt       string `json:"createdAt"`
	StatusUpdatedAt string `json:"statusUpdatedAt"`
	StateID         string `json:"stateId"`
}

func (n todoNode) shape(now time.Time) model.Todo {
	t := model.Todo{
		ID: n.ID, Name: n.Name, Desc: n.Desc, Status: n.TodoStatusID, DueDate: n.DueDate,
		TeamID: n.TeamID, UserID: n.UserID, MeetingID: n.MeetingID, CreatedAt: n.CreatedAt,
		StatusUpdatedAt: n.StatusUpdatedAt, StateID: n.StateID,
	}
	if n.TodoStatusID == "TODO" && n.DueDate != "" {
		if due, err := parseDate("dueDate", n.DueDate); err == nil {
			t.Overdue = due.Before(now)
		}
	}
	return t
}

var todoStatuses = []string{"TODO", "COMPLETE", "OVERDUE", "ALL"}

type TodoQuery struct {
	StateID         string `json:"stateId"`
	Status          string `json:"status"`
	TeamID          string `json:"teamId"`
	LeadershipTeam  bool   `json:"leadershipTeam"`
	UserID          string `json:"userId"`
	MeetingID       string `json:"meetingId"`
	FromMeetings    bool   `json:"fromMeetings"`
	Keyword         string `json:"keyword"`
	CreatedAfter    string `json:"createdAfter"`
	CreatedBefore   string `json:"createdBefore"`
	CompletedAfter  string `json:"completedAfter"`
	CompletedBefore string `json:"completedBefore"`
	Page
}

func (s *Service) todoFilter(ctx context.Context, q TodoQuery) (Filter, error) {
	state, err := stateID(q.StateID)
	if err != nil {
		return nil, err
	}
	status, err := oneOf("status", q.Status, "ALL", todoStatuses...)
	if err != nil {
		return nil, err
	}
	f := Filter{}.Eq("stateId", state)
	if err := dateRange(f, "createdAt", "createdAfter", q.CreatedAfter, "createdBefore", q.CreatedBefore); err != nil {
		return nil, err
	}
	if err := dateRange(f, "statusUpdatedAt", "completedAfter", q.CompletedAfter, "completedBefore", q.CompletedBefore); err != nil {
		return nil, err
	}
	teamID, err := s.teamScope(ctx, q.TeamID, q.LeadershipTeam)
	if err != nil {
		return nil, err
	}

	switch status {
	case "TODO", "COMPLETE":
		f.Eq("todoStatusId", status)
	case "OVERDUE":
		f.Eq("todoStatusId", "TODO").Lt("dueDate", s.now().UTC().Format(time.RFC3339))
	}
	f.EqIf("teamId", teamID).EqIf("userId", q.UserID).EqIf("meetingId", q.MeetingID)
	if q.FromMeetings && q.MeetingID == "" {
		f.IsNull("meetingId", false)
	}
	return f.Keyword(q.Keyword), nil
}

func (s *Service) GetTodos(ctx context.Context, q TodoQuery) (model.Page[model.Todo], error) {
	f, err := s.todoFilter(ctx, q)
	if err != nil {
		return model.Page[model.Todo]{}, err
	}
	c, err := listPage[todoNode](ctx, s, todoEntity, "", f, q.Page, "DUE_DATE_ASC")
	warn, err := splitPartial(err)
	if err != nil {
		return model.Page[model.Todo]{}, err
	}
	return s.shapeTodos(c), warn
}

func (s *Service) shapeTodos(c connection[todoNode]) model.Page[model.Todo] {
	now := s.now()
	out := model.Page[model.Todo]{TotalCount: c.TotalCount, Results: make([]model.Todo, 0, len(c.Nodes))}
	for _, n := range c.Nodes {
		out.Results = append(out.Results, n.shape(now))
	}
	return out
}

type CreateTodoArgs struct {
	Name           string `json:"name"`
	Desc           string `json:"desc"`
	TeamID         string `json:"teamId"`
	LeadershipTeam bool   `json:"leadershipTeam"`
	UserID         string `json:"userId"`
	DueDate        string `json:"dueDate"`
	MeetingID      string `json:"meetingId"`
}

const defaultTodoDays = 7

func (s *Service) CreateTodo(ctx context.Context, a CreateTodoArgs) (model.Todo, error) {
	if err := required("name", a.Name); err != nil {
		return model.Todo{}, err
	}
	due, err := dueDate("dueDate", a.DueDate)
	if err != nil {
		return model.Todo{}, err
	}
	if due == "" {
		due = s.now().AddDate(0, 0, defaultTodoDays).Format(dateLayout)
	}
	teamID, err := s.teamScope(ctx, a.TeamID, a.LeadershipTeam)
	if err != nil {
		return model.Todo{}, err
	}
	userID, err := s.owner(ctx, a.UserID)
	if err != nil {
		return model.Todo{}, err
	}

	fields := patch{"name": a.Name, "todoStatusId": "TODO", "dueDate": due, "userId": userID, "stateId": "ACTIVE"}.
		str("desc", a.Desc).str("teamId", teamID).str("meetingId", a.MeetingID)
	n, err := create[todoNode](ctx, s, todoEntity, s.stamp(ctx, fields))
	if err != nil {
		return model.Todo{}, err
	}
	return n.shape(s.now()), nil
}

type UpdateTodoArgs struct {
	ID      string `json:"todoId"`
	Name    string `json:"name"`
	Desc    string `json:"desc"`
	Status  string `json:"status"`
	DueDate string `json:"dueDate"`
	UserID  string `json:"userId"`
	TeamID  string `json:"teamId"`
}

func (s *Service) UpdateTodo(ctx context.Context, a UpdateTodoArgs) (model.Todo, error) {
	if err := required("todoId", a.ID); err != nil {
		return model.Todo{}, err
	}
	status, err := oneOf("status", a.Status, "", "TODO", "COMPLETE")
	if err != nil {
		return model.Todo{}, err
	}
	due, err := dueDate("dueDate", a.DueDate)
	if err != nil {
		return model.Todo{}, err
	}
	p := patch{}.str("name", a.Name).str("desc", a.Desc).str("dueDate", due).
		str("userId", a.UserID).str("teamId", a.TeamID)
	if status != "" {
		p["todoStatusId"] = status
		p["statusUpdatedAt"] = s.now().UTC().Format(time.RFC3339)
	}
	if err := p.empty(); err != nil {
		return model.Todo{}, err
	}
	n, err := update[todoNode](ctx, s, todoEntity, a.ID, p)
	if err != nil {
		return model.Todo{}, err
	}
	return n.shape(s.now()), nil
}

func (s *Service) DeleteTodo(ctx context.Context, id string) (model.Deleted, error) {
	return s.softDelete(ctx, todoEntity, id)
}
