package model

// Page is one page of a connection read.
type Page[T any] struct {
	TotalCount int `json:"totalCount"`
	Results    []T `json:"results"`
}

type Team struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Desc         string `json:"desc,omitempty"`
	Color        string `json:"color,omitempty"`
	IsLeadership bool   `json:"isLeadership"`
	StateID      string `json:"stateId"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	Email      string `json:"email,omitempty"`
	JobTitle   string `json:"jobTitle,omitempty"`
	Desc       string `json:"desc,omitempty"`
	TimeZone   string `json:"timeZone,omitempty"`
	Avatar     string `json:"avatar,omitempty"`
	Permission string `json:"permission,omitempty"`
	StateID    string `json:"stateId"`
}

type Todo struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Desc            string `json:"desc,omitempty"`
	Status          string `json:"status"`
	Overdue         bool   `json:"overdue"`
	DueDate         string `json:"dueDate,omitempty"`
	TeamID          string `json:"teamId,omitempty"`
	UserID          string `json:"userId,omitempty"`
	MeetingID       string `json:"meetingId,omitempty"`
	CreatedAt       string `json:"createdAt,omitempty"`
	StatusUpdatedAt string `json:"statusUpdatedAt,omitempty"`
	StateID         string `json:"stateId"`
}

type Rock struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Desc            string   `json:"desc,omitempty"`
	Status          string   `json:"status"`
	DueDate         string   `json:"dueDate,omitempty"`
	Type            string   `json:"type,omitempty"`
	UserID          string   `json:"userId,omitempty"`
	TeamIDs         []string `json:"teamIds"`
	CreatedAt       string   `json:"createdAt,omitempty"`
	StatusUpdatedAt string   `json:"statusUpdatedAt,omitempty"`
	StateID         string   `json:"stateId"`
}

type Milestone struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Desc      string `json:"desc,omitempty"`
	RockID    string `json:"rockId"`
	UserID    string `json:"userId,omitempty"`
	DueDate   string `json:"dueDate,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt,omitempty"`
	StateID   string `json:"stateId"`
}

type Issue struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Desc            string `json:"desc,omitempty"`
	Status          string `json:"status"`
	Type            string `json:"type"`
	PriorityNo      int    `json:"priorityNo"`
	PriorityOrder   int    `json:"priorityOrder"`
	TeamID          string `json:"teamId,omitempty"`
	UserID          string `json:"userId,omitempty"`
	MeetingID       string `json:"meetingId,omitempty"`
	CreatedAt       string `json:"createdAt,omitempty"`
	StatusUpdatedAt string `json:"statusUpdatedAt,omitempty"`
	StateID         string `json:"stateId"`
}

type Headline struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Desc        string `json:"desc,omitempty"`
	Status      string `json:"status"`
	TeamID      string `json:"teamId,omitempty"`
	UserID      string `json:"userId,omitempty"`
	MeetingID   string `json:"meetingId,omitempty"`
	IsCascading bool   `json:"isCascadingMessage"`
	CreatedAt   string `json:"createdAt,omitempty"`
	StateID     string `json:"stateId"`
}

type Meeting struct {
	ID            string   `json:"id"`
	Date          string   `json:"date"`
	StartTime     string   `json:"startTime,omitempty"`
	EndTime       string   `json:"endTime,omitempty"`
	Status        string   `json:"status,omitempty"`
	AverageRating *float64 `json:"averageRating,omitempty"`
	MeetingInfoID string   `json:"meetingInfoId"`
	Name          string   `json:"name,omitempty"`
	TeamID        string   `json:"teamId,omitempty"`
	TeamName      string   `json:"teamName,omitempty"`
	CreatedAt     string   `json:"createdAt,omitempty"`
	StateID       string   `json:"stateId"`
}

type MeetingInfo struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	TeamID          string `json:"teamId"`
	MeetingAgendaID string `json:"meetingAgendaId,omitempty"`
	Repeats         string `json:"repeats,omitempty"`
	RepeatInterval  int    `json:"repeatInterval,omitempty"`
	RepeatUnit      string `json:"repeatUnit,omitempty"`
	SelectedDays    string `json:"selectedDays,omitempty"`
	CreatedAt       string `json:"createdAt,omitempty"`
	StateID         string `json:"stateId"`
}

type MeetingAgenda struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	TeamID            string `json:"teamId,omitempty"`
	Type              string `json:"type,omitempty"`
	FacilitatorUserID string `json:"facilitatorUserId,omitempty"`
	CreatedAt         string `json:"createdAt,omitempty"`
	StateID           string `json:"stateId"`
}

// CreatedMeeting reports both rows written by a meeting creation.
type CreatedMeeting struct {
	MeetingInfo *MeetingInfo `json:"meetingInfo,omitempty"`
	Meeting     *Meeting     `json:"meeting,omitempty"`
}

type Deleted struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	StateID string `json:"stateId"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	Name      string `json:"name"`
	ExpiresAt int64  `json:"expiresAt"`
}
