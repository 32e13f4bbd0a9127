package model

type Measurable struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Desc           string            `json:"desc,omitempty"`
	Type           string            `json:"type"`
	UnitType       string            `json:"unitType,omitempty"`
	UnitComparison string            `json:"unitComparison,omitempty"`
	GoalTarget     string            `json:"goalTarget,omitempty"`
	GoalTargetEnd  string            `json:"goalTargetEnd,omitempty"`
	GoalCurrency   string            `json:"goalCurrency,omitempty"`
	ShowAverage    bool              `json:"showAverage"`
	ShowTotal      bool              `json:"showTotal"`
	UserID         string            `json:"userId,omitempty"`
	Order          int               `json:"order"`
	TeamIDs        []string          `json:"teamIds"`
	Values         []MeasurableValue `json:"values,omitempty"`
	StateID        string            `json:"stateId"`
}

type MeasurableValue struct {
	ID               string  `json:"id"`
	DataFieldID      string  `json:"dataFieldId"`
	Value            float64 `json:"value"`
	StartDate        string  `json:"startDate"`
	Note             string  `json:"note,omitempty"`
	CustomGoalTarget string  `json:"customGoalTarget,omitempty"`
	StateID          string  `json:"stateId"`
}

type Scorecard struct {
	Type        string       `json:"type"`
	StartDate   string       `json:"startDate"`
	EndDate     string       `json:"endDate"`
	TotalCount  int          `json:"totalCount"`
	Measurables []Measurable `json:"measurables"`
}

type VisionItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Desc       string `json:"desc,omitempty"`
	Type       string `json:"type,omitempty"`
	FutureDate string `json:"futureDate,omitempty"`
	Position   int    `json:"position,omitempty"`
}

type MarketStrategy struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	IdealCustomer          string `json:"idealCustomer,omitempty"`
	IdealCustomerDesc      string `json:"idealCustomerDesc,omitempty"`
	ProvenProcess          string `json:"provenProcess,omitempty"`
	ProvenProcessDesc      string `json:"provenProcessDesc,omitempty"`
	Guarantee              string `json:"guarantee,omitempty"`
	GuaranteeDesc          string `json:"guaranteeDesc,omitempty"`
	UniqueValueProposition string `json:"uniqueValueProposition,omitempty"`
}

// VTO is the leadership vision/traction summary.
type VTO struct {
	VisionID         string           `json:"visionId"`
	TeamID           string           `json:"teamId,omitempty"`
	CoreValues       []VisionItem     `json:"coreValues"`
	CoreFocus        []VisionItem     `json:"coreFocus"`
	ThreeYearGoals   []VisionItem     `json:"threeYearGoals"`
	MarketStrategies []MarketStrategy `json:"marketStrategies"`
	Counts           map[string]int   `json:"counts"`
}

type Holder struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type Role struct {
	Name string `json:"name"`
	Desc string `json:"desc,omitempty"`
}

type Seat struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	ParentID string   `json:"parentId,omitempty"`
	Order    int      `json:"order"`
	Level    int      `json:"level"`
	Holders  []Holder `json:"holders"`
	Roles    []Role   `json:"roles"`
	Children []*Seat  `json:"children,omitempty"`
}

type Chart struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	SeatCount int     `json:"seatCount"`
	Roots     []*Seat `json:"roots"`
}

type MeetingDetail struct {
	Meeting
	Headlines []Headline `json:"headlines"`
	Todos     []Todo     `json:"todos"`
	Issues    []Issue    `json:"issues"`
}

type PeopleScore struct {
	UserID          string  `json:"userId"`
	GetsIt          bool    `json:"getsIt"`
	WantsIt         bool    `json:"wantsIt"`
	CapacityToDoIt  bool    `json:"capacityToDoIt"`
	CoreValuesScore float64 `json:"coreValuesScore"`
}

type PeopleAnalyzerSession struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	TeamID    string        `json:"teamId,omitempty"`
	Status    string        `json:"status,omitempty"`
	CreatedAt string        `json:"createdAt,omitempty"`
	Scores    []PeopleScore `json:"scores,omitempty"`
}

type OrgCheckupAnswer struct {
	Question string  `json:"question"`
	Score    float64 `json:"score"`
}

type OrgCheckup struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Status      string             `json:"status,omitempty"`
	Score       float64            `json:"score"`
	CreatedAt   string             `json:"createdAt,omitempty"`
	CompletedAt string             `json:"completedAt,omitempty"`
	Answers     []OrgCheckupAnswer `json:"answers,omitempty"`
}

type SearchResult struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

type FetchResult struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
	Data  any    `json:"data"`
}

// LinkChanges summarises one team-link reconciliation.
type LinkChanges struct {
	Created     []string `json:"created,omitempty"`
	Reactivated []string `json:"reactivated,omitempty"`
	Removed     []string `json:"removed,omitempty"`
	Unchanged   []string `json:"unchanged,omitempty"`
}

// APIKeyStatus reports where the active key came from.
type APIKeyStatus struct {
	Source string `json:"source"`
	Key    string `json:"key,omitempty"`
	Path   string `json:"path,omitempty"`
}
