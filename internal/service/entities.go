package service

import (
	"fmt"
	"strings"
)

// entity describes one upstream collection. Documents are generated from
// this metadata only; argument values always travel as variables.
type entity struct {
	Type   string // GraphQL type name, e.g. Todo
	Plural string // connection field, e.g. todos
	Fields string // selection set for nodes
}

func (e entity) single() string {
	return strings.ToLower(e.Type[:1]) + e.Type[1:]
}

func (e entity) pluralType() string {
	return strings.ToUpper(e.Plural[:1]) + e.Plural[1:]
}

// listOp is the default operation name of the list query.
func (e entity) listOp() string { return e.pluralType() }

func (e entity) listQuery(op string) string {
	return fmt.Sprintf(`query %s($filter: %sFilter, $first: Int, $offset: Int, $orderBy: [%sOrderBy!]) {
  %s(filter: $filter, first: $first, offset: $offset, orderBy: $orderBy) {
    totalCount
    nodes { %s }
  }
}`, op, e.Type, e.pluralType(), e.Plural, e.Fields)
}

func (e entity) createOp() string { return "Create" + e.Type }
func (e entity) updateOp() string { return "Update" + e.Type }

func (e entity) createMutation() string {
	return fmt.Sprintf(`mutation %s($input: Create%sInput!) {
  create%s(input: $input) { %s { %s } }
}`, e.createOp(), e.Type, e.Type, e.single(), e.Fields)
}

func (e entity) updateMutation() string {
	return fmt.Sprintf(`mutation %s($input: Update%sInput!) {
  update%s(input: $input) { %s { %s } }
}`, e.updateOp(), e.Type, e.Type, e.single(), e.Fields)
}

var (
	teamEntity = entity{"Team", "teams",
		"id name desc color isLeadership stateId createdAt"}
	teamsOnUserEntity = entity{"TeamsOnUser", "teamsOnUsers",
		"id teamId userId stateId"}
	userEntity = entity{"User", "users",
		"id firstName lastName email jobTitle desc timeZone avatar userPermissionId stateId"}
	todoEntity = entity{"Todo", "todos",
		"id name desc todoStatusId dueDate teamId userId meetingId createdAt statusUpdatedAt stateId"}
	rockEntity = entity{"Rock", "rocks",
		"id name desc rockStatusId dueDate type userId createdAt statusUpdatedAt stateId"}
	teamsOnRockEntity = entity{"TeamsOnRock", "teamsOnRocks",
		"id teamId rockId stateId"}
	milestoneEntity = entity{"Milestone", "milestones",
		"id name desc rockId userId dueDate milestoneStatusId createdAt stateId"}
	meetingEntity = entity{"Meeting", "meetings",
		"id date startTime endTime meetingInfoId meetingStatusId averageRating createdAt stateId"}
	meetingInfoEntity = entity{"MeetingInfo", "meetingInfos",
		"id name teamId meetingAgendaId meetingRepeatsId repeatInterval repeatUnit selectedDays createdAt stateId"}
	meetingAgendaEntity = entity{"MeetingAgenda", "meetingAgendas",
		"id name teamId meetingAgendaTypeId facilitatorUserId createdAt stateId"}
	issueEntity = entity{"Issue", "issues",
		"id name desc issueStatusId type priorityNo priorityOrder teamId userId meetingId createdAt statusUpdatedAt stateId"}
	headlineEntity = entity{"Headline", "headlines",
		"id name desc status teamId userId meetingId isCascadingMessage createdAt stateId"}
	dataFieldEntity = entity{"DataField", "dataFields",
		"id name desc type unitType unitComparison goalTarget goalTargetEnd goalCurrency showAverage showTotal userId order createdAt stateId"}
	teamsOnDataFieldEntity = entity{"TeamsOnDataField", "teamsOnDataFields",
		"id teamId dataFieldId stateId"}
	dataValueEntity = entity{"DataValue", "dataValues",
		"id dataFieldId value startDate note customGoalTarget createdAt stateId"}
	visionEntity = entity{"Vision", "visions",
		"id teamId isLeadership createdAt stateId"}
	coreValueEntity = entity{"VisionCoreValue", "visionCoreValues",
		"id name desc visionId position stateId"}
	coreFocusEntity = entity{"VisionCoreFocusType", "visionCoreFocusTypes",
		"id name desc type visionId stateId"}
	threeYearGoalEntity = entity{"VisionThreeYearGoal", "visionThreeYearGoals",
		"id name futureDate type visionId position stateId"}
	marketStrategyEntity = entity{"VisionMarketStrategy", "visionMarketStrategies",
		"id name idealCustomer idealCustomerDesc provenProcess provenProcessDesc guarantee guaranteeDesc uniqueValueProposition visionId stateId"}
	orgChartEntity = entity{"OrgChart", "orgCharts",
		"id name isPrimary createdAt stateId"}
	orgChartSeatEntity = entity{"OrgChartSeat", "orgChartSeats",
		"id name orgChartId parentId holders order stateId"}
	roleEntity = entity{"OrgChartRolesResponsibility", "orgChartRolesResponsibilities",
		"id name desc orgChartSeatId stateId"}
	peopleAnalyzerEntity = entity{"PeopleAnalyzerSession", "peopleAnalyzerSessions",
		"id name teamId peopleAnalyzerSessionStatusId createdAt stateId"}
	peopleAnalyzerUserEntity = entity{"PeopleAnalyzerSessionUser", "peopleAnalyzerSessionUsers",
		"id peopleAnalyzerSessionId userId getsIt wantsIt capacityToDoIt coreValuesScore stateId"}
	orgCheckupEntity = entity{"OrgCheckup", "orgCheckups",
		"id name status score createdAt completedAt stateId"}
	orgCheckupAnswerEntity = entity{"OrgCheckupAnswer", "orgCheckupAnswers",
		"id orgCheckupId question score stateId"}
)
