package service

import (
	"fmt"
	"strings"
	"time"

	"success-mcp/internal/model"

	"github.com/dustin/go-humanize"
)

// RenderVTO formats the vision/traction summary as Markdown.
func RenderVTO(v model.VTO) string {
	var sb strings.Builder
	sb.WriteString("# Leadership Vision/Traction Organizer\n")

	sb.WriteString("\n## Core Values\n")
	if len(v.CoreValues) == 0 {
		sb.WriteString("_None defined._\n")
	}
	for _, cv := range v.CoreValues {
		writeItem(&sb, cv.Name, cv.Desc)
	}

	sb.WriteString("\n## Core Focus\n")
	if len(v.CoreFocus) == 0 {
		sb.WriteString("_None defined._\n")
	}
	for _, cf := range v.CoreFocus {
		label := cf.Name
		if cf.Type != "" {
			label = fmt.Sprintf("%s (%s)", cf.Name, strings.ToLower(strings.ReplaceAll(cf.Type, "_", " ")))
		}
		writeItem(&sb, label, cf.Desc)
	}

	sb.WriteString("\n## 3-Year Picture\n")
	if len(v.ThreeYearGoals) == 0 {
		sb.WriteString("_None defined._\n")
	}
	for _, g := range v.ThreeYearGoals {
		label := g.Name
		if g.FutureDate != "" {
			label = fmt.Sprintf("%s (by %s)", g.Name, g.FutureDate)
		}
		writeItem(&sb, label, "")
	}

	sb.WriteString("\n## Marketing Strategy\n")
	if len(v.MarketStrategies) == 0 {
		sb.WriteString("_None defined._\n")
	}
	for _, m := range v.MarketStrategies {
		sb.WriteString(fmt.Sprintf("### %s\n", m.Name))
		writeField(&sb, "Ideal customer", m.IdealCustomer, m.IdealCustomerDesc)
		writeField(&sb, "Proven process", m.ProvenProcess, m.ProvenProcessDesc)
		writeField(&sb, "Guarantee", m.Guarantee, m.GuaranteeDesc)
		writeField(&sb, "Unique value proposition", m.UniqueValueProposition, "")
	}

	sb.WriteString(fmt.Sprintf("\n---\n%d core values, %d focus items, %d goals, %d strategies\n",
		v.Counts["coreValues"], v.Counts["coreFocus"], v.Counts["threeYearGoals"], v.Counts["marketStrategies"]))
	return sb.String()
}

func writeItem(sb *strings.Builder, name, desc string) {
	if desc == "" {
		sb.WriteString(fmt.Sprintf("- **%s**\n", name))
		return
	}
	sb.WriteString(fmt.Sprintf("- **%s**: %s\n", name, desc))
}

func writeField(sb *strings.Builder, label, value, desc string) {
	if value == "" && desc == "" {
		return
	}
	text := strings.TrimSpace(strings.Join([]string{value, desc}, " "))
	sb.WriteString(fmt.Sprintf("- %s: %s\n", label, text))
}

// RenderChart formats the seat tree as indented Markdown.
func RenderChart(c model.Chart) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Accountability Chart: %s\n\n", c.Name))
	sb.WriteString(fmt.Sprintf("%s seats\n\n", humanize.Comma(int64(c.SeatCount))))
	for _, r := range c.Roots {
		writeSeat(&sb, r)
	}
	return sb.String()
}

func writeSeat(sb *strings.Builder, s *model.Seat) {
	indent := strings.Repeat("  ", s.Level)
	names := make([]string, 0, len(s.Holders))
	for _, h := range s.Holders {
		if h.Name != "" {
			names = append(names, h.Name)
		} else {
			names = append(names, h.ID)
		}
	}
	holders := "_vacant_"
	if len(names) > 0 {
		holders = strings.Join(names, ", ")
	}
	sb.WriteString(fmt.Sprintf("%s- **%s**: %s\n", indent, s.Name, holders))
	for _, r := range s.Roles {
		if r.Desc != "" {
			sb.WriteString(fmt.Sprintf("%s  - %s: %s\n", indent, r.Name, r.Desc))
		} else {
			sb.WriteString(fmt.Sprintf("%s  - %s\n", indent, r.Name))
		}
	}
	for _, c := range s.Children {
		writeSeat(sb, c)
	}
}

// RenderMeetingDetails formats meetings with their items. Dates are shown
// relative to now.
func RenderMeetingDetails(details []model.MeetingDetail, now time.Time) string {
	if len(details) == 0 {
		return "No meetings found.\n"
	}
	var sb strings.Builder
	for i, d := range details {
		if i > 0 {
			sb.WriteString("\n")
		}
		title := d.Name
		if title == "" {
			title = "Meeting"
		}
		sb.WriteString(fmt.Sprintf("## %s (%s)\n", title, relativeDate(d.Date, now)))
		if d.TeamName != "" {
			sb.WriteString(fmt.Sprintf("Team: %s\n", d.TeamName))
		}
		if d.AverageRating != nil {
			sb.WriteString(fmt.Sprintf("Rating: %s\n", humanize.FormatFloat("#.#", *d.AverageRating)))
		}
		sb.WriteString(fmt.Sprintf("\n### Headlines (%d)\n", len(d.Headlines)))
		for _, h := range d.Headlines {
			sb.WriteString(fmt.Sprintf("- %s [%s]\n", h.Name, h.Status))
		}
		sb.WriteString(fmt.Sprintf("\n### To-dos (%d)\n", len(d.Todos)))
		for _, t := range d.Todos {
			mark := " "
			if t.Status == "COMPLETE" {
				mark = "x"
			}
			line := fmt.Sprintf("- [%s] %s", mark, t.Name)
			if t.DueDate != "" {
				line += ", due " + relativeDate(t.DueDate, now)
			}
			sb.WriteString(line + "\n")
		}
		sb.WriteString(fmt.Sprintf("\n### Issues (%d)\n", len(d.Issues)))
		for _, is := range d.Issues {
			sb.WriteString(fmt.Sprintf("- %s (%s, %s)\n", is.Name, is.Type, is.Status))
		}
	}
	return sb.String()
}

func relativeDate(v string, now time.Time) string {
	t, err := parseDate("date", v)
	if err != nil {
		return v
	}
	return fmt.Sprintf("%s, %s", t.Format(dateLayout), humanize.RelTime(t, now, "ago", "from now"))
}

// RenderScorecard formats measurables and their values as a Markdown table
// per measurable.
func RenderScorecard(sc model.Scorecard) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Scorecard (%s, %s to %s)\n", strings.ToLower(sc.Type), sc.StartDate, sc.EndDate))
	for _, m := range sc.Measurables {
		sb.WriteString(fmt.Sprintf("\n## %s\n", m.Name))
		if m.GoalTarget != "" {
			goal := m.GoalTarget
			if m.GoalTargetEnd != "" {
				goal += " to " + m.GoalTargetEnd
			}
			sb.WriteString(fmt.Sprintf("Goal: %s %s\n", m.UnitComparison, goal))
		}
		if len(m.Values) == 0 {
			sb.WriteString("_No entries._\n")
			continue
		}
		sb.WriteString("| Period | Value | Note |\n|---|---|---|\n")
		for _, v := range m.Values {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", v.StartDate, humanize.Commaf(v.Value), v.Note))
		}
	}
	return sb.String()
}
