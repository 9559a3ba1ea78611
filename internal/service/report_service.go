package service

import (
	"fmt"
	"html"
	"strings"
	"time"

	"task-dashboard/internal/model"
	"task-dashboard/internal/store"
)

// ReportService renders dashboard snapshots as Telegram HTML.
type ReportService struct {
	loc *time.Location
}

func NewReportService(loc *time.Location) *ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &ReportService{loc: loc}
}

// DashboardSummary renders the overall progress, every project's progress and
// the most recent tasks.
func (s *ReportService) DashboardSummary(d store.Dashboard, now time.Time) string {
	var builder strings.Builder
	builder.WriteString("📊 <b>Dashboard</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s · %s", now.In(s.loc).Format("2006-01-02"), html.EscapeString(d.Session.DisplayName)))
	if d.Session.IsDemo {
		builder.WriteString(" <i>(demo)</i>")
	}
	builder.WriteString("\n\n")

	builder.WriteString(fmt.Sprintf("✅ <b>Overall progress</b>: %s\n", ProgressLine(d.Overall)))

	builder.WriteString("\n📁 <b>Projects</b>\n")
	if len(d.Projects) == 0 {
		builder.WriteString("— no projects yet\n")
	} else {
		for _, p := range d.Projects {
			builder.WriteString(FormatProject(p))
		}
	}

	builder.WriteString("\n🕒 <b>Recent tasks</b>\n")
	if len(d.Recent) == 0 {
		builder.WriteString("— no tasks yet\n")
	} else {
		for _, t := range d.Recent {
			builder.WriteString(FormatTask(t, d.ProjectLabel(t)))
		}
	}

	return strings.TrimSpace(builder.String())
}

// ProgressLine renders "7/10 (70%) ▓▓▓▓▓▓▓░░░".
func ProgressLine(p model.Progress) string {
	pct := p.Percent()
	filled := pct / 10
	bar := strings.Repeat("▓", filled) + strings.Repeat("░", 10-filled)
	return fmt.Sprintf("%d/%d (%d%%) %s", p.Completed, p.Total, pct, bar)
}

// FormatProject renders one project line with its progress.
func FormatProject(p model.Project) string {
	var sb strings.Builder
	if icon := strings.TrimSpace(p.Icon); icon != "" {
		sb.WriteString(html.EscapeString(icon) + " ")
	} else {
		sb.WriteString("📁 ")
	}
	sb.WriteString("<b>" + html.EscapeString(p.Name) + "</b>")
	if category := strings.TrimSpace(p.Category); category != "" {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(category)))
	}
	sb.WriteString("\n   " + ProgressLine(p.Progress) + "\n")
	return sb.String()
}

// FormatTask renders one task line labelled with its project.
func FormatTask(t model.Task, label string) string {
	icon := "⬜️"
	if t.Completed {
		icon = "✅"
	}
	title := html.EscapeString(strings.TrimSpace(t.Name))
	if t.Completed {
		title = "<s>" + title + "</s>"
	}
	return fmt.Sprintf("%s %s %s <i>· %s</i>\n", icon, priorityIcon(t.Priority), title, html.EscapeString(label))
}

func priorityIcon(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "🔴"
	case model.PriorityLow:
		return "🟢"
	default:
		return "🟡"
	}
}
