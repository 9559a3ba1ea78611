package service

import (
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-dashboard/internal/model"
	"task-dashboard/internal/store"
)

func ptr(s string) *string { return &s }

func TestDashboardSummary(t *testing.T) {
	now := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	d := store.Dashboard{
		Session: model.Session{DisplayName: "Ada <admin>"},
		Overall: model.Progress{Completed: 1, Total: 3},
		Projects: []model.Project{
			{ID: "p1", Name: "Site & Blog", Category: "Work", Icon: "🌐", Progress: model.Progress{Completed: 1, Total: 2}},
		},
		Recent: []model.Task{
			{Name: "Write post", ProjectID: ptr("p1"), Priority: model.PriorityHigh, Completed: true},
			{Name: "Call mom", Priority: model.PriorityLow},
		},
		ProjectNames: map[string]string{"p1": "Site & Blog"},
	}

	out := NewReportService(time.UTC).DashboardSummary(d, now)

	assert.Contains(t, out, "2024-03-09")
	assert.Contains(t, out, "Ada &lt;admin&gt;")
	assert.Contains(t, out, "1/3 (33%)")
	assert.Contains(t, out, "<b>Site &amp; Blog</b> <i>(Work)</i>")
	assert.Contains(t, out, "1/2 (50%)")
	assert.Contains(t, out, "✅ 🔴 <s>Write post</s> <i>· Site &amp; Blog</i>")
	assert.Contains(t, out, "⬜️ 🟢 Call mom <i>· General Tasks</i>")
	assert.NotContains(t, out, "(demo)")
}

func TestDashboardSummaryEmpty(t *testing.T) {
	d := store.Dashboard{Session: model.DemoUser}
	out := NewReportService(nil).DashboardSummary(d, time.Now())

	assert.Contains(t, out, "(demo)")
	assert.Contains(t, out, "0/0 (0%)")
	assert.Contains(t, out, "no projects yet")
	assert.Contains(t, out, "no tasks yet")
}

func TestProgressLine(t *testing.T) {
	line := ProgressLine(model.Progress{Completed: 7, Total: 10})
	assert.True(t, strings.HasPrefix(line, "7/10 (70%) "))
	assert.Equal(t, 7, strings.Count(line, "▓"))
	assert.Equal(t, 3, strings.Count(line, "░"))

	assert.Equal(t, 10, strings.Count(ProgressLine(model.Progress{Completed: 4, Total: 4}), "▓"))
}

func TestBuildDailySpec(t *testing.T) {
	spec, err := buildDailySpec("08:30")
	require.NoError(t, err)
	assert.Equal(t, "0 30 8 * * *", spec)

	for _, bad := range []string{"", "8", "24:00", "12:60", "aa:bb"} {
		_, err := buildDailySpec(bad)
		assert.Error(t, err, bad)
	}
}

func TestSchedulerRunsIntervalJobs(t *testing.T) {
	s := NewSchedulerService(time.UTC, nil)
	var runs atomic.Int32
	id, err := s.ScheduleInterval(time.Second, func() { runs.Add(1) })
	require.NoError(t, err)

	_, err = s.ScheduleInterval(0, func() {})
	assert.Error(t, err)
	_, err = s.ScheduleDaily("7:05", func() {})
	require.NoError(t, err)

	s.Start()
	defer s.Stop()
	assert.False(t, s.Next(id).IsZero())
	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}
