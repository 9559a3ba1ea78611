package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParsePriority(t *testing.T) {
	cases := map[string]Priority{
		"":        PriorityMedium,
		"low":     PriorityLow,
		" HIGH ":  PriorityHigh,
		"Medium":  PriorityMedium,
	}
	for in, want := range cases {
		got, err := ParsePriority(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePriority("urgent")
	assert.Error(t, err)
}

func TestProgressPercent(t *testing.T) {
	assert.Equal(t, 0, Progress{}.Percent())
	assert.Equal(t, 0, Progress{Completed: 0, Total: 3}.Percent())
	assert.Equal(t, 33, Progress{Completed: 1, Total: 3}.Percent())
	assert.Equal(t, 66, Progress{Completed: 2, Total: 3}.Percent())
	assert.Equal(t, 100, Progress{Completed: 4, Total: 4}.Percent())
	assert.Equal(t, 100, Progress{Completed: 5, Total: 4}.Percent())
}

func TestProgressOf(t *testing.T) {
	tasks := []Task{
		{ID: "1", ProjectID: strPtr("p1"), Completed: true},
		{ID: "2", ProjectID: strPtr("p1")},
		{ID: "3", ProjectID: strPtr("p2"), Completed: true},
		{ID: "4"},
	}

	assert.Equal(t, Progress{Completed: 1, Total: 2}, ProgressOf(tasks, "p1"))
	assert.Equal(t, Progress{Completed: 1, Total: 1}, ProgressOf(tasks, "p2"))
	assert.Equal(t, Progress{}, ProgressOf(tasks, "missing"))
	assert.Equal(t, Progress{Completed: 2, Total: 4}, OverallProgress(tasks))
}

func TestTaskGeneral(t *testing.T) {
	assert.True(t, Task{}.General())
	assert.True(t, Task{ProjectID: strPtr("")}.General())
	assert.False(t, Task{ProjectID: strPtr("p1")}.General())
	assert.True(t, Task{ProjectID: strPtr("p1")}.InProject("p1"))
	assert.False(t, Task{}.InProject("p1"))
}
