package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HeorhiiKortunov/CoreTask/internal/db/models"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/validation"
)

func filterFixture() []models.Task {
	assignee := int64(4)
	return []models.Task{
		{ID: 1, ProjectID: 10, Name: "design", Status: models.TaskStatusTodo},
		{ID: 2, ProjectID: 10, Name: "build", Status: models.TaskStatusInProgress, AssigneeID: &assignee},
		{ID: 3, ProjectID: 11, Name: "ship", Status: models.TaskStatusDone, AssigneeID: &assignee},
	}
}

func ids(tasks []models.Task) []int64 {
	out := make([]int64, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestFilter_Apply(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want []int64
	}{
		{"status", `status == "TODO"`, []int64{1}},
		{"assignee", `assigneeId == 4`, []int64{2, 3}},
		{"unassigned", `assigned == false`, []int64{1}},
		{"combined", `projectId == 10 and status != "TODO"`, []int64{2}},
		{"name", `name == "build"`, []int64{2}},
		{"no match", `status == "DONE" and projectId == 10`, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseFilter(tt.expr)
			require.NoError(t, err)
			require.NotNil(t, f)
			assert.Equal(t, tt.want, ids(f.Apply(filterFixture())))
		})
	}
}

func TestParseFilter_BlankKeepsEverything(t *testing.T) {
	f, err := ParseFilter("   ")
	require.NoError(t, err)
	assert.Nil(t, f)

	tasks := filterFixture()
	assert.Equal(t, tasks, f.Apply(tasks))
}

func TestParseFilter_InvalidExpression(t *testing.T) {
	_, err := ParseFilter(`status ==`)
	require.Error(t, err)

	var fe validation.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe[FilterField], "invalid expression")
}

func TestFilter_ApplyDoesNotModifyInput(t *testing.T) {
	f, err := ParseFilter(`status == "DONE"`)
	require.NoError(t, err)

	tasks := filterFixture()
	got := f.Apply(tasks)
	assert.Len(t, got, 1)
	assert.Len(t, tasks, 3)
	assert.Equal(t, int64(1), tasks[0].ID)
}
