// Package backend routes entity reads and writes either to the live document
// store or to the locally persisted demo blob.
package backend

import (
	"context"
	"errors"

	"task-dashboard/internal/model"
)

// ErrNotFound is returned when an id does not exist for the owner.
var ErrNotFound = errors.New("not found")

// Backend is implemented by Live and Demo. Every call is scoped to ownerID.
type Backend interface {
	Demo() bool

	ListProjects(ctx context.Context, ownerID string) ([]model.Project, error)
	ListCategories(ctx context.Context, ownerID string) ([]model.Category, error)
	ListTasks(ctx context.Context, ownerID string) ([]model.Task, error)

	// Create* assign the identifier and store the entity.
	CreateProject(ctx context.Context, project *model.Project) error
	CreateCategory(ctx context.Context, category *model.Category) error
	CreateTask(ctx context.Context, task *model.Task) error

	SetTaskCompleted(ctx context.Context, ownerID, taskID string, completed bool) (model.Task, error)
	DeleteTask(ctx context.Context, ownerID, taskID string) error
	DeleteCategory(ctx context.Context, ownerID, categoryID string) error
	// DeleteProject removes the project's tasks before the project and
	// returns how many tasks went with it.
	DeleteProject(ctx context.Context, ownerID, projectID string) (int, error)
}
