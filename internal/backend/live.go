package backend

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"task-dashboard/internal/model"
	"task-dashboard/internal/repository"
)

// Live stores entities in the shared document database.
type Live struct {
	projects   *repository.ProjectRepository
	categories *repository.CategoryRepository
	tasks      *repository.TaskRepository
}

var _ Backend = (*Live)(nil)

func NewLive(db *gorm.DB) *Live {
	return &Live{
		projects:   repository.NewProjectRepository(db),
		categories: repository.NewCategoryRepository(db),
		tasks:      repository.NewTaskRepository(db),
	}
}

func (l *Live) Demo() bool { return false }

func (l *Live) ListProjects(ctx context.Context, ownerID string) ([]model.Project, error) {
	return l.projects.ListByOwner(ctx, ownerID)
}

func (l *Live) ListCategories(ctx context.Context, ownerID string) ([]model.Category, error) {
	return l.categories.ListByOwner(ctx, ownerID)
}

func (l *Live) ListTasks(ctx context.Context, ownerID string) ([]model.Task, error) {
	return l.tasks.ListByOwner(ctx, ownerID)
}

func (l *Live) CreateProject(ctx context.Context, project *model.Project) error {
	return l.projects.Create(ctx, project)
}

func (l *Live) CreateCategory(ctx context.Context, category *model.Category) error {
	return l.categories.Create(ctx, category)
}

func (l *Live) CreateTask(ctx context.Context, task *model.Task) error {
	if task.ProjectID != nil {
		if _, err := l.projects.GetByID(ctx, task.OwnerID, *task.ProjectID); err != nil {
			return notFound(err)
		}
	}
	return l.tasks.Create(ctx, task)
}

func (l *Live) SetTaskCompleted(ctx context.Context, ownerID, taskID string, completed bool) (model.Task, error) {
	task, err := l.tasks.SetCompleted(ctx, ownerID, taskID, completed)
	if err != nil {
		return model.Task{}, notFound(err)
	}
	return *task, nil
}

func (l *Live) DeleteTask(ctx context.Context, ownerID, taskID string) error {
	return notFound(l.tasks.Delete(ctx, ownerID, taskID))
}

func (l *Live) DeleteCategory(ctx context.Context, ownerID, categoryID string) error {
	return notFound(l.categories.Delete(ctx, ownerID, categoryID))
}

func (l *Live) DeleteProject(ctx context.Context, ownerID, projectID string) (int, error) {
	n, err := l.projects.DeleteCascade(ctx, ownerID, projectID)
	if err != nil {
		return 0, notFound(err)
	}
	return int(n), nil
}

// notFound maps the repository's not-found error onto ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errors.Join(ErrNotFound, err)
	}
	return err
}
