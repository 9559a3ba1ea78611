package store

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"

	"task-dashboard/internal/events"
	"task-dashboard/internal/model"
)

// ProjectInput describes a project to create.
type ProjectInput struct {
	Name     string
	Category string
	Icon     string
}

// TaskInput describes a task to create. An empty ProjectID makes a general
// task; an empty Priority means medium.
type TaskInput struct {
	Name      string
	Priority  string
	ProjectID string
}

func (s *Store) AddProject(ctx context.Context, in ProjectInput) (*model.Project, error) {
	const op = "add project"
	session, b, gen, err := s.active(op)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, newError(op, ErrValidation, errors.New("project name cannot be empty"))
	}

	project := &model.Project{
		OwnerID:  session.UserID,
		Name:     name,
		Category: strings.TrimSpace(in.Category),
		Icon:     strings.TrimSpace(in.Icon),
	}
	if err := b.CreateProject(ctx, project); err != nil {
		return nil, s.backendError(op, session, err)
	}

	s.edit(gen, func() {
		s.projects = append(s.projects, *project)
		sortProjects(s.projects)
	})
	s.publish(events.ProjectAdded, session, project.ID)
	return project, nil
}

// AddCategory creates a category. A blank name is ignored and returns nil.
func (s *Store) AddCategory(ctx context.Context, name string) (*model.Category, error) {
	const op = "add category"
	session, b, gen, err := s.active(op)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	category := &model.Category{OwnerID: session.UserID, Name: name}
	if err := b.CreateCategory(ctx, category); err != nil {
		return nil, s.backendError(op, session, err)
	}

	s.edit(gen, func() {
		s.categories = append(s.categories, *category)
		sortCategories(s.categories)
	})
	s.publish(events.CategoryAdded, session, category.ID)
	return category, nil
}

// DeleteProject removes a project and every task in it. It returns the
// number of tasks removed.
func (s *Store) DeleteProject(ctx context.Context, id string) (int, error) {
	const op = "delete project"
	session, b, gen, err := s.active(op)
	if err != nil {
		return 0, err
	}
	removed, err := b.DeleteProject(ctx, session.UserID, id)
	if err != nil {
		return 0, s.backendError(op, session, err)
	}

	s.edit(gen, func() {
		s.tasks = filter(s.tasks, func(t model.Task) bool { return !t.InProject(id) })
		s.projects = filter(s.projects, func(p model.Project) bool { return p.ID != id })
	})
	s.publish(events.ProjectDeleted, session, id)
	s.log.Info("project deleted", zap.String("user", session.UserID), zap.String("project", id), zap.Int("tasks", removed))
	return removed, nil
}

// DeleteCategory removes a category. Projects keep their category label.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	const op = "delete category"
	session, b, gen, err := s.active(op)
	if err != nil {
		return err
	}
	if err := b.DeleteCategory(ctx, session.UserID, id); err != nil {
		return s.backendError(op, session, err)
	}

	s.edit(gen, func() {
		s.categories = filter(s.categories, func(c model.Category) bool { return c.ID != id })
	})
	s.publish(events.CategoryDeleted, session, id)
	return nil
}

func (s *Store) AddTask(ctx context.Context, in TaskInput) (*model.Task, error) {
	const op = "add task"
	session, b, gen, err := s.active(op)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, newError(op, ErrValidation, errors.New("task name cannot be empty"))
	}
	priority, err := model.ParsePriority(in.Priority)
	if err != nil {
		return nil, newError(op, ErrValidation, err)
	}

	task := &model.Task{OwnerID: session.UserID, Name: name, Priority: priority}
	if id := strings.TrimSpace(in.ProjectID); id != "" {
		task.ProjectID = &id
	}
	if err := b.CreateTask(ctx, task); err != nil {
		return nil, s.backendError(op, session, err)
	}

	s.edit(gen, func() {
		s.tasks = append(s.tasks, *task)
		sortTasks(s.tasks)
	})
	s.publish(events.TaskAdded, session, task.ID)
	return task, nil
}

// ToggleTask flips the completion flag of a cached task.
func (s *Store) ToggleTask(ctx context.Context, id string) (*model.Task, error) {
	const op = "toggle task"
	session, b, gen, err := s.active(op)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	idx := indexTask(s.tasks, id)
	completed := idx >= 0 && s.tasks[idx].Completed
	s.mu.RUnlock()
	if idx < 0 {
		return nil, newError(op, ErrNotFound, errors.New("no such task"))
	}

	task, err := b.SetTaskCompleted(ctx, session.UserID, id, !completed)
	if err != nil {
		return nil, s.backendError(op, session, err)
	}

	s.edit(gen, func() {
		if i := indexTask(s.tasks, id); i >= 0 {
			s.tasks[i] = task
		}
	})
	s.publish(events.TaskUpdated, session, id)
	return &task, nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	const op = "delete task"
	session, b, gen, err := s.active(op)
	if err != nil {
		return err
	}
	if err := b.DeleteTask(ctx, session.UserID, id); err != nil {
		return s.backendError(op, session, err)
	}

	s.edit(gen, func() {
		s.tasks = filter(s.tasks, func(t model.Task) bool { return t.ID != id })
	})
	s.publish(events.TaskDeleted, session, id)
	return nil
}

func (s *Store) backendError(op string, session model.Session, err error) error {
	kind := classify(err)
	if kind == ErrBackend {
		s.log.Error(op, zap.String("user", session.UserID), zap.Bool("demo", session.IsDemo), zap.Error(err))
	}
	return newError(op, kind, err)
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func indexTask(tasks []model.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func sortProjects(projects []model.Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		return strings.ToLower(projects[i].Name) < strings.ToLower(projects[j].Name)
	})
}

func sortCategories(categories []model.Category) {
	sort.SliceStable(categories, func(i, j int) bool {
		return strings.ToLower(categories[i].Name) < strings.ToLower(categories[j].Name)
	})
}

func sortTasks(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}
