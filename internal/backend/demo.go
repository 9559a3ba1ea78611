package backend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"task-dashboard/internal/localstore"
	"task-dashboard/internal/model"
)

// Demo keeps every entity in the locally persisted demo blob. Each mutation
// reads the blob, applies the change and rewrites it whole.
type Demo struct {
	local *localstore.Local
	now   func() time.Time

	mu sync.Mutex
}

var _ Backend = (*Demo)(nil)

func NewDemo(local *localstore.Local) *Demo {
	return &Demo{local: local, now: time.Now}
}

func (d *Demo) Demo() bool { return true }

// Open loads the demo blob, creating and persisting an empty one for the
// demo profile when none exists.
func (d *Demo) Open(ctx context.Context) (model.DemoData, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, ok, err := d.local.LoadDemo(ctx)
	if err != nil {
		return model.DemoData{}, err
	}
	if ok {
		return data, nil
	}
	data = model.DemoData{User: model.DemoUser}
	if err := d.local.SaveDemo(ctx, data); err != nil {
		return model.DemoData{}, fmt.Errorf("init demo data: %w", err)
	}
	return data, nil
}

func (d *Demo) ListProjects(ctx context.Context, ownerID string) ([]model.Project, error) {
	data, err := d.read(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Project
	for _, p := range data.Projects {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (d *Demo) ListCategories(ctx context.Context, ownerID string) ([]model.Category, error) {
	data, err := d.read(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Category
	for _, c := range data.Categories {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (d *Demo) ListTasks(ctx context.Context, ownerID string) ([]model.Task, error) {
	data, err := d.read(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Task
	for _, t := range data.Tasks {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (d *Demo) CreateProject(ctx context.Context, project *model.Project) error {
	return d.mutate(ctx, func(data *model.DemoData) error {
		project.ID = uuid.NewString()
		project.CreatedAt = d.now()
		data.Projects = append(data.Projects, *project)
		return nil
	})
}

func (d *Demo) CreateCategory(ctx context.Context, category *model.Category) error {
	return d.mutate(ctx, func(data *model.DemoData) error {
		category.ID = uuid.NewString()
		category.CreatedAt = d.now()
		data.Categories = append(data.Categories, *category)
		return nil
	})
}

func (d *Demo) CreateTask(ctx context.Context, task *model.Task) error {
	return d.mutate(ctx, func(data *model.DemoData) error {
		if task.ProjectID != nil && indexProject(data.Projects, task.OwnerID, *task.ProjectID) < 0 {
			return fmt.Errorf("project %s: %w", *task.ProjectID, ErrNotFound)
		}
		now := d.now()
		task.ID = uuid.NewString()
		task.CreatedAt = now
		task.UpdatedAt = now
		data.Tasks = append(data.Tasks, *task)
		return nil
	})
}

func (d *Demo) SetTaskCompleted(ctx context.Context, ownerID, taskID string, completed bool) (model.Task, error) {
	var updated model.Task
	err := d.mutate(ctx, func(data *model.DemoData) error {
		for i := range data.Tasks {
			if data.Tasks[i].ID == taskID && data.Tasks[i].OwnerID == ownerID {
				data.Tasks[i].Completed = completed
				data.Tasks[i].UpdatedAt = d.now()
				updated = data.Tasks[i]
				return nil
			}
		}
		return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	})
	return updated, err
}

func (d *Demo) DeleteTask(ctx context.Context, ownerID, taskID string) error {
	return d.mutate(ctx, func(data *model.DemoData) error {
		before := len(data.Tasks)
		data.Tasks = filterTasks(data.Tasks, func(t model.Task) bool {
			return !(t.ID == taskID && t.OwnerID == ownerID)
		})
		if len(data.Tasks) == before {
			return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
		}
		return nil
	})
}

func (d *Demo) DeleteCategory(ctx context.Context, ownerID, categoryID string) error {
	return d.mutate(ctx, func(data *model.DemoData) error {
		kept := data.Categories[:0]
		found := false
		for _, c := range data.Categories {
			if c.ID == categoryID && c.OwnerID == ownerID {
				found = true
				continue
			}
			kept = append(kept, c)
		}
		if !found {
			return fmt.Errorf("category %s: %w", categoryID, ErrNotFound)
		}
		data.Categories = kept
		return nil
	})
}

func (d *Demo) DeleteProject(ctx context.Context, ownerID, projectID string) (int, error) {
	var removed int
	err := d.mutate(ctx, func(data *model.DemoData) error {
		idx := indexProject(data.Projects, ownerID, projectID)
		if idx < 0 {
			return fmt.Errorf("project %s: %w", projectID, ErrNotFound)
		}
		before := len(data.Tasks)
		data.Tasks = filterTasks(data.Tasks, func(t model.Task) bool {
			return !(t.OwnerID == ownerID && t.InProject(projectID))
		})
		removed = before - len(data.Tasks)
		data.Projects = append(data.Projects[:idx], data.Projects[idx+1:]...)
		return nil
	})
	return removed, err
}

func (d *Demo) read(ctx context.Context) (model.DemoData, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	data, _, err := d.local.LoadDemo(ctx)
	return data, err
}

// mutate applies fn to the current blob and persists the result. Nothing is
// written when fn fails.
func (d *Demo) mutate(ctx context.Context, fn func(*model.DemoData) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, ok, err := d.local.LoadDemo(ctx)
	if err != nil {
		return err
	}
	if !ok {
		data = model.DemoData{User: model.DemoUser}
	}
	if err := fn(&data); err != nil {
		return err
	}
	return d.local.SaveDemo(ctx, data)
}

func indexProject(projects []model.Project, ownerID, id string) int {
	for i, p := range projects {
		if p.ID == id && p.OwnerID == ownerID {
			return i
		}
	}
	return -1
}

func filterTasks(tasks []model.Task, keep func(model.Task) bool) []model.Task {
	out := tasks[:0]
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
