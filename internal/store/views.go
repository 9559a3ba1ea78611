package store

import (
	"task-dashboard/internal/model"
)

// DefaultRecent is the number of tasks RecentTasks returns for n <= 0.
const DefaultRecent = 5

// Projects returns the cached projects, ordered by name, with progress
// derived from the cached tasks.
func (s *Store) Projects() []model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Project, len(s.projects))
	for i, p := range s.projects {
		p.Progress = model.ProgressOf(s.tasks, p.ID)
		out[i] = p
	}
	return out
}

// Project returns one cached project with its progress.
func (s *Store) Project(id string) (model.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projects {
		if p.ID == id {
			p.Progress = model.ProgressOf(s.tasks, p.ID)
			return p, true
		}
	}
	return model.Project{}, false
}

func (s *Store) Categories() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Category(nil), s.categories...)
}

// Tasks returns every cached task, newest first.
func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Task(nil), s.tasks...)
}

// ProjectTasks returns the tasks of one project, newest first.
func (s *Store) ProjectTasks(projectID string) []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter(s.tasks, func(t model.Task) bool { return t.InProject(projectID) })
}

// GeneralTasks returns the tasks that belong to no project.
func (s *Store) GeneralTasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter(s.tasks, model.Task.General)
}

// RecentTasks returns the n newest tasks.
func (s *Store) RecentTasks(n int) []model.Task {
	if n <= 0 {
		n = DefaultRecent
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n > len(s.tasks) {
		n = len(s.tasks)
	}
	return append([]model.Task(nil), s.tasks[:n]...)
}

func (s *Store) ProjectProgress(projectID string) model.Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.ProgressOf(s.tasks, projectID)
}

// OverallProgress is the completed percentage over all cached tasks, in
// [0,100] and 0 when there are none.
func (s *Store) OverallProgress() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.OverallProgress(s.tasks).Percent()
}

// Dashboard is a consistent snapshot of everything the home view shows.
type Dashboard struct {
	Session    model.Session
	Overall    model.Progress
	Projects   []model.Project
	Categories []model.Category
	Recent     []model.Task
	// ProjectNames maps project ids to names for labelling tasks.
	ProjectNames map[string]string
}

// Dashboard returns the snapshot, or false when no session is active.
func (s *Store) Dashboard() (Dashboard, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return Dashboard{}, false
	}

	d := Dashboard{
		Session:      *s.session,
		Overall:      model.OverallProgress(s.tasks),
		Projects:     make([]model.Project, len(s.projects)),
		Categories:   append([]model.Category(nil), s.categories...),
		ProjectNames: make(map[string]string, len(s.projects)),
	}
	for i, p := range s.projects {
		p.Progress = model.ProgressOf(s.tasks, p.ID)
		d.Projects[i] = p
		d.ProjectNames[p.ID] = p.Name
	}
	n := DefaultRecent
	if n > len(s.tasks) {
		n = len(s.tasks)
	}
	d.Recent = append([]model.Task(nil), s.tasks[:n]...)
	return d, true
}

// ProjectLabel names the project of t, or "General Tasks".
func (d Dashboard) ProjectLabel(t model.Task) string {
	if t.General() {
		return GeneralTasksLabel
	}
	if name, ok := d.ProjectNames[*t.ProjectID]; ok {
		return name
	}
	return GeneralTasksLabel
}

// GeneralTasksLabel is shown for tasks outside any project.
const GeneralTasksLabel = "General Tasks"
