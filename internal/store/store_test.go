package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"task-dashboard/internal/auth"
	"task-dashboard/internal/backend"
	"task-dashboard/internal/events"
	"task-dashboard/internal/localstore"
	"task-dashboard/internal/model"
	"task-dashboard/internal/repository"
)

// countingBackend records how often the live backend is reached and can be
// told to fail.
type countingBackend struct {
	backend.Backend
	calls atomic.Int64
	fail  atomic.Bool
}

var errDown = errors.New("backend down")

func (c *countingBackend) hit() error {
	c.calls.Add(1)
	if c.fail.Load() {
		return errDown
	}
	return nil
}

func (c *countingBackend) ListProjects(ctx context.Context, owner string) ([]model.Project, error) {
	if err := c.hit(); err != nil {
		return nil, err
	}
	return c.Backend.ListProjects(ctx, owner)
}

func (c *countingBackend) ListCategories(ctx context.Context, owner string) ([]model.Category, error) {
	if err := c.hit(); err != nil {
		return nil, err
	}
	return c.Backend.ListCategories(ctx, owner)
}

func (c *countingBackend) ListTasks(ctx context.Context, owner string) ([]model.Task, error) {
	if err := c.hit(); err != nil {
		return nil, err
	}
	return c.Backend.ListTasks(ctx, owner)
}

func (c *countingBackend) CreateProject(ctx context.Context, p *model.Project) error {
	if err := c.hit(); err != nil {
		return err
	}
	return c.Backend.CreateProject(ctx, p)
}

func (c *countingBackend) CreateCategory(ctx context.Context, cat *model.Category) error {
	if err := c.hit(); err != nil {
		return err
	}
	return c.Backend.CreateCategory(ctx, cat)
}

func (c *countingBackend) CreateTask(ctx context.Context, t *model.Task) error {
	if err := c.hit(); err != nil {
		return err
	}
	return c.Backend.CreateTask(ctx, t)
}

func (c *countingBackend) SetTaskCompleted(ctx context.Context, owner, id string, done bool) (model.Task, error) {
	if err := c.hit(); err != nil {
		return model.Task{}, err
	}
	return c.Backend.SetTaskCompleted(ctx, owner, id, done)
}

func (c *countingBackend) DeleteTask(ctx context.Context, owner, id string) error {
	if err := c.hit(); err != nil {
		return err
	}
	return c.Backend.DeleteTask(ctx, owner, id)
}

func (c *countingBackend) DeleteCategory(ctx context.Context, owner, id string) error {
	if err := c.hit(); err != nil {
		return err
	}
	return c.Backend.DeleteCategory(ctx, owner, id)
}

func (c *countingBackend) DeleteProject(ctx context.Context, owner, id string) (int, error) {
	if err := c.hit(); err != nil {
		return 0, err
	}
	return c.Backend.DeleteProject(ctx, owner, id)
}

type env struct {
	db   *gorm.DB
	auth *auth.Provider
	live *countingBackend
	kv   localstore.KV
	bus  *events.Bus
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := repository.NewDB(":memory:", nil)
	require.NoError(t, err)
	kv, err := localstore.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = kv.Close()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	provider := auth.NewProvider(repository.NewIdentityRepository(db), auth.NewTokens("test-secret", time.Hour), nil, nil)
	return &env{
		db:   db,
		auth: provider,
		live: &countingBackend{Backend: backend.NewLive(db)},
		kv:   kv,
		bus:  events.NewBus(nil),
	}
}

func (e *env) local(namespace string) *localstore.Local {
	return localstore.NewLocal(e.kv, namespace)
}

func (e *env) store(t *testing.T, namespace string) *Store {
	t.Helper()
	s := New(Deps{Auth: e.auth, Live: e.live, Local: e.local(namespace), Bus: e.bus})
	t.Cleanup(s.Close)
	return s
}

func (e *env) signup(t *testing.T, s *Store, name, email string) model.Session {
	t.Helper()
	session, err := s.Signup(context.Background(), name, email, "secret1")
	require.NoError(t, err)
	return session
}

func TestLoginDemoNeverTouchesLiveBackend(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	s := e.store(t, "c1")

	session, err := s.LoginDemo(ctx)
	require.NoError(t, err)
	assert.True(t, session.IsDemo)
	assert.Equal(t, model.DemoUser.UserID, session.UserID)
	assert.Equal(t, Active, s.State())

	project, err := s.AddProject(ctx, ProjectInput{Name: "Garden", Category: "Home", Icon: "leaf"})
	require.NoError(t, err)
	_, err = s.AddTask(ctx, TaskInput{Name: "Dig", ProjectID: project.ID})
	require.NoError(t, err)
	_, err = s.AddCategory(ctx, "Home")
	require.NoError(t, err)
	require.NoError(t, s.Refresh(ctx))

	assert.Zero(t, e.live.calls.Load())

	data, ok, err := e.local("c1").LoadDemo(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, data.Projects, 1)
	assert.Len(t, data.Tasks, 1)
	assert.Len(t, data.Categories, 1)
}

func TestDemoRoundTripRestoresProjects(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	s := e.store(t, "c1")

	_, err := s.LoginDemo(ctx)
	require.NoError(t, err)
	_, err = s.AddProject(ctx, ProjectInput{Name: "Garden"})
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx))
	assert.Equal(t, Anonymous, s.State())
	assert.Empty(t, s.Projects())
	_, ok := s.Session()
	assert.False(t, ok)

	_, err = s.LoginDemo(ctx)
	require.NoError(t, err)
	projects := s.Projects()
	require.Len(t, projects, 1)
	assert.Equal(t, "Garden", projects[0].Name)
}

func TestAddCategoryBlankIsNoop(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	s := e.store(t, "c1")
	_, err := s.LoginDemo(ctx)
	require.NoError(t, err)

	before, _, err := e.local("c1").LoadDemo(ctx)
	require.NoError(t, err)

	for _, name := range []string{"", "   ", "\t"} {
		category, err := s.AddCategory(ctx, name)
		require.NoError(t, err)
		assert.Nil(t, category)
	}
	assert.Empty(t, s.Categories())

	after, _, err := e.local("c1").LoadDemo(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestMutationsRequireSession(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	s := e.store(t, "c1")

	_, err := s.AddProject(ctx, ProjectInput{Name: "x"})
	assert.ErrorIs(t, err, ErrAuthRequired)
	_, err = s.AddCategory(ctx, "x")
	assert.ErrorIs(t, err, ErrAuthRequired)
	_, err = s.AddCategory(ctx, "")
	assert.ErrorIs(t, err, ErrAuthRequired)
	_, err = s.DeleteProject(ctx, "p")
	assert.ErrorIs(t, err, ErrAuthRequired)
	assert.ErrorIs(t, s.DeleteCategory(ctx, "c"), ErrAuthRequired)
	_, err = s.AddTask(ctx, TaskInput{Name: "x"})
	assert.ErrorIs(t, err, ErrAuthRequired)
	_, err = s.ToggleTask(ctx, "t")
	assert.ErrorIs(t, err, ErrAuthRequired)
	assert.ErrorIs(t, s.DeleteTask(ctx, "t"), ErrAuthRequired)
	assert.ErrorIs(t, s.Refresh(ctx), ErrAuthRequired)

	assert.Zero(t, e.live.calls.Load())

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Please sign in first.", se.Message())
}

func TestSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := e.store(t, "a")
	b := e.store(t, "b")

	e.signup(t, a, "Ada", "ada@example.com")
	e.signup(t, b, "Bob", "bob@example.com")

	project, err := a.AddProject(ctx, ProjectInput{Name: "Secret"})
	require.NoError(t, err)
	_, err = a.AddTask(ctx, TaskInput{Name: "hidden", ProjectID: project.ID})
	require.NoError(t, err)

	require.NoError(t, b.Refresh(ctx))
	assert.Empty(t, b.Projects())
	assert.Empty(t, b.Tasks())

	_, err = b.DeleteProject(ctx, project.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, a.Projects(), 1)
}

func TestDeleteProjectCascades(t *testing.T) {
	run := func(t *testing.T, s *Store) {
		ctx := context.Background()
		keep, err := s.AddProject(ctx, ProjectInput{Name: "Keep"})
		require.NoError(t, err)
		drop, err := s.AddProject(ctx, ProjectInput{Name: "Drop"})
		require.NoError(t, err)
		for _, in := range []TaskInput{
			{Name: "a", ProjectID: drop.ID},
			{Name: "b", ProjectID: drop.ID},
			{Name: "c", ProjectID: keep.ID},
			{Name: "d"},
		} {
			_, err := s.AddTask(ctx, in)
			require.NoError(t, err)
		}

		removed, err := s.DeleteProject(ctx, drop.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, removed)

		known := map[string]bool{}
		for _, p := range s.Projects() {
			known[p.ID] = true
		}
		for _, task := range s.Tasks() {
			if !task.General() {
				assert.True(t, known[*task.ProjectID], "task %s references a deleted project", task.Name)
			}
		}
		assert.Len(t, s.Tasks(), 2)

		require.NoError(t, s.Refresh(ctx))
		assert.Len(t, s.Tasks(), 2)
		assert.Len(t, s.Projects(), 1)
	}

	t.Run("live", func(t *testing.T) {
		e := newEnv(t)
		s := e.store(t, "c1")
		e.signup(t, s, "Ada", "ada@example.com")
		run(t, s)
	})
	t.Run("demo", func(t *testing.T) {
		e := newEnv(t)
		s := e.store(t, "c1")
		_, err := s.LoginDemo(context.Background())
		require.NoError(t, err)
		run(t, s)
	})
}

func TestOverallProgress(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	s := e.store(t, "c1")
	assert.Equal(t, 0, s.OverallProgress())

	_, err := s.LoginDemo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, s.OverallProgress())

	var ids []string
	for _, name := range []string{"a", "b", "c"} {
		task, err := s.AddTask(ctx, TaskInput{Name: name})
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}
	assert.Equal(t, 0, s.OverallProgress())

	_, err = s.ToggleTask(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, 33, s.OverallProgress())

	for _, id := range ids[1:] {
		_, err = s.ToggleTask(ctx, id)
		require.NoError(t, err)
	}
	assert.Equal(t, 100, s.OverallProgress())

	task, err := s.ToggleTask(ctx, ids[0])
	require.NoError(t, err)
	assert.False(t, task.Completed)
	assert.Equal(t, 66, s.OverallProgress())
}

func TestProjectProgressAndRecentTasks(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	s := e.store(t, "c1")
	e.signup(t, s, "Ada", "ada@example.com")

	project, err := s.AddProject(ctx, ProjectInput{Name: "Site"})
	require.NoError(t, err)
	first, err := s.AddTask(ctx, TaskInput{Name: "one", ProjectID: project.ID, Priority: "high"})
	require.NoError(t, err)
	assert.Equal(t, model.PriorityHigh, first.Priority)
	_, err = s.AddTask(ctx, TaskInput{Name: "two", ProjectID: project.ID})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := s.AddTask(ctx, TaskInput{Name: "general"})
		require.NoError(t, err)
	}
	_, err = s.ToggleTask(ctx, first.ID)
	require.NoError(t, err)

	assert.Equal(t, model.Progress{Completed: 1, Total: 2}, s.ProjectProgress(project.ID))
	p, ok := s.Project(project.ID)
	require.True(t, ok)
	assert.Equal(t, 50, p.Progress.Percent())
	assert.Len(t, s.ProjectTasks(project.ID), 2)
	assert.Len(t, s.GeneralTasks(), 5)

	recent := s.RecentTasks(0)
	require.Len(t, recent, DefaultRecent)
	assert.Equal(t, "general", recent[0].Name)
	assert.Len(t, s.RecentTasks(100), 7)

	_, err = s.AddTask(ctx, TaskInput{Name: "bad", Priority: "urgent"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.AddTask(ctx, TaskInput{Name: "  "})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.AddTask(ctx, TaskInput{Name: "orphan", ProjectID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.ToggleTask(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	d, ok := s.Dashboard()
	require.True(t, ok)
	assert.Equal(t, 7, d.Overall.Total)
	assert.Equal(t, "Site", d.ProjectLabel(*first))
	assert.Equal(t, GeneralTasksLabel, d.ProjectLabel(d.Recent[0]))
}

func TestAddProjectValidation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	s := e.store(t, "c1")
	e.signup(t, s, "Ada", "ada@example.com")
	calls := e.live.calls.Load()

	_, err := s.AddProject(ctx, ProjectInput{Name: "  "})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, calls, e.live.calls.Load())

	_, err = s.AddProject(ctx, ProjectInput{Name: "b"})
	require.NoError(t, err)
	_, err = s.AddProject(ctx, ProjectInput{Name: "A"})
	require.NoError(t, err)
	projects := s.Projects()
	require.Len(t, projects, 2)
	assert.Equal(t, "A", projects[0].Name)
}

func TestBackendFailureLeavesCachesUnchanged(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	s := e.store(t, "c1")
	e.signup(t, s, "Ada", "ada@example.com")

	project, err := s.AddProject(ctx, ProjectInput{Name: "Site"})
	require.NoError(t, err)

	e.live.fail.Store(true)
	_, err = s.AddProject(ctx, ProjectInput{Name: "Other"})
	assert.ErrorIs(t, err, ErrBackend)
	assert.ErrorIs(t, err, errDown)
	_, err = s.DeleteProject(ctx, project.ID)
	assert.ErrorIs(t, err, ErrBackend)
	assert.ErrorIs(t, s.Refresh(ctx), ErrBackend)

	require.Len(t, s.Projects(), 1)
	assert.Equal(t, "Site", s.Projects()[0].Name)
	assert.Equal(t, "Something went wrong, please try again.", Message(err))
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	s := e.store(t, "c1")

	_, err := s.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrAuth)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Equal(t, Anonymous, s.State())

	_, err = s.Signup(ctx, "  ", "ada@example.com", "secret1")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "display name cannot be empty", Message(err))
	assert.Equal(t, Anonymous, s.State())

	e.signup(t, s, "Ada", "ada@example.com")
	_, err = s.Login(ctx, "ada@example.com", "secret1")
	assert.ErrorIs(t, err, ErrValidation, "one session at a time")
	_, err = s.LoginDemo(ctx)
	assert.ErrorIs(t, err, ErrValidation)

	session, ok := s.Session()
	require.True(t, ok)
	assert.Equal(t, "Ada", session.DisplayName)
	assert.False(t, session.IsDemo)
}

func TestSignupEmailConflictIsAuthError(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.signup(t, e.store(t, "c1"), "Ada", "ada@example.com")

	other := e.store(t, "c2")
	_, err := other.Signup(ctx, "Ada2", "ADA@example.com", "secret2")
	assert.ErrorIs(t, err, ErrAuth)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, auth.ErrEmailTaken)
	assert.Equal(t, "email already in use", Message(err))
	assert.Equal(t, Anonymous, other.State())
}

func TestLoginLoadsExistingData(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	s := e.store(t, "c1")
	e.signup(t, s, "Ada", "ada@example.com")
	_, err := s.AddProject(ctx, ProjectInput{Name: "Site"})
	require.NoError(t, err)
	_, err = s.AddCategory(ctx, "Work")
	require.NoError(t, err)
	require.NoError(t, s.Logout(ctx))

	_, err = s.Login(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Len(t, s.Projects(), 1)
	assert.Len(t, s.Categories(), 1)
}

func TestRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing persisted", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.store(t, "c1").Restore(ctx)
		assert.ErrorIs(t, err, ErrAuthRequired)
	})

	t.Run("live token", func(t *testing.T) {
		e := newEnv(t)
		first := e.store(t, "c1")
		created := e.signup(t, first, "Ada", "ada@example.com")
		_, err := first.AddProject(ctx, ProjectInput{Name: "Site"})
		require.NoError(t, err)

		second := e.store(t, "c1")
		session, err := second.Restore(ctx)
		require.NoError(t, err)
		assert.Equal(t, created.UserID, session.UserID)
		assert.Len(t, second.Projects(), 1)
	})

	t.Run("demo flag", func(t *testing.T) {
		e := newEnv(t)
		first := e.store(t, "c1")
		_, err := first.LoginDemo(ctx)
		require.NoError(t, err)
		_, err = first.AddProject(ctx, ProjectInput{Name: "Garden"})
		require.NoError(t, err)

		session, err := e.store(t, "c1").Restore(ctx)
		require.NoError(t, err)
		assert.True(t, session.IsDemo)
	})

	t.Run("logout clears the saved token", func(t *testing.T) {
		e := newEnv(t)
		first := e.store(t, "c1")
		created := e.signup(t, first, "Ada", "ada@example.com")
		require.NoError(t, first.Logout(ctx))

		_, err := e.auth.Verify(ctx, created.Token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
		_, err = e.store(t, "c1").Restore(ctx)
		assert.ErrorIs(t, err, ErrAuthRequired)
	})

	t.Run("revoked token", func(t *testing.T) {
		e := newEnv(t)
		first := e.store(t, "c1")
		created := e.signup(t, first, "Ada", "ada@example.com")
		require.NoError(t, e.auth.SignOut(ctx, created.Token))

		s := e.store(t, "c1")
		_, err := s.Restore(ctx)
		assert.ErrorIs(t, err, ErrAuth)
		assert.Equal(t, Anonymous, s.State())
		token, err := e.local("c1").Token(ctx)
		require.NoError(t, err)
		assert.Empty(t, token)
	})
}

func TestPasswordResetThroughStore(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	s := e.store(t, "c1")

	assert.ErrorIs(t, s.ResetPassword(ctx, "not-an-email"), ErrValidation)
	assert.NoError(t, s.ResetPassword(ctx, "nobody@example.com"))
	assert.ErrorIs(t, s.ConfirmPasswordReset(ctx, "bogus", "newsecret"), ErrAuth)
}

func TestRemoteChangesRefreshOtherStores(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := e.store(t, "a")
	b := e.store(t, "b")

	e.signup(t, a, "Ada", "ada@example.com")
	_, err := b.Login(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	_, err = a.AddProject(ctx, ProjectInput{Name: "Shared"})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return len(b.Projects()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

// pausingBackend holds the next ListProjects call after it has read the
// list, until release is closed.
type pausingBackend struct {
	backend.Backend
	armed   atomic.Bool
	read    chan struct{}
	release chan struct{}
}

func newPausingBackend(b backend.Backend) *pausingBackend {
	return &pausingBackend{Backend: b, read: make(chan struct{}), release: make(chan struct{})}
}

func (p *pausingBackend) ListProjects(ctx context.Context, owner string) ([]model.Project, error) {
	projects, err := p.Backend.ListProjects(ctx, owner)
	if p.armed.CompareAndSwap(true, false) {
		close(p.read)
		<-p.release
	}
	return projects, err
}

func TestRefreshKeepsConcurrentEdits(t *testing.T) {
	ctx := context.Background()

	run := func(t *testing.T, prepare func(s *Store) string, mutate func(s *Store, id string), check func(t *testing.T, s *Store, id string)) {
		e := newEnv(t)
		gated := newPausingBackend(e.live)
		s := New(Deps{Auth: e.auth, Live: gated, Local: e.local("c1"), Bus: e.bus})
		t.Cleanup(s.Close)
		e.signup(t, s, "Ada", "ada@example.com")
		id := prepare(s)

		gated.armed.Store(true)
		done := make(chan error, 1)
		go func() { done <- s.Refresh(ctx) }()
		<-gated.read
		mutate(s, id)
		close(gated.release)

		require.NoError(t, <-done)
		check(t, s, id)
	}

	t.Run("added project survives", func(t *testing.T) {
		run(t,
			func(*Store) string { return "" },
			func(s *Store, _ string) {
				_, err := s.AddProject(ctx, ProjectInput{Name: "New"})
				require.NoError(t, err)
			},
			func(t *testing.T, s *Store, _ string) {
				require.Len(t, s.Projects(), 1)
				assert.Equal(t, "New", s.Projects()[0].Name)
			})
	})

	t.Run("deleted project stays deleted", func(t *testing.T) {
		run(t,
			func(s *Store) string {
				p, err := s.AddProject(ctx, ProjectInput{Name: "Old"})
				require.NoError(t, err)
				return p.ID
			},
			func(s *Store, id string) {
				_, err := s.DeleteProject(ctx, id)
				require.NoError(t, err)
			},
			func(t *testing.T, s *Store, id string) {
				assert.Empty(t, s.Projects())
				_, ok := s.Project(id)
				assert.False(t, ok)
			})
	})
}

func TestEventsArePublished(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	s := e.store(t, "c1")
	sub := s.Subscribe(events.ProjectAdded, events.ProjectDeleted)
	require.NotNil(t, sub)
	defer sub.Close()

	_, err := s.LoginDemo(ctx)
	require.NoError(t, err)
	project, err := s.AddProject(ctx, ProjectInput{Name: "Garden"})
	require.NoError(t, err)
	_, err = s.DeleteProject(ctx, project.ID)
	require.NoError(t, err)

	for _, want := range []events.Kind{events.ProjectAdded, events.ProjectDeleted} {
		select {
		case ev := <-sub.C:
			assert.Equal(t, want, ev.Kind)
			assert.Equal(t, project.ID, ev.EntityID)
			assert.Equal(t, s.Origin(), ev.Origin)
			assert.True(t, ev.Demo)
		case <-time.After(time.Second):
			t.Fatalf("no %s event", want)
		}
	}
}

func TestUIState(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	s := e.store(t, "c1")

	ui := s.UI()
	assert.Equal(t, MenuDashboard, ui.Menu)
	assert.False(t, ui.DarkMode)

	assert.True(t, s.ToggleDarkMode())
	assert.True(t, s.ToggleSidebar())
	s.SelectMenu(MenuProjects)
	s.OpenModal(ModalNewProject)
	s.OpenModal(ModalIconPicker)
	s.SetActiveDropdown("p1")

	ui = s.UI()
	assert.True(t, ui.DarkMode)
	assert.False(t, ui.SidebarOpen)
	assert.Equal(t, MenuProjects, ui.Menu)
	assert.Equal(t, ModalIconPicker, ui.Modal)
	assert.Equal(t, "p1", ui.ActiveDropdown)

	s.SetActiveDropdown("p1")
	assert.Empty(t, s.UI().ActiveDropdown)

	_, err := s.LoginDemo(ctx)
	require.NoError(t, err)
	s.OpenModal(ModalNewTask)
	s.SetActiveDropdown("t1")
	require.NoError(t, s.Logout(ctx))

	ui = s.UI()
	assert.Equal(t, ModalNone, ui.Modal)
	assert.Empty(t, ui.ActiveDropdown)
	assert.True(t, ui.DarkMode)
}
