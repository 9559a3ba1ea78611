// Package store holds the application state of one dashboard client: the
// signed-in session, the cached projects, categories and tasks of its owner,
// and the UI toggles. Mutations go to either the live or the demo backend.
package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"task-dashboard/internal/auth"
	"task-dashboard/internal/backend"
	"task-dashboard/internal/events"
	"task-dashboard/internal/localstore"
	"task-dashboard/internal/model"
)

// State is the session lifecycle stage.
type State int

const (
	Anonymous State = iota
	Authenticating
	Active
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Active:
		return "active"
	default:
		return "anonymous"
	}
}

const (
	refreshTimeout  = 10 * time.Second
	refreshAttempts = 3
)

// Authenticator is the email/password identity provider. *auth.Provider
// implements it.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (auth.Result, error)
	SignUp(ctx context.Context, name, email, password string) (auth.Result, error)
	SignOut(ctx context.Context, token string) error
	Verify(ctx context.Context, token string) (model.Identity, error)
	SendPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, password string) error
}

// Deps are the collaborators of a Store. Bus and Log are optional.
type Deps struct {
	Auth  Authenticator
	Live  backend.Backend
	Local *localstore.Local
	Bus   *events.Bus
	Log   *zap.Logger
}

// Store is safe for concurrent use. Backend calls never run under mu.
type Store struct {
	id    string
	auth  Authenticator
	live  backend.Backend
	demo  *backend.Demo
	local *localstore.Local
	bus   *events.Bus
	log   *zap.Logger

	mu         sync.RWMutex
	state      State
	session    *model.Session
	backend    backend.Backend
	generation uint64 // bumped whenever the session changes
	edits      uint64 // bumped by every local cache mutation
	projects   []model.Project
	categories []model.Category
	tasks      []model.Task
	ui         UIState
	watch      *events.Subscription
}

func New(deps Deps) *Store {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.NewString()
	return &Store{
		id:    id,
		auth:  deps.Auth,
		live:  deps.Live,
		demo:  backend.NewDemo(deps.Local),
		local: deps.Local,
		bus:   deps.Bus,
		log:   log.With(zap.String("store", deps.Local.Namespace())),
		ui:    UIState{Menu: MenuDashboard},
	}
}

// Origin identifies events published by this store.
func (s *Store) Origin() string { return s.id }

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Session returns a copy of the active session.
func (s *Store) Session() (model.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return model.Session{}, false
	}
	return *s.session, true
}

// Login signs in against the live backend and loads the owner's data.
func (s *Store) Login(ctx context.Context, email, password string) (model.Session, error) {
	const op = "login"
	if err := s.beginAuth(op); err != nil {
		return model.Session{}, err
	}
	res, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		return model.Session{}, s.failAuth(op, err)
	}
	if err := s.local.SaveToken(ctx, res.Token); err != nil {
		s.log.Warn("persist session token", zap.Error(err))
	}
	return s.startLive(ctx, res.Identity, res.Token), nil
}

// Signup creates an identity with a display name and signs it in.
func (s *Store) Signup(ctx context.Context, name, email, password string) (model.Session, error) {
	const op = "signup"
	if err := s.beginAuth(op); err != nil {
		return model.Session{}, err
	}
	res, err := s.auth.SignUp(ctx, name, email, password)
	if err != nil {
		return model.Session{}, s.failAuth(op, err)
	}
	if err := s.local.SaveToken(ctx, res.Token); err != nil {
		s.log.Warn("persist session token", zap.Error(err))
	}
	return s.startLive(ctx, res.Identity, res.Token), nil
}

// LoginDemo starts a session for the fixed demo profile. All data stays in
// the local store; the live backend is never contacted.
func (s *Store) LoginDemo(ctx context.Context) (model.Session, error) {
	const op = "login demo"
	if err := s.beginAuth(op); err != nil {
		return model.Session{}, err
	}
	data, err := s.demo.Open(ctx)
	if err == nil {
		err = s.local.SetDemoActive(ctx, true)
	}
	if err != nil {
		s.setState(Anonymous)
		s.log.Error("open demo data", zap.Error(err))
		return model.Session{}, newError(op, ErrBackend, err)
	}

	session := model.DemoUser
	session.StartedAt = time.Now()

	s.mu.Lock()
	s.generation++
	s.session = &session
	s.backend = s.demo
	s.state = Active
	s.projects, s.categories, s.tasks = ownedBy(data, session.UserID)
	sortProjects(s.projects)
	sortCategories(s.categories)
	sortTasks(s.tasks)
	s.mu.Unlock()

	s.publish(events.SessionStarted, session, "")
	s.log.Info("demo session started")
	return session, nil
}

// Restore resumes the session persisted by a previous run: demo mode if its
// flag is set, otherwise the live session behind the saved token.
func (s *Store) Restore(ctx context.Context) (model.Session, error) {
	const op = "restore"
	demo, err := s.local.DemoActive(ctx)
	if err != nil {
		return model.Session{}, newError(op, ErrBackend, err)
	}
	if demo {
		return s.LoginDemo(ctx)
	}

	token, err := s.local.Token(ctx)
	if err != nil {
		return model.Session{}, newError(op, ErrBackend, err)
	}
	if token == "" {
		return model.Session{}, newError(op, ErrAuthRequired, nil)
	}
	if err := s.beginAuth(op); err != nil {
		return model.Session{}, err
	}
	identity, err := s.auth.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			_ = s.local.SaveToken(ctx, "")
		}
		return model.Session{}, s.failAuth(op, err)
	}
	return s.startLive(ctx, identity, token), nil
}

// Logout ends the session. Demo data stays persisted for the next demo
// login; a live session is revoked at the auth provider.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return nil
	}
	session := *s.session
	watch := s.watch
	s.generation++
	s.session = nil
	s.backend = nil
	s.watch = nil
	s.state = Anonymous
	s.projects, s.categories, s.tasks = nil, nil, nil
	s.ui.Modal = ModalNone
	s.ui.ActiveDropdown = ""
	s.mu.Unlock()

	if watch != nil {
		watch.Close()
	}

	if session.IsDemo {
		if err := s.local.SetDemoActive(ctx, false); err != nil {
			s.log.Warn("clear demo flag", zap.Error(err))
		}
	} else {
		if err := s.auth.SignOut(ctx, session.Token); err != nil {
			s.log.Warn("sign out", zap.String("user", session.UserID), zap.Error(err))
		}
		if err := s.local.SaveToken(ctx, ""); err != nil {
			s.log.Warn("clear session token", zap.Error(err))
		}
	}

	s.publish(events.SessionEnded, session, "")
	s.log.Info("session ended", zap.String("user", session.UserID), zap.Bool("demo", session.IsDemo))
	return nil
}

// ResetPassword mails a password reset code to email.
func (s *Store) ResetPassword(ctx context.Context, email string) error {
	if err := s.auth.SendPasswordReset(ctx, email); err != nil {
		return newError("reset password", classify(err), err)
	}
	return nil
}

// ConfirmPasswordReset sets a new password using a mailed reset code.
func (s *Store) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	if err := s.auth.ConfirmPasswordReset(ctx, token, password); err != nil {
		return newError("confirm password reset", classify(err), err)
	}
	return nil
}

// Refresh reloads projects, categories and tasks concurrently. Each list
// that loads is applied even if another fails. A list read while a local
// mutation landed is discarded and the reload is tried again.
func (s *Store) Refresh(ctx context.Context) error {
	const op = "refresh"
	session, b, gen, err := s.active(op)
	if err != nil {
		return err
	}

	for attempt := 1; ; attempt++ {
		stale, err := s.reload(ctx, b, session.UserID, gen)
		if err != nil {
			s.log.Error("refresh caches", zap.String("user", session.UserID), zap.Error(err))
			return newError(op, ErrBackend, err)
		}
		if !stale || !s.current(gen) {
			break
		}
		if attempt == refreshAttempts {
			s.log.Debug("refresh kept local edits", zap.String("user", session.UserID))
			break
		}
	}

	s.publish(events.CacheRefreshed, session, "")
	return nil
}

// reload reads every list once. stale reports that at least one list was
// dropped because the caches changed while it was being read.
func (s *Store) reload(ctx context.Context, b backend.Backend, ownerID string, gen uint64) (bool, error) {
	s.mu.RLock()
	edits := s.edits
	s.mu.RUnlock()

	var stale atomic.Bool
	keep := func(fn func()) {
		if !s.replace(gen, edits, fn) {
			stale.Store(true)
		}
	}

	var g errgroup.Group
	g.Go(func() error {
		projects, err := b.ListProjects(ctx, ownerID)
		if err != nil {
			return err
		}
		keep(func() { s.projects = projects })
		return nil
	})
	g.Go(func() error {
		categories, err := b.ListCategories(ctx, ownerID)
		if err != nil {
			return err
		}
		keep(func() { s.categories = categories })
		return nil
	})
	g.Go(func() error {
		tasks, err := b.ListTasks(ctx, ownerID)
		if err != nil {
			return err
		}
		keep(func() { s.tasks = tasks })
		return nil
	})
	err := g.Wait()
	return stale.Load(), err
}

// Subscribe follows events on the shared bus. It returns nil when the store
// has no bus.
func (s *Store) Subscribe(kinds ...events.Kind) *events.Subscription {
	if s.bus == nil {
		return nil
	}
	return s.bus.Subscribe(kinds...)
}

// Close stops listening for changes made by other stores.
func (s *Store) Close() {
	s.mu.Lock()
	watch := s.watch
	s.watch = nil
	s.mu.Unlock()
	if watch != nil {
		watch.Close()
	}
}

func (s *Store) beginAuth(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Authenticating:
		return newError(op, ErrValidation, errors.New("sign-in already in progress"))
	case Active:
		return newError(op, ErrValidation, errors.New("already signed in, log out first"))
	}
	s.state = Authenticating
	return nil
}

func (s *Store) failAuth(op string, err error) error {
	s.setState(Anonymous)
	kind := classify(err)
	if kind == ErrBackend {
		s.log.Error(op, zap.Error(err))
	}
	return newError(op, kind, err)
}

func (s *Store) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// startLive activates a live session and loads its caches. A failed load is
// logged and leaves the session active with empty caches.
func (s *Store) startLive(ctx context.Context, identity model.Identity, token string) model.Session {
	session := model.Session{
		UserID:      identity.ID,
		DisplayName: identity.DisplayName,
		Email:       identity.Email,
		Token:       token,
		StartedAt:   time.Now(),
	}

	s.mu.Lock()
	s.generation++
	s.session = &session
	s.backend = s.live
	s.state = Active
	s.projects, s.categories, s.tasks = nil, nil, nil
	if s.bus != nil {
		s.watch = s.bus.Subscribe(dataKinds()...)
		go s.follow(s.watch, session.UserID, s.generation)
	}
	s.mu.Unlock()

	s.publish(events.SessionStarted, session, "")
	s.log.Info("session started", zap.String("user", session.UserID))

	if err := s.Refresh(ctx); err != nil {
		s.log.Warn("initial cache load failed", zap.String("user", session.UserID), zap.Error(err))
	}
	return session
}

// follow refreshes the caches whenever another store changes data of the
// same owner. It ends when sub is closed.
func (s *Store) follow(sub *events.Subscription, ownerID string, gen uint64) {
	for ev := range sub.C {
		if ev.OwnerID != ownerID || ev.Origin == s.id || ev.Demo {
			continue
		}
		if !s.current(gen) {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		if err := s.Refresh(ctx); err != nil {
			s.log.Warn("refresh after remote change", zap.String("kind", string(ev.Kind)), zap.Error(err))
		}
		cancel()
	}
}

// active returns the session and backend for a mutation, or ErrAuthRequired.
func (s *Store) active(op string) (model.Session, backend.Backend, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil || s.state != Active {
		return model.Session{}, nil, 0, newError(op, ErrAuthRequired, nil)
	}
	return *s.session, s.backend, s.generation, nil
}

func (s *Store) current(gen uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation == gen
}

// edit runs a cache mutation under the write lock unless the session
// changed since gen.
func (s *Store) edit(gen uint64, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return
	}
	s.edits++
	fn()
}

// replace swaps in a list read from the backend. It refuses when the session
// changed or the caches were edited since the read started.
func (s *Store) replace(gen, edits uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen || s.edits != edits {
		return false
	}
	fn()
	return true
}

func (s *Store) publish(kind events.Kind, session model.Session, entityID string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.Event{
		Kind:     kind,
		OwnerID:  session.UserID,
		EntityID: entityID,
		Origin:   s.id,
		Demo:     session.IsDemo,
	})
}

func dataKinds() []events.Kind {
	var kinds []events.Kind
	for _, k := range events.Kinds {
		if k.DataChange() {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func ownedBy(data model.DemoData, ownerID string) ([]model.Project, []model.Category, []model.Task) {
	var (
		projects   []model.Project
		categories []model.Category
		tasks      []model.Task
	)
	for _, p := range data.Projects {
		if p.OwnerID == ownerID {
			projects = append(projects, p)
		}
	}
	for _, c := range data.Categories {
		if c.OwnerID == ownerID {
			categories = append(categories, c)
		}
	}
	for _, t := range data.Tasks {
		if t.OwnerID == ownerID {
			tasks = append(tasks, t)
		}
	}
	return projects, categories, tasks
}
