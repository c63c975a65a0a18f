// Package session ties the user store, the search filter and form
// controllers to one remote user service. It is the state a view holds for
// as long as it is mounted.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dusk-indust/usermgr/internal/form"
	"github.com/dusk-indust/usermgr/internal/future"
	"github.com/dusk-indust/usermgr/internal/search"
	"github.com/dusk-indust/usermgr/internal/store"
	"github.com/dusk-indust/usermgr/internal/userapi"
	"go.uber.org/zap"
)

// ErrStale is returned by an async load that was overtaken by a newer one.
var ErrStale = errors.New("session: superseded by a newer load")

// Session is the explicit replacement for ambient view state: one store, one
// service, and the glue that applies service results to the store.
type Session struct {
	svc    userapi.Service
	store  *store.Store
	log    *zap.Logger
	events *eventReporter

	// applyMu serialises "is this result still current?" checks with the
	// store mutation that follows them.
	applyMu sync.Mutex
	loadGen atomic.Uint64
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithStore lets a caller supply the store, e.g. one shared with another view.
func WithStore(st *store.Store) Option {
	return func(s *Session) {
		if st != nil {
			s.store = st
		}
	}
}

// New creates a Session over svc with an empty store.
func New(svc userapi.Service, opts ...Option) *Session {
	s := &Session{
		svc:    svc,
		store:  store.New(),
		log:    zap.NewNop(),
		events: newEventReporter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store exposes the underlying record store.
func (s *Session) Store() *store.Store {
	return s.store
}

// Service exposes the remote user service.
func (s *Session) Service() userapi.Service {
	return s.svc
}

// Events returns the change event channel. Events are dropped when the
// channel is full.
func (s *Session) Events() <-chan Event {
	return s.events.subscribe()
}

// Close ends the session and closes the event channel. Calls still in
// flight run to completion and apply their results; their events are
// dropped. Close may be called more than once.
func (s *Session) Close() {
	s.events.close()
}

// Load refreshes the whole user list. Any async load still in flight is
// made stale.
func (s *Session) Load(ctx context.Context) error {
	gen := s.loadGen.Add(1)

	users, err := s.svc.ListUsers(ctx)
	if err != nil {
		return s.fail(0, "load users", err)
	}
	return s.applyLoad(ctx, gen, users, func() bool { return ctx.Err() == nil })
}

// LoadAsync refreshes the user list on its own goroutine. The result is
// applied only if no newer load started meanwhile and the Future was not
// cancelled.
func (s *Session) LoadAsync(ctx context.Context) *future.Future[[]userapi.User] {
	gen := s.loadGen.Add(1)
	return future.GoCommit(ctx, func(ctx context.Context, commit future.Commit) ([]userapi.User, error) {
		users, err := s.svc.ListUsers(ctx)
		if err != nil {
			return nil, s.fail(0, "load users", err)
		}
		if err := s.applyLoad(ctx, gen, users, commit); err != nil {
			return nil, err
		}
		return s.store.All(), nil
	})
}

// applyLoad replaces the store with users unless a newer load has started
// or commit refuses.
func (s *Session) applyLoad(ctx context.Context, gen uint64, users []userapi.User, commit future.Commit) error {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	if s.loadGen.Load() != gen {
		s.log.Debug("discarding stale load", zap.Uint64("generation", gen))
		return ErrStale
	}
	if !commit() {
		s.log.Debug("discarding cancelled load", zap.Uint64("generation", gen))
		return canceled(ctx)
	}
	if err := s.store.Replace(users); err != nil {
		return s.fail(0, "load users", err)
	}

	n := s.store.Len()
	s.log.Info("users loaded", zap.Int("count", n))
	s.events.emit(Event{Kind: EventLoaded, Count: n})
	return nil
}

// Users returns the cached list in order.
func (s *Session) Users() []userapi.User {
	return s.store.All()
}

// Search returns the cached users whose name contains query, ignoring case.
func (s *Session) Search(query string) []userapi.User {
	return search.Collect(s.store.All(), query)
}

// Details fetches one user from the service. The cache is not consulted or
// changed.
func (s *Session) Details(ctx context.Context, id int) (userapi.User, error) {
	u, err := s.svc.GetUser(ctx, id)
	if err != nil {
		return userapi.User{}, s.fail(id, "get user", err)
	}
	return *u, nil
}

// OpenCreate starts a Create-mode form over a blank draft.
func (s *Session) OpenCreate() *form.Controller {
	return form.NewCreate(s.svc)
}

// OpenEdit starts an Edit-mode form for id, from the cache when the user is
// there and from the service otherwise.
func (s *Session) OpenEdit(ctx context.Context, id int) (*form.Controller, error) {
	u, ok := s.store.Get(id)
	if !ok {
		var err error
		if u, err = s.Details(ctx, id); err != nil {
			return nil, err
		}
	}
	return form.NewEdit(s.svc, u)
}

// Save submits ctl and applies the returned record to the store. When the
// apply step finds the store out of step with the server, the saved record
// is returned together with the *store.InconsistencyError.
func (s *Session) Save(ctx context.Context, ctl *form.Controller) (userapi.User, error) {
	saved, err := ctl.Submit(ctx)
	if err != nil {
		return userapi.User{}, s.fail(ctl.Draft().ID, "save user", err)
	}
	return saved, s.applySaved(ctl.Mode(), saved)
}

// SaveAsync is Save on its own goroutine. If the Future is cancelled before
// the result is applied, the store is left untouched; once it is applied,
// cancelling has no effect.
func (s *Session) SaveAsync(ctx context.Context, ctl *form.Controller) *future.Future[userapi.User] {
	return future.GoCommit(ctx, func(ctx context.Context, commit future.Commit) (userapi.User, error) {
		saved, err := ctl.Submit(ctx)
		if err != nil {
			return userapi.User{}, s.fail(ctl.Draft().ID, "save user", err)
		}

		s.applyMu.Lock()
		defer s.applyMu.Unlock()
		if !commit() {
			s.log.Debug("discarding cancelled save", zap.Int("id", saved.ID))
			return userapi.User{}, canceled(ctx)
		}
		return saved, s.applySavedLocked(ctl.Mode(), saved)
	})
}

func (s *Session) applySaved(mode form.Mode, saved userapi.User) error {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()
	return s.applySavedLocked(mode, saved)
}

func (s *Session) applySavedLocked(mode form.Mode, saved userapi.User) error {
	// Nothing to reconcile before the first load.
	if !s.store.Loaded() {
		return nil
	}

	kind := EventUpdated
	var err error
	if mode == form.ModeCreate {
		kind = EventCreated
		err = s.store.ApplyCreate(saved)
	} else {
		err = s.store.ApplyUpdate(saved)
	}
	if err != nil {
		return s.fail(saved.ID, "apply "+mode.String(), err)
	}

	s.log.Info("user saved", zap.String("mode", mode.String()), zap.Int("id", saved.ID))
	s.events.emit(Event{Kind: kind, UserID: saved.ID, Name: saved.Name, Count: s.store.Len()})
	return nil
}

// QuickEdit updates the three required fields of one user, the list
// screen's inline edit.
func (s *Session) QuickEdit(ctx context.Context, id int, name, email, phone string) (userapi.User, error) {
	ctl, err := s.OpenEdit(ctx, id)
	if err != nil {
		return userapi.User{}, err
	}
	for path, v := range map[string]string{"name": name, "email": email, "phone": phone} {
		if err := ctl.SetField(path, v); err != nil {
			return userapi.User{}, err
		}
	}
	if err := ctl.Validate(); err != nil {
		ctl.Cancel()
		return userapi.User{}, err
	}
	return s.Save(ctx, ctl)
}

// Delete removes id on the service and then from the store.
func (s *Session) Delete(ctx context.Context, id int) error {
	if err := s.svc.DeleteUser(ctx, id); err != nil {
		return s.fail(id, "delete user", err)
	}

	s.applyMu.Lock()
	defer s.applyMu.Unlock()
	if s.store.Loaded() {
		if err := s.store.ApplyDelete(id); err != nil {
			return s.fail(id, "apply delete", err)
		}
	}

	s.log.Info("user deleted", zap.Int("id", id))
	s.events.emit(Event{Kind: EventDeleted, UserID: id, Count: s.store.Len()})
	return nil
}

// canceled is the error for a result dropped at its commit point.
func canceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return future.ErrCanceled
}

// fail logs err, emits a failure event, and returns err unchanged so callers
// can still match it with errors.As.
func (s *Session) fail(id int, op string, err error) error {
	if errors.Is(err, store.ErrInconsistent) {
		s.log.Warn("store out of step with server", zap.String("op", op), zap.Int("id", id), zap.Error(err))
	} else {
		s.log.Error(op+" failed", zap.Int("id", id), zap.Error(err))
	}
	s.events.emit(Event{Kind: EventFailed, UserID: id, Err: fmt.Errorf("%s: %w", op, err)})
	return err
}
