// Package session holds the single source of truth for who is logged in.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/mkrupp/disastermap/internal/domain"
	"github.com/mkrupp/disastermap/internal/infra/logging"
	"github.com/mkrupp/disastermap/internal/infra/metrics"
	"github.com/mkrupp/disastermap/internal/repo/token"
)

// ProfileFetcher loads the profile belonging to a bearer token.
type ProfileFetcher interface {
	Profile(ctx context.Context, token domain.AuthToken) (*domain.UserProfile, error)
}

// Store holds the session state {user, isAuthenticated, isLoading}.
// It starts loading; Restore ends the loading phase exactly once.
//
// Listeners registered with Subscribe are called after every mutation, one
// mutation at a time, with the snapshot that mutation produced. They must
// not mutate the store.
type Store struct {
	tokens   token.Repository
	profiles ProfileFetcher
	metrics  *metrics.Metrics
	log      logging.Logger

	restoreOnce sync.Once
	restored    chan struct{}

	mu      sync.RWMutex
	user    *domain.UserProfile
	loading bool
	// generation counts SetSession and ClearSession calls, so that a restore
	// finishing late does not overwrite a login that happened meanwhile.
	generation uint64

	notifyMu  sync.Mutex
	listeners map[int]func(domain.Session)
	nextID    int
}

// NewStore creates a Store in the loading state.
func NewStore(tokens token.Repository, profiles ProfileFetcher, m *metrics.Metrics) *Store {
	//nolint:exhaustruct
	return &Store{
		tokens:    tokens,
		profiles:  profiles,
		metrics:   m,
		log:       logging.GetLogger("svc.session.store"),
		restored:  make(chan struct{}),
		loading:   true,
		listeners: make(map[int]func(domain.Session)),
	}
}

// Restore loads the profile of the stored token, if there is one. Failures
// are logged and leave the session anonymous; a rejected token is cleared.
// Only the first call does any work; concurrent calls wait for it.
func (s *Store) Restore(ctx context.Context) {
	s.restoreOnce.Do(func() {
		defer close(s.restored)

		s.mu.RLock()
		generation := s.generation
		s.mu.RUnlock()

		user, event := s.restore(ctx)

		s.mutate(func() {
			if s.generation == generation {
				s.user = copyUser(user)
			}

			s.loading = false
		})

		s.metrics.SessionEvent(event)
	})
}

// Restored is closed once Restore has finished.
func (s *Store) Restored() <-chan struct{} {
	return s.restored
}

func (s *Store) restore(ctx context.Context) (user *domain.UserProfile, event string) {
	var err error

	defer func() {
		if err != nil {
			s.log.WarnContext(ctx, "session restore failed", "error", err)
		}
	}()

	tok, ok, err := s.tokens.GetToken(ctx)
	if err != nil {
		return nil, "restore_failed"
	}

	if !ok {
		s.log.DebugContext(ctx, "no stored token")

		return nil, "restore_anonymous"
	}

	user, err = s.profiles.Profile(ctx, tok)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			if clearErr := s.tokens.ClearToken(ctx); clearErr != nil {
				err = errors.Join(err, clearErr)
			}

			return nil, "restore_rejected"
		}

		return nil, "restore_failed"
	}

	if user == nil {
		return nil, "restore_anonymous"
	}

	s.log.InfoContext(ctx, "session restored", "user", user.ID, "role", user.Role)

	return user, "restored"
}

// SetSession makes user the logged in user.
func (s *Store) SetSession(user *domain.UserProfile) {
	if user == nil {
		s.ClearSession()

		return
	}

	s.mutate(func() {
		s.user = copyUser(user)
		s.generation++
	})
	s.metrics.SessionEvent("set")
}

// ClearSession logs the user out locally.
func (s *Store) ClearSession() {
	s.mutate(func() {
		s.user = nil
		s.generation++
	})
	s.metrics.SessionEvent("cleared")
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.NewSession(s.user, s.loading)
}

// User returns a copy of the logged in user, or nil.
func (s *Store) User() *domain.UserProfile {
	return s.Snapshot().User
}

// Subscribe registers fn to be called after every mutation.
func (s *Store) Subscribe(fn func(domain.Session)) (unsubscribe func()) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.notifyMu.Lock()
		defer s.notifyMu.Unlock()

		delete(s.listeners, id)
	}
}

// mutate applies fn under the state lock, then hands the resulting snapshot
// to every listener before the next mutation may start.
func (s *Store) mutate(fn func()) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	fn()
	snapshot := domain.NewSession(s.user, s.loading)
	s.mu.Unlock()

	for _, listener := range s.listeners {
		listener(snapshot)
	}
}

func copyUser(user *domain.UserProfile) *domain.UserProfile {
	if user == nil {
		return nil
	}

	u := *user

	return &u
}
