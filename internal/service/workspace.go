// Package service contains the session and workspace application services.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/confirm"
	pkgcrypto "github.com/sachu255/CRAFTY-notes--sub000/internal/crypto"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/errs"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/events"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/limiter"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/model"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/notebook"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/repository"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/textproc"
)

// WorkspaceService is the per-profile coordinator of notes, economy, settings and marketplace.
// Mutations return the effects they emitted. When only persistence fails the
// in-memory change stands and the error wraps errs.ErrPersistence.
type WorkspaceService interface {
	Open(ctx context.Context, pid uuid.UUID, name string) (model.Profile, []model.Effect, error)
	Close(pid uuid.UUID) bool
	Snapshot(ctx context.Context, pid uuid.UUID) (model.AppState, error)

	CreateNote(ctx context.Context, pid uuid.UUID) model.Note
	SaveNote(ctx context.Context, pid uuid.UUID, note model.Note, password string) (model.Note, []model.Effect, error)
	GetNote(ctx context.Context, pid uuid.UUID, id string) (model.Note, error)
	ListNotes(ctx context.Context, pid uuid.UUID, q ListQuery) ([]model.Note, error)
	Tags(ctx context.Context, pid uuid.UUID) (map[string]int, error)
	DeleteNote(ctx context.Context, pid uuid.UUID, id string) ([]model.Effect, error)
	RestoreNote(ctx context.Context, pid uuid.UUID, id string) ([]model.Effect, error)
	TogglePin(ctx context.Context, pid uuid.UUID, id string) (bool, []model.Effect, error)
	DuplicateNote(ctx context.Context, pid uuid.UUID, id string) (model.Note, []model.Effect, error)
	Attach(ctx context.Context, pid uuid.UUID, id string, kind notebook.AttachmentKind, ref string) error
	LockNote(ctx context.Context, pid uuid.UUID, id, password string) ([]model.Effect, error)
	UnlockNote(ctx context.Context, pid uuid.UUID, id, password string) (model.Note, error)
	RevealNote(ctx context.Context, pid uuid.UUID, id, password string) (model.Note, error)
	ProcessNote(ctx context.Context, pid uuid.UUID, id string, task textproc.Task) (model.Note, []model.Effect, error)
	RequestPurge(ctx context.Context, pid uuid.UUID, kind, target string) (string, time.Time, error)
	Purge(ctx context.Context, pid uuid.UUID, kind, target, token string) error

	Profile(ctx context.Context, pid uuid.UUID) (model.Profile, error)
	Achievements(ctx context.Context, pid uuid.UUID) ([]AchievementStatus, error)
	AwardExp(ctx context.Context, pid uuid.UUID, amount int64) (model.Profile, []model.Effect, error)
	UnlockAchievement(ctx context.Context, pid uuid.UUID, id string) (model.Profile, []model.Effect, error)
	Spend(ctx context.Context, pid uuid.UUID, price int64, reason string) (model.Profile, []model.Effect, error)
	AdjustCoins(ctx context.Context, pid uuid.UUID, delta int64, reason string) (model.Profile, []model.Effect, error)
	Settings(ctx context.Context, pid uuid.UUID) (model.Settings, error)
	UpdateSettings(ctx context.Context, pid uuid.UUID, in model.Settings) (model.Settings, error)
	Sticky(ctx context.Context, pid uuid.UUID) (model.StickyNote, error)
	SetSticky(ctx context.Context, pid uuid.UUID, text string, color model.NoteColor) (model.StickyNote, error)

	Market(ctx context.Context, pid uuid.UUID) ([]model.MarketItem, error)
	Installed(ctx context.Context, pid uuid.UUID) (installed, bin []model.MarketItem, err error)
	Install(ctx context.Context, pid uuid.UUID, id string) (model.Profile, []model.Effect, error)
	Uninstall(ctx context.Context, pid uuid.UUID, id string) (model.Settings, []model.Effect, error)
	RestoreItem(ctx context.Context, pid uuid.UUID, id string) error
}

var _ WorkspaceService = (*WorkspaceServiceImpl)(nil)

// Observer receives coordinator statistics. *metrics.Metrics implements it.
type Observer interface {
	SessionsOpen(n int)
	PersistFailed()
}

// Options carries the collaborators of WorkspaceServiceImpl. Zero fields get defaults.
type Options struct {
	Hasher    *pkgcrypto.Hasher
	Limiter   limiter.Limiter
	Confirm   *confirm.Issuer
	Processor textproc.Processor
	Publisher events.Publisher
	Observer  Observer
	Log       *zap.Logger
	// Location decides calendar days for the login streak.
	Location *time.Location
	// AITimeout bounds one Processor call.
	AITimeout time.Duration
	Now       func() time.Time
	NewID     func() string
}

// WorkspaceServiceImpl owns the in-memory AppState of every open profile and
// serializes all mutations of one profile through that profile's mutex.
type WorkspaceServiceImpl struct {
	store repository.StateRepository
	opts  Options

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

type session struct {
	mu     sync.Mutex
	loaded bool
	st     model.AppState
	// unsaved accumulates records whose last write failed; guarded by mu.
	unsaved repository.Record

	// refs and used are guarded by WorkspaceServiceImpl.mu.
	refs int
	used time.Time
}

// NewWorkspaceService constructs the coordinator.
func NewWorkspaceService(store repository.StateRepository, opts Options) *WorkspaceServiceImpl {
	if opts.Hasher == nil {
		opts.Hasher = pkgcrypto.NewHasher(pkgcrypto.DefaultParams)
	}
	if opts.Limiter == nil {
		opts.Limiter = limiter.NewMemory(15*time.Minute, 5, 15*time.Minute)
	}
	if opts.Confirm == nil {
		key, _ := pkgcrypto.RandBytes(32)
		opts.Confirm = confirm.NewIssuer(key, confirm.DefaultTTL)
	}
	if opts.Processor == nil {
		opts.Processor = textproc.NewLocal()
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.AITimeout <= 0 {
		opts.AITimeout = 10 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.Must(uuid.NewV4()).String() }
	}
	return &WorkspaceServiceImpl{store: store, opts: opts, sessions: map[uuid.UUID]*session{}}
}

// mutation computes the next state. It must leave st untouched when it returns an error.
type mutation func(st *model.AppState, now time.Time) (repository.Record, []model.Effect, error)

// acquire returns the session of pid with one more reference. Sessions with
// references are never dropped, so two calls on pid always share one lock.
func (s *WorkspaceServiceImpl) acquire(pid uuid.UUID) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[pid]
	if !ok {
		sess = &session{}
		s.sessions[pid] = sess
		s.observeOpen()
	}
	sess.refs++
	return sess
}

// release unlocks sess and drops the reference taken by acquire.
func (s *WorkspaceServiceImpl) release(sess *session) {
	sess.mu.Unlock()
	s.mu.Lock()
	sess.refs--
	sess.used = s.opts.Now()
	s.mu.Unlock()
}

func (s *WorkspaceServiceImpl) observeOpen() {
	if s.opts.Observer != nil {
		s.opts.Observer.SessionsOpen(len(s.sessions))
	}
}

// lockLoaded returns the profile session locked, loading its state on first use.
func (s *WorkspaceServiceImpl) lockLoaded(ctx context.Context, pid uuid.UUID, name string) (*session, error) {
	if pid == uuid.Nil {
		return nil, fmt.Errorf("validation: empty profile id: %w", errs.ErrInvalid)
	}
	sess := s.acquire(pid)
	sess.mu.Lock()
	if sess.loaded {
		return sess, nil
	}
	st, err := s.store.Load(ctx, pid, name)
	if err != nil {
		s.release(sess)
		return nil, err
	}
	sess.st = st
	sess.loaded = true
	return sess, nil
}

// mutate applies fn under the profile lock, then persists the touched records and
// publishes the effects. A persistence failure keeps the in-memory change and is returned;
// the failed records are written again with the next mutation.
func (s *WorkspaceServiceImpl) mutate(ctx context.Context, pid uuid.UUID, fn mutation) ([]model.Effect, error) {
	sess, err := s.lockLoaded(ctx, pid, "")
	if err != nil {
		return nil, err
	}
	defer s.release(sess)
	return s.apply(ctx, pid, sess, fn)
}

func (s *WorkspaceServiceImpl) apply(ctx context.Context, pid uuid.UUID, sess *session, fn mutation) ([]model.Effect, error) {
	now := s.opts.Now()
	next := sess.st
	recs, effects, err := fn(&next, now)
	if err != nil {
		return nil, err
	}
	sess.st = next

	var perr error
	if recs != 0 {
		recs |= sess.unsaved
		if perr = s.store.Save(ctx, pid, sess.st, recs); perr != nil {
			sess.unsaved = recs
			if !errors.Is(perr, errs.ErrPersistence) {
				perr = fmt.Errorf("%w: %w", errs.ErrPersistence, perr)
			}
			s.opts.Log.Warn("persist state", zap.String("profile", pid.String()), zap.Error(perr))
			if s.opts.Observer != nil {
				s.opts.Observer.PersistFailed()
			}
		} else {
			sess.unsaved = 0
		}
	}
	if s.opts.Publisher != nil && len(effects) > 0 {
		if err := s.opts.Publisher.Publish(ctx, pid.String(), model.Millis(now), effects); err != nil {
			s.opts.Log.Warn("publish effects", zap.String("profile", pid.String()), zap.Error(err))
		}
	}
	return effects, perr
}

// view runs fn with a read-only snapshot under the profile lock.
func (s *WorkspaceServiceImpl) view(ctx context.Context, pid uuid.UUID, fn func(st model.AppState) error) error {
	sess, err := s.lockLoaded(ctx, pid, "")
	if err != nil {
		return err
	}
	defer s.release(sess)
	return fn(sess.st)
}

// Open starts a session of profile pid: the state is loaded when not in memory,
// the login streak is recomputed exactly once and the profile is persisted.
func (s *WorkspaceServiceImpl) Open(ctx context.Context, pid uuid.UUID, name string) (model.Profile, []model.Effect, error) {
	sess, err := s.lockLoaded(ctx, pid, name)
	if err != nil {
		return model.Profile{}, nil, err
	}
	defer s.release(sess)

	effects, err := s.apply(ctx, pid, sess, func(st *model.AppState, now time.Time) (repository.Record, []model.Effect, error) {
		return openSession(st, name, now, s.opts.Location)
	})
	return sess.st.Profile, effects, err
}

// Close drops the in-memory state of pid so the next call reloads it from the
// store. It refuses, returning false, while a call on pid is in flight or while
// records of pid are still unsaved.
func (s *WorkspaceServiceImpl) Close(pid uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[pid]
	if !ok {
		return true
	}
	if !idle(sess) {
		return false
	}
	delete(s.sessions, pid)
	s.observeOpen()
	return true
}

// EvictIdle closes every session unused for at least d and returns how many it dropped.
func (s *WorkspaceServiceImpl) EvictIdle(d time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.opts.Now()
	n := 0
	for pid, sess := range s.sessions {
		if idle(sess) && now.Sub(sess.used) >= d {
			delete(s.sessions, pid)
			n++
		}
	}
	if n > 0 {
		s.observeOpen()
	}
	return n
}

// Sweep runs EvictIdle every d/2 until ctx ends.
func (s *WorkspaceServiceImpl) Sweep(ctx context.Context, d time.Duration) {
	every := d / 2
	if every <= 0 {
		every = d
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.EvictIdle(d); n > 0 {
				s.opts.Log.Debug("evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}

// idle reports whether sess can be dropped. Callers hold s.mu; with no
// references nobody holds sess.mu either.
func idle(sess *session) bool { return sess.refs == 0 && sess.unsaved == 0 }

// Snapshot returns a deep copy of the state of pid.
func (s *WorkspaceServiceImpl) Snapshot(ctx context.Context, pid uuid.UUID) (model.AppState, error) {
	var out model.AppState
	err := s.view(ctx, pid, func(st model.AppState) error {
		out = st
		out.Notes = make([]model.Note, len(st.Notes))
		for i, n := range st.Notes {
			out.Notes[i] = n.Clone()
		}
		out.Installed = append([]model.MarketItem(nil), st.Installed...)
		out.Bin = append([]model.MarketItem(nil), st.Bin...)
		out.Profile.UnlockedAchievements = append([]string(nil), st.Profile.UnlockedAchievements...)
		return nil
	})
	return out, err
}
