package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/confirm"
	pkgcrypto "github.com/sachu255/CRAFTY-notes--sub000/internal/crypto"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/errs"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/events"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/limiter"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/model"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/profile"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/repository"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/textproc"
)

type fakeStore struct {
	mu      sync.Mutex
	states  map[uuid.UUID]model.AppState
	loads   int
	saves   []repository.Record
	loadErr error
	saveErr error
}

var _ repository.StateRepository = (*fakeStore)(nil)

func newFakeStore() *fakeStore { return &fakeStore{states: map[uuid.UUID]model.AppState{}} }

func (f *fakeStore) Load(_ context.Context, pid uuid.UUID, name string) (model.AppState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.loadErr != nil {
		return model.AppState{}, f.loadErr
	}
	if st, ok := f.states[pid]; ok {
		return st, nil
	}
	return model.AppState{
		Notes:     []model.Note{},
		Settings:  profile.DefaultSettings(),
		Profile:   profile.Default(name),
		Installed: []model.MarketItem{},
		Bin:       []model.MarketItem{},
	}, nil
}

func (f *fakeStore) Save(_ context.Context, pid uuid.UUID, st model.AppState, recs repository.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves = append(f.saves, recs)
	if f.saveErr != nil {
		return fmt.Errorf("%w: %w", errs.ErrPersistence, f.saveErr)
	}
	f.states[pid] = st
	return nil
}

func (f *fakeStore) stored(pid uuid.UUID) model.AppState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.states[pid]
}

type fakeLimiter struct {
	allowOK   bool
	failures  int
	successes int
	blockAt   int
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (f *fakeLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	if !f.allowOK {
		return false, time.Minute, nil
	}
	return true, 0, nil
}
func (f *fakeLimiter) Success(context.Context, string) error { f.successes++; return nil }
func (f *fakeLimiter) Failure(context.Context, string) (bool, time.Duration, error) {
	f.failures++
	if f.blockAt > 0 && f.failures >= f.blockAt {
		f.allowOK = false
		return true, time.Minute, nil
	}
	return false, 0, nil
}

type fakeProcessor struct {
	out   string
	err   error
	calls int
	// during runs inside Process, while the profile lock is released.
	during func()
}

var _ textproc.Processor = (*fakeProcessor)(nil)

func (f *fakeProcessor) Process(_ context.Context, text string, task textproc.Task) (string, error) {
	f.calls++
	if f.during != nil {
		f.during()
	}
	if f.err != nil {
		return "", f.err
	}
	if f.out != "" {
		return f.out, nil
	}
	return string(task) + ":" + text, nil
}

type fakePublisher struct {
	mu      sync.Mutex
	effects []model.Effect
	err     error
}

var _ events.Publisher = (*fakePublisher)(nil)

func (f *fakePublisher) Publish(_ context.Context, _ string, _ int64, effects []model.Effect) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.effects = append(f.effects, effects...)
	return f.err
}

type fakeObserver struct {
	open     int
	failures int
}

var _ Observer = (*fakeObserver)(nil)

func (f *fakeObserver) SessionsOpen(n int) { f.open = n }
func (f *fakeObserver) PersistFailed()     { f.failures++ }

type fixture struct {
	ws    *WorkspaceServiceImpl
	store *fakeStore
	lim   *fakeLimiter
	ai    *fakeProcessor
	pub   *fakePublisher
	obs   *fakeObserver
	now   time.Time
	pid   uuid.UUID
	ids   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: newFakeStore(),
		lim:   &fakeLimiter{allowOK: true},
		ai:    &fakeProcessor{},
		pub:   &fakePublisher{},
		obs:   &fakeObserver{},
		now:   time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		pid:   ProfileID("tester"),
	}
	f.ws = NewWorkspaceService(f.store, Options{
		Hasher:    pkgcrypto.NewHasher(pkgcrypto.Params{Time: 1, Memory: 1024, Threads: 1}),
		Limiter:   f.lim,
		Confirm:   confirm.NewIssuer([]byte("confirm-key"), time.Minute),
		Processor: f.ai,
		Publisher: f.pub,
		Observer:  f.obs,
		Location:  time.UTC,
		Now:       func() time.Time { return f.now },
		NewID: func() string {
			f.ids++
			return fmt.Sprintf("note-%d", f.ids)
		},
	})
	return f
}

func (f *fixture) saveNote(t *testing.T, title string, mod func(*model.Note)) model.Note {
	t.Helper()
	n := f.ws.CreateNote(context.Background(), f.pid)
	n.Title = title
	if mod != nil {
		mod(&n)
	}
	saved, _, err := f.ws.SaveNote(context.Background(), f.pid, n, "")
	if err != nil {
		t.Fatalf("SaveNote(%q): %v", title, err)
	}
	return saved
}

func hasEffect(effects []model.Effect, kind model.EffectKind, achievement string) bool {
	for _, e := range effects {
		if e.Kind == kind && (achievement == "" || e.AchievementID == achievement) {
			return true
		}
	}
	return false
}

var errBoom = errors.New("boom")
