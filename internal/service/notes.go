package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/confirm"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/economy"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/errs"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/limiter"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/model"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/notebook"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/repository"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/textproc"
)

// SaveNoteExp is the experience granted for every saved note.
const SaveNoteExp = 10

// ListQuery selects and orders a note listing.
type ListQuery struct {
	Query string
	// Bin lists deleted notes instead of active ones.
	Bin   bool
	Tag   string
	Order notebook.Order
}

// CreateNote allocates a fresh note. Nothing is stored until SaveNote.
func (s *WorkspaceServiceImpl) CreateNote(_ context.Context, _ uuid.UUID) model.Note {
	return notebook.New(s.opts.NewID(), s.opts.Now())
}

// SaveNote replaces or prepends note and runs the save achievements.
//
// The stored lock cannot be changed through a save. Saving over a locked note
// requires its password. A new or unlocked note with Locked set is locked with
// password on the way in.
func (s *WorkspaceServiceImpl) SaveNote(ctx context.Context, pid uuid.UUID, note model.Note, password string) (model.Note, []model.Effect, error) {
	if note.ID == "" {
		return model.Note{}, nil, fmt.Errorf("validation: empty note id: %w", errs.ErrInvalid)
	}
	if note.Color != "" && !validColor(note.Color) {
		return model.Note{}, nil, fmt.Errorf("validation: unknown color %q: %w", note.Color, errs.ErrInvalid)
	}
	var saved model.Note
	effects, err := s.mutate(ctx, pid, func(st *model.AppState, now time.Time) (repository.Record, []model.Effect, error) {
		n := note.Clone()
		n.Lock = nil
		old, exists := notebook.Find(st.Notes, n.ID)
		switch {
		case exists && old.Locked:
			if err := s.checkPassword(ctx, pid, old, password); err != nil {
				return 0, nil, err
			}
			n.Locked, n.Lock = true, old.Lock
		case n.Locked:
			lock, err := s.newLock(password)
			if err != nil {
				return 0, nil, err
			}
			n.Lock = lock
		}
		if exists {
			n.CreatedAt = old.CreatedAt
			n.Deleted, n.BinID = old.Deleted, old.BinID
		} else if n.CreatedAt == 0 {
			n.CreatedAt = model.Millis(now)
		}

		notes, _ := notebook.Save(st.Notes, n, now)
		saved, _ = notebook.Find(notes, n.ID)

		p := st.Profile
		var effects, e []model.Effect
		p, e = economy.Unlock(p, economy.FirstNote)
		effects = append(effects, e...)
		if len(saved.Tags) > 0 {
			p, e = economy.Unlock(p, economy.Tagger)
			effects = append(effects, e...)
		}
		if saved.Locked {
			p, e = economy.Unlock(p, economy.Locked)
			effects = append(effects, e...)
		}
		if saved.Pinned {
			p, e = economy.Unlock(p, economy.Organized)
			effects = append(effects, e...)
		}
		p, e = economy.GainExp(p, SaveNoteExp)
		effects = append(effects, e...)

		st.Notes, st.Profile = notes, p
		return repository.RecNotes | repository.RecProfile, effects, nil
	})
	saved.Lock = nil
	return saved, effects, err
}

// DeleteNote moves a note to the bin.
func (s *WorkspaceServiceImpl) DeleteNote(ctx context.Context, pid uuid.UUID, id string) ([]model.Effect, error) {
	return s.setDeleted(ctx, pid, id, true, economy.Deleted)
}

// RestoreNote moves a note out of the bin.
func (s *WorkspaceServiceImpl) RestoreNote(ctx context.Context, pid uuid.UUID, id string) ([]model.Effect, error) {
	return s.setDeleted(ctx, pid, id, false, economy.Undead)
}

func (s *WorkspaceServiceImpl) setDeleted(ctx context.Context, pid uuid.UUID, id string, deleted bool, achievement string) ([]model.Effect, error) {
	return s.mutate(ctx, pid, func(st *model.AppState, _ time.Time) (repository.Record, []model.Effect, error) {
		op := notebook.Restore
		if deleted {
			op = notebook.SoftDelete
		}
		notes, ok := op(st.Notes, id)
		if !ok {
			return 0, nil, fmt.Errorf("note %s: %w", id, errs.ErrNotFound)
		}
		if deleted {
			notes[notebook.Index(notes, id)].BinID = s.opts.NewID()
		}
		p, effects := economy.Unlock(st.Profile, achievement)
		st.Notes, st.Profile = notes, p
		return repository.RecNotes | repository.RecProfile, effects, nil
	})
}

// TogglePin flips the pinned flag. Every call that leaves the note pinned
// attempts the organized achievement.
func (s *WorkspaceServiceImpl) TogglePin(ctx context.Context, pid uuid.UUID, id string) (bool, []model.Effect, error) {
	var pinned bool
	effects, err := s.mutate(ctx, pid, func(st *model.AppState, _ time.Time) (repository.Record, []model.Effect, error) {
		notes, on, ok := notebook.TogglePin(st.Notes, id)
		if !ok {
			return 0, nil, fmt.Errorf("note %s: %w", id, errs.ErrNotFound)
		}
		pinned = on
		p := st.Profile
		var effects []model.Effect
		if on {
			p, effects = economy.Unlock(p, economy.Organized)
		}
		st.Notes, st.Profile = notes, p
		return repository.RecNotes | repository.RecProfile, effects, nil
	})
	return pinned, effects, err
}

// DuplicateNote copies a note under a new id at the front of the list.
func (s *WorkspaceServiceImpl) DuplicateNote(ctx context.Context, pid uuid.UUID, id string) (model.Note, []model.Effect, error) {
	var dup model.Note
	effects, err := s.mutate(ctx, pid, func(st *model.AppState, now time.Time) (repository.Record, []model.Effect, error) {
		src, ok := notebook.Find(st.Notes, id)
		if !ok {
			return 0, nil, fmt.Errorf("note %s: %w", id, errs.ErrNotFound)
		}
		var notes []model.Note
		notes, dup = notebook.Duplicate(st.Notes, src, s.opts.NewID(), now)
		p, effects := economy.Unlock(st.Profile, economy.Cloner)
		st.Notes, st.Profile = notes, p
		return repository.RecNotes | repository.RecProfile, effects, nil
	})
	return notebook.Redact(dup), effects, err
}

// Attach appends an attachment reference. Locked notes refuse attachments.
func (s *WorkspaceServiceImpl) Attach(ctx context.Context, pid uuid.UUID, id string, kind notebook.AttachmentKind, ref string) error {
	_, err := s.mutate(ctx, pid, func(st *model.AppState, _ time.Time) (repository.Record, []model.Effect, error) {
		n, ok := notebook.Find(st.Notes, id)
		if !ok {
			return 0, nil, fmt.Errorf("note %s: %w", id, errs.ErrNotFound)
		}
		if n.Locked {
			return 0, nil, errs.ErrLocked
		}
		notes, ok := notebook.Attach(st.Notes, id, kind, ref)
		if !ok {
			return 0, nil, fmt.Errorf("validation: attachment kind %q: %w", kind, errs.ErrInvalid)
		}
		st.Notes = notes
		return repository.RecNotes, nil, nil
	})
	return err
}

// ListNotes filters, tags and sorts the notes. Locked notes come back redacted.
func (s *WorkspaceServiceImpl) ListNotes(ctx context.Context, pid uuid.UUID, q ListQuery) ([]model.Note, error) {
	var out []model.Note
	err := s.view(ctx, pid, func(st model.AppState) error {
		notes := notebook.Filter(st.Notes, q.Query, q.Bin)
		notes = notebook.FilterByTag(notes, q.Tag)
		notes = notebook.Sort(notes, notebook.ParseOrder(string(q.Order)))
		out = make([]model.Note, len(notes))
		for i, n := range notes {
			n = notebook.Redact(n)
			n.Lock = nil
			out[i] = n
		}
		return nil
	})
	return out, err
}

// GetNote returns a single note, redacted when locked.
func (s *WorkspaceServiceImpl) GetNote(ctx context.Context, pid uuid.UUID, id string) (model.Note, error) {
	var out model.Note
	err := s.view(ctx, pid, func(st model.AppState) error {
		n, ok := notebook.Find(st.Notes, id)
		if !ok {
			return fmt.Errorf("note %s: %w", id, errs.ErrNotFound)
		}
		out = notebook.Redact(n)
		out.Lock = nil
		return nil
	})
	return out, err
}

// Tags counts tag usage over active notes.
func (s *WorkspaceServiceImpl) Tags(ctx context.Context, pid uuid.UUID) (map[string]int, error) {
	var out map[string]int
	err := s.view(ctx, pid, func(st model.AppState) error {
		out = notebook.TagCounts(st.Notes)
		return nil
	})
	return out, err
}

// LockNote puts a password on a note and attempts the locked achievement.
func (s *WorkspaceServiceImpl) LockNote(ctx context.Context, pid uuid.UUID, id, password string) ([]model.Effect, error) {
	return s.mutate(ctx, pid, func(st *model.AppState, _ time.Time) (repository.Record, []model.Effect, error) {
		i := notebook.Index(st.Notes, id)
		if i < 0 {
			return 0, nil, fmt.Errorf("note %s: %w", id, errs.ErrNotFound)
		}
		if st.Notes[i].Locked {
			return 0, nil, errs.ErrLocked
		}
		lock, err := s.newLock(password)
		if err != nil {
			return 0, nil, err
		}
		notes := append([]model.Note(nil), st.Notes...)
		notes[i] = notes[i].Clone()
		notes[i].Locked, notes[i].Lock = true, lock

		p, effects := economy.Unlock(st.Profile, economy.Locked)
		st.Notes, st.Profile = notes, p
		return repository.RecNotes | repository.RecProfile, effects, nil
	})
}

// UnlockNote removes the password of a note and returns it in plain form.
func (s *WorkspaceServiceImpl) UnlockNote(ctx context.Context, pid uuid.UUID, id, password string) (model.Note, error) {
	var out model.Note
	_, err := s.mutate(ctx, pid, func(st *model.AppState, _ time.Time) (repository.Record, []model.Effect, error) {
		i := notebook.Index(st.Notes, id)
		if i < 0 {
			return 0, nil, fmt.Errorf("note %s: %w", id, errs.ErrNotFound)
		}
		n := st.Notes[i].Clone()
		if !n.Locked {
			out = n
			return 0, nil, nil
		}
		if err := s.checkPassword(ctx, pid, n, password); err != nil {
			return 0, nil, err
		}
		n.Locked, n.Lock = false, nil
		notes := append([]model.Note(nil), st.Notes...)
		notes[i] = n
		st.Notes = notes
		out = n.Clone()
		return repository.RecNotes, nil, nil
	})
	return out, err
}

// RevealNote returns the plain note when password matches, leaving it locked.
func (s *WorkspaceServiceImpl) RevealNote(ctx context.Context, pid uuid.UUID, id, password string) (model.Note, error) {
	sess, err := s.lockLoaded(ctx, pid, "")
	if err != nil {
		return model.Note{}, err
	}
	defer s.release(sess)
	n, ok := notebook.Find(sess.st.Notes, id)
	if !ok {
		return model.Note{}, fmt.Errorf("note %s: %w", id, errs.ErrNotFound)
	}
	if n.Locked {
		if err := s.checkPassword(ctx, pid, n, password); err != nil {
			return model.Note{}, err
		}
	}
	n.Lock = nil
	return n, nil
}

// RequestPurge issues the confirmation token required by Purge.
// Notes and items must be in their bin. The token only covers the current
// stay in the bin: restoring and binning the target again voids it.
func (s *WorkspaceServiceImpl) RequestPurge(ctx context.Context, pid uuid.UUID, kind, target string) (string, time.Time, error) {
	var rev string
	err := s.view(ctx, pid, func(st model.AppState) error {
		var err error
		rev, err = purgeable(st, kind, target)
		return err
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return s.opts.Confirm.Issue(pid.String(), kind, target, rev)
}

// Purge permanently removes a binned note or item after verifying token.
func (s *WorkspaceServiceImpl) Purge(ctx context.Context, pid uuid.UUID, kind, target, token string) error {
	rev, err := s.opts.Confirm.Verify(token, pid.String(), kind, target)
	if err != nil {
		return err
	}
	_, err = s.mutate(ctx, pid, func(st *model.AppState, _ time.Time) (repository.Record, []model.Effect, error) {
		cur, err := purgeable(*st, kind, target)
		if err != nil {
			return 0, nil, err
		}
		if cur != rev {
			return 0, nil, fmt.Errorf("%s %s was binned again after the token was issued: %w", kind, target, errs.ErrConfirmationRequired)
		}
		if kind == confirm.KindNote {
			st.Notes, _ = notebook.Purge(st.Notes, target)
			return repository.RecNotes, nil, nil
		}
		r, _ := purgeItem(st, target)
		st.Installed, st.Bin = r.Installed, r.Bin
		return repository.RecBin, nil, nil
	})
	return err
}

// purgeable checks that target sits in its bin and returns its bin id.
func purgeable(st model.AppState, kind, target string) (string, error) {
	switch kind {
	case confirm.KindNote:
		n, ok := notebook.Find(st.Notes, target)
		if !ok {
			return "", fmt.Errorf("note %s: %w", target, errs.ErrNotFound)
		}
		if !n.Deleted {
			return "", fmt.Errorf("validation: note %s is not in the bin: %w", target, errs.ErrInvalid)
		}
		return n.BinID, nil
	case confirm.KindItem:
		for _, it := range st.Bin {
			if it.ID == target {
				return it.BinID, nil
			}
		}
		return "", fmt.Errorf("binned item %s: %w", target, errs.ErrNotFound)
	default:
		return "", fmt.Errorf("validation: purge kind %q: %w", kind, errs.ErrInvalid)
	}
}

// ProcessNote rewrites the content of a note with the text processor. The
// processor runs outside the profile lock; a failure leaves the note unchanged.
// When the content was edited while the processor ran, the rewrite is dropped
// with errs.ErrConflict.
func (s *WorkspaceServiceImpl) ProcessNote(ctx context.Context, pid uuid.UUID, id string, task textproc.Task) (model.Note, []model.Effect, error) {
	var text string
	err := s.view(ctx, pid, func(st model.AppState) error {
		n, ok := notebook.Find(st.Notes, id)
		switch {
		case !ok:
			return fmt.Errorf("note %s: %w", id, errs.ErrNotFound)
		case n.Locked:
			return errs.ErrLocked
		}
		text = n.Content
		return nil
	})
	if err != nil {
		return model.Note{}, nil, err
	}

	actx, cancel := context.WithTimeout(ctx, s.opts.AITimeout)
	out, perr := s.opts.Processor.Process(actx, text, task)
	cancel()
	if perr != nil {
		s.opts.Log.Info("text processor failed", zap.String("task", string(task)), zap.Error(perr))
		return model.Note{}, nil, fmt.Errorf("%w: %w", errs.ErrAIUnavailable, perr)
	}

	var saved model.Note
	effects, err := s.mutate(ctx, pid, func(st *model.AppState, now time.Time) (repository.Record, []model.Effect, error) {
		n, ok := notebook.Find(st.Notes, id)
		switch {
		case !ok:
			return 0, nil, fmt.Errorf("note %s: %w", id, errs.ErrNotFound)
		case n.Locked:
			return 0, nil, errs.ErrLocked
		case n.Content != text:
			return 0, nil, fmt.Errorf("note %s edited during processing: %w", id, errs.ErrConflict)
		}
		n.Content = out
		notes, _ := notebook.Save(st.Notes, n, now)
		saved, _ = notebook.Find(notes, id)
		p, effects := economy.Unlock(st.Profile, economy.AIAssist)
		st.Notes, st.Profile = notes, p
		return repository.RecNotes | repository.RecProfile, effects, nil
	})
	saved.Lock = nil
	return saved, effects, err
}

func (s *WorkspaceServiceImpl) newLock(password string) (*model.NoteLock, error) {
	if password == "" {
		return nil, fmt.Errorf("validation: empty password: %w", errs.ErrInvalid)
	}
	hash, salt, err := s.opts.Hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	return &model.NoteLock{Hash: hash, Salt: salt}, nil
}

// checkPassword verifies password against the lock of n through the limiter.
func (s *WorkspaceServiceImpl) checkPassword(ctx context.Context, pid uuid.UUID, n model.Note, password string) error {
	if password == "" {
		return errs.ErrLocked
	}
	subject := limiter.Subject(pid.String(), n.ID)
	allowed, _, err := s.opts.Limiter.Allow(ctx, subject)
	if err != nil {
		return err
	}
	if !allowed {
		return errs.ErrRateLimited
	}
	if n.Lock != nil && s.opts.Hasher.Verify(password, n.Lock.Salt, n.Lock.Hash) {
		if err := s.opts.Limiter.Success(ctx, subject); err != nil {
			s.opts.Log.Warn("limiter reset", zap.Error(err))
		}
		return nil
	}
	if blocked, _, ferr := s.opts.Limiter.Failure(ctx, subject); ferr == nil && blocked {
		return errs.ErrRateLimited
	}
	return errs.ErrInvalidPassword
}

func validColor(c model.NoteColor) bool {
	for _, v := range model.Colors {
		if v == c {
			return true
		}
	}
	return false
}
