package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/economy"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/errs"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/market"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/model"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/profile"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/repository"
)

// AchievementStatus is a catalog entry with its unlock state for one profile.
type AchievementStatus struct {
	model.Achievement
	Unlocked bool
}

// Profile returns the profile record.
func (s *WorkspaceServiceImpl) Profile(ctx context.Context, pid uuid.UUID) (model.Profile, error) {
	var out model.Profile
	err := s.view(ctx, pid, func(st model.AppState) error {
		out = st.Profile
		out.UnlockedAchievements = append([]string(nil), st.Profile.UnlockedAchievements...)
		return nil
	})
	return out, err
}

// Achievements lists the catalog in order with unlock flags.
func (s *WorkspaceServiceImpl) Achievements(ctx context.Context, pid uuid.UUID) ([]AchievementStatus, error) {
	var out []AchievementStatus
	err := s.view(ctx, pid, func(st model.AppState) error {
		for _, a := range economy.Catalog() {
			out = append(out, AchievementStatus{Achievement: a, Unlocked: st.Profile.HasAchievement(a.ID)})
		}
		return nil
	})
	return out, err
}

// AwardExp grants experience from a mini-app.
func (s *WorkspaceServiceImpl) AwardExp(ctx context.Context, pid uuid.UUID, amount int64) (model.Profile, []model.Effect, error) {
	if amount < 0 || amount > economy.MaxGrant {
		return model.Profile{}, nil, fmt.Errorf("validation: exp %d outside [0, %d]: %w", amount, economy.MaxGrant, errs.ErrInvalid)
	}
	return s.profileMutation(ctx, pid, func(p model.Profile) (model.Profile, []model.Effect, error) {
		p, effects := economy.GainExp(p, amount)
		return p, effects, nil
	})
}

// UnlockAchievement unlocks a catalog achievement from a mini-app.
func (s *WorkspaceServiceImpl) UnlockAchievement(ctx context.Context, pid uuid.UUID, id string) (model.Profile, []model.Effect, error) {
	if _, ok := economy.Lookup(id); !ok {
		return model.Profile{}, nil, fmt.Errorf("achievement %s: %w", id, errs.ErrNotFound)
	}
	return s.profileMutation(ctx, pid, func(p model.Profile) (model.Profile, []model.Effect, error) {
		p, effects := economy.Unlock(p, id)
		return p, effects, nil
	})
}

// Spend charges coins for a mini-app purchase.
func (s *WorkspaceServiceImpl) Spend(ctx context.Context, pid uuid.UUID, price int64, reason string) (model.Profile, []model.Effect, error) {
	return s.profileMutation(ctx, pid, func(p model.Profile) (model.Profile, []model.Effect, error) {
		return economy.Spend(p, price, reason)
	})
}

// AdjustCoins is the administrative override. It requires developer mode and
// may leave the balance negative.
func (s *WorkspaceServiceImpl) AdjustCoins(ctx context.Context, pid uuid.UUID, delta int64, reason string) (model.Profile, []model.Effect, error) {
	if delta < -economy.MaxGrant || delta > economy.MaxGrant {
		return model.Profile{}, nil, fmt.Errorf("validation: delta %d outside [-%d, %d]: %w", delta, economy.MaxGrant, economy.MaxGrant, errs.ErrInvalid)
	}
	var out model.Profile
	effects, err := s.mutate(ctx, pid, func(st *model.AppState, _ time.Time) (repository.Record, []model.Effect, error) {
		if !st.Settings.DeveloperMode {
			return 0, nil, fmt.Errorf("adjust coins outside developer mode: %w", errs.ErrForbidden)
		}
		p, effects := economy.Override(st.Profile, delta, reason)
		st.Profile = p
		out = p
		return repository.RecProfile, effects, nil
	})
	return out, effects, err
}

func (s *WorkspaceServiceImpl) profileMutation(ctx context.Context, pid uuid.UUID, fn func(model.Profile) (model.Profile, []model.Effect, error)) (model.Profile, []model.Effect, error) {
	var out model.Profile
	effects, err := s.mutate(ctx, pid, func(st *model.AppState, _ time.Time) (repository.Record, []model.Effect, error) {
		p, effects, err := fn(st.Profile)
		if err != nil {
			return 0, nil, err
		}
		st.Profile = p
		out = p
		return repository.RecProfile, effects, nil
	})
	if err != nil && !isPersistence(err) {
		return model.Profile{}, nil, err
	}
	return out, effects, err
}

// Settings returns the settings record.
func (s *WorkspaceServiceImpl) Settings(ctx context.Context, pid uuid.UUID) (model.Settings, error) {
	var out model.Settings
	err := s.view(ctx, pid, func(st model.AppState) error {
		out = st.Settings
		return nil
	})
	return out, err
}

// UpdateSettings validates and stores settings. Theme and font must be the
// default or an installed item of that category.
func (s *WorkspaceServiceImpl) UpdateSettings(ctx context.Context, pid uuid.UUID, in model.Settings) (model.Settings, error) {
	if err := profile.ValidateSettings(in); err != nil {
		return model.Settings{}, err
	}
	_, err := s.mutate(ctx, pid, func(st *model.AppState, _ time.Time) (repository.Record, []model.Effect, error) {
		r := registry(*st)
		if !market.Selectable(r, model.CategoryTheme, in.Theme, profile.DefaultTheme) {
			return 0, nil, fmt.Errorf("validation: theme %q is not installed: %w", in.Theme, errs.ErrInvalid)
		}
		if !market.Selectable(r, model.CategoryFont, in.FontFamily, profile.DefaultFontFamily) {
			return 0, nil, fmt.Errorf("validation: font %q is not installed: %w", in.FontFamily, errs.ErrInvalid)
		}
		st.Settings = in
		return repository.RecSettings, nil, nil
	})
	if err != nil && !isPersistence(err) {
		return model.Settings{}, err
	}
	return in, err
}

// Sticky returns the sticky-note widget record.
func (s *WorkspaceServiceImpl) Sticky(ctx context.Context, pid uuid.UUID) (model.StickyNote, error) {
	var out model.StickyNote
	err := s.view(ctx, pid, func(st model.AppState) error {
		out = st.Sticky
		return nil
	})
	return out, err
}

// SetSticky replaces the sticky-note widget text and colour.
func (s *WorkspaceServiceImpl) SetSticky(ctx context.Context, pid uuid.UUID, text string, color model.NoteColor) (model.StickyNote, error) {
	if color == "" {
		color = model.DefaultNoteColor
	}
	if !validColor(color) {
		return model.StickyNote{}, fmt.Errorf("validation: unknown color %q: %w", color, errs.ErrInvalid)
	}
	var out model.StickyNote
	_, err := s.mutate(ctx, pid, func(st *model.AppState, now time.Time) (repository.Record, []model.Effect, error) {
		st.Sticky = model.StickyNote{Text: text, Color: color, UpdatedAt: model.Millis(now)}
		out = st.Sticky
		return repository.RecSticky, nil, nil
	})
	return out, err
}
