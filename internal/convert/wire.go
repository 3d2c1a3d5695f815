// Package convert maps domain entities to crafty.v1 wire messages and back.
package convert

import (
	"fmt"

	v1 "github.com/sachu255/CRAFTY-notes--sub000/internal/api/craftyv1"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/errs"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/model"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/service"
)

// --- notes ---

// ToWireNote converts a domain note. The lock never leaves the server.
func ToWireNote(n model.Note) v1.Note {
	return v1.Note{
		ID:         n.ID,
		Title:      n.Title,
		Content:    n.Content,
		Tags:       n.Tags,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
		Color:      string(n.Color),
		Pinned:     n.Pinned,
		IsFavorite: n.IsFavorite,
		Deleted:    n.Deleted,
		Locked:     n.Locked,
		Stickers:   n.Stickers,
		Drawings:   n.Drawings,
		Audio:      n.Audio,
	}
}

// ToWireNotes converts a note listing.
func ToWireNotes(ns []model.Note) []v1.Note {
	out := make([]v1.Note, 0, len(ns))
	for _, n := range ns {
		out = append(out, ToWireNote(n))
	}
	return out
}

// FromWireNote converts a client note. Lock material cannot be supplied by clients.
func FromWireNote(n v1.Note) (model.Note, error) {
	if n.ID == "" {
		return model.Note{}, fmt.Errorf("validation: empty note id: %w", errs.ErrInvalid)
	}
	return model.Note{
		ID:         n.ID,
		Title:      n.Title,
		Content:    n.Content,
		Tags:       n.Tags,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
		Color:      model.NoteColor(n.Color),
		Pinned:     n.Pinned,
		IsFavorite: n.IsFavorite,
		Deleted:    n.Deleted,
		Locked:     n.Locked,
		Stickers:   n.Stickers,
		Drawings:   n.Drawings,
		Audio:      n.Audio,
	}, nil
}

// --- profile ---

func ToWireProfile(p model.Profile) v1.Profile {
	return v1.Profile{
		Name:                 p.Name,
		Coins:                p.Coins,
		Exp:                  p.Exp,
		Level:                int32(p.Level),
		Rank:                 p.Rank,
		UnlockedAchievements: p.UnlockedAchievements,
		Streak:               int32(p.Streak),
		LastLogin:            p.LastLogin,
	}
}

func ToWireSettings(s model.Settings) v1.Settings {
	return v1.Settings{
		Theme:         s.Theme,
		FontFamily:    s.FontFamily,
		FontSize:      int32(s.FontSize),
		ZenMode:       s.ZenMode,
		CombatMode:    s.CombatMode,
		DeveloperMode: s.DeveloperMode,
		Wallpaper:     s.Wallpaper,
		Sound:         s.Sound,
	}
}

func FromWireSettings(s v1.Settings) model.Settings {
	return model.Settings{
		Theme:         s.Theme,
		FontFamily:    s.FontFamily,
		FontSize:      int(s.FontSize),
		ZenMode:       s.ZenMode,
		CombatMode:    s.CombatMode,
		DeveloperMode: s.DeveloperMode,
		Wallpaper:     s.Wallpaper,
		Sound:         s.Sound,
	}
}

func ToWireSticky(s model.StickyNote) v1.StickyNote {
	return v1.StickyNote{Text: s.Text, Color: string(s.Color), UpdatedAt: s.UpdatedAt}
}

// ToWireAchievements converts the catalog with unlock flags.
func ToWireAchievements(as []service.AchievementStatus) []v1.Achievement {
	out := make([]v1.Achievement, 0, len(as))
	for _, a := range as {
		out = append(out, v1.Achievement{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			Reward:      a.Reward,
			Icon:        a.Icon,
			Unlocked:    a.Unlocked,
		})
	}
	return out
}

// --- marketplace ---

func ToWireItems(items []model.MarketItem) []v1.MarketItem {
	out := make([]v1.MarketItem, 0, len(items))
	for _, it := range items {
		out = append(out, v1.MarketItem{
			ID:          it.ID,
			Name:        it.Name,
			Category:    string(it.Category),
			Description: it.Description,
			Price:       it.Price,
			Currency:    string(it.Currency),
			Installed:   it.Installed,
		})
	}
	return out
}

// --- effects ---

func ToWireEffects(es []model.Effect) []v1.Effect {
	if len(es) == 0 {
		return nil
	}
	out := make([]v1.Effect, 0, len(es))
	for _, e := range es {
		out = append(out, v1.Effect{
			Kind:          string(e.Kind),
			AchievementID: e.AchievementID,
			Amount:        e.Amount,
			Detail:        e.Detail,
		})
	}
	return out
}
