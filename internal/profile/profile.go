// Package profile holds defaulting, validation and the login-streak rule for
// the profile and settings records.
package profile

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/economy"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/errs"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/model"
)

// Defaults applied to settings and presentation references.
const (
	DefaultTheme      = "default"
	DefaultFontFamily = "Inter"
	DefaultFontSize   = 16
)

var validate = validator.New()

// Default returns a brand-new profile.
func Default(name string) model.Profile {
	return model.Profile{
		Name:                 name,
		Level:                1,
		Rank:                 economy.DefaultRank,
		UnlockedAchievements: []string{},
	}
}

// Normalize fills fields a stored profile may be missing. Rank is always
// recomputed from level.
func Normalize(p model.Profile) model.Profile {
	if p.Level < 1 {
		p.Level = 1
	}
	p.Rank = economy.RankFor(p.Level)
	if p.Exp < 0 {
		p.Exp = 0
	}
	if p.UnlockedAchievements == nil {
		p.UnlockedAchievements = []string{}
	}
	return p
}

// DefaultSettings returns the factory settings.
func DefaultSettings() model.Settings {
	return model.Settings{
		Theme:      DefaultTheme,
		FontFamily: DefaultFontFamily,
		FontSize:   DefaultFontSize,
		Sound:      true,
	}
}

// ValidateSettings checks field constraints.
func ValidateSettings(s model.Settings) error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("validation: %v: %w", err, errs.ErrInvalid)
	}
	return nil
}

// DaysBetween counts calendar days from prev to now in loc.
func DaysBetween(prev, now time.Time, loc *time.Location) int {
	py, pm, pd := prev.In(loc).Date()
	ny, nm, nd := now.In(loc).Date()
	a := time.Date(py, pm, pd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// RecordLogin applies the streak rule for a session start at now and stamps LastLogin.
// One day since the last login extends the streak, more than one resets it to zero,
// the same day leaves it unchanged. A first login starts the streak at one.
func RecordLogin(p model.Profile, now time.Time, loc *time.Location) model.Profile {
	if loc == nil {
		loc = time.Local
	}
	if p.LastLogin == 0 {
		p.Streak = 1
	} else {
		switch d := DaysBetween(time.UnixMilli(p.LastLogin), now, loc); {
		case d == 1:
			p.Streak++
		case d > 1:
			p.Streak = 0
		}
	}
	p.LastLogin = model.Millis(now)
	return p
}
