// Package model defines domain entities used by services and repositories.
package model

import "time"

// NoteColor is a display tag from a fixed palette. It carries no behavior.
type NoteColor string

// Palette.
const (
	ColorDefault NoteColor = "default"
	ColorRed     NoteColor = "red"
	ColorOrange  NoteColor = "orange"
	ColorYellow  NoteColor = "yellow"
	ColorGreen   NoteColor = "green"
	ColorBlue    NoteColor = "blue"
	ColorPurple  NoteColor = "purple"
	ColorPink    NoteColor = "pink"
)

// DefaultNoteColor is assigned to freshly created notes.
const DefaultNoteColor = ColorYellow

// Colors lists the palette in display order.
var Colors = []NoteColor{ColorDefault, ColorRed, ColorOrange, ColorYellow, ColorGreen, ColorBlue, ColorPurple, ColorPink}

// NoteLock is the password gate of a locked note. The password itself is never stored.
type NoteLock struct {
	Hash []byte `json:"hash"` // Argon2id(password, Salt)
	Salt []byte `json:"salt"`
}

// Note is a single user note. Deleted notes stay in the collection as bin entries until purged.
type Note struct {
	ID         string    `json:"id"` // immutable after creation
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Tags       []string  `json:"tags"`
	CreatedAt  int64     `json:"createdAt"` // unix millis
	UpdatedAt  int64     `json:"updatedAt"` // unix millis, bumped on every save
	Color      NoteColor `json:"color"`
	Pinned     bool      `json:"pinned"`
	IsFavorite bool      `json:"isFavorite"`
	Deleted    bool      `json:"deleted"`         // tombstone flag
	BinID      string    `json:"binId,omitempty"` // new on every move to the bin
	Locked     bool      `json:"locked"`
	Lock       *NoteLock `json:"lock,omitempty"`
	Stickers   []string  `json:"stickers"`
	Drawings   []string  `json:"drawings"`
	Audio      []string  `json:"audio"`
}

// Clone returns a deep copy of the note.
func (n Note) Clone() Note {
	c := n
	c.Tags = cloneStrings(n.Tags)
	c.Stickers = cloneStrings(n.Stickers)
	c.Drawings = cloneStrings(n.Drawings)
	c.Audio = cloneStrings(n.Audio)
	if n.Lock != nil {
		c.Lock = &NoteLock{
			Hash: append([]byte(nil), n.Lock.Hash...),
			Salt: append([]byte(nil), n.Lock.Salt...),
		}
	}
	return c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

// Profile is the gamified user profile.
type Profile struct {
	Name                 string   `json:"name"`
	Coins                int64    `json:"coins"` // may go negative through administrative override only
	Exp                  int64    `json:"exp"`   // cumulative
	Level                int      `json:"level"`
	Rank                 string   `json:"rank"` // derived from Level
	UnlockedAchievements []string `json:"unlockedAchievements"`
	Streak               int      `json:"streak"`
	LastLogin            int64    `json:"lastLogin"` // unix millis, 0 when never recorded
}

// HasAchievement reports whether id is already unlocked.
func (p Profile) HasAchievement(id string) bool {
	for _, a := range p.UnlockedAchievements {
		if a == id {
			return true
		}
	}
	return false
}

// Settings is flat presentation configuration.
type Settings struct {
	Theme         string `json:"theme" validate:"required"`
	FontFamily    string `json:"fontFamily" validate:"required"`
	FontSize      int    `json:"fontSize" validate:"min=10,max=32"`
	ZenMode       bool   `json:"zenMode"`
	CombatMode    bool   `json:"combatMode"`
	DeveloperMode bool   `json:"developerMode"`
	Wallpaper     string `json:"wallpaper,omitempty" validate:"omitempty,url"`
	Sound         bool   `json:"sound"`
}

// Achievement is a static catalog entry.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Reward      int64  `json:"reward"` // coins
	Icon        string `json:"icon"`
}

// ItemCategory classifies marketplace items.
type ItemCategory string

// Categories.
const (
	CategoryTheme   ItemCategory = "theme"
	CategoryFont    ItemCategory = "font"
	CategoryTool    ItemCategory = "tool"
	CategoryGame    ItemCategory = "game"
	CategoryStory   ItemCategory = "story"
	CategorySticker ItemCategory = "sticker"
	CategoryApp     ItemCategory = "app"
)

// Currency of a marketplace price.
type Currency string

// Currencies. Only CurrencyCoins is ever charged; other prices are simulated.
const (
	CurrencyCoins Currency = "coins"
	CurrencyUSD   Currency = "usd"
)

// MarketItem is an installable unit.
type MarketItem struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Category    ItemCategory `json:"category"`
	Description string       `json:"description"`
	Price       int64        `json:"price"`
	Currency    Currency     `json:"currency"`
	Installed   bool         `json:"installed"`
	BinID       string       `json:"binId,omitempty"` // new on every move to the bin
}

// StickyNote is the desktop sticky-note widget record.
type StickyNote struct {
	Text      string    `json:"text"`
	Color     NoteColor `json:"color"`
	UpdatedAt int64     `json:"updatedAt"`
}

// EffectKind names a side effect emitted by a state transition.
type EffectKind string

// Effect kinds.
const (
	EffectAchievementUnlocked EffectKind = "achievement_unlocked"
	EffectCoinsAwarded        EffectKind = "coins_awarded"
	EffectCoinsSpent          EffectKind = "coins_spent"
	EffectCoinsAdjusted       EffectKind = "coins_adjusted"
	EffectExpGained           EffectKind = "exp_gained"
	EffectLevelUp             EffectKind = "level_up"
	EffectRankChanged         EffectKind = "rank_changed"
	EffectThemeReset          EffectKind = "theme_reset"
	EffectFontReset           EffectKind = "font_reset"
)

// Effect is one observable consequence of a transition (coins awarded, achievement unlocked, ...).
type Effect struct {
	Kind          EffectKind `json:"kind"`
	AchievementID string     `json:"achievementId,omitempty"`
	Amount        int64      `json:"amount,omitempty"`
	Detail        string     `json:"detail,omitempty"`
}

// AppState collects every persisted record of one profile.
type AppState struct {
	Notes     []Note
	Settings  Settings
	Profile   Profile
	Installed []MarketItem
	Bin       []MarketItem
	Sticky    StickyNote
}

// Millis converts t to unix milliseconds.
func Millis(t time.Time) int64 { return t.UnixMilli() }
