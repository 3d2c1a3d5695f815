// Package craftyv1 defines the wire messages and the gRPC service descriptor
// of the crafty.v1 API. Messages travel as JSON (see Codec).
package craftyv1

// Note is the wire form of a note. It never carries the lock material.
type Note struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags,omitempty"`
	CreatedAt  int64    `json:"createdAt"`
	UpdatedAt  int64    `json:"updatedAt"`
	Color      string   `json:"color"`
	Pinned     bool     `json:"pinned"`
	IsFavorite bool     `json:"isFavorite"`
	Deleted    bool     `json:"deleted"`
	Locked     bool     `json:"locked"`
	Stickers   []string `json:"stickers,omitempty"`
	Drawings   []string `json:"drawings,omitempty"`
	Audio      []string `json:"audio,omitempty"`
}

type Profile struct {
	Name                 string   `json:"name"`
	Coins                int64    `json:"coins"`
	Exp                  int64    `json:"exp"`
	Level                int32    `json:"level"`
	Rank                 string   `json:"rank"`
	UnlockedAchievements []string `json:"unlockedAchievements"`
	Streak               int32    `json:"streak"`
	LastLogin            int64    `json:"lastLogin"`
}

type Settings struct {
	Theme         string `json:"theme"`
	FontFamily    string `json:"fontFamily"`
	FontSize      int32  `json:"fontSize"`
	ZenMode       bool   `json:"zenMode"`
	CombatMode    bool   `json:"combatMode"`
	DeveloperMode bool   `json:"developerMode"`
	Wallpaper     string `json:"wallpaper,omitempty"`
	Sound         bool   `json:"sound"`
}

type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Reward      int64  `json:"reward"`
	Icon        string `json:"icon"`
	Unlocked    bool   `json:"unlocked"`
}

type MarketItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Currency    string `json:"currency"`
	Installed   bool   `json:"installed"`
}

type StickyNote struct {
	Text      string `json:"text"`
	Color     string `json:"color"`
	UpdatedAt int64  `json:"updatedAt"`
}

type Effect struct {
	Kind          string `json:"kind"`
	AchievementID string `json:"achievementId,omitempty"`
	Amount        int64  `json:"amount,omitempty"`
	Detail        string `json:"detail,omitempty"`
}

// Result is embedded in every mutation response. Unsaved reports that the
// change is live on the server but was not written to storage.
type Result struct {
	Effects []Effect `json:"effects,omitempty"`
	Unsaved bool     `json:"unsaved,omitempty"`
}

type Empty struct{}

// --- session ---

type OpenSessionRequest struct {
	Name string `json:"name"`
}

type OpenSessionResponse struct {
	Result
	ProfileID string  `json:"profileId"`
	Token     string  `json:"token"`
	ExpiresAt int64   `json:"expiresAt"`
	Profile   Profile `json:"profile"`
}

// --- notes ---

type SaveNoteRequest struct {
	Note     Note   `json:"note"`
	Password string `json:"password,omitempty"`
}

type NoteRequest struct {
	ID string `json:"id"`
}

type NoteResponse struct {
	Result
	Note Note `json:"note"`
}

type ListNotesRequest struct {
	Query string `json:"query,omitempty"`
	Bin   bool   `json:"bin,omitempty"`
	Tag   string `json:"tag,omitempty"`
	Order string `json:"order,omitempty"`
}

type ListNotesResponse struct {
	Notes []Note `json:"notes"`
}

type TagsResponse struct {
	Counts map[string]int32 `json:"counts"`
}

type TogglePinResponse struct {
	Result
	Pinned bool `json:"pinned"`
}

type AttachRequest struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Ref  string `json:"ref"`
}

type PasswordRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

type ProcessNoteRequest struct {
	ID   string `json:"id"`
	Task string `json:"task"`
}

type RequestPurgeRequest struct {
	Kind   string `json:"kind"`
	Target string `json:"target"`
}

type RequestPurgeResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

type PurgeRequest struct {
	Kind   string `json:"kind"`
	Target string `json:"target"`
	Token  string `json:"token"`
}

// --- profile and economy ---

type ProfileResponse struct {
	Result
	Profile Profile `json:"profile"`
}

type AchievementsResponse struct {
	Achievements []Achievement `json:"achievements"`
}

type AwardExpRequest struct {
	Amount int64 `json:"amount"`
}

type UnlockAchievementRequest struct {
	ID string `json:"id"`
}

type SpendRequest struct {
	Price  int64  `json:"price"`
	Reason string `json:"reason,omitempty"`
}

type AdjustCoinsRequest struct {
	Delta  int64  `json:"delta"`
	Reason string `json:"reason,omitempty"`
}

type SettingsResponse struct {
	Result
	Settings Settings `json:"settings"`
}

type UpdateSettingsRequest struct {
	Settings Settings `json:"settings"`
}

type SetStickyRequest struct {
	Text  string `json:"text"`
	Color string `json:"color,omitempty"`
}

type StickyResponse struct {
	Result
	Sticky StickyNote `json:"sticky"`
}

// --- marketplace ---

type ItemRequest struct {
	ID string `json:"id"`
}

type MarketResponse struct {
	Items []MarketItem `json:"items"`
}

type InstalledResponse struct {
	Installed []MarketItem `json:"installed"`
	Bin       []MarketItem `json:"bin"`
}

type EffectsResponse struct {
	Result
}
