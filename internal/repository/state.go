package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/errs"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/model"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/profile"
)

// Record names one persisted top-level record of a profile.
type Record uint8

// Records. They combine as a bit set.
const (
	RecNotes Record = 1 << iota
	RecSettings
	RecProfile
	RecInstalled
	RecBin
	RecSticky

	RecAll = RecNotes | RecSettings | RecProfile | RecInstalled | RecBin | RecSticky
)

var recordNames = []struct {
	rec  Record
	name string
}{
	{RecNotes, "notes"},
	{RecSettings, "settings"},
	{RecProfile, "profile"},
	{RecInstalled, "installed"},
	{RecBin, "bin"},
	{RecSticky, "sticky"},
}

// Name returns the stable key suffix of a single record.
func (r Record) Name() string {
	for _, rn := range recordNames {
		if rn.rec == r {
			return rn.name
		}
	}
	return ""
}

// Key returns the stable storage key of a profile record.
func Key(profileID uuid.UUID, r Record) string {
	return "crafty:" + profileID.String() + ":" + r.Name()
}

// StateStore loads and saves AppState records through a Gateway.
type StateStore struct{ gw Gateway }

var _ StateRepository = (*StateStore)(nil)

// NewStateStore constructs a StateStore.
func NewStateStore(gw Gateway) *StateStore { return &StateStore{gw: gw} }

// Load reads every record of a profile, applying defaults for missing ones.
// Stored settings are decoded over the defaults so absent fields keep their default.
func (s *StateStore) Load(ctx context.Context, profileID uuid.UUID, name string) (model.AppState, error) {
	st := model.AppState{
		Notes:     []model.Note{},
		Settings:  profile.DefaultSettings(),
		Profile:   profile.Default(name),
		Installed: []model.MarketItem{},
		Bin:       []model.MarketItem{},
	}
	targets := []struct {
		rec Record
		dst any
	}{
		{RecNotes, &st.Notes},
		{RecSettings, &st.Settings},
		{RecProfile, &st.Profile},
		{RecInstalled, &st.Installed},
		{RecBin, &st.Bin},
		{RecSticky, &st.Sticky},
	}
	for _, t := range targets {
		if err := s.get(ctx, Key(profileID, t.rec), t.dst); err != nil {
			return model.AppState{}, err
		}
	}
	st.Profile = profile.Normalize(st.Profile)
	if st.Notes == nil {
		st.Notes = []model.Note{}
	}
	return st, nil
}

// Save writes the selected records. On a Batcher the write is atomic. Otherwise
// all selected records are attempted. The returned error wraps errs.ErrPersistence
// and joins every failure.
func (s *StateStore) Save(ctx context.Context, profileID uuid.UUID, st model.AppState, recs Record) error {
	values := map[Record]any{
		RecNotes:     st.Notes,
		RecSettings:  st.Settings,
		RecProfile:   st.Profile,
		RecInstalled: st.Installed,
		RecBin:       st.Bin,
		RecSticky:    st.Sticky,
	}
	var (
		entries []Entry
		failed  []error
	)
	for _, rn := range recordNames {
		if recs&rn.rec == 0 {
			continue
		}
		b, err := json.Marshal(values[rn.rec])
		if err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", rn.name, err))
			continue
		}
		entries = append(entries, Entry{Key: Key(profileID, rn.rec), Value: b})
	}
	if len(failed) > 0 {
		return fmt.Errorf("%w: %w", errs.ErrPersistence, errors.Join(failed...))
	}

	if b, ok := s.gw.(Batcher); ok {
		if err := b.SetMany(ctx, entries); err != nil {
			return fmt.Errorf("%w: %w", errs.ErrPersistence, err)
		}
		return nil
	}
	for _, e := range entries {
		if err := s.gw.Set(ctx, e.Key, e.Value); err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", e.Key, err))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%w: %w", errs.ErrPersistence, errors.Join(failed...))
	}
	return nil
}

func (s *StateStore) get(ctx context.Context, key string, dst any) error {
	b, err := s.gw.Get(ctx, key)
	if errors.Is(err, errs.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: get %s: %w", errs.ErrPersistence, key, err)
	}
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("%w: decode %s: %w", errs.ErrPersistence, key, err)
	}
	return nil
}
