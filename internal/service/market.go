package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/economy"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/errs"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/market"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/model"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/repository"
)

func registry(st model.AppState) market.Registry {
	return market.Registry{Installed: st.Installed, Bin: st.Bin}
}

func purgeItem(st *model.AppState, id string) (market.Registry, bool) {
	return market.Purge(registry(*st), id)
}

func isPersistence(err error) bool { return errors.Is(err, errs.ErrPersistence) }

// Market lists the catalog with the profile's installed flags.
func (s *WorkspaceServiceImpl) Market(ctx context.Context, pid uuid.UUID) ([]model.MarketItem, error) {
	var out []model.MarketItem
	err := s.view(ctx, pid, func(st model.AppState) error {
		r := registry(st)
		out = market.Catalog()
		for i := range out {
			out[i].Installed = r.Contains(out[i].ID)
		}
		return nil
	})
	return out, err
}

// Installed returns the installed and binned items.
func (s *WorkspaceServiceImpl) Installed(ctx context.Context, pid uuid.UUID) (installed, bin []model.MarketItem, err error) {
	err = s.view(ctx, pid, func(st model.AppState) error {
		installed = append([]model.MarketItem{}, st.Installed...)
		bin = append([]model.MarketItem{}, st.Bin...)
		return nil
	})
	return installed, bin, err
}

// Install buys and installs a catalog item. The first real install attempts
// the shopper achievement; installing an installed item changes nothing.
func (s *WorkspaceServiceImpl) Install(ctx context.Context, pid uuid.UUID, id string) (model.Profile, []model.Effect, error) {
	item, ok := market.Lookup(id)
	if !ok {
		return model.Profile{}, nil, fmt.Errorf("market item %s: %w", id, errs.ErrNotFound)
	}
	var out model.Profile
	effects, err := s.mutate(ctx, pid, func(st *model.AppState, _ time.Time) (repository.Record, []model.Effect, error) {
		before := registry(*st)
		if before.Contains(id) {
			out = st.Profile
			return 0, nil, nil
		}
		r, p, effects, err := market.Install(before, st.Profile, item)
		if err != nil {
			return 0, nil, err
		}
		var e []model.Effect
		p, e = economy.Unlock(p, economy.Shopper)
		effects = append(effects, e...)

		st.Installed, st.Bin, st.Profile = r.Installed, r.Bin, p
		out = p
		return repository.RecInstalled | repository.RecBin | repository.RecProfile, effects, nil
	})
	if err != nil && !isPersistence(err) {
		return model.Profile{}, nil, err
	}
	return out, effects, err
}

// Uninstall moves an item to the bin, resetting the active theme or font it backed.
func (s *WorkspaceServiceImpl) Uninstall(ctx context.Context, pid uuid.UUID, id string) (model.Settings, []model.Effect, error) {
	var out model.Settings
	effects, err := s.mutate(ctx, pid, func(st *model.AppState, _ time.Time) (repository.Record, []model.Effect, error) {
		r, settings, effects, ok := market.Uninstall(registry(*st), st.Settings, id)
		if !ok {
			return 0, nil, fmt.Errorf("installed item %s: %w", id, errs.ErrNotFound)
		}
		r.Bin[len(r.Bin)-1].BinID = s.opts.NewID()
		st.Installed, st.Bin, st.Settings = r.Installed, r.Bin, settings
		out = settings
		return repository.RecInstalled | repository.RecBin | repository.RecSettings, effects, nil
	})
	if err != nil && !isPersistence(err) {
		return model.Settings{}, nil, err
	}
	return out, effects, err
}

// RestoreItem moves a binned item back to installed without charging.
func (s *WorkspaceServiceImpl) RestoreItem(ctx context.Context, pid uuid.UUID, id string) error {
	_, err := s.mutate(ctx, pid, func(st *model.AppState, _ time.Time) (repository.Record, []model.Effect, error) {
		r, ok := market.Restore(registry(*st), id)
		if !ok {
			return 0, nil, fmt.Errorf("binned item %s: %w", id, errs.ErrNotFound)
		}
		st.Installed, st.Bin = r.Installed, r.Bin
		return repository.RecInstalled | repository.RecBin, nil, nil
	})
	return err
}
