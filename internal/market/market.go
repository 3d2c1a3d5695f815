// Package market implements the marketplace catalog and the installed/bin registry.
package market

import (
	"fmt"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/economy"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/model"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/profile"
)

var catalog = []model.MarketItem{
	{ID: "midnight", Name: "Midnight", Category: model.CategoryTheme, Description: "Deep blue dark theme.", Price: 100, Currency: model.CurrencyCoins},
	{ID: "sakura", Name: "Sakura", Category: model.CategoryTheme, Description: "Soft pink blossoms.", Price: 150, Currency: model.CurrencyCoins},
	{ID: "retro", Name: "Retro Terminal", Category: model.CategoryTheme, Description: "Green phosphor on black.", Price: 0, Currency: model.CurrencyCoins},
	{ID: "fira-code", Name: "Fira Code", Category: model.CategoryFont, Description: "Monospace with ligatures.", Price: 50, Currency: model.CurrencyCoins},
	{ID: "comic-neue", Name: "Comic Neue", Category: model.CategoryFont, Description: "Friendly handwriting.", Price: 0, Currency: model.CurrencyCoins},
	{ID: "calculator", Name: "Calculator", Category: model.CategoryTool, Description: "Basic arithmetic.", Price: 0, Currency: model.CurrencyCoins},
	{ID: "radio", Name: "Radio", Category: model.CategoryTool, Description: "Lo-fi stations.", Price: 80, Currency: model.CurrencyCoins},
	{ID: "snake", Name: "Snake", Category: model.CategoryGame, Description: "Eat, grow, repeat.", Price: 0, Currency: model.CurrencyCoins},
	{ID: "blocks", Name: "Falling Blocks", Category: model.CategoryGame, Description: "Clear the lines.", Price: 120, Currency: model.CurrencyCoins},
	{ID: "last-byte", Name: "The Last Byte", Category: model.CategoryStory, Description: "An interactive short story.", Price: 60, Currency: model.CurrencyCoins},
	{ID: "cat-pack", Name: "Cat Stickers", Category: model.CategorySticker, Description: "Twelve cats.", Price: 30, Currency: model.CurrencyCoins},
	{ID: "cloud-drive", Name: "Cloud Drive", Category: model.CategoryApp, Description: "Mock cloud storage.", Price: 5, Currency: model.CurrencyUSD},
}

// Catalog returns a copy of the marketplace catalog.
func Catalog() []model.MarketItem {
	return append([]model.MarketItem(nil), catalog...)
}

// Lookup returns the catalog entry for id.
func Lookup(id string) (model.MarketItem, bool) {
	for _, it := range catalog {
		if it.ID == id {
			return it, true
		}
	}
	return model.MarketItem{}, false
}

// Registry is the installed and binned item collections. An id is never in both.
type Registry struct {
	Installed []model.MarketItem
	Bin       []model.MarketItem
}

// Contains reports whether id is installed.
func (r Registry) Contains(id string) bool { return index(r.Installed, id) >= 0 }

// InBin reports whether id sits in the bin.
func (r Registry) InBin(id string) bool { return index(r.Bin, id) >= 0 }

// Install charges the coin price when required and moves the item into the
// installed collection. Installing an installed item is a no-op.
// On errs.ErrInsufficientFunds nothing changes.
func Install(r Registry, p model.Profile, item model.MarketItem) (Registry, model.Profile, []model.Effect, error) {
	if r.Contains(item.ID) {
		return r, p, nil, nil
	}
	var effects []model.Effect
	if item.Currency == model.CurrencyCoins && item.Price > 0 {
		var err error
		p, effects, err = economy.Spend(p, item.Price, "install "+item.ID)
		if err != nil {
			return r, p, nil, fmt.Errorf("install %s: %w", item.ID, err)
		}
	}
	item.Installed = true
	r = Registry{
		Installed: append(clone(r.Installed), item),
		Bin:       remove(r.Bin, item.ID),
	}
	return r, p, effects, nil
}

// Uninstall moves an installed item to the bin. When it is the active theme or
// font, settings fall back to the default.
func Uninstall(r Registry, s model.Settings, id string) (Registry, model.Settings, []model.Effect, bool) {
	i := index(r.Installed, id)
	if i < 0 {
		return r, s, nil, false
	}
	item := r.Installed[i]
	item.Installed = false
	r = Registry{
		Installed: remove(r.Installed, id),
		Bin:       append(remove(r.Bin, id), item),
	}

	var effects []model.Effect
	if item.Category == model.CategoryTheme && s.Theme == id {
		s.Theme = profile.DefaultTheme
		effects = append(effects, model.Effect{Kind: model.EffectThemeReset, Detail: id})
	}
	if item.Category == model.CategoryFont && s.FontFamily == id {
		s.FontFamily = profile.DefaultFontFamily
		effects = append(effects, model.Effect{Kind: model.EffectFontReset, Detail: id})
	}
	return r, s, effects, true
}

// Restore moves a binned item back to installed without charging.
func Restore(r Registry, id string) (Registry, bool) {
	i := index(r.Bin, id)
	if i < 0 {
		return r, false
	}
	item := r.Bin[i]
	item.Installed = true
	return Registry{
		Installed: append(remove(r.Installed, id), item),
		Bin:       remove(r.Bin, id),
	}, true
}

// Purge discards a binned item.
func Purge(r Registry, id string) (Registry, bool) {
	if index(r.Bin, id) < 0 {
		return r, false
	}
	return Registry{Installed: clone(r.Installed), Bin: remove(r.Bin, id)}, true
}

// Selectable reports whether value may be used for a settings field of the given
// category: the default or an installed item of that category.
func Selectable(r Registry, cat model.ItemCategory, value, def string) bool {
	if value == def {
		return true
	}
	i := index(r.Installed, value)
	return i >= 0 && r.Installed[i].Category == cat
}

func index(items []model.MarketItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func remove(items []model.MarketItem, id string) []model.MarketItem {
	out := make([]model.MarketItem, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

func clone(items []model.MarketItem) []model.MarketItem {
	out := make([]model.MarketItem, len(items))
	copy(out, items)
	return out
}
