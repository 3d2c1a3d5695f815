// Package economy implements the achievement catalog and the coin/experience rules.
//
// All functions take a profile by value and return the updated profile together
// with the effects the transition produced.
package economy

import (
	"fmt"
	"math"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/errs"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/model"
)

// Achievement ids.
const (
	FirstNote = "first-note"
	Locked    = "locked"
	Organized = "organized"
	Deleted   = "deleted"
	Undead    = "undead"
	Cloner    = "cloner"
	Shopper   = "shopper"
	AIAssist  = "ai-assist"
	Streak7   = "streak-7"
	Tagger    = "tagger"
)

// ExpPerLevel scales the experience threshold of the next level.
const ExpPerLevel = 100

// MaxGrant bounds a single exp award or coin adjustment requested from outside.
const MaxGrant int64 = 1_000_000

// DefaultRank is the rank of a level-1 profile.
const DefaultRank = "Rookie"

var catalog = []model.Achievement{
	{ID: FirstNote, Title: "First Words", Description: "Save your first note.", Reward: 50, Icon: "pencil"},
	{ID: Locked, Title: "Secret Keeper", Description: "Lock a note with a password.", Reward: 100, Icon: "lock"},
	{ID: Organized, Title: "Organized", Description: "Pin a note to the top.", Reward: 30, Icon: "pin"},
	{ID: Deleted, Title: "Spring Cleaning", Description: "Move a note to the bin.", Reward: 10, Icon: "trash"},
	{ID: Undead, Title: "Undead", Description: "Bring a note back from the bin.", Reward: 20, Icon: "ghost"},
	{ID: Cloner, Title: "Cloner", Description: "Duplicate a note.", Reward: 15, Icon: "copy"},
	{ID: Shopper, Title: "Shopper", Description: "Install something from the marketplace.", Reward: 25, Icon: "bag"},
	{ID: AIAssist, Title: "Robot Friend", Description: "Let the assistant rewrite a note.", Reward: 40, Icon: "robot"},
	{ID: Streak7, Title: "Creature of Habit", Description: "Come back seven days in a row.", Reward: 200, Icon: "flame"},
	{ID: Tagger, Title: "Librarian", Description: "Save a note with tags.", Reward: 20, Icon: "tag"},
}

var byID = func() map[string]model.Achievement {
	m := make(map[string]model.Achievement, len(catalog))
	for _, a := range catalog {
		m[a.ID] = a
	}
	return m
}()

// Catalog returns a copy of the fixed achievement catalog.
func Catalog() []model.Achievement {
	return append([]model.Achievement(nil), catalog...)
}

// Lookup returns the catalog entry for id.
func Lookup(id string) (model.Achievement, bool) {
	a, ok := byID[id]
	return a, ok
}

// rankBreakpoints is evaluated as an ascending cascade; the last match wins.
var rankBreakpoints = []struct {
	level int
	rank  string
}{
	{5, "Scout"},
	{10, "Warrior"},
	{20, "Commander"},
	{50, "Warlord"},
	{100, "Legend"},
}

// RankFor derives the rank from a level.
func RankFor(level int) string {
	rank := DefaultRank
	for _, b := range rankBreakpoints {
		if level >= b.level {
			rank = b.rank
		}
	}
	return rank
}

// Unlock adds the achievement and its coin reward once. Unknown or already
// unlocked ids leave the profile unchanged.
func Unlock(p model.Profile, id string) (model.Profile, []model.Effect) {
	a, ok := byID[id]
	if !ok || p.HasAchievement(id) {
		return p, nil
	}
	p.UnlockedAchievements = append(append([]string(nil), p.UnlockedAchievements...), id)
	p.Coins = addSat(p.Coins, a.Reward)
	return p, []model.Effect{
		{Kind: model.EffectAchievementUnlocked, AchievementID: id, Detail: a.Title},
		{Kind: model.EffectCoinsAwarded, AchievementID: id, Amount: a.Reward},
	}
}

// GainExp adds experience. When the cumulative total reaches level*ExpPerLevel the
// level goes up by exactly one, however large amount is. Non-positive amounts are ignored
// and the total saturates at math.MaxInt64.
func GainExp(p model.Profile, amount int64) (model.Profile, []model.Effect) {
	if amount <= 0 || p.Exp == math.MaxInt64 {
		return p, nil
	}
	if p.Level < 1 {
		p.Level = 1
	}
	before := p.Exp
	p.Exp = addSat(p.Exp, amount)
	effects := []model.Effect{{Kind: model.EffectExpGained, Amount: p.Exp - before}}

	if p.Exp >= int64(p.Level)*ExpPerLevel {
		p.Level++
		effects = append(effects, model.Effect{Kind: model.EffectLevelUp, Amount: int64(p.Level)})
		if rank := RankFor(p.Level); rank != p.Rank {
			p.Rank = rank
			effects = append(effects, model.Effect{Kind: model.EffectRankChanged, Detail: rank})
		}
	}
	return p, effects
}

// Spend charges price coins. It fails with errs.ErrInsufficientFunds and leaves
// the profile untouched when the balance is too low.
func Spend(p model.Profile, price int64, reason string) (model.Profile, []model.Effect, error) {
	if price < 0 {
		return p, nil, fmt.Errorf("validation: negative price: %w", errs.ErrInvalid)
	}
	if price == 0 {
		return p, nil, nil
	}
	if p.Coins < price {
		return p, nil, fmt.Errorf("need %d coins, have %d: %w", price, p.Coins, errs.ErrInsufficientFunds)
	}
	p.Coins -= price
	return p, []model.Effect{{Kind: model.EffectCoinsSpent, Amount: price, Detail: reason}}, nil
}

// Override adjusts coins by delta without any balance check. It is the
// administrative path and may leave the balance negative. The balance saturates
// at the int64 bounds instead of wrapping.
func Override(p model.Profile, delta int64, reason string) (model.Profile, []model.Effect) {
	before := p.Coins
	p.Coins = addSat(p.Coins, delta)
	if p.Coins == before {
		return p, nil
	}
	return p, []model.Effect{{Kind: model.EffectCoinsAdjusted, Amount: p.Coins - before, Detail: reason}}
}

func addSat(a, b int64) int64 {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return math.MaxInt64
	case b < 0 && a < math.MinInt64-b:
		return math.MinInt64
	}
	return a + b
}
