package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/economy"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/errs"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/model"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/profile"
)

func enableDeveloperMode(t *testing.T, f *fixture) {
	t.Helper()
	s := profile.DefaultSettings()
	s.DeveloperMode = true
	if _, err := f.ws.UpdateSettings(context.Background(), f.pid, s); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
}

func TestSpend(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.saveNote(t, "coins", nil) // 50 coins

	if _, _, err := f.ws.Spend(ctx, f.pid, 100, "arcade"); !errors.Is(err, errs.ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
	p, _ := f.ws.Profile(ctx, f.pid)
	if p.Coins != 50 {
		t.Fatalf("rejected spend changed coins: %d", p.Coins)
	}

	p, effects, err := f.ws.Spend(ctx, f.pid, 30, "arcade")
	if err != nil || p.Coins != 20 || !hasEffect(effects, model.EffectCoinsSpent, "") {
		t.Fatalf("Spend: %+v %v %v", p, effects, err)
	}
	if _, _, err := f.ws.Spend(ctx, f.pid, -1, "x"); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("negative price: want ErrInvalid, got %v", err)
	}
}

func TestAwardExpAndUnlock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p, effects, err := f.ws.AwardExp(ctx, f.pid, 250)
	if err != nil {
		t.Fatalf("AwardExp: %v", err)
	}
	if p.Level != 2 || p.Exp != 250 || !hasEffect(effects, model.EffectLevelUp, "") {
		t.Fatalf("single step level-up expected: %+v %v", p, effects)
	}
	if _, effects, _ := f.ws.AwardExp(ctx, f.pid, 0); len(effects) != 0 {
		t.Fatalf("zero exp produced effects: %v", effects)
	}

	p, effects, err = f.ws.UnlockAchievement(ctx, f.pid, economy.Streak7)
	if err != nil || p.Coins != 200 || !hasEffect(effects, model.EffectCoinsAwarded, economy.Streak7) {
		t.Fatalf("UnlockAchievement: %+v %v %v", p, effects, err)
	}
	if _, effects, _ := f.ws.UnlockAchievement(ctx, f.pid, economy.Streak7); len(effects) != 0 {
		t.Fatalf("second unlock produced effects: %v", effects)
	}
	if _, _, err := f.ws.UnlockAchievement(ctx, f.pid, "moon-landing"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	list, err := f.ws.Achievements(ctx, f.pid)
	if err != nil || len(list) != len(economy.Catalog()) {
		t.Fatalf("Achievements: %d %v", len(list), err)
	}
	for _, a := range list {
		if a.Unlocked != (a.ID == economy.Streak7) {
			t.Fatalf("unexpected unlock state for %s", a.ID)
		}
	}
}

func TestAdjustCoins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, _, err := f.ws.AdjustCoins(ctx, f.pid, 100, "gift"); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("want ErrForbidden outside developer mode, got %v", err)
	}
	enableDeveloperMode(t, f)

	p, effects, err := f.ws.AdjustCoins(ctx, f.pid, -40, "debug")
	if err != nil {
		t.Fatalf("AdjustCoins: %v", err)
	}
	if p.Coins != -40 || !hasEffect(effects, model.EffectCoinsAdjusted, "") {
		t.Fatalf("override may go negative: %+v %v", p, effects)
	}
}

func TestUpdateSettings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	bad := profile.DefaultSettings()
	bad.FontSize = 4
	if _, err := f.ws.UpdateSettings(ctx, f.pid, bad); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("font size: want ErrInvalid, got %v", err)
	}
	bad = profile.DefaultSettings()
	bad.Theme = "midnight"
	if _, err := f.ws.UpdateSettings(ctx, f.pid, bad); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("uninstalled theme: want ErrInvalid, got %v", err)
	}
	got, _ := f.ws.Settings(ctx, f.pid)
	if got != profile.DefaultSettings() {
		t.Fatalf("rejected update changed settings: %+v", got)
	}

	ok := profile.DefaultSettings()
	ok.ZenMode = true
	if _, err := f.ws.UpdateSettings(ctx, f.pid, ok); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	got, _ = f.ws.Settings(ctx, f.pid)
	if !got.ZenMode {
		t.Fatalf("settings not stored")
	}
}

func TestSticky(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	s, err := f.ws.SetSticky(ctx, f.pid, "buy milk", "")
	if err != nil || s.Color != model.DefaultNoteColor || s.UpdatedAt != model.Millis(f.now) {
		t.Fatalf("SetSticky: %+v %v", s, err)
	}
	if _, err := f.ws.SetSticky(ctx, f.pid, "x", "plaid"); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("want ErrInvalid, got %v", err)
	}
	got, _ := f.ws.Sticky(ctx, f.pid)
	if got.Text != "buy milk" {
		t.Fatalf("sticky=%+v", got)
	}
}

func TestOpen_Streak(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p, _, err := f.ws.Open(ctx, f.pid, "tester")
	if err != nil || p.Streak != 1 || p.Name != "tester" {
		t.Fatalf("first open: %+v %v", p, err)
	}
	p, _, _ = f.ws.Open(ctx, f.pid, "tester")
	if p.Streak != 1 {
		t.Fatalf("same day: streak=%d", p.Streak)
	}

	var effects []model.Effect
	for day := 2; day <= 7; day++ {
		f.now = f.now.Add(24 * time.Hour)
		p, effects, _ = f.ws.Open(ctx, f.pid, "tester")
		if p.Streak != day {
			t.Fatalf("day %d: streak=%d", day, p.Streak)
		}
	}
	if !hasEffect(effects, model.EffectAchievementUnlocked, economy.Streak7) {
		t.Fatalf("seven days must unlock %s: %v", economy.Streak7, effects)
	}

	f.now = f.now.Add(72 * time.Hour)
	p, _, _ = f.ws.Open(ctx, f.pid, "tester")
	if p.Streak != 0 {
		t.Fatalf("gap must reset streak, got %d", p.Streak)
	}
}

func TestCloseReloadsFromStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.saveNote(t, "durable", nil)
	if f.store.loads != 1 || f.obs.open != 1 {
		t.Fatalf("loads=%d open=%d", f.store.loads, f.obs.open)
	}

	f.ws.Close(f.pid)
	if f.obs.open != 0 {
		t.Fatalf("open sessions=%d", f.obs.open)
	}
	list, err := f.ws.ListNotes(ctx, f.pid, ListQuery{})
	if err != nil || len(list) != 1 || list[0].Title != "durable" {
		t.Fatalf("reload: %v %v", list, err)
	}
	if f.store.loads != 2 {
		t.Fatalf("loads=%d", f.store.loads)
	}
}

func TestLoadFailure(t *testing.T) {
	f := newFixture(t)
	f.store.loadErr = errBoom
	if _, err := f.ws.Profile(context.Background(), f.pid); !errors.Is(err, errBoom) {
		t.Fatalf("want load error, got %v", err)
	}
	f.store.loadErr = nil
	if _, err := f.ws.Profile(context.Background(), f.pid); err != nil {
		t.Fatalf("retry after load failure: %v", err)
	}
}

func TestAwardExpAndAdjustCoins_Bounds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	enableDeveloperMode(t, f)

	if _, _, err := f.ws.AwardExp(ctx, f.pid, 10); err != nil {
		t.Fatalf("AwardExp: %v", err)
	}
	for _, amount := range []int64{-1, economy.MaxGrant + 1, math.MaxInt64} {
		if _, _, err := f.ws.AwardExp(ctx, f.pid, amount); !errors.Is(err, errs.ErrInvalid) {
			t.Fatalf("AwardExp(%d): want ErrInvalid, got %v", amount, err)
		}
	}
	for _, delta := range []int64{economy.MaxGrant + 1, -economy.MaxGrant - 1, math.MinInt64} {
		if _, _, err := f.ws.AdjustCoins(ctx, f.pid, delta, "x"); !errors.Is(err, errs.ErrInvalid) {
			t.Fatalf("AdjustCoins(%d): want ErrInvalid, got %v", delta, err)
		}
	}
	p, _ := f.ws.Profile(ctx, f.pid)
	if p.Exp != 10 || p.Coins != 0 {
		t.Fatalf("rejected inputs changed the profile: exp=%d coins=%d", p.Exp, p.Coins)
	}
}

func TestSpend_ConcurrentOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.saveNote(t, "coins", nil) // 50 coins

	const n = 50
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		minSeen   int64 = math.MaxInt64
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, _, err := f.ws.Spend(ctx, f.pid, 50, "race")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
				if p.Coins < minSeen {
					minSeen = p.Coins
				}
			case !errors.Is(err, errs.ErrInsufficientFunds):
				t.Errorf("Spend: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 || minSeen != 0 {
		t.Fatalf("successes=%d min balance=%d", successes, minSeen)
	}
	p, _ := f.ws.Profile(ctx, f.pid)
	if p.Coins != 0 {
		t.Fatalf("coins=%d", p.Coins)
	}
}
