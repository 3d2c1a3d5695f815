package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	v1 "github.com/sachu255/CRAFTY-notes--sub000/internal/api/craftyv1"
)

var accountCommands = map[string]command{
	"login":        {usage: "<name>", public: true, run: cmdLogin},
	"profile":      {usage: "(coins, level, rank, streak)", run: cmdProfile},
	"achievements": {usage: "(catalog with unlock state)", run: cmdAchievements},
	"exp":          {usage: "-amount n", run: cmdExp},
	"achieve":      {usage: "-id <achievement>", run: cmdAchieve},
	"spend":        {usage: "-price n [-reason r]", run: cmdSpend},
	"coins":        {usage: "-delta n [-reason r]   (developer mode)", run: cmdCoins},
	"settings":     {usage: "[-theme t] [-font f] [-size n] [-zen] [-combat] [-dev] [-wallpaper w] [-sound]", run: cmdSettings},
	"sticky":       {usage: "[-text t] [-color c]", run: cmdSticky},
	"market":       {usage: "(catalog)", run: cmdMarket},
	"installed":    {usage: "(installed items and bin)", run: cmdInstalled},
	"install":      {usage: "-id <item>", run: itemAction("install")},
	"uninstall":    {usage: "-id <item>", run: itemAction("uninstall")},
	"restore-item": {usage: "-id <item>", run: itemAction("restore-item")},
}

func cmdLogin(ctx context.Context, e *env, cl *v1.Client, args []string) error {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return fmt.Errorf("login: need a name: %w", errUsage)
	}
	resp, err := cl.OpenSession(ctx, &v1.OpenSessionRequest{Name: name})
	if err != nil {
		return err
	}
	err = e.store.save(savedSession{
		Name:      resp.Profile.Name,
		ProfileID: resp.ProfileID,
		Token:     resp.Token,
		ExpiresAt: time.UnixMilli(resp.ExpiresAt),
	})
	if err != nil {
		return err
	}
	return e.printResult(struct {
		Profile v1.Profile  `json:"profile"`
		Effects []v1.Effect `json:"effects,omitempty"`
	}{resp.Profile, resp.Effects}, resp.Result)
}

func cmdProfile(ctx context.Context, e *env, cl *v1.Client, _ []string) error {
	resp, err := cl.GetProfile(ctx)
	if err != nil {
		return err
	}
	return e.print(resp.Profile)
}

func cmdAchievements(ctx context.Context, e *env, cl *v1.Client, _ []string) error {
	resp, err := cl.Achievements(ctx)
	if err != nil {
		return err
	}
	return e.print(resp.Achievements)
}

func cmdExp(ctx context.Context, e *env, cl *v1.Client, args []string) error {
	fs := newFlags("exp", e.errOut)
	amount := fs.Int64("amount", 0, "experience points")
	if err := parse(fs, args); err != nil {
		return err
	}
	resp, err := cl.AwardExp(ctx, &v1.AwardExpRequest{Amount: *amount})
	if err != nil {
		return err
	}
	return e.printResult(resp, resp.Result)
}

func cmdAchieve(ctx context.Context, e *env, cl *v1.Client, args []string) error {
	fs := newFlags("achieve", e.errOut)
	id := fs.String("id", "", "achievement id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := need(fs, "id"); err != nil {
		return err
	}
	resp, err := cl.UnlockAchievement(ctx, &v1.UnlockAchievementRequest{ID: *id})
	if err != nil {
		return err
	}
	return e.printResult(resp, resp.Result)
}

func cmdSpend(ctx context.Context, e *env, cl *v1.Client, args []string) error {
	fs := newFlags("spend", e.errOut)
	price := fs.Int64("price", 0, "coins to spend")
	reason := fs.String("reason", "", "what for")
	if err := parse(fs, args); err != nil {
		return err
	}
	resp, err := cl.Spend(ctx, &v1.SpendRequest{Price: *price, Reason: *reason})
	if err != nil {
		return err
	}
	return e.printResult(resp, resp.Result)
}

func cmdCoins(ctx context.Context, e *env, cl *v1.Client, args []string) error {
	fs := newFlags("coins", e.errOut)
	delta := fs.Int64("delta", 0, "signed coin change")
	reason := fs.String("reason", "", "why")
	if err := parse(fs, args); err != nil {
		return err
	}
	resp, err := cl.AdjustCoins(ctx, &v1.AdjustCoinsRequest{Delta: *delta, Reason: *reason})
	if err != nil {
		return err
	}
	return e.printResult(resp, resp.Result)
}

// cmdSettings prints the settings, or updates the fields given as flags.
func cmdSettings(ctx context.Context, e *env, cl *v1.Client, args []string) error {
	fs := newFlags("settings", e.errOut)
	theme := fs.String("theme", "", "theme id")
	font := fs.String("font", "", "font family")
	size := fs.Int("size", 0, "font size")
	zen := fs.Bool("zen", false, "zen mode")
	combat := fs.Bool("combat", false, "combat mode")
	dev := fs.Bool("dev", false, "developer mode")
	wallpaper := fs.String("wallpaper", "", "wallpaper reference")
	sound := fs.Bool("sound", false, "sound effects")
	if err := parse(fs, args); err != nil {
		return err
	}

	cur, err := cl.GetSettings(ctx)
	if err != nil {
		return err
	}
	if fs.NFlag() == 0 {
		return e.print(cur.Settings)
	}
	s := cur.Settings
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "theme":
			s.Theme = *theme
		case "font":
			s.FontFamily = *font
		case "size":
			s.FontSize = int32(*size)
		case "zen":
			s.ZenMode = *zen
		case "combat":
			s.CombatMode = *combat
		case "dev":
			s.DeveloperMode = *dev
		case "wallpaper":
			s.Wallpaper = *wallpaper
		case "sound":
			s.Sound = *sound
		}
	})
	resp, err := cl.UpdateSettings(ctx, &v1.UpdateSettingsRequest{Settings: s})
	if err != nil {
		return err
	}
	return e.printResult(resp.Settings, resp.Result)
}

func cmdSticky(ctx context.Context, e *env, cl *v1.Client, args []string) error {
	fs := newFlags("sticky", e.errOut)
	text := fs.String("text", "", "sticky note text")
	color := fs.String("color", "", "sticky note color")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NFlag() == 0 {
		resp, err := cl.GetSticky(ctx)
		if err != nil {
			return err
		}
		return e.print(resp.Sticky)
	}
	resp, err := cl.SetSticky(ctx, &v1.SetStickyRequest{Text: *text, Color: *color})
	if err != nil {
		return err
	}
	return e.printResult(resp.Sticky, resp.Result)
}

func cmdMarket(ctx context.Context, e *env, cl *v1.Client, _ []string) error {
	resp, err := cl.Market(ctx)
	if err != nil {
		return err
	}
	return e.print(resp.Items)
}

func cmdInstalled(ctx context.Context, e *env, cl *v1.Client, _ []string) error {
	resp, err := cl.Installed(ctx)
	if err != nil {
		return err
	}
	return e.print(resp)
}

func itemAction(name string) func(context.Context, *env, *v1.Client, []string) error {
	return func(ctx context.Context, e *env, cl *v1.Client, args []string) error {
		fs := newFlags(name, e.errOut)
		id := fs.String("id", "", "item id")
		if err := parse(fs, args); err != nil {
			return err
		}
		if err := need(fs, "id"); err != nil {
			return err
		}
		req := &v1.ItemRequest{ID: *id}
		switch name {
		case "install":
			resp, err := cl.Install(ctx, req)
			if err != nil {
				return err
			}
			return e.printResult(resp, resp.Result)
		case "uninstall":
			resp, err := cl.Uninstall(ctx, req)
			if err != nil {
				return err
			}
			return e.printResult(resp, resp.Result)
		}
		resp, err := cl.RestoreItem(ctx, req)
		if err != nil {
			return err
		}
		return e.printResult(resp, resp.Result)
	}
}
