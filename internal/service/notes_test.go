package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid/v5"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/confirm"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/economy"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/errs"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/model"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/notebook"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/repository"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/textproc"
)

func TestSaveNote_FirstNoteRewardOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	n := f.ws.CreateNote(ctx, f.pid)
	n.Title = "hello"
	_, effects, err := f.ws.SaveNote(ctx, f.pid, n, "")
	if err != nil {
		t.Fatalf("SaveNote: %v", err)
	}
	if !hasEffect(effects, model.EffectAchievementUnlocked, economy.FirstNote) {
		t.Fatalf("first save must unlock %s, effects=%v", economy.FirstNote, effects)
	}
	p, _ := f.ws.Profile(ctx, f.pid)
	if p.Coins != 50 || p.Exp != SaveNoteExp {
		t.Fatalf("after first save coins=%d exp=%d", p.Coins, p.Exp)
	}

	n2 := f.ws.CreateNote(ctx, f.pid)
	_, effects, err = f.ws.SaveNote(ctx, f.pid, n2, "")
	if err != nil {
		t.Fatalf("SaveNote #2: %v", err)
	}
	if hasEffect(effects, model.EffectAchievementUnlocked, "") {
		t.Fatalf("second save unlocked again: %v", effects)
	}
	p, _ = f.ws.Profile(ctx, f.pid)
	if p.Coins != 50 || p.Exp != 2*SaveNoteExp {
		t.Fatalf("after second save coins=%d exp=%d", p.Coins, p.Exp)
	}
	if got := f.store.saves[len(f.store.saves)-1]; got != repository.RecNotes|repository.RecProfile {
		t.Fatalf("records saved = %b", got)
	}
	if !hasEffect(f.pub.effects, model.EffectCoinsAwarded, economy.FirstNote) {
		t.Fatalf("effects were not published: %v", f.pub.effects)
	}
}

func TestSaveNote_TagsAndPinUnlock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	n := f.ws.CreateNote(ctx, f.pid)
	n.Tags = []string{"work"}
	n.Pinned = true
	_, effects, err := f.ws.SaveNote(ctx, f.pid, n, "")
	if err != nil {
		t.Fatalf("SaveNote: %v", err)
	}
	for _, id := range []string{economy.FirstNote, economy.Tagger, economy.Organized} {
		if !hasEffect(effects, model.EffectAchievementUnlocked, id) {
			t.Fatalf("want %s unlocked, effects=%v", id, effects)
		}
	}
	p, _ := f.ws.Profile(ctx, f.pid)
	if p.Coins != 50+20+30 {
		t.Fatalf("coins=%d", p.Coins)
	}
	tags, _ := f.ws.Tags(ctx, f.pid)
	if tags["work"] != 1 {
		t.Fatalf("tags=%v", tags)
	}
}

func TestSaveNote_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, _, err := f.ws.SaveNote(ctx, f.pid, model.Note{}, ""); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("empty id: want ErrInvalid, got %v", err)
	}
	n := f.ws.CreateNote(ctx, f.pid)
	n.Color = "plaid"
	if _, _, err := f.ws.SaveNote(ctx, f.pid, n, ""); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("bad color: want ErrInvalid, got %v", err)
	}
	if _, _, err := f.ws.SaveNote(ctx, uuid.Nil, f.ws.CreateNote(ctx, f.pid), ""); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("nil profile: want ErrInvalid, got %v", err)
	}
}

func TestSaveNote_PersistenceFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.saveErr = errBoom

	n := f.ws.CreateNote(ctx, f.pid)
	n.Title = "kept"
	saved, effects, err := f.ws.SaveNote(ctx, f.pid, n, "")
	if !errors.Is(err, errs.ErrPersistence) {
		t.Fatalf("want ErrPersistence, got %v", err)
	}
	if saved.ID != n.ID || len(effects) == 0 {
		t.Fatalf("result must survive persistence failure: %+v %v", saved, effects)
	}
	list, err := f.ws.ListNotes(ctx, f.pid, ListQuery{})
	if err != nil || len(list) != 1 || list[0].Title != "kept" {
		t.Fatalf("in-memory note lost: %v %v", list, err)
	}
	if f.obs.failures != 1 {
		t.Fatalf("observer failures=%d", f.obs.failures)
	}
	if got := f.store.stored(f.pid); len(got.Notes) != 0 {
		t.Fatalf("store must not hold the note: %v", got.Notes)
	}
}

func TestDeleteRestore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	n := f.saveNote(t, "bin me", nil)

	effects, err := f.ws.DeleteNote(ctx, f.pid, n.ID)
	if err != nil || !hasEffect(effects, model.EffectAchievementUnlocked, economy.Deleted) {
		t.Fatalf("DeleteNote: %v %v", effects, err)
	}
	active, _ := f.ws.ListNotes(ctx, f.pid, ListQuery{})
	bin, _ := f.ws.ListNotes(ctx, f.pid, ListQuery{Bin: true})
	if len(active) != 0 || len(bin) != 1 {
		t.Fatalf("active=%d bin=%d", len(active), len(bin))
	}

	// Saving a binned note keeps it in the bin.
	edit := bin[0]
	edit.Title = "still binned"
	if _, _, err := f.ws.SaveNote(ctx, f.pid, edit, ""); err != nil {
		t.Fatalf("SaveNote binned: %v", err)
	}
	if got, _ := f.ws.GetNote(ctx, f.pid, n.ID); !got.Deleted {
		t.Fatalf("save resurrected the note")
	}

	effects, err = f.ws.RestoreNote(ctx, f.pid, n.ID)
	if err != nil || !hasEffect(effects, model.EffectAchievementUnlocked, economy.Undead) {
		t.Fatalf("RestoreNote: %v %v", effects, err)
	}
	p, _ := f.ws.Profile(ctx, f.pid)
	if p.Coins != 50+10+20 {
		t.Fatalf("coins=%d", p.Coins)
	}

	if _, err := f.ws.DeleteNote(ctx, f.pid, "missing"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestTogglePin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	n := f.saveNote(t, "pin", nil)

	on, effects, err := f.ws.TogglePin(ctx, f.pid, n.ID)
	if err != nil || !on || !hasEffect(effects, model.EffectAchievementUnlocked, economy.Organized) {
		t.Fatalf("first toggle: on=%v effects=%v err=%v", on, effects, err)
	}
	on, effects, err = f.ws.TogglePin(ctx, f.pid, n.ID)
	if err != nil || on || len(effects) != 0 {
		t.Fatalf("second toggle: on=%v effects=%v err=%v", on, effects, err)
	}
	on, effects, _ = f.ws.TogglePin(ctx, f.pid, n.ID)
	if !on || len(effects) != 0 {
		t.Fatalf("organized must unlock once: %v", effects)
	}
	if _, _, err := f.ws.TogglePin(ctx, f.pid, "nope"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestDuplicateNote(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	n := f.saveNote(t, "orig", func(n *model.Note) { n.Tags = []string{"a"} })

	dup, effects, err := f.ws.DuplicateNote(ctx, f.pid, n.ID)
	if err != nil {
		t.Fatalf("DuplicateNote: %v", err)
	}
	if dup.ID == n.ID || dup.Title != "orig"+notebook.CopySuffix {
		t.Fatalf("dup=%+v", dup)
	}
	if !hasEffect(effects, model.EffectAchievementUnlocked, economy.Cloner) {
		t.Fatalf("effects=%v", effects)
	}
	list, _ := f.ws.ListNotes(ctx, f.pid, ListQuery{})
	if len(list) != 2 {
		t.Fatalf("len=%d", len(list))
	}
	if _, _, err := f.ws.DuplicateNote(ctx, f.pid, "nope"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestAttach(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	n := f.saveNote(t, "att", nil)

	if err := f.ws.Attach(ctx, f.pid, n.ID, notebook.Sticker, "cat-1"); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	got, _ := f.ws.GetNote(ctx, f.pid, n.ID)
	if len(got.Stickers) != 1 || got.Stickers[0] != "cat-1" {
		t.Fatalf("stickers=%v", got.Stickers)
	}
	if err := f.ws.Attach(ctx, f.pid, n.ID, "video", "x"); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("bad kind: want ErrInvalid, got %v", err)
	}
	if _, err := f.ws.LockNote(ctx, f.pid, n.ID, "pw"); err != nil {
		t.Fatalf("LockNote: %v", err)
	}
	if err := f.ws.Attach(ctx, f.pid, n.ID, notebook.Audio, "a"); !errors.Is(err, errs.ErrLocked) {
		t.Fatalf("locked: want ErrLocked, got %v", err)
	}
}

func TestListNotes_SearchAndRedaction(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.saveNote(t, "Groceries", func(n *model.Note) { n.Content = "milk and eggs" })
	secret := f.saveNote(t, "Diary", func(n *model.Note) { n.Content = "milk secret" })
	if _, err := f.ws.LockNote(ctx, f.pid, secret.ID, "pw"); err != nil {
		t.Fatalf("LockNote: %v", err)
	}

	hits, _ := f.ws.ListNotes(ctx, f.pid, ListQuery{Query: "MILK"})
	if len(hits) != 1 || hits[0].Title != "Groceries" {
		t.Fatalf("locked note must not match search: %v", hits)
	}
	all, _ := f.ws.ListNotes(ctx, f.pid, ListQuery{Order: notebook.TitleAsc})
	if len(all) != 2 {
		t.Fatalf("len=%d", len(all))
	}
	for _, n := range all {
		if n.Lock != nil {
			t.Fatalf("lock leaked for %s", n.ID)
		}
		if n.Locked && (n.Title != "" || n.Content != "") {
			t.Fatalf("locked note not redacted: %+v", n)
		}
	}
}

func TestLockRevealUnlock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	n := f.saveNote(t, "t", func(n *model.Note) { n.Content = "secret" })

	effects, err := f.ws.LockNote(ctx, f.pid, n.ID, "pw")
	if err != nil || !hasEffect(effects, model.EffectAchievementUnlocked, economy.Locked) {
		t.Fatalf("LockNote: %v %v", effects, err)
	}
	if _, err := f.ws.LockNote(ctx, f.pid, n.ID, "pw2"); !errors.Is(err, errs.ErrLocked) {
		t.Fatalf("double lock: want ErrLocked, got %v", err)
	}
	got, _ := f.ws.GetNote(ctx, f.pid, n.ID)
	if !got.Locked || got.Content != "" || got.Lock != nil {
		t.Fatalf("GetNote must redact: %+v", got)
	}
	snap, _ := f.ws.Snapshot(ctx, f.pid)
	if snap.Notes[0].Lock == nil || len(snap.Notes[0].Lock.Salt) == 0 {
		t.Fatalf("stored lock missing")
	}

	if _, err := f.ws.RevealNote(ctx, f.pid, n.ID, ""); !errors.Is(err, errs.ErrLocked) {
		t.Fatalf("empty password: want ErrLocked, got %v", err)
	}
	if _, err := f.ws.RevealNote(ctx, f.pid, n.ID, "nope"); !errors.Is(err, errs.ErrInvalidPassword) {
		t.Fatalf("wrong password: want ErrInvalidPassword, got %v", err)
	}
	plain, err := f.ws.RevealNote(ctx, f.pid, n.ID, "pw")
	if err != nil || plain.Content != "secret" || plain.Lock != nil {
		t.Fatalf("RevealNote: %+v %v", plain, err)
	}
	if got, _ := f.ws.GetNote(ctx, f.pid, n.ID); !got.Locked {
		t.Fatalf("reveal must leave the note locked")
	}

	// Saving over a locked note requires the password.
	edit := plain
	edit.Content = "changed"
	if _, _, err := f.ws.SaveNote(ctx, f.pid, edit, ""); !errors.Is(err, errs.ErrLocked) {
		t.Fatalf("save without password: want ErrLocked, got %v", err)
	}
	edit.Locked = false
	saved, _, err := f.ws.SaveNote(ctx, f.pid, edit, "pw")
	if err != nil || !saved.Locked {
		t.Fatalf("save must keep the lock: %+v %v", saved, err)
	}

	open, err := f.ws.UnlockNote(ctx, f.pid, n.ID, "pw")
	if err != nil || open.Locked || open.Content != "changed" {
		t.Fatalf("UnlockNote: %+v %v", open, err)
	}
	if f.lim.successes != 3 || f.lim.failures != 1 {
		t.Fatalf("limiter successes=%d failures=%d", f.lim.successes, f.lim.failures)
	}
}

func TestSaveNote_LocksOnTheWayIn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	n := f.ws.CreateNote(ctx, f.pid)
	n.Locked = true
	if _, _, err := f.ws.SaveNote(ctx, f.pid, n, ""); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("locking without password: want ErrInvalid, got %v", err)
	}
	saved, effects, err := f.ws.SaveNote(ctx, f.pid, n, "pw")
	if err != nil || !saved.Locked || saved.Lock != nil {
		t.Fatalf("SaveNote: %+v %v", saved, err)
	}
	if !hasEffect(effects, model.EffectAchievementUnlocked, economy.Locked) {
		t.Fatalf("effects=%v", effects)
	}
}

func TestRevealNote_RateLimited(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.lim.blockAt = 2
	n := f.saveNote(t, "t", nil)
	if _, err := f.ws.LockNote(ctx, f.pid, n.ID, "pw"); err != nil {
		t.Fatalf("LockNote: %v", err)
	}

	if _, err := f.ws.RevealNote(ctx, f.pid, n.ID, "x"); !errors.Is(err, errs.ErrInvalidPassword) {
		t.Fatalf("attempt 1: %v", err)
	}
	if _, err := f.ws.RevealNote(ctx, f.pid, n.ID, "x"); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("attempt 2: want ErrRateLimited, got %v", err)
	}
	if _, err := f.ws.RevealNote(ctx, f.pid, n.ID, "pw"); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("blocked subject must refuse even the right password, got %v", err)
	}
}

func TestPurgeNote(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	n := f.saveNote(t, "gone", nil)

	if _, _, err := f.ws.RequestPurge(ctx, f.pid, confirm.KindNote, n.ID); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("active note: want ErrInvalid, got %v", err)
	}
	if _, _, err := f.ws.RequestPurge(ctx, f.pid, confirm.KindNote, "missing"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("missing note: want ErrNotFound, got %v", err)
	}
	if _, _, err := f.ws.RequestPurge(ctx, f.pid, "planet", n.ID); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("bad kind: want ErrInvalid, got %v", err)
	}
	if _, err := f.ws.DeleteNote(ctx, f.pid, n.ID); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	tok, exp, err := f.ws.RequestPurge(ctx, f.pid, confirm.KindNote, n.ID)
	if err != nil || tok == "" || exp.IsZero() {
		t.Fatalf("RequestPurge: %q %v %v", tok, exp, err)
	}

	if err := f.ws.Purge(ctx, f.pid, confirm.KindNote, n.ID, ""); !errors.Is(err, errs.ErrConfirmationRequired) {
		t.Fatalf("no token: want ErrConfirmationRequired, got %v", err)
	}
	if err := f.ws.Purge(ctx, f.pid, confirm.KindNote, "other", tok); !errors.Is(err, errs.ErrConfirmationRequired) {
		t.Fatalf("token for another note: want ErrConfirmationRequired, got %v", err)
	}
	if err := f.ws.Purge(ctx, ProfileID("someone else"), confirm.KindNote, n.ID, tok); !errors.Is(err, errs.ErrConfirmationRequired) {
		t.Fatalf("token for another profile: want ErrConfirmationRequired, got %v", err)
	}
	if err := f.ws.Purge(ctx, f.pid, confirm.KindNote, n.ID, tok); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	bin, _ := f.ws.ListNotes(ctx, f.pid, ListQuery{Bin: true})
	if len(bin) != 0 {
		t.Fatalf("bin=%v", bin)
	}
	if err := f.ws.Purge(ctx, f.pid, confirm.KindNote, n.ID, tok); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("second purge: want ErrNotFound, got %v", err)
	}
}

func TestProcessNote(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	n := f.saveNote(t, "t", func(n *model.Note) { n.Content = "hello" })

	got, effects, err := f.ws.ProcessNote(ctx, f.pid, n.ID, textproc.TaskUppercase)
	if err != nil {
		t.Fatalf("ProcessNote: %v", err)
	}
	if got.Content != "uppercase:hello" {
		t.Fatalf("content=%q", got.Content)
	}
	if !hasEffect(effects, model.EffectAchievementUnlocked, economy.AIAssist) {
		t.Fatalf("effects=%v", effects)
	}

	f.ai.err = errBoom
	if _, _, err := f.ws.ProcessNote(ctx, f.pid, n.ID, textproc.TaskTidy); !errors.Is(err, errs.ErrAIUnavailable) {
		t.Fatalf("want ErrAIUnavailable, got %v", err)
	}
	after, _ := f.ws.GetNote(ctx, f.pid, n.ID)
	if after.Content != "uppercase:hello" {
		t.Fatalf("failed rewrite changed content: %q", after.Content)
	}

	f.ai.err = nil
	calls := f.ai.calls
	if _, err := f.ws.LockNote(ctx, f.pid, n.ID, "pw"); err != nil {
		t.Fatalf("LockNote: %v", err)
	}
	if _, _, err := f.ws.ProcessNote(ctx, f.pid, n.ID, textproc.TaskTidy); !errors.Is(err, errs.ErrLocked) {
		t.Fatalf("locked: want ErrLocked, got %v", err)
	}
	if f.ai.calls != calls {
		t.Fatalf("processor must not see locked content")
	}
}

func TestProcessNote_EditDuringProcessingWins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	n := f.saveNote(t, "t", func(n *model.Note) { n.Content = "old" })

	f.ai.during = func() {
		edit := n
		edit.Content = "user typed a new paragraph"
		if _, _, err := f.ws.SaveNote(ctx, f.pid, edit, ""); err != nil {
			t.Errorf("SaveNote while processing: %v", err)
		}
	}
	if _, _, err := f.ws.ProcessNote(ctx, f.pid, n.ID, textproc.TaskUppercase); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
	got, err := f.ws.GetNote(ctx, f.pid, n.ID)
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if got.Content != "user typed a new paragraph" {
		t.Fatalf("concurrent edit lost: %q", got.Content)
	}

	f.ai.during = nil
	got, _, err = f.ws.ProcessNote(ctx, f.pid, n.ID, textproc.TaskUppercase)
	if err != nil || got.Content != "uppercase:user typed a new paragraph" {
		t.Fatalf("retry: %q %v", got.Content, err)
	}
}

func TestPurge_TokenVoidedWhenRebinned(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	n := f.saveNote(t, "again", nil)

	if _, err := f.ws.DeleteNote(ctx, f.pid, n.ID); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	old, _, err := f.ws.RequestPurge(ctx, f.pid, confirm.KindNote, n.ID)
	if err != nil {
		t.Fatalf("RequestPurge: %v", err)
	}
	if _, err := f.ws.RestoreNote(ctx, f.pid, n.ID); err != nil {
		t.Fatalf("RestoreNote: %v", err)
	}
	if _, err := f.ws.DeleteNote(ctx, f.pid, n.ID); err != nil {
		t.Fatalf("DeleteNote again: %v", err)
	}
	if err := f.ws.Purge(ctx, f.pid, confirm.KindNote, n.ID, old); !errors.Is(err, errs.ErrConfirmationRequired) {
		t.Fatalf("stale token: want ErrConfirmationRequired, got %v", err)
	}
	if bin, _ := f.ws.ListNotes(ctx, f.pid, ListQuery{Bin: true}); len(bin) != 1 {
		t.Fatalf("stale token must not purge: bin=%v", bin)
	}

	fresh, _, err := f.ws.RequestPurge(ctx, f.pid, confirm.KindNote, n.ID)
	if err != nil {
		t.Fatalf("RequestPurge: %v", err)
	}
	if err := f.ws.Purge(ctx, f.pid, confirm.KindNote, n.ID, fresh); err != nil {
		t.Fatalf("Purge with fresh token: %v", err)
	}

	// Items follow the same rule.
	if _, _, err := f.ws.Install(ctx, f.pid, "retro"); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if _, _, err := f.ws.Uninstall(ctx, f.pid, "retro"); err != nil {
		t.Fatalf("Uninstall: %v", err)
	}
	old, _, err = f.ws.RequestPurge(ctx, f.pid, confirm.KindItem, "retro")
	if err != nil {
		t.Fatalf("RequestPurge item: %v", err)
	}
	if err := f.ws.RestoreItem(ctx, f.pid, "retro"); err != nil {
		t.Fatalf("RestoreItem: %v", err)
	}
	if _, _, err := f.ws.Uninstall(ctx, f.pid, "retro"); err != nil {
		t.Fatalf("Uninstall again: %v", err)
	}
	if err := f.ws.Purge(ctx, f.pid, confirm.KindItem, "retro", old); !errors.Is(err, errs.ErrConfirmationRequired) {
		t.Fatalf("stale item token: want ErrConfirmationRequired, got %v", err)
	}
}
