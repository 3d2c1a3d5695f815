package main

import (
	"context"
	"flag"
	"fmt"

	v1 "github.com/sachu255/CRAFTY-notes--sub000/internal/api/craftyv1"
)

var noteCommands = map[string]command{
	"notes":   {usage: "[-q text] [-tag t] [-bin] [-order date-desc|date-asc|title-asc|title-desc]", run: cmdNotes},
	"tags":    {usage: "(tag counts of live notes)", run: cmdTags},
	"new":     {usage: "-title t [-content c] [-tags a,b] [-color c] [-password p]", run: cmdNew},
	"edit":    {usage: "-id <id> [-title t] [-content c] [-tags a,b] [-color c] [-fav]", run: cmdEdit},
	"show":    {usage: "-id <id> [-password p]", run: cmdShow},
	"rm":      {usage: "-id <id>            (move to bin)", run: noteAction("rm")},
	"restore": {usage: "-id <id>          (take out of bin)", run: noteAction("restore")},
	"pin":     {usage: "-id <id>", run: noteAction("pin")},
	"dup":     {usage: "-id <id>", run: noteAction("dup")},
	"attach":  {usage: "-id <id> -kind sticker|drawing|audio -ref r", run: cmdAttach},
	"lock":    {usage: "-id <id> -password p", run: passwordAction("lock")},
	"unlock":  {usage: "-id <id> -password p", run: passwordAction("unlock")},
	"ai":      {usage: "-id <id> -task summarize|bullets|tidy|uppercase|lowercase", run: cmdAI},
	"purge":   {usage: "-kind note|item -target <id> [-yes | -token t]", run: cmdPurge},
}

func cmdNotes(ctx context.Context, e *env, cl *v1.Client, args []string) error {
	fs := newFlags("notes", e.errOut)
	q := fs.String("q", "", "search text")
	tag := fs.String("tag", "", "only notes with this tag")
	bin := fs.Bool("bin", false, "list the bin instead")
	order := fs.String("order", "", "date-desc, date-asc, title-asc or title-desc")
	if err := parse(fs, args); err != nil {
		return err
	}
	resp, err := cl.ListNotes(ctx, &v1.ListNotesRequest{Query: *q, Tag: *tag, Bin: *bin, Order: *order})
	if err != nil {
		return err
	}
	type row struct {
		ID      string   `json:"id"`
		Title   string   `json:"title"`
		Tags    []string `json:"tags,omitempty"`
		Pinned  bool     `json:"pinned,omitempty"`
		Locked  bool     `json:"locked,omitempty"`
		Updated int64    `json:"updatedAt"`
	}
	rows := make([]row, 0, len(resp.Notes))
	for _, n := range resp.Notes {
		rows = append(rows, row{ID: n.ID, Title: n.Title, Tags: n.Tags, Pinned: n.Pinned, Locked: n.Locked, Updated: n.UpdatedAt})
	}
	return e.print(rows)
}

func cmdTags(ctx context.Context, e *env, cl *v1.Client, _ []string) error {
	resp, err := cl.Tags(ctx)
	if err != nil {
		return err
	}
	return e.print(resp.Counts)
}

func cmdNew(ctx context.Context, e *env, cl *v1.Client, args []string) error {
	fs := newFlags("new", e.errOut)
	title := fs.String("title", "", "title")
	content := fs.String("content", "", "body text")
	tags := fs.String("tags", "", "comma separated tags")
	color := fs.String("color", "", "note color")
	password := fs.String("password", "", "lock the note with this password")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := need(fs, "title"); err != nil {
		return err
	}

	created, err := cl.CreateNote(ctx)
	if err != nil {
		return err
	}
	n := created.Note
	n.Title, n.Content, n.Tags = *title, *content, splitList(*tags)
	if *color != "" {
		n.Color = *color
	}
	saved, err := cl.SaveNote(ctx, &v1.SaveNoteRequest{Note: n, Password: *password})
	if err != nil {
		return err
	}
	return e.printResult(saved, saved.Result)
}

func cmdEdit(ctx context.Context, e *env, cl *v1.Client, args []string) error {
	fs := newFlags("edit", e.errOut)
	id := fs.String("id", "", "note id")
	title := fs.String("title", "", "title")
	content := fs.String("content", "", "body text")
	tags := fs.String("tags", "", "comma separated tags")
	color := fs.String("color", "", "note color")
	fav := fs.Bool("fav", false, "favorite")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := need(fs, "id"); err != nil {
		return err
	}

	got, err := cl.GetNote(ctx, &v1.NoteRequest{ID: *id})
	if err != nil {
		return err
	}
	n := got.Note
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			n.Title = *title
		case "content":
			n.Content = *content
		case "tags":
			n.Tags = splitList(*tags)
		case "color":
			n.Color = *color
		case "fav":
			n.IsFavorite = *fav
		}
	})
	saved, err := cl.SaveNote(ctx, &v1.SaveNoteRequest{Note: n})
	if err != nil {
		return err
	}
	return e.printResult(saved, saved.Result)
}

func cmdShow(ctx context.Context, e *env, cl *v1.Client, args []string) error {
	fs := newFlags("show", e.errOut)
	id := fs.String("id", "", "note id")
	password := fs.String("password", "", "reveal a locked note")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := need(fs, "id"); err != nil {
		return err
	}
	var (
		resp *v1.NoteResponse
		err  error
	)
	if *password != "" {
		resp, err = cl.RevealNote(ctx, &v1.PasswordRequest{ID: *id, Password: *password})
	} else {
		resp, err = cl.GetNote(ctx, &v1.NoteRequest{ID: *id})
	}
	if err != nil {
		return err
	}
	return e.print(resp.Note)
}

func noteAction(name string) func(context.Context, *env, *v1.Client, []string) error {
	return func(ctx context.Context, e *env, cl *v1.Client, args []string) error {
		fs := newFlags(name, e.errOut)
		id := fs.String("id", "", "note id")
		if err := parse(fs, args); err != nil {
			return err
		}
		if err := need(fs, "id"); err != nil {
			return err
		}
		req := &v1.NoteRequest{ID: *id}
		switch name {
		case "rm":
			resp, err := cl.DeleteNote(ctx, req)
			if err != nil {
				return err
			}
			return e.printResult(resp, resp.Result)
		case "restore":
			resp, err := cl.RestoreNote(ctx, req)
			if err != nil {
				return err
			}
			return e.printResult(resp, resp.Result)
		case "pin":
			resp, err := cl.TogglePin(ctx, req)
			if err != nil {
				return err
			}
			return e.printResult(resp, resp.Result)
		case "dup":
			resp, err := cl.DuplicateNote(ctx, req)
			if err != nil {
				return err
			}
			return e.printResult(resp, resp.Result)
		}
		return fmt.Errorf("unknown note action %q: %w", name, errUsage)
	}
}

func cmdAttach(ctx context.Context, e *env, cl *v1.Client, args []string) error {
	fs := newFlags("attach", e.errOut)
	id := fs.String("id", "", "note id")
	kind := fs.String("kind", "", "sticker, drawing or audio")
	ref := fs.String("ref", "", "attachment reference")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := need(fs, "id", "kind", "ref"); err != nil {
		return err
	}
	resp, err := cl.Attach(ctx, &v1.AttachRequest{ID: *id, Kind: *kind, Ref: *ref})
	if err != nil {
		return err
	}
	return e.printResult(resp, resp.Result)
}

func passwordAction(name string) func(context.Context, *env, *v1.Client, []string) error {
	return func(ctx context.Context, e *env, cl *v1.Client, args []string) error {
		fs := newFlags(name, e.errOut)
		id := fs.String("id", "", "note id")
		password := fs.String("password", "", "note password")
		if err := parse(fs, args); err != nil {
			return err
		}
		if err := need(fs, "id", "password"); err != nil {
			return err
		}
		req := &v1.PasswordRequest{ID: *id, Password: *password}
		if name == "lock" {
			resp, err := cl.LockNote(ctx, req)
			if err != nil {
				return err
			}
			return e.printResult(resp, resp.Result)
		}
		resp, err := cl.UnlockNote(ctx, req)
		if err != nil {
			return err
		}
		return e.printResult(resp.Note, resp.Result)
	}
}

func cmdAI(ctx context.Context, e *env, cl *v1.Client, args []string) error {
	fs := newFlags("ai", e.errOut)
	id := fs.String("id", "", "note id")
	task := fs.String("task", "", "summarize, bullets, tidy, uppercase or lowercase")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := need(fs, "id", "task"); err != nil {
		return err
	}
	resp, err := cl.ProcessNote(ctx, &v1.ProcessNoteRequest{ID: *id, Task: *task})
	if err != nil {
		return err
	}
	return e.printResult(resp.Note, resp.Result)
}

// cmdPurge asks for a confirmation token and, with -yes, spends it right away.
func cmdPurge(ctx context.Context, e *env, cl *v1.Client, args []string) error {
	fs := newFlags("purge", e.errOut)
	kind := fs.String("kind", "", "note or item")
	target := fs.String("target", "", "note or item id")
	yes := fs.Bool("yes", false, "confirm without a second invocation")
	token := fs.String("token", "", "confirmation token from a previous call")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := need(fs, "kind", "target"); err != nil {
		return err
	}

	tok := *token
	if tok == "" {
		req, err := cl.RequestPurge(ctx, &v1.RequestPurgeRequest{Kind: *kind, Target: *target})
		if err != nil {
			return err
		}
		if !*yes {
			fmt.Fprintf(e.errOut, "this deletes %s %s forever; rerun with -token %s or -yes\n", *kind, *target, req.Token)
			return e.print(req)
		}
		tok = req.Token
	}
	resp, err := cl.Purge(ctx, &v1.PurgeRequest{Kind: *kind, Target: *target, Token: tok})
	if err != nil {
		return err
	}
	return e.printResult(resp, resp.Result)
}
