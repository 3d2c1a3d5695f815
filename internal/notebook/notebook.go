// Package notebook implements the note collection transitions.
//
// Every function is pure: it takes the current collection and returns a new one,
// never mutating the input slice or the notes it holds. Operations on an unknown
// id report found=false and return the collection unchanged.
package notebook

import (
	"sort"
	"strings"
	"time"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/model"
)

// CopySuffix is appended to the title of a duplicated note.
const CopySuffix = " (Copy)"

// Order is a sort order for note listings.
type Order string

// Orders.
const (
	DateDesc  Order = "date-desc"
	DateAsc   Order = "date-asc"
	TitleAsc  Order = "title-asc"
	TitleDesc Order = "title-desc"
)

// ParseOrder maps a string to an Order, falling back to DateDesc.
func ParseOrder(s string) Order {
	switch o := Order(s); o {
	case DateDesc, DateAsc, TitleAsc, TitleDesc:
		return o
	default:
		return DateDesc
	}
}

// AttachmentKind selects an attachment list of a note.
type AttachmentKind string

// Attachment kinds.
const (
	Sticker AttachmentKind = "sticker"
	Drawing AttachmentKind = "drawing"
	Audio   AttachmentKind = "audio"
)

// New allocates an empty note. It is not part of any collection until saved.
func New(id string, now time.Time) model.Note {
	ts := model.Millis(now)
	return model.Note{
		ID:        id,
		Tags:      []string{},
		CreatedAt: ts,
		UpdatedAt: ts,
		Color:     model.DefaultNoteColor,
		Stickers:  []string{},
		Drawings:  []string{},
		Audio:     []string{},
	}
}

// Index returns the position of id in notes or -1.
func Index(notes []model.Note, id string) int {
	for i := range notes {
		if notes[i].ID == id {
			return i
		}
	}
	return -1
}

// Find returns a copy of the note with the given id.
func Find(notes []model.Note, id string) (model.Note, bool) {
	i := Index(notes, id)
	if i < 0 {
		return model.Note{}, false
	}
	return notes[i].Clone(), true
}

// Save replaces the note with the same id or prepends it, stamping UpdatedAt.
// It reports whether the note was newly inserted.
func Save(notes []model.Note, n model.Note, now time.Time) ([]model.Note, bool) {
	n = n.Clone()
	n.UpdatedAt = model.Millis(now)
	n.Tags = NormalizeTags(n.Tags)
	if n.Color == "" {
		n.Color = model.DefaultNoteColor
	}
	if i := Index(notes, n.ID); i >= 0 {
		out := clone(notes)
		out[i] = n
		return out, false
	}
	out := make([]model.Note, 0, len(notes)+1)
	out = append(out, n)
	out = append(out, notes...)
	return out, true
}

// SoftDelete moves a note to the bin.
func SoftDelete(notes []model.Note, id string) ([]model.Note, bool) {
	return setDeleted(notes, id, true)
}

// Restore moves a note out of the bin. UpdatedAt is left untouched.
func Restore(notes []model.Note, id string) ([]model.Note, bool) {
	return setDeleted(notes, id, false)
}

func setDeleted(notes []model.Note, id string, deleted bool) ([]model.Note, bool) {
	i := Index(notes, id)
	if i < 0 {
		return notes, false
	}
	out := clone(notes)
	out[i].Deleted = deleted
	return out, true
}

// Purge removes a note from the collection irreversibly.
func Purge(notes []model.Note, id string) ([]model.Note, bool) {
	i := Index(notes, id)
	if i < 0 {
		return notes, false
	}
	out := make([]model.Note, 0, len(notes)-1)
	out = append(out, notes[:i]...)
	out = append(out, notes[i+1:]...)
	return out, true
}

// TogglePin flips the pinned flag and reports the resulting value.
func TogglePin(notes []model.Note, id string) (out []model.Note, pinned, found bool) {
	i := Index(notes, id)
	if i < 0 {
		return notes, false, false
	}
	out = clone(notes)
	out[i].Pinned = !out[i].Pinned
	return out, out[i].Pinned, true
}

// Duplicate deep-copies src under newID with fresh timestamps and inserts it at the front.
func Duplicate(notes []model.Note, src model.Note, newID string, now time.Time) ([]model.Note, model.Note) {
	dup := src.Clone()
	dup.ID = newID
	dup.Title = src.Title + CopySuffix
	dup.CreatedAt = model.Millis(now)
	dup.UpdatedAt = dup.CreatedAt
	dup.Deleted = false

	out := make([]model.Note, 0, len(notes)+1)
	out = append(out, dup)
	out = append(out, notes...)
	return out, dup.Clone()
}

// Attach appends ref to the attachment list of the given kind.
func Attach(notes []model.Note, id string, kind AttachmentKind, ref string) ([]model.Note, bool) {
	i := Index(notes, id)
	if i < 0 {
		return notes, false
	}
	out := clone(notes)
	n := out[i].Clone()
	switch kind {
	case Sticker:
		n.Stickers = append(n.Stickers, ref)
	case Drawing:
		n.Drawings = append(n.Drawings, ref)
	case Audio:
		n.Audio = append(n.Audio, ref)
	default:
		return notes, false
	}
	out[i] = n
	return out, true
}

// Filter returns notes whose deleted flag equals includeDeleted and whose title
// or content contains query, case-insensitively. An empty query matches all.
// Locked notes never match a non-empty query so their hidden text cannot be found by searching.
func Filter(notes []model.Note, query string, includeDeleted bool) []model.Note {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]model.Note, 0, len(notes))
	for _, n := range notes {
		if n.Deleted != includeDeleted {
			continue
		}
		if q != "" {
			if n.Locked {
				continue
			}
			if !strings.Contains(strings.ToLower(n.Title), q) && !strings.Contains(strings.ToLower(n.Content), q) {
				continue
			}
		}
		out = append(out, n.Clone())
	}
	return out
}

// FilterByTag keeps notes carrying tag (case-insensitive).
func FilterByTag(notes []model.Note, tag string) []model.Note {
	t := strings.ToLower(strings.TrimSpace(tag))
	if t == "" {
		return notes
	}
	out := make([]model.Note, 0, len(notes))
	for _, n := range notes {
		for _, nt := range n.Tags {
			if strings.ToLower(nt) == t {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// TagCounts counts tag usage across active notes.
func TagCounts(notes []model.Note) map[string]int {
	counts := map[string]int{}
	for _, n := range notes {
		if n.Deleted {
			continue
		}
		for _, t := range n.Tags {
			counts[t]++
		}
	}
	return counts
}

// Sort returns a stably sorted copy: pinned notes first, then by order.
func Sort(notes []model.Note, order Order) []model.Note {
	out := clone(notes)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Pinned != b.Pinned {
			return a.Pinned
		}
		switch order {
		case DateAsc:
			return a.UpdatedAt < b.UpdatedAt
		case TitleAsc:
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		case TitleDesc:
			return strings.ToLower(a.Title) > strings.ToLower(b.Title)
		default:
			return a.UpdatedAt > b.UpdatedAt
		}
	})
	return out
}

// Redact hides title, content and attachments of a locked note.
func Redact(n model.Note) model.Note {
	if !n.Locked {
		return n
	}
	n.Title = ""
	n.Content = ""
	n.Stickers = []string{}
	n.Drawings = []string{}
	n.Audio = []string{}
	n.Lock = nil
	return n
}

// NormalizeTags trims, drops empty and de-duplicates tags keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func clone(notes []model.Note) []model.Note {
	out := make([]model.Note, len(notes))
	copy(out, notes)
	return out
}
