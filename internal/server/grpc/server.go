// Package grpcserver exposes the crafty.v1 gRPC API handlers.
package grpcserver

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	v1 "github.com/sachu255/CRAFTY-notes--sub000/internal/api/craftyv1"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/convert"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/errs"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/model"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/notebook"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/service"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/textproc"
)

// Server wires services into gRPC handlers.
type Server struct {
	sessions service.SessionService
	ws       service.WorkspaceService
}

var _ v1.CraftyServer = (*Server)(nil)

// New constructs a gRPC server with injected services.
func New(sessions service.SessionService, ws service.WorkspaceService) *Server {
	return &Server{sessions: sessions, ws: ws}
}

func profileID(ctx context.Context) (uuid.UUID, error) {
	id, ok := ProfileIDFromCtx(ctx)
	if !ok || id == uuid.Nil {
		return uuid.Nil, status.Error(codes.Unauthenticated, "no auth")
	}
	return id, nil
}

// result converts a mutation outcome. A persistence-only failure is reported
// through Unsaved because the change itself took effect.
func result(effects []model.Effect, err error) (v1.Result, error) {
	if err != nil && !errors.Is(err, errs.ErrPersistence) {
		return v1.Result{}, toStatus(err)
	}
	return v1.Result{Effects: convert.ToWireEffects(effects), Unsaved: err != nil}, nil
}

// --- session ---

// OpenSession is the only unauthenticated method.
func (s *Server) OpenSession(ctx context.Context, req *v1.OpenSessionRequest) (*v1.OpenSessionResponse, error) {
	sess, err := s.sessions.OpenSession(ctx, req.Name)
	res, err := result(sess.Effects, err)
	if err != nil {
		return nil, err
	}
	return &v1.OpenSessionResponse{
		Result:    res,
		ProfileID: sess.ProfileID.String(),
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt.UnixMilli(),
		Profile:   convert.ToWireProfile(sess.Profile),
	}, nil
}

// --- notes ---

func (s *Server) CreateNote(ctx context.Context, _ *v1.Empty) (*v1.NoteResponse, error) {
	pid, err := profileID(ctx)
	if err != nil {
		return nil, err
	}
	return &v1.NoteResponse{Note: convert.ToWireNote(s.ws.CreateNote(ctx, pid))}, nil
}

func (s *Server) SaveNote(ctx context.Context, req *v1.SaveNoteRequest) (*v1.NoteResponse, error) {
	pid, err := profileID(ctx)
	if err != nil {
		return nil, err
	}
	n, err := convert.FromWireNote(req.Note)
	if err != nil {
		return nil, toStatus(err)
	}
	saved, effects, err := s.ws.SaveNote(ctx, pid, n, req.Password)
	res, err := result(effects, err)
	if err != nil {
		return nil, err
	}
	return &v1.NoteResponse{Result: res, Note: convert.ToWireNote(saved)}, nil
}

func (s *Server) GetNote(ctx context.Context, req *v1.NoteRequest) (*v1.NoteResponse, error) {
	pid, err := profileID(ctx)
	if err != nil {
		return nil, err
	}
	n, err := s.ws.GetNote(ctx, pid, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &v1.NoteResponse{Note: convert.ToWireNote(n)}, nil
}

func (s *Server) ListNotes(ctx context.Context, req *v1.ListNotesRequest) (*v1.ListNotesResponse, error) {
	pid, err := profileID(ctx)
	if err != nil {
		return nil, err
	}
	notes, err := s.ws.ListNotes(ctx, pid, service.ListQuery{
		Query: req.Query,
		Bin:   req.Bin,
		Tag:   req.Tag,
		Order: notebook.ParseOrder(req.Order),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &v1.ListNotesResponse{Notes: convert.ToWireNotes(notes)}, nil
}

func (s *Server) Tags(ctx context.Context, _ *v1.Empty) (*v1.TagsResponse, error) {
	pid, err := profileID(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.ws.Tags(ctx, pid)
	if err != nil {
		return nil, toStatus(err)
	}
	out := make(map[string]int32, len(counts))
	for k, v := range counts {
		out[k] = int32(v)
	}
	return &v1.TagsResponse{Counts: out}, nil
}

func (s *Server) DeleteNote(ctx context.Context, req *v1.NoteRequest) (*v1.EffectsResponse, error) {
	return s.effects(ctx, func(pid uuid.UUID) ([]model.Effect, error) { return s.ws.DeleteNote(ctx, pid, req.ID) })
}

func (s *Server) RestoreNote(ctx context.Context, req *v1.NoteRequest) (*v1.EffectsResponse, error) {
	return s.effects(ctx, func(pid uuid.UUID) ([]model.Effect, error) { return s.ws.RestoreNote(ctx, pid, req.ID) })
}

func (s *Server) effects(ctx context.Context, fn func(uuid.UUID) ([]model.Effect, error)) (*v1.EffectsResponse, error) {
	pid, err := profileID(ctx)
	if err != nil {
		return nil, err
	}
	res, err := result(fn(pid))
	if err != nil {
		return nil, err
	}
	return &v1.EffectsResponse{Result: res}, nil
}

func (s *Server) TogglePin(ctx context.Context, req *v1.NoteRequest) (*v1.TogglePinResponse, error) {
	pid, err := profileID(ctx)
	if err != nil {
		return nil, err
	}
	pinned, effects, err := s.ws.TogglePin(ctx, pid, req.ID)
	res, err := result(effects, err)
	if err != nil {
		return nil, err
	}
	return &v1.TogglePinResponse{Result: res, Pinned: pinned}, nil
}

func (s *Server) DuplicateNote(ctx context.Context, req *v1.NoteRequest) (*v1.NoteResponse, error) {
	return s.note(ctx, func(pid uuid.UUID) (model.Note, []model.Effect, error) {
		return s.ws.DuplicateNote(ctx, pid, req.ID)
	})
}

func (s *Server) note(ctx context.Context, fn func(uuid.UUID) (model.Note, []model.Effect, error)) (*v1.NoteResponse, error) {
	pid, err := profileID(ctx)
	if err != nil {
		return nil, err
	}
	n, effects, err := fn(pid)
	res, err := result(effects, err)
	if err != nil {
		return nil, err
	}
	return &v1.NoteResponse{Result: res, Note: convert.ToWireNote(n)}, nil
}

func (s *Server) Attach(ctx context.Context, req *v1.AttachRequest) (*v1.EffectsResponse, error) {
	return s.effects(ctx, func(pid uuid.UUID) ([]model.Effect, error) {
		return nil, s.ws.Attach(ctx, pid, req.ID, notebook.AttachmentKind(req.Kind), req.Ref)
	})
}

func (s *Server) LockNote(ctx context.Context, req *v1.PasswordRequest) (*v1.EffectsResponse, error) {
	return s.effects(ctx, func(pid uuid.UUID) ([]model.Effect, error) {
		return s.ws.LockNote(ctx, pid, req.ID, req.Password)
	})
}

func (s *Server) UnlockNote(ctx context.Context, req *v1.PasswordRequest) (*v1.NoteResponse, error) {
	return s.note(ctx, func(pid uuid.UUID) (model.Note, []model.Effect, error) {
		n, err := s.ws.UnlockNote(ctx, pid, req.ID, req.Password)
		return n, nil, err
	})
}

func (s *Server) RevealNote(ctx context.Context, req *v1.PasswordRequest) (*v1.NoteResponse, error) {
	return s.note(ctx, func(pid uuid.UUID) (model.Note, []model.Effect, error) {
		n, err := s.ws.RevealNote(ctx, pid, req.ID, req.Password)
		return n, nil, err
	})
}

func (s *Server) ProcessNote(ctx context.Context, req *v1.ProcessNoteRequest) (*v1.NoteResponse, error) {
	task, err := textproc.ParseTask(req.Task)
	if err != nil {
		return nil, toStatus(err)
	}
	return s.note(ctx, func(pid uuid.UUID) (model.Note, []model.Effect, error) {
		return s.ws.ProcessNote(ctx, pid, req.ID, task)
	})
}

func (s *Server) RequestPurge(ctx context.Context, req *v1.RequestPurgeRequest) (*v1.RequestPurgeResponse, error) {
	pid, err := profileID(ctx)
	if err != nil {
		return nil, err
	}
	tok, exp, err := s.ws.RequestPurge(ctx, pid, req.Kind, req.Target)
	if err != nil {
		return nil, toStatus(err)
	}
	return &v1.RequestPurgeResponse{Token: tok, ExpiresAt: exp.UnixMilli()}, nil
}

func (s *Server) Purge(ctx context.Context, req *v1.PurgeRequest) (*v1.EffectsResponse, error) {
	return s.effects(ctx, func(pid uuid.UUID) ([]model.Effect, error) {
		return nil, s.ws.Purge(ctx, pid, req.Kind, req.Target, req.Token)
	})
}

// --- profile and economy ---

func (s *Server) GetProfile(ctx context.Context, _ *v1.Empty) (*v1.ProfileResponse, error) {
	return s.profile(ctx, func(pid uuid.UUID) (model.Profile, []model.Effect, error) {
		p, err := s.ws.Profile(ctx, pid)
		return p, nil, err
	})
}

func (s *Server) profile(ctx context.Context, fn func(uuid.UUID) (model.Profile, []model.Effect, error)) (*v1.ProfileResponse, error) {
	pid, err := profileID(ctx)
	if err != nil {
		return nil, err
	}
	p, effects, err := fn(pid)
	res, err := result(effects, err)
	if err != nil {
		return nil, err
	}
	return &v1.ProfileResponse{Result: res, Profile: convert.ToWireProfile(p)}, nil
}

func (s *Server) Achievements(ctx context.Context, _ *v1.Empty) (*v1.AchievementsResponse, error) {
	pid, err := profileID(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.ws.Achievements(ctx, pid)
	if err != nil {
		return nil, toStatus(err)
	}
	return &v1.AchievementsResponse{Achievements: convert.ToWireAchievements(list)}, nil
}

func (s *Server) AwardExp(ctx context.Context, req *v1.AwardExpRequest) (*v1.ProfileResponse, error) {
	return s.profile(ctx, func(pid uuid.UUID) (model.Profile, []model.Effect, error) {
		return s.ws.AwardExp(ctx, pid, req.Amount)
	})
}

func (s *Server) UnlockAchievement(ctx context.Context, req *v1.UnlockAchievementRequest) (*v1.ProfileResponse, error) {
	return s.profile(ctx, func(pid uuid.UUID) (model.Profile, []model.Effect, error) {
		return s.ws.UnlockAchievement(ctx, pid, req.ID)
	})
}

func (s *Server) Spend(ctx context.Context, req *v1.SpendRequest) (*v1.ProfileResponse, error) {
	return s.profile(ctx, func(pid uuid.UUID) (model.Profile, []model.Effect, error) {
		return s.ws.Spend(ctx, pid, req.Price, req.Reason)
	})
}

func (s *Server) AdjustCoins(ctx context.Context, req *v1.AdjustCoinsRequest) (*v1.ProfileResponse, error) {
	return s.profile(ctx, func(pid uuid.UUID) (model.Profile, []model.Effect, error) {
		return s.ws.AdjustCoins(ctx, pid, req.Delta, req.Reason)
	})
}

func (s *Server) GetSettings(ctx context.Context, _ *v1.Empty) (*v1.SettingsResponse, error) {
	return s.settings(ctx, func(pid uuid.UUID) (model.Settings, []model.Effect, error) {
		st, err := s.ws.Settings(ctx, pid)
		return st, nil, err
	})
}

func (s *Server) settings(ctx context.Context, fn func(uuid.UUID) (model.Settings, []model.Effect, error)) (*v1.SettingsResponse, error) {
	pid, err := profileID(ctx)
	if err != nil {
		return nil, err
	}
	st, effects, err := fn(pid)
	res, err := result(effects, err)
	if err != nil {
		return nil, err
	}
	return &v1.SettingsResponse{Result: res, Settings: convert.ToWireSettings(st)}, nil
}

func (s *Server) UpdateSettings(ctx context.Context, req *v1.UpdateSettingsRequest) (*v1.SettingsResponse, error) {
	return s.settings(ctx, func(pid uuid.UUID) (model.Settings, []model.Effect, error) {
		st, err := s.ws.UpdateSettings(ctx, pid, convert.FromWireSettings(req.Settings))
		return st, nil, err
	})
}

func (s *Server) GetSticky(ctx context.Context, _ *v1.Empty) (*v1.StickyResponse, error) {
	pid, err := profileID(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.ws.Sticky(ctx, pid)
	if err != nil {
		return nil, toStatus(err)
	}
	return &v1.StickyResponse{Sticky: convert.ToWireSticky(st)}, nil
}

func (s *Server) SetSticky(ctx context.Context, req *v1.SetStickyRequest) (*v1.StickyResponse, error) {
	pid, err := profileID(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.ws.SetSticky(ctx, pid, req.Text, model.NoteColor(req.Color))
	res, err := result(nil, err)
	if err != nil {
		return nil, err
	}
	return &v1.StickyResponse{Result: res, Sticky: convert.ToWireSticky(st)}, nil
}

// --- marketplace ---

func (s *Server) Market(ctx context.Context, _ *v1.Empty) (*v1.MarketResponse, error) {
	pid, err := profileID(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.ws.Market(ctx, pid)
	if err != nil {
		return nil, toStatus(err)
	}
	return &v1.MarketResponse{Items: convert.ToWireItems(items)}, nil
}

func (s *Server) Installed(ctx context.Context, _ *v1.Empty) (*v1.InstalledResponse, error) {
	pid, err := profileID(ctx)
	if err != nil {
		return nil, err
	}
	installed, bin, err := s.ws.Installed(ctx, pid)
	if err != nil {
		return nil, toStatus(err)
	}
	return &v1.InstalledResponse{Installed: convert.ToWireItems(installed), Bin: convert.ToWireItems(bin)}, nil
}

func (s *Server) Install(ctx context.Context, req *v1.ItemRequest) (*v1.ProfileResponse, error) {
	return s.profile(ctx, func(pid uuid.UUID) (model.Profile, []model.Effect, error) {
		return s.ws.Install(ctx, pid, req.ID)
	})
}

func (s *Server) Uninstall(ctx context.Context, req *v1.ItemRequest) (*v1.SettingsResponse, error) {
	return s.settings(ctx, func(pid uuid.UUID) (model.Settings, []model.Effect, error) {
		return s.ws.Uninstall(ctx, pid, req.ID)
	})
}

func (s *Server) RestoreItem(ctx context.Context, req *v1.ItemRequest) (*v1.EffectsResponse, error) {
	return s.effects(ctx, func(pid uuid.UUID) ([]model.Effect, error) {
		return nil, s.ws.RestoreItem(ctx, pid, req.ID)
	})
}
