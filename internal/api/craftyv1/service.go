package craftyv1

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "crafty.v1.Crafty"

// CraftyServer is the server API of crafty.v1.
type CraftyServer interface {
	OpenSession(context.Context, *OpenSessionRequest) (*OpenSessionResponse, error)

	CreateNote(context.Context, *Empty) (*NoteResponse, error)
	SaveNote(context.Context, *SaveNoteRequest) (*NoteResponse, error)
	GetNote(context.Context, *NoteRequest) (*NoteResponse, error)
	ListNotes(context.Context, *ListNotesRequest) (*ListNotesResponse, error)
	Tags(context.Context, *Empty) (*TagsResponse, error)
	DeleteNote(context.Context, *NoteRequest) (*EffectsResponse, error)
	RestoreNote(context.Context, *NoteRequest) (*EffectsResponse, error)
	TogglePin(context.Context, *NoteRequest) (*TogglePinResponse, error)
	DuplicateNote(context.Context, *NoteRequest) (*NoteResponse, error)
	Attach(context.Context, *AttachRequest) (*EffectsResponse, error)
	LockNote(context.Context, *PasswordRequest) (*EffectsResponse, error)
	UnlockNote(context.Context, *PasswordRequest) (*NoteResponse, error)
	RevealNote(context.Context, *PasswordRequest) (*NoteResponse, error)
	ProcessNote(context.Context, *ProcessNoteRequest) (*NoteResponse, error)
	RequestPurge(context.Context, *RequestPurgeRequest) (*RequestPurgeResponse, error)
	Purge(context.Context, *PurgeRequest) (*EffectsResponse, error)

	GetProfile(context.Context, *Empty) (*ProfileResponse, error)
	Achievements(context.Context, *Empty) (*AchievementsResponse, error)
	AwardExp(context.Context, *AwardExpRequest) (*ProfileResponse, error)
	UnlockAchievement(context.Context, *UnlockAchievementRequest) (*ProfileResponse, error)
	Spend(context.Context, *SpendRequest) (*ProfileResponse, error)
	AdjustCoins(context.Context, *AdjustCoinsRequest) (*ProfileResponse, error)
	GetSettings(context.Context, *Empty) (*SettingsResponse, error)
	UpdateSettings(context.Context, *UpdateSettingsRequest) (*SettingsResponse, error)
	GetSticky(context.Context, *Empty) (*StickyResponse, error)
	SetSticky(context.Context, *SetStickyRequest) (*StickyResponse, error)

	Market(context.Context, *Empty) (*MarketResponse, error)
	Installed(context.Context, *Empty) (*InstalledResponse, error)
	Install(context.Context, *ItemRequest) (*ProfileResponse, error)
	Uninstall(context.Context, *ItemRequest) (*SettingsResponse, error)
	RestoreItem(context.Context, *ItemRequest) (*EffectsResponse, error)
}

// FullMethod returns the gRPC path of method.
func FullMethod(method string) string { return "/" + ServiceName + "/" + method }

func unary[Req, Resp any](name string, call func(CraftyServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CraftyServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(CraftyServer), ctx, req.(*Req))
			})
		},
	}
}

// ServiceDesc describes crafty.v1.Crafty for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CraftyServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("OpenSession", CraftyServer.OpenSession),
		unary("CreateNote", CraftyServer.CreateNote),
		unary("SaveNote", CraftyServer.SaveNote),
		unary("GetNote", CraftyServer.GetNote),
		unary("ListNotes", CraftyServer.ListNotes),
		unary("Tags", CraftyServer.Tags),
		unary("DeleteNote", CraftyServer.DeleteNote),
		unary("RestoreNote", CraftyServer.RestoreNote),
		unary("TogglePin", CraftyServer.TogglePin),
		unary("DuplicateNote", CraftyServer.DuplicateNote),
		unary("Attach", CraftyServer.Attach),
		unary("LockNote", CraftyServer.LockNote),
		unary("UnlockNote", CraftyServer.UnlockNote),
		unary("RevealNote", CraftyServer.RevealNote),
		unary("ProcessNote", CraftyServer.ProcessNote),
		unary("RequestPurge", CraftyServer.RequestPurge),
		unary("Purge", CraftyServer.Purge),
		unary("GetProfile", CraftyServer.GetProfile),
		unary("Achievements", CraftyServer.Achievements),
		unary("AwardExp", CraftyServer.AwardExp),
		unary("UnlockAchievement", CraftyServer.UnlockAchievement),
		unary("Spend", CraftyServer.Spend),
		unary("AdjustCoins", CraftyServer.AdjustCoins),
		unary("GetSettings", CraftyServer.GetSettings),
		unary("UpdateSettings", CraftyServer.UpdateSettings),
		unary("GetSticky", CraftyServer.GetSticky),
		unary("SetSticky", CraftyServer.SetSticky),
		unary("Market", CraftyServer.Market),
		unary("Installed", CraftyServer.Installed),
		unary("Install", CraftyServer.Install),
		unary("Uninstall", CraftyServer.Uninstall),
		unary("RestoreItem", CraftyServer.RestoreItem),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "crafty/v1/crafty.json",
}

// RegisterCraftyServer registers srv on s.
func RegisterCraftyServer(s grpc.ServiceRegistrar, srv CraftyServer) {
	s.RegisterService(&ServiceDesc, srv)
}
