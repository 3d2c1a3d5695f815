package craftyv1

import (
	"context"

	"google.golang.org/grpc"
)

// Client calls crafty.v1 over a client connection. Every call is sent with the
// JSON content-subtype.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc.
func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

func invoke[Resp any](ctx context.Context, c *Client, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) OpenSession(ctx context.Context, in *OpenSessionRequest, opts ...grpc.CallOption) (*OpenSessionResponse, error) {
	return invoke[OpenSessionResponse](ctx, c, "OpenSession", in, opts)
}

func (c *Client) CreateNote(ctx context.Context, opts ...grpc.CallOption) (*NoteResponse, error) {
	return invoke[NoteResponse](ctx, c, "CreateNote", &Empty{}, opts)
}

func (c *Client) SaveNote(ctx context.Context, in *SaveNoteRequest, opts ...grpc.CallOption) (*NoteResponse, error) {
	return invoke[NoteResponse](ctx, c, "SaveNote", in, opts)
}

func (c *Client) GetNote(ctx context.Context, in *NoteRequest, opts ...grpc.CallOption) (*NoteResponse, error) {
	return invoke[NoteResponse](ctx, c, "GetNote", in, opts)
}

func (c *Client) ListNotes(ctx context.Context, in *ListNotesRequest, opts ...grpc.CallOption) (*ListNotesResponse, error) {
	return invoke[ListNotesResponse](ctx, c, "ListNotes", in, opts)
}

func (c *Client) Tags(ctx context.Context, opts ...grpc.CallOption) (*TagsResponse, error) {
	return invoke[TagsResponse](ctx, c, "Tags", &Empty{}, opts)
}

func (c *Client) DeleteNote(ctx context.Context, in *NoteRequest, opts ...grpc.CallOption) (*EffectsResponse, error) {
	return invoke[EffectsResponse](ctx, c, "DeleteNote", in, opts)
}

func (c *Client) RestoreNote(ctx context.Context, in *NoteRequest, opts ...grpc.CallOption) (*EffectsResponse, error) {
	return invoke[EffectsResponse](ctx, c, "RestoreNote", in, opts)
}

func (c *Client) TogglePin(ctx context.Context, in *NoteRequest, opts ...grpc.CallOption) (*TogglePinResponse, error) {
	return invoke[TogglePinResponse](ctx, c, "TogglePin", in, opts)
}

func (c *Client) DuplicateNote(ctx context.Context, in *NoteRequest, opts ...grpc.CallOption) (*NoteResponse, error) {
	return invoke[NoteResponse](ctx, c, "DuplicateNote", in, opts)
}

func (c *Client) Attach(ctx context.Context, in *AttachRequest, opts ...grpc.CallOption) (*EffectsResponse, error) {
	return invoke[EffectsResponse](ctx, c, "Attach", in, opts)
}

func (c *Client) LockNote(ctx context.Context, in *PasswordRequest, opts ...grpc.CallOption) (*EffectsResponse, error) {
	return invoke[EffectsResponse](ctx, c, "LockNote", in, opts)
}

func (c *Client) UnlockNote(ctx context.Context, in *PasswordRequest, opts ...grpc.CallOption) (*NoteResponse, error) {
	return invoke[NoteResponse](ctx, c, "UnlockNote", in, opts)
}

func (c *Client) RevealNote(ctx context.Context, in *PasswordRequest, opts ...grpc.CallOption) (*NoteResponse, error) {
	return invoke[NoteResponse](ctx, c, "RevealNote", in, opts)
}

func (c *Client) ProcessNote(ctx context.Context, in *ProcessNoteRequest, opts ...grpc.CallOption) (*NoteResponse, error) {
	return invoke[NoteResponse](ctx, c, "ProcessNote", in, opts)
}

func (c *Client) RequestPurge(ctx context.Context, in *RequestPurgeRequest, opts ...grpc.CallOption) (*RequestPurgeResponse, error) {
	return invoke[RequestPurgeResponse](ctx, c, "RequestPurge", in, opts)
}

func (c *Client) Purge(ctx context.Context, in *PurgeRequest, opts ...grpc.CallOption) (*EffectsResponse, error) {
	return invoke[EffectsResponse](ctx, c, "Purge", in, opts)
}

func (c *Client) GetProfile(ctx context.Context, opts ...grpc.CallOption) (*ProfileResponse, error) {
	return invoke[ProfileResponse](ctx, c, "GetProfile", &Empty{}, opts)
}

func (c *Client) Achievements(ctx context.Context, opts ...grpc.CallOption) (*AchievementsResponse, error) {
	return invoke[AchievementsResponse](ctx, c, "Achievements", &Empty{}, opts)
}

func (c *Client) AwardExp(ctx context.Context, in *AwardExpRequest, opts ...grpc.CallOption) (*ProfileResponse, error) {
	return invoke[ProfileResponse](ctx, c, "AwardExp", in, opts)
}

func (c *Client) UnlockAchievement(ctx context.Context, in *UnlockAchievementRequest, opts ...grpc.CallOption) (*ProfileResponse, error) {
	return invoke[ProfileResponse](ctx, c, "UnlockAchievement", in, opts)
}

func (c *Client) Spend(ctx context.Context, in *SpendRequest, opts ...grpc.CallOption) (*ProfileResponse, error) {
	return invoke[ProfileResponse](ctx, c, "Spend", in, opts)
}

func (c *Client) AdjustCoins(ctx context.Context, in *AdjustCoinsRequest, opts ...grpc.CallOption) (*ProfileResponse, error) {
	return invoke[ProfileResponse](ctx, c, "AdjustCoins", in, opts)
}

func (c *Client) GetSettings(ctx context.Context, opts ...grpc.CallOption) (*SettingsResponse, error) {
	return invoke[SettingsResponse](ctx, c, "GetSettings", &Empty{}, opts)
}

func (c *Client) UpdateSettings(ctx context.Context, in *UpdateSettingsRequest, opts ...grpc.CallOption) (*SettingsResponse, error) {
	return invoke[SettingsResponse](ctx, c, "UpdateSettings", in, opts)
}

func (c *Client) GetSticky(ctx context.Context, opts ...grpc.CallOption) (*StickyResponse, error) {
	return invoke[StickyResponse](ctx, c, "GetSticky", &Empty{}, opts)
}

func (c *Client) SetSticky(ctx context.Context, in *SetStickyRequest, opts ...grpc.CallOption) (*StickyResponse, error) {
	return invoke[StickyResponse](ctx, c, "SetSticky", in, opts)
}

func (c *Client) Market(ctx context.Context, opts ...grpc.CallOption) (*MarketResponse, error) {
	return invoke[MarketResponse](ctx, c, "Market", &Empty{}, opts)
}

func (c *Client) Installed(ctx context.Context, opts ...grpc.CallOption) (*InstalledResponse, error) {
	return invoke[InstalledResponse](ctx, c, "Installed", &Empty{}, opts)
}

func (c *Client) Install(ctx context.Context, in *ItemRequest, opts ...grpc.CallOption) (*ProfileResponse, error) {
	return invoke[ProfileResponse](ctx, c, "Install", in, opts)
}

func (c *Client) Uninstall(ctx context.Context, in *ItemRequest, opts ...grpc.CallOption) (*SettingsResponse, error) {
	return invoke[SettingsResponse](ctx, c, "Uninstall", in, opts)
}

func (c *Client) RestoreItem(ctx context.Context, in *ItemRequest, opts ...grpc.CallOption) (*EffectsResponse, error) {
	return invoke[EffectsResponse](ctx, c, "RestoreItem", in, opts)
}
