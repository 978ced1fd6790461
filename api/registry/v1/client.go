package registryv1

import (
	"context"

	"google.golang.org/grpc"
)

// TokenRegistryClient is the client API for the TokenRegistry service.
type TokenRegistryClient struct {
	cc grpc.ClientConnInterface
}

// NewTokenRegistryClient wraps cc.
func NewTokenRegistryClient(cc grpc.ClientConnInterface) *TokenRegistryClient {
	return &TokenRegistryClient{cc: cc}
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, method, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TokenRegistryClient) Mint(ctx context.Context, in *MintRequest, opts ...grpc.CallOption) (*MintResponse, error) {
	return invoke[MintResponse](ctx, c.cc, TokenRegistry_Mint_FullMethodName, in, opts)
}

func (c *TokenRegistryClient) UpdateRoyalty(ctx context.Context, in *UpdateRoyaltyRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, TokenRegistry_UpdateRoyalty_FullMethodName, in, opts)
}

func (c *TokenRegistryClient) Transfer(ctx context.Context, in *TransferRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, TokenRegistry_Transfer_FullMethodName, in, opts)
}

func (c *TokenRegistryClient) SetMetadata(ctx context.Context, in *SetMetadataRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, TokenRegistry_SetMetadata_FullMethodName, in, opts)
}

func (c *TokenRegistryClient) Approve(ctx context.Context, in *ApproveRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, TokenRegistry_Approve_FullMethodName, in, opts)
}

func (c *TokenRegistryClient) SetApprovalForAll(ctx context.Context, in *SetApprovalForAllRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, TokenRegistry_SetApprovalForAll_FullMethodName, in, opts)
}

func (c *TokenRegistryClient) TransferAuthority(ctx context.Context, in *TransferAuthorityRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, TokenRegistry_TransferAuthority_FullMethodName, in, opts)
}

func (c *TokenRegistryClient) GetToken(ctx context.Context, in *TokenRequest, opts ...grpc.CallOption) (*GetTokenResponse, error) {
	return invoke[GetTokenResponse](ctx, c.cc, TokenRegistry_GetToken_FullMethodName, in, opts)
}

func (c *TokenRegistryClient) GetMetadata(ctx context.Context, in *TokenRequest, opts ...grpc.CallOption) (*MetadataResponse, error) {
	return invoke[MetadataResponse](ctx, c.cc, TokenRegistry_GetMetadata_FullMethodName, in, opts)
}

func (c *TokenRegistryClient) GetCreator(ctx context.Context, in *TokenRequest, opts ...grpc.CallOption) (*AddressResponse, error) {
	return invoke[AddressResponse](ctx, c.cc, TokenRegistry_GetCreator_FullMethodName, in, opts)
}

func (c *TokenRegistryClient) GetRoyalty(ctx context.Context, in *TokenRequest, opts ...grpc.CallOption) (*RoyaltyResponse, error) {
	return invoke[RoyaltyResponse](ctx, c.cc, TokenRegistry_GetRoyalty_FullMethodName, in, opts)
}

func (c *TokenRegistryClient) OwnerOf(ctx context.Context, in *TokenRequest, opts ...grpc.CallOption) (*AddressResponse, error) {
	return invoke[AddressResponse](ctx, c.cc, TokenRegistry_OwnerOf_FullMethodName, in, opts)
}

func (c *TokenRegistryClient) BalanceOf(ctx context.Context, in *BalanceOfRequest, opts ...grpc.CallOption) (*BalanceOfResponse, error) {
	return invoke[BalanceOfResponse](ctx, c.cc, TokenRegistry_BalanceOf_FullMethodName, in, opts)
}

func (c *TokenRegistryClient) GetApproved(ctx context.Context, in *TokenRequest, opts ...grpc.CallOption) (*AddressResponse, error) {
	return invoke[AddressResponse](ctx, c.cc, TokenRegistry_GetApproved_FullMethodName, in, opts)
}

func (c *TokenRegistryClient) IsApprovedForAll(ctx context.Context, in *IsApprovedForAllRequest, opts ...grpc.CallOption) (*IsApprovedForAllResponse, error) {
	return invoke[IsApprovedForAllResponse](ctx, c.cc, TokenRegistry_IsApprovedForAll_FullMethodName, in, opts)
}

func (c *TokenRegistryClient) GetInfo(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*GetInfoResponse, error) {
	return invoke[GetInfoResponse](ctx, c.cc, TokenRegistry_GetInfo_FullMethodName, in, opts)
}

func (c *TokenRegistryClient) ListEvents(ctx context.Context, in *ListEventsRequest, opts ...grpc.CallOption) (*ListEventsResponse, error) {
	return invoke[ListEventsResponse](ctx, c.cc, TokenRegistry_ListEvents_FullMethodName, in, opts)
}

func (c *TokenRegistryClient) VerifyEvents(ctx context.Context, in *VerifyEventsRequest, opts ...grpc.CallOption) (*VerifyEventsResponse, error) {
	return invoke[VerifyEventsResponse](ctx, c.cc, TokenRegistry_VerifyEvents_FullMethodName, in, opts)
}

// TokenRegistry_WatchEventsClient receives streamed events.
type TokenRegistry_WatchEventsClient interface {
	Recv() (*Event, error)
	grpc.ClientStream
}

// WatchEvents opens a stream of committed events after in.AfterSeq.
func (c *TokenRegistryClient) WatchEvents(ctx context.Context, in *WatchEventsRequest, opts ...grpc.CallOption) (TokenRegistry_WatchEventsClient, error) {
	stream, err := c.cc.NewStream(ctx, &TokenRegistry_ServiceDesc.Streams[0], TokenRegistry_WatchEvents_FullMethodName, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &watchEventsClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type watchEventsClient struct {
	grpc.ClientStream
}

func (x *watchEventsClient) Recv() (*Event, error) {
	m := new(Event)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
