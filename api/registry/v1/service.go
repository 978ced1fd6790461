package registryv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "registry.v1.TokenRegistry"

const (
	TokenRegistry_Mint_FullMethodName              = "/" + ServiceName + "/Mint"
	TokenRegistry_UpdateRoyalty_FullMethodName     = "/" + ServiceName + "/UpdateRoyalty"
	TokenRegistry_Transfer_FullMethodName          = "/" + ServiceName + "/Transfer"
	TokenRegistry_SetMetadata_FullMethodName       = "/" + ServiceName + "/SetMetadata"
	TokenRegistry_Approve_FullMethodName           = "/" + ServiceName + "/Approve"
	TokenRegistry_SetApprovalForAll_FullMethodName = "/" + ServiceName + "/SetApprovalForAll"
	TokenRegistry_TransferAuthority_FullMethodName = "/" + ServiceName + "/TransferAuthority"
	TokenRegistry_GetToken_FullMethodName          = "/" + ServiceName + "/GetToken"
	TokenRegistry_GetMetadata_FullMethodName       = "/" + ServiceName + "/GetMetadata"
	TokenRegistry_GetCreator_FullMethodName        = "/" + ServiceName + "/GetCreator"
	TokenRegistry_GetRoyalty_FullMethodName        = "/" + ServiceName + "/GetRoyalty"
	TokenRegistry_OwnerOf_FullMethodName           = "/" + ServiceName + "/OwnerOf"
	TokenRegistry_BalanceOf_FullMethodName         = "/" + ServiceName + "/BalanceOf"
	TokenRegistry_GetApproved_FullMethodName       = "/" + ServiceName + "/GetApproved"
	TokenRegistry_IsApprovedForAll_FullMethodName  = "/" + ServiceName + "/IsApprovedForAll"
	TokenRegistry_GetInfo_FullMethodName           = "/" + ServiceName + "/GetInfo"
	TokenRegistry_ListEvents_FullMethodName        = "/" + ServiceName + "/ListEvents"
	TokenRegistry_VerifyEvents_FullMethodName      = "/" + ServiceName + "/VerifyEvents"
	TokenRegistry_WatchEvents_FullMethodName       = "/" + ServiceName + "/WatchEvents"
)

// ReadMethods returns the full names of methods that never mutate state.
func ReadMethods() map[string]bool {
	return map[string]bool{
		TokenRegistry_GetToken_FullMethodName:         true,
		TokenRegistry_GetMetadata_FullMethodName:      true,
		TokenRegistry_GetCreator_FullMethodName:       true,
		TokenRegistry_GetRoyalty_FullMethodName:       true,
		TokenRegistry_OwnerOf_FullMethodName:          true,
		TokenRegistry_BalanceOf_FullMethodName:        true,
		TokenRegistry_GetApproved_FullMethodName:      true,
		TokenRegistry_IsApprovedForAll_FullMethodName: true,
		TokenRegistry_GetInfo_FullMethodName:          true,
		TokenRegistry_ListEvents_FullMethodName:       true,
		TokenRegistry_VerifyEvents_FullMethodName:     true,
		TokenRegistry_WatchEvents_FullMethodName:      true,
	}
}

// TokenRegistryServer is the server API for the TokenRegistry service.
type TokenRegistryServer interface {
	Mint(context.Context, *MintRequest) (*MintResponse, error)
	UpdateRoyalty(context.Context, *UpdateRoyaltyRequest) (*Empty, error)
	Transfer(context.Context, *TransferRequest) (*Empty, error)
	SetMetadata(context.Context, *SetMetadataRequest) (*Empty, error)
	Approve(context.Context, *ApproveRequest) (*Empty, error)
	SetApprovalForAll(context.Context, *SetApprovalForAllRequest) (*Empty, error)
	TransferAuthority(context.Context, *TransferAuthorityRequest) (*Empty, error)
	GetToken(context.Context, *TokenRequest) (*GetTokenResponse, error)
	GetMetadata(context.Context, *TokenRequest) (*MetadataResponse, error)
	GetCreator(context.Context, *TokenRequest) (*AddressResponse, error)
	GetRoyalty(context.Context, *TokenRequest) (*RoyaltyResponse, error)
	OwnerOf(context.Context, *TokenRequest) (*AddressResponse, error)
	BalanceOf(context.Context, *BalanceOfRequest) (*BalanceOfResponse, error)
	GetApproved(context.Context, *TokenRequest) (*AddressResponse, error)
	IsApprovedForAll(context.Context, *IsApprovedForAllRequest) (*IsApprovedForAllResponse, error)
	GetInfo(context.Context, *Empty) (*GetInfoResponse, error)
	ListEvents(context.Context, *ListEventsRequest) (*ListEventsResponse, error)
	VerifyEvents(context.Context, *VerifyEventsRequest) (*VerifyEventsResponse, error)
	WatchEvents(*WatchEventsRequest, TokenRegistry_WatchEventsServer) error
}

// TokenRegistry_WatchEventsServer streams events to a watcher.
type TokenRegistry_WatchEventsServer interface {
	Send(*Event) error
	grpc.ServerStream
}

// UnimplementedTokenRegistryServer answers every method with Unimplemented.
type UnimplementedTokenRegistryServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedTokenRegistryServer) Mint(context.Context, *MintRequest) (*MintResponse, error) {
	return nil, unimplemented("Mint")
}
func (UnimplementedTokenRegistryServer) UpdateRoyalty(context.Context, *UpdateRoyaltyRequest) (*Empty, error) {
	return nil, unimplemented("UpdateRoyalty")
}
func (UnimplementedTokenRegistryServer) Transfer(context.Context, *TransferRequest) (*Empty, error) {
	return nil, unimplemented("Transfer")
}
func (UnimplementedTokenRegistryServer) SetMetadata(context.Context, *SetMetadataRequest) (*Empty, error) {
	return nil, unimplemented("SetMetadata")
}
func (UnimplementedTokenRegistryServer) Approve(context.Context, *ApproveRequest) (*Empty, error) {
	return nil, unimplemented("Approve")
}
func (UnimplementedTokenRegistryServer) SetApprovalForAll(context.Context, *SetApprovalForAllRequest) (*Empty, error) {
	return nil, unimplemented("SetApprovalForAll")
}
func (UnimplementedTokenRegistryServer) TransferAuthority(context.Context, *TransferAuthorityRequest) (*Empty, error) {
	return nil, unimplemented("TransferAuthority")
}
func (UnimplementedTokenRegistryServer) GetToken(context.Context, *TokenRequest) (*GetTokenResponse, error) {
	return nil, unimplemented("GetToken")
}
func (UnimplementedTokenRegistryServer) GetMetadata(context.Context, *TokenRequest) (*MetadataResponse, error) {
	return nil, unimplemented("GetMetadata")
}
func (UnimplementedTokenRegistryServer) GetCreator(context.Context, *TokenRequest) (*AddressResponse, error) {
	return nil, unimplemented("GetCreator")
}
func (UnimplementedTokenRegistryServer) GetRoyalty(context.Context, *TokenRequest) (*RoyaltyResponse, error) {
	return nil, unimplemented("GetRoyalty")
}
func (UnimplementedTokenRegistryServer) OwnerOf(context.Context, *TokenRequest) (*AddressResponse, error) {
	return nil, unimplemented("OwnerOf")
}
func (UnimplementedTokenRegistryServer) BalanceOf(context.Context, *BalanceOfRequest) (*BalanceOfResponse, error) {
	return nil, unimplemented("BalanceOf")
}
func (UnimplementedTokenRegistryServer) GetApproved(context.Context, *TokenRequest) (*AddressResponse, error) {
	return nil, unimplemented("GetApproved")
}
func (UnimplementedTokenRegistryServer) IsApprovedForAll(context.Context, *IsApprovedForAllRequest) (*IsApprovedForAllResponse, error) {
	return nil, unimplemented("IsApprovedForAll")
}
func (UnimplementedTokenRegistryServer) GetInfo(context.Context, *Empty) (*GetInfoResponse, error) {
	return nil, unimplemented("GetInfo")
}
func (UnimplementedTokenRegistryServer) ListEvents(context.Context, *ListEventsRequest) (*ListEventsResponse, error) {
	return nil, unimplemented("ListEvents")
}
func (UnimplementedTokenRegistryServer) VerifyEvents(context.Context, *VerifyEventsRequest) (*VerifyEventsResponse, error) {
	return nil, unimplemented("VerifyEvents")
}
func (UnimplementedTokenRegistryServer) WatchEvents(*WatchEventsRequest, TokenRegistry_WatchEventsServer) error {
	return unimplemented("WatchEvents")
}

// RegisterTokenRegistryServer registers srv on s.
func RegisterTokenRegistryServer(s grpc.ServiceRegistrar, srv TokenRegistryServer) {
	s.RegisterService(&TokenRegistry_ServiceDesc, srv)
}

// TokenRegistry_ServiceDesc describes the TokenRegistry service for grpc.Server.
var TokenRegistry_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TokenRegistryServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Mint", TokenRegistryServer.Mint),
		unary("UpdateRoyalty", TokenRegistryServer.UpdateRoyalty),
		unary("Transfer", TokenRegistryServer.Transfer),
		unary("SetMetadata", TokenRegistryServer.SetMetadata),
		unary("Approve", TokenRegistryServer.Approve),
		unary("SetApprovalForAll", TokenRegistryServer.SetApprovalForAll),
		unary("TransferAuthority", TokenRegistryServer.TransferAuthority),
		unary("GetToken", TokenRegistryServer.GetToken),
		unary("GetMetadata", TokenRegistryServer.GetMetadata),
		unary("GetCreator", TokenRegistryServer.GetCreator),
		unary("GetRoyalty", TokenRegistryServer.GetRoyalty),
		unary("OwnerOf", TokenRegistryServer.OwnerOf),
		unary("BalanceOf", TokenRegistryServer.BalanceOf),
		unary("GetApproved", TokenRegistryServer.GetApproved),
		unary("IsApprovedForAll", TokenRegistryServer.IsApprovedForAll),
		unary("GetInfo", TokenRegistryServer.GetInfo),
		unary("ListEvents", TokenRegistryServer.ListEvents),
		unary("VerifyEvents", TokenRegistryServer.VerifyEvents),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchEvents",
			Handler:       watchEventsHandler,
			ServerStreams: true,
		},
	},
	Metadata: "registry/v1",
}

func unary[Req, Resp any](name string, call func(TokenRegistryServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(TokenRegistryServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(TokenRegistryServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func watchEventsHandler(srv any, stream grpc.ServerStream) error {
	in := new(WatchEventsRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(TokenRegistryServer).WatchEvents(in, &watchEventsServer{stream})
}

type watchEventsServer struct {
	grpc.ServerStream
}

func (x *watchEventsServer) Send(m *Event) error {
	return x.ServerStream.SendMsg(m)
}
