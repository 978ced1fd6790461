package tokens

import (
	"context"
	"errors"

	registryv1 "github.com/Douglas360/smart-contracts/api/registry/v1"
	apperrors "github.com/Douglas360/smart-contracts/internal/platform/errors"
	"github.com/Douglas360/smart-contracts/internal/platform/grpc/pagination"
	"github.com/Douglas360/smart-contracts/internal/platform/requestctx"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/event"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/registry"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/token"
	"github.com/Douglas360/smart-contracts/internal/services/registry/feed"
	"github.com/Douglas360/smart-contracts/internal/services/registry/storage"
	"github.com/Douglas360/smart-contracts/internal/services/registry/storage/integrity"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	defaultListEventsPageSize = 50
	maxListEventsPageSize     = 200
	verifyBatchSize           = 500
)

// Service implements the registry.v1.TokenRegistry gRPC API.
type Service struct {
	registryv1.UnimplementedTokenRegistryServer
	registry *registry.Registry
	journal  storage.EventLog
	keyring  *integrity.Keyring
	hub      *feed.Hub
}

// NewService builds the gRPC service. keyring and hub may be nil: events are
// then verified without signatures and WatchEvents is unavailable.
func NewService(reg *registry.Registry, journal storage.EventLog, keyring *integrity.Keyring, hub *feed.Hub) *Service {
	return &Service{registry: reg, journal: journal, keyring: keyring, hub: hub}
}

func callerFrom(ctx context.Context) token.Address {
	return token.ParseAddress(requestctx.CallerFromContext(ctx))
}

func missingRequest(name string) error {
	return token.InvalidArgument("request", name+" request is required")
}

// Mint creates a token held by in.To and credited to it as creator.
func (s *Service) Mint(ctx context.Context, in *registryv1.MintRequest) (*registryv1.MintResponse, error) {
	if in == nil {
		return nil, missingRequest("mint")
	}
	id, err := s.registry.Mint(ctx, callerFrom(ctx), token.ParseAddress(in.To), in.MetadataURI, in.RoyaltyRate)
	if err != nil {
		return nil, err
	}
	return &registryv1.MintResponse{ID: uint64(id)}, nil
}

// UpdateRoyalty changes a token's royalty rate.
func (s *Service) UpdateRoyalty(ctx context.Context, in *registryv1.UpdateRoyaltyRequest) (*registryv1.Empty, error) {
	if in == nil {
		return nil, missingRequest("update royalty")
	}
	if err := s.registry.UpdateRoyalty(ctx, callerFrom(ctx), token.ID(in.ID), in.NewRate); err != nil {
		return nil, err
	}
	return &registryv1.Empty{}, nil
}

// Transfer moves a token between holders.
func (s *Service) Transfer(ctx context.Context, in *registryv1.TransferRequest) (*registryv1.Empty, error) {
	if in == nil {
		return nil, missingRequest("transfer")
	}
	err := s.registry.Transfer(ctx, callerFrom(ctx), token.ParseAddress(in.From), token.ParseAddress(in.To), token.ID(in.ID))
	if err != nil {
		return nil, err
	}
	return &registryv1.Empty{}, nil
}

// SetMetadata replaces a token's metadata reference.
func (s *Service) SetMetadata(ctx context.Context, in *registryv1.SetMetadataRequest) (*registryv1.Empty, error) {
	if in == nil {
		return nil, missingRequest("set metadata")
	}
	if err := s.registry.SetMetadata(ctx, callerFrom(ctx), token.ID(in.ID), in.MetadataURI); err != nil {
		return nil, err
	}
	return &registryv1.Empty{}, nil
}

// Approve sets or clears a token's single approval.
func (s *Service) Approve(ctx context.Context, in *registryv1.ApproveRequest) (*registryv1.Empty, error) {
	if in == nil {
		return nil, missingRequest("approve")
	}
	if err := s.registry.Approve(ctx, callerFrom(ctx), token.ParseAddress(in.Approved), token.ID(in.ID)); err != nil {
		return nil, err
	}
	return &registryv1.Empty{}, nil
}

// SetApprovalForAll grants or revokes an operator for the caller.
func (s *Service) SetApprovalForAll(ctx context.Context, in *registryv1.SetApprovalForAllRequest) (*registryv1.Empty, error) {
	if in == nil {
		return nil, missingRequest("set approval for all")
	}
	if err := s.registry.SetApprovalForAll(ctx, callerFrom(ctx), token.ParseAddress(in.Operator), in.Approved); err != nil {
		return nil, err
	}
	return &registryv1.Empty{}, nil
}

// TransferAuthority hands the administrative authority to in.Next.
func (s *Service) TransferAuthority(ctx context.Context, in *registryv1.TransferAuthorityRequest) (*registryv1.Empty, error) {
	if in == nil {
		return nil, missingRequest("transfer authority")
	}
	if err := s.registry.TransferAuthority(ctx, callerFrom(ctx), token.ParseAddress(in.Next)); err != nil {
		return nil, err
	}
	return &registryv1.Empty{}, nil
}

// GetToken returns a full token record.
func (s *Service) GetToken(ctx context.Context, in *registryv1.TokenRequest) (*registryv1.GetTokenResponse, error) {
	if in == nil {
		return nil, missingRequest("get token")
	}
	tok, err := s.registry.Token(token.ID(in.ID))
	if err != nil {
		return nil, err
	}
	return &registryv1.GetTokenResponse{Token: TokenToWire(tok)}, nil
}

// GetMetadata returns a token's metadata reference.
func (s *Service) GetMetadata(ctx context.Context, in *registryv1.TokenRequest) (*registryv1.MetadataResponse, error) {
	if in == nil {
		return nil, missingRequest("get metadata")
	}
	uri, err := s.registry.Metadata(token.ID(in.ID))
	if err != nil {
		return nil, err
	}
	return &registryv1.MetadataResponse{MetadataURI: uri}, nil
}

// GetCreator returns a token's creator.
func (s *Service) GetCreator(ctx context.Context, in *registryv1.TokenRequest) (*registryv1.AddressResponse, error) {
	if in == nil {
		return nil, missingRequest("get creator")
	}
	return addressResponse(s.registry.Creator(token.ID(in.ID)))
}

// GetRoyalty returns a token's royalty rate.
func (s *Service) GetRoyalty(ctx context.Context, in *registryv1.TokenRequest) (*registryv1.RoyaltyResponse, error) {
	if in == nil {
		return nil, missingRequest("get royalty")
	}
	rate, err := s.registry.Royalty(token.ID(in.ID))
	if err != nil {
		return nil, err
	}
	return &registryv1.RoyaltyResponse{RoyaltyRate: rate}, nil
}

// OwnerOf returns a token's current holder.
func (s *Service) OwnerOf(ctx context.Context, in *registryv1.TokenRequest) (*registryv1.AddressResponse, error) {
	if in == nil {
		return nil, missingRequest("owner of")
	}
	return addressResponse(s.registry.Holder(token.ID(in.ID)))
}

// BalanceOf counts the tokens held by in.Owner.
func (s *Service) BalanceOf(ctx context.Context, in *registryv1.BalanceOfRequest) (*registryv1.BalanceOfResponse, error) {
	if in == nil {
		return nil, missingRequest("balance of")
	}
	return &registryv1.BalanceOfResponse{Balance: s.registry.BalanceOf(token.ParseAddress(in.Owner))}, nil
}

// GetApproved returns a token's single approval, empty when none.
func (s *Service) GetApproved(ctx context.Context, in *registryv1.TokenRequest) (*registryv1.AddressResponse, error) {
	if in == nil {
		return nil, missingRequest("get approved")
	}
	return addressResponse(s.registry.Approved(token.ID(in.ID)))
}

// IsApprovedForAll reports whether in.Operator manages all of in.Owner's tokens.
func (s *Service) IsApprovedForAll(ctx context.Context, in *registryv1.IsApprovedForAllRequest) (*registryv1.IsApprovedForAllResponse, error) {
	if in == nil {
		return nil, missingRequest("is approved for all")
	}
	approved := s.registry.IsApprovedForAll(token.ParseAddress(in.Owner), token.ParseAddress(in.Operator))
	return &registryv1.IsApprovedForAllResponse{Approved: approved}, nil
}

// GetInfo summarizes registry state.
func (s *Service) GetInfo(ctx context.Context, _ *registryv1.Empty) (*registryv1.GetInfoResponse, error) {
	info := s.registry.Info()
	return &registryv1.GetInfoResponse{
		Authority:  info.Authority.String(),
		NextID:     uint64(info.NextID),
		TokenCount: info.TokenCount,
		LastSeq:    info.LastSeq,
	}, nil
}

// ListEvents returns one page of the journal after in.AfterSeq.
func (s *Service) ListEvents(ctx context.Context, in *registryv1.ListEventsRequest) (*registryv1.ListEventsResponse, error) {
	if in == nil {
		in = &registryv1.ListEventsRequest{}
	}
	if s.journal == nil {
		return nil, status.Error(codes.Unavailable, "event journal is not configured")
	}
	pageSize := pagination.ClampPageSize(in.PageSize, pagination.PageSizeConfig{
		Default: defaultListEventsPageSize,
		Max:     maxListEventsPageSize,
	})
	events, err := s.journal.ListEvents(ctx, in.AfterSeq, pageSize)
	if err != nil {
		return nil, err
	}
	resp := &registryv1.ListEventsResponse{Events: EventsToWire(events)}
	if len(events) > 0 {
		resp.NextAfterSeq = pagination.NextAfter(events[len(events)-1].Seq, len(events), pageSize)
	}
	return resp, nil
}

// VerifyEvents walks the whole journal and checks its hash chain and, when
// a keyring is configured, every signature.
func (s *Service) VerifyEvents(ctx context.Context, _ *registryv1.VerifyEventsRequest) (*registryv1.VerifyEventsResponse, error) {
	if s.journal == nil {
		return nil, status.Error(codes.Unavailable, "event journal is not configured")
	}
	report, err := VerifyJournal(ctx, s.journal, s.keyring)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// VerifyJournal checks every event in journal and reports the first break.
func VerifyJournal(ctx context.Context, journal storage.EventLog, keyring *integrity.Keyring) (*registryv1.VerifyEventsResponse, error) {
	verifier := integrity.NewVerifier(keyring)
	report := &registryv1.VerifyEventsResponse{Valid: true, Signed: keyring != nil}
	after := uint64(0)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		batch, err := journal.ListEvents(ctx, after, verifyBatchSize)
		if err != nil {
			return nil, err
		}
		for _, evt := range batch {
			if err := verifier.Next(evt); err != nil {
				var domainErr *apperrors.Error
				if !errors.As(err, &domainErr) || domainErr.Code != apperrors.CodeJournalTampered {
					return nil, err
				}
				report.Valid = false
				report.BrokenSeq = evt.Seq
				report.Reason = domainErr.Metadata["Reason"]
				return withHead(report, verifier), nil
			}
			after = evt.Seq
		}
		if len(batch) < verifyBatchSize {
			return withHead(report, verifier), nil
		}
	}
}

func withHead(report *registryv1.VerifyEventsResponse, verifier *integrity.Verifier) *registryv1.VerifyEventsResponse {
	head := verifier.Head()
	report.Checked = verifier.Checked()
	report.HeadSeq = head.Seq
	report.HeadChainHash = head.ChainHash
	return report
}

// WatchEvents replays the journal after in.AfterSeq and then streams live commits.
func (s *Service) WatchEvents(in *registryv1.WatchEventsRequest, stream registryv1.TokenRegistry_WatchEventsServer) error {
	if s.hub == nil || s.journal == nil {
		return status.Error(codes.Unavailable, "event feed is not configured")
	}
	if in == nil {
		in = &registryv1.WatchEventsRequest{}
	}
	err := feed.Follow(stream.Context(), s.hub, s.journal, in.AfterSeq, func(evt event.Event) error {
		wire := EventToWire(evt)
		return stream.Send(&wire)
	})
	switch {
	case errors.Is(err, feed.ErrSlowSubscriber):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, feed.ErrHubClosed):
		return status.Error(codes.Unavailable, err.Error())
	}
	return err
}

func addressResponse(addr token.Address, err error) (*registryv1.AddressResponse, error) {
	if err != nil {
		return nil, err
	}
	return &registryv1.AddressResponse{Address: addr.String()}, nil
}
