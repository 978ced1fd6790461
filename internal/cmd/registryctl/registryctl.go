// Package registryctl implements the registry command-line client.
package registryctl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	registryv1 "github.com/Douglas360/smart-contracts/api/registry/v1"
	entrypoint "github.com/Douglas360/smart-contracts/internal/platform/cmd"
	platformgrpc "github.com/Douglas360/smart-contracts/internal/platform/grpc"
	"github.com/Douglas360/smart-contracts/internal/platform/timeouts"
	grpcmeta "github.com/Douglas360/smart-contracts/internal/services/registry/api/grpc/metadata"
)

// Config holds connection settings shared by every subcommand.
type Config struct {
	Addr   string `env:"REGISTRYCTL_ADDR" envDefault:"localhost:8095"`
	Caller string `env:"REGISTRYCTL_CALLER"`
	Grant  string `env:"REGISTRY_GRANT"`
	Locale string `env:"REGISTRYCTL_LOCALE"`
	// Timeout bounds each unary call; zero uses timeouts.GRPCRequest.
	Timeout time.Duration `env:"REGISTRYCTL_TIMEOUT"`
}

type app struct {
	cfg Config
}

type unaryCall func(ctx context.Context, client *registryv1.TokenRegistryClient) (any, error)

// NewRootCommand builds the registryctl command tree with env defaults applied.
func NewRootCommand() (*cobra.Command, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return nil, err
	}
	a := &app{cfg: cfg}

	root := &cobra.Command{
		Use:           entrypoint.ServiceRegistryCtl,
		Short:         "Command-line client for the token registry",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.Addr, "addr", a.cfg.Addr, "registry gRPC address")
	flags.StringVar(&a.cfg.Caller, "caller", a.cfg.Caller, "caller address hint (insecure servers only)")
	flags.StringVar(&a.cfg.Grant, "grant", a.cfg.Grant, "signed caller grant")
	flags.StringVar(&a.cfg.Locale, "locale", a.cfg.Locale, "preferred language for error messages")
	flags.DurationVar(&a.cfg.Timeout, "timeout", a.cfg.Timeout, "per-request timeout")

	root.AddCommand(
		a.mintCmd(),
		a.transferCmd(),
		a.royaltyCmd(),
		a.metadataCmd(),
		a.approveCmd(),
		a.approveAllCmd(),
		a.authorityCmd(),
	)
	root.AddCommand(a.readCmds()...)
	root.AddCommand(
		a.infoCmd(),
		a.eventsCmd(),
		a.verifyCmd(),
		a.watchCmd(),
	)
	return root, nil
}

func (a *app) mintCmd() *cobra.Command {
	var req registryv1.MintRequest
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint a token (authority only)",
		RunE: a.run(func(ctx context.Context, c *registryv1.TokenRegistryClient) (any, error) {
			return c.Mint(ctx, &req)
		}),
	}
	cmd.Flags().StringVar(&req.To, "to", "", "initial holder")
	cmd.Flags().StringVar(&req.MetadataURI, "uri", "", "metadata URI")
	cmd.Flags().Uint64Var(&req.RoyaltyRate, "royalty", 0, "royalty rate")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func (a *app) transferCmd() *cobra.Command {
	var req registryv1.TransferRequest
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer a token",
		RunE: a.run(func(ctx context.Context, c *registryv1.TokenRegistryClient) (any, error) {
			return c.Transfer(ctx, &req)
		}),
	}
	cmd.Flags().StringVar(&req.From, "from", "", "current holder")
	cmd.Flags().StringVar(&req.To, "to", "", "recipient")
	cmd.Flags().Uint64Var(&req.ID, "id", 0, "token id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func (a *app) royaltyCmd() *cobra.Command {
	var req registryv1.UpdateRoyaltyRequest
	cmd := &cobra.Command{
		Use:   "royalty",
		Short: "Update a token's royalty rate (creator only)",
		RunE: a.run(func(ctx context.Context, c *registryv1.TokenRegistryClient) (any, error) {
			return c.UpdateRoyalty(ctx, &req)
		}),
	}
	cmd.Flags().Uint64Var(&req.ID, "id", 0, "token id")
	cmd.Flags().Uint64Var(&req.NewRate, "rate", 0, "new royalty rate")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("rate")
	return cmd
}

func (a *app) metadataCmd() *cobra.Command {
	var req registryv1.SetMetadataRequest
	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Replace a token's metadata URI (authority only)",
		RunE: a.run(func(ctx context.Context, c *registryv1.TokenRegistryClient) (any, error) {
			return c.SetMetadata(ctx, &req)
		}),
	}
	cmd.Flags().Uint64Var(&req.ID, "id", 0, "token id")
	cmd.Flags().StringVar(&req.MetadataURI, "uri", "", "metadata URI")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func (a *app) approveCmd() *cobra.Command {
	var req registryv1.ApproveRequest
	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Approve an address for a single token; omit --to to clear",
		RunE: a.run(func(ctx context.Context, c *registryv1.TokenRegistryClient) (any, error) {
			return c.Approve(ctx, &req)
		}),
	}
	cmd.Flags().Uint64Var(&req.ID, "id", 0, "token id")
	cmd.Flags().StringVar(&req.Approved, "to", "", "approved address")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func (a *app) approveAllCmd() *cobra.Command {
	var req registryv1.SetApprovalForAllRequest
	cmd := &cobra.Command{
		Use:   "approve-all",
		Short: "Grant or revoke an operator for all of the caller's tokens",
		RunE: a.run(func(ctx context.Context, c *registryv1.TokenRegistryClient) (any, error) {
			return c.SetApprovalForAll(ctx, &req)
		}),
	}
	cmd.Flags().StringVar(&req.Operator, "operator", "", "operator address")
	cmd.Flags().BoolVar(&req.Approved, "approved", true, "grant (true) or revoke (false)")
	_ = cmd.MarkFlagRequired("operator")
	return cmd
}

func (a *app) authorityCmd() *cobra.Command {
	var req registryv1.TransferAuthorityRequest
	cmd := &cobra.Command{
		Use:   "authority",
		Short: "Hand the administrative authority to another address",
		RunE: a.run(func(ctx context.Context, c *registryv1.TokenRegistryClient) (any, error) {
			return c.TransferAuthority(ctx, &req)
		}),
	}
	cmd.Flags().StringVar(&req.Next, "next", "", "next authority")
	_ = cmd.MarkFlagRequired("next")
	return cmd
}

func (a *app) readCmds() []*cobra.Command {
	tokenCmd := func(use, short string, call func(context.Context, *registryv1.TokenRegistryClient, *registryv1.TokenRequest) (any, error)) *cobra.Command {
		var req registryv1.TokenRequest
		cmd := &cobra.Command{
			Use:   use,
			Short: short,
			RunE: a.run(func(ctx context.Context, c *registryv1.TokenRegistryClient) (any, error) {
				return call(ctx, c, &req)
			}),
		}
		cmd.Flags().Uint64Var(&req.ID, "id", 0, "token id")
		_ = cmd.MarkFlagRequired("id")
		return cmd
	}

	var balance registryv1.BalanceOfRequest
	balanceCmd := &cobra.Command{
		Use:   "balance",
		Short: "Count the tokens held by an address",
		RunE: a.run(func(ctx context.Context, c *registryv1.TokenRegistryClient) (any, error) {
			return c.BalanceOf(ctx, &balance)
		}),
	}
	balanceCmd.Flags().StringVar(&balance.Owner, "owner", "", "holder address")

	var operator registryv1.IsApprovedForAllRequest
	operatorCmd := &cobra.Command{
		Use:   "is-approved-for-all",
		Short: "Report whether an operator is approved for an owner",
		RunE: a.run(func(ctx context.Context, c *registryv1.TokenRegistryClient) (any, error) {
			return c.IsApprovedForAll(ctx, &operator)
		}),
	}
	operatorCmd.Flags().StringVar(&operator.Owner, "owner", "", "owner address")
	operatorCmd.Flags().StringVar(&operator.Operator, "operator", "", "operator address")

	return []*cobra.Command{
		tokenCmd("token", "Show a token record", func(ctx context.Context, c *registryv1.TokenRegistryClient, req *registryv1.TokenRequest) (any, error) {
			return c.GetToken(ctx, req)
		}),
		tokenCmd("owner", "Show a token's holder", func(ctx context.Context, c *registryv1.TokenRegistryClient, req *registryv1.TokenRequest) (any, error) {
			return c.OwnerOf(ctx, req)
		}),
		tokenCmd("creator", "Show a token's creator", func(ctx context.Context, c *registryv1.TokenRegistryClient, req *registryv1.TokenRequest) (any, error) {
			return c.GetCreator(ctx, req)
		}),
		tokenCmd("get-royalty", "Show a token's royalty rate", func(ctx context.Context, c *registryv1.TokenRegistryClient, req *registryv1.TokenRequest) (any, error) {
			return c.GetRoyalty(ctx, req)
		}),
		tokenCmd("get-metadata", "Show a token's metadata URI", func(ctx context.Context, c *registryv1.TokenRegistryClient, req *registryv1.TokenRequest) (any, error) {
			return c.GetMetadata(ctx, req)
		}),
		tokenCmd("get-approved", "Show a token's approved address", func(ctx context.Context, c *registryv1.TokenRegistryClient, req *registryv1.TokenRequest) (any, error) {
			return c.GetApproved(ctx, req)
		}),
		balanceCmd,
		operatorCmd,
	}
}

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the registry authority, counters and journal head",
		RunE: a.run(func(ctx context.Context, c *registryv1.TokenRegistryClient) (any, error) {
			return c.GetInfo(ctx, &registryv1.Empty{})
		}),
	}
}

func (a *app) eventsCmd() *cobra.Command {
	var req registryv1.ListEventsRequest
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List journal events after a sequence",
		RunE: a.run(func(ctx context.Context, c *registryv1.TokenRegistryClient) (any, error) {
			return c.ListEvents(ctx, &req)
		}),
	}
	cmd.Flags().Uint64Var(&req.AfterSeq, "after", 0, "list events after this sequence")
	cmd.Flags().Int32Var(&req.PageSize, "limit", 0, "page size (server default when zero)")
	return cmd
}

func (a *app) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify the hash chain and signatures of the whole journal",
		RunE: a.run(func(ctx context.Context, c *registryv1.TokenRegistryClient) (any, error) {
			resp, err := c.VerifyEvents(ctx, &registryv1.VerifyEventsRequest{})
			if err != nil {
				return nil, err
			}
			if !resp.Valid {
				return resp, errJournalInvalid
			}
			return resp, nil
		}),
	}
}

var errJournalInvalid = errors.New("journal verification failed")

func (a *app) watchCmd() *cobra.Command {
	var (
		req   registryv1.WatchEventsRequest
		limit int
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream committed events as JSON lines",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			client, closeConn, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer closeConn()

			stream, err := client.WatchEvents(a.outgoing(ctx), &req)
			if err != nil {
				return describeError(err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for received := 0; limit <= 0 || received < limit; received++ {
				evt, err := stream.Recv()
				if err != nil {
					if errors.Is(err, io.EOF) || status.Code(err) == codes.Canceled || ctx.Err() != nil {
						return nil
					}
					return describeError(err)
				}
				if err := enc.Encode(evt); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().Uint64Var(&req.AfterSeq, "after", 0, "stream events after this sequence")
	cmd.Flags().IntVar(&limit, "limit", 0, "stop after this many events (0 streams until interrupted)")
	return cmd
}

// run wraps a unary call with dialing, metadata, a timeout and JSON output.
func (a *app) run(call unaryCall) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		timeout := a.cfg.Timeout
		if timeout <= 0 {
			timeout = timeouts.GRPCRequest
		}
		ctx, cancel := context.WithTimeout(commandContext(cmd), timeout)
		defer cancel()
		client, closeConn, err := a.connect(ctx)
		if err != nil {
			return err
		}
		defer closeConn()

		resp, callErr := call(a.outgoing(ctx), client)
		// Verification failures still print the report before failing.
		if callErr != nil && !errors.Is(callErr, errJournalInvalid) {
			return describeError(callErr)
		}
		if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
			return err
		}
		return callErr
	}
}

func (a *app) connect(ctx context.Context) (*registryv1.TokenRegistryClient, func(), error) {
	conn, err := platformgrpc.Connect(ctx, a.cfg.Addr, platformgrpc.ConnectOptions{
		Service: registryv1.ServiceName,
		Timeout: timeouts.GRPCDial,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s: %w", a.cfg.Addr, err)
	}
	return registryv1.NewTokenRegistryClient(conn), func() { _ = conn.Close() }, nil
}

func (a *app) outgoing(ctx context.Context) context.Context {
	ctx = grpcmeta.WithBearer(ctx, a.cfg.Grant)
	ctx = grpcmeta.WithCaller(ctx, a.cfg.Caller)
	if a.cfg.Locale != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, grpcmeta.LocaleHeader, a.cfg.Locale)
	}
	return ctx
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printJSON(out io.Writer, value any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

// describeError prefers the server's localized message and error reason.
func describeError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	message := st.Message()
	reason := st.Code().String()
	for _, detail := range st.Details() {
		switch d := detail.(type) {
		case *errdetails.LocalizedMessage:
			if d.GetMessage() != "" {
				message = d.GetMessage()
			}
		case *errdetails.ErrorInfo:
			if d.GetReason() != "" {
				reason = d.GetReason()
			}
		}
	}
	return fmt.Errorf("%s: %s", reason, message)
}
