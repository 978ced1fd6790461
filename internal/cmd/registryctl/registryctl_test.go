package registryctl

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	registryv1 "github.com/Douglas360/smart-contracts/api/registry/v1"
	server "github.com/Douglas360/smart-contracts/internal/services/registry/app"
	"github.com/Douglas360/smart-contracts/internal/services/registry/storage/memory"
)

func startRegistry(t *testing.T) string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	srv, err := server.New(ctx, server.Config{
		GRPCAddr:        "127.0.0.1:0",
		Authority:       "owner",
		Backend:         memory.New(nil),
		InsecureCallers: true,
	})
	if err != nil {
		cancel()
		t.Fatalf("new server: %v", err)
	}
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("serve: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("server did not stop in time")
		}
	})
	return srv.Addr()
}

func execute(t *testing.T, addr string, args ...string) (string, error) {
	t.Helper()
	root, err := NewRootCommand()
	if err != nil {
		t.Fatalf("new root command: %v", err)
	}
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--addr", addr, "--timeout", "3s"}, args...))
	err = root.ExecuteContext(context.Background())
	return out.String(), err
}

func decode[T any](t *testing.T, raw string) T {
	t.Helper()
	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	return value
}

func TestMintTransferAndQuery(t *testing.T) {
	addr := startRegistry(t)

	out, err := execute(t, addr, "--caller", "owner", "mint", "--to", "alice", "--uri", "ipfs://a", "--royalty", "5")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if minted := decode[registryv1.MintResponse](t, out); minted.ID != 1 {
		t.Fatalf("minted id = %d, want 1", minted.ID)
	}

	out, err = execute(t, addr, "token", "--id", "1")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	got := decode[registryv1.GetTokenResponse](t, out)
	if got.Token.Holder != "alice" || got.Token.Creator != "alice" || got.Token.RoyaltyRate != 5 {
		t.Fatalf("token = %+v", got.Token)
	}

	if _, err := execute(t, addr, "--caller", "alice", "transfer", "--from", "alice", "--to", "bob", "--id", "1"); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	out, err = execute(t, addr, "owner", "--id", "1")
	if err != nil {
		t.Fatalf("owner: %v", err)
	}
	if owner := decode[registryv1.AddressResponse](t, out); owner.Address != "bob" {
		t.Fatalf("owner = %q, want bob", owner.Address)
	}

	out, err = execute(t, addr, "balance", "--owner", "bob")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance := decode[registryv1.BalanceOfResponse](t, out); balance.Balance != 1 {
		t.Fatalf("balance = %d, want 1", balance.Balance)
	}

	out, err = execute(t, addr, "info")
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info := decode[registryv1.GetInfoResponse](t, out); info.Authority != "owner" || info.TokenCount != 1 {
		t.Fatalf("info = %+v", info)
	}
}

func TestUnauthorizedCallReportsReason(t *testing.T) {
	addr := startRegistry(t)
	_, err := execute(t, addr, "--caller", "mallory", "mint", "--to", "alice")
	if err == nil {
		t.Fatal("expected mint by non-authority to fail")
	}
	if !strings.HasPrefix(err.Error(), "UNAUTHORIZED:") {
		t.Fatalf("error = %v", err)
	}
}

func TestLocalizedErrorMessage(t *testing.T) {
	addr := startRegistry(t)
	_, err := execute(t, addr, "--locale", "pt-BR", "token", "--id", "99")
	if err == nil {
		t.Fatal("expected missing token error")
	}
	if !strings.Contains(err.Error(), "O token 99 não existe") {
		t.Fatalf("error = %v", err)
	}
}

func TestEventsVerifyAndWatch(t *testing.T) {
	addr := startRegistry(t)
	if _, err := execute(t, addr, "--caller", "owner", "mint", "--to", "alice"); err != nil {
		t.Fatalf("mint: %v", err)
	}

	out, err := execute(t, addr, "events", "--after", "0")
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	listed := decode[registryv1.ListEventsResponse](t, out)
	if len(listed.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(listed.Events))
	}

	out, err = execute(t, addr, "verify")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	report := decode[registryv1.VerifyEventsResponse](t, out)
	if !report.Valid || report.Checked != 3 || report.HeadSeq != 3 {
		t.Fatalf("report = %+v", report)
	}

	out, err = execute(t, addr, "watch", "--after", "1", "--limit", "2")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 streamed events, got %d: %q", len(lines), out)
	}
	if evt := decode[registryv1.Event](t, lines[0]); evt.Seq != 2 {
		t.Fatalf("first streamed seq = %d, want 2", evt.Seq)
	}
}

func TestRequiredFlags(t *testing.T) {
	if _, err := execute(t, "127.0.0.1:1", "mint"); err == nil {
		t.Fatal("expected missing --to error")
	}
	if _, err := execute(t, "127.0.0.1:1", "token"); err == nil {
		t.Fatal("expected missing --id error")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("REGISTRYCTL_ADDR", "registry:9000")
	t.Setenv("REGISTRY_GRANT", "grant-token")
	root, err := NewRootCommand()
	if err != nil {
		t.Fatalf("new root command: %v", err)
	}
	if got := root.PersistentFlags().Lookup("addr").DefValue; got != "registry:9000" {
		t.Fatalf("addr default = %q", got)
	}
	if got := root.PersistentFlags().Lookup("grant").DefValue; got != "grant-token" {
		t.Fatalf("grant default = %q", got)
	}
}
