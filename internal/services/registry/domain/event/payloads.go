package event

import "github.com/Douglas360/smart-contracts/internal/services/registry/domain/token"

// Minted is recorded after a token is created.
type Minted struct {
	ID          token.ID      `json:"id"`
	Creator     token.Address `json:"creator"`
	RoyaltyRate uint64        `json:"royalty_rate"`
}

// RoyaltyUpdated is recorded after a royalty rate is overwritten.
type RoyaltyUpdated struct {
	ID      token.ID `json:"id"`
	NewRate uint64   `json:"new_rate"`
}

// Transferred is the registry's record of a completed transfer.
type Transferred struct {
	ID   token.ID      `json:"id"`
	From token.Address `json:"from"`
	To   token.Address `json:"to"`
}

// Transfer is the custody record of a holder change. From is empty on mint.
type Transfer struct {
	From token.Address `json:"from"`
	To   token.Address `json:"to"`
	ID   token.ID      `json:"id"`
}

// Approval is recorded when a single-token approval is set or cleared.
type Approval struct {
	Owner    token.Address `json:"owner"`
	Approved token.Address `json:"approved"`
	ID       token.ID      `json:"id"`
}

// ApprovalForAll is recorded when an operator approval changes.
type ApprovalForAll struct {
	Owner    token.Address `json:"owner"`
	Operator token.Address `json:"operator"`
	Approved bool          `json:"approved"`
}

// RegistryInitialized is the first event of every journal.
type RegistryInitialized struct {
	Authority token.Address `json:"authority"`
}

// AuthorityTransferred records an administrative authority handover.
type AuthorityTransferred struct {
	Previous token.Address `json:"previous"`
	Next     token.Address `json:"next"`
}
