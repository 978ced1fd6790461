package registryv1

import (
	"encoding/json"
	"time"
)

// Empty is the response of mutations that return nothing.
type Empty struct{}

// Token is a minted record.
type Token struct {
	ID          uint64    `json:"id"`
	Holder      string    `json:"holder"`
	Creator     string    `json:"creator"`
	MetadataURI string    `json:"metadata_uri"`
	RoyaltyRate uint64    `json:"royalty_rate"`
	Approved    string    `json:"approved,omitempty"`
	MintedAt    time.Time `json:"minted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Event is one committed journal entry.
type Event struct {
	Seq            uint64          `json:"seq"`
	Type           string          `json:"type"`
	Timestamp      time.Time       `json:"timestamp"`
	Actor          string          `json:"actor,omitempty"`
	TokenID        uint64          `json:"token_id,omitempty"`
	RequestID      string          `json:"request_id,omitempty"`
	Payload        json.RawMessage `json:"payload"`
	Hash           string          `json:"hash"`
	PrevHash       string          `json:"prev_hash,omitempty"`
	ChainHash      string          `json:"chain_hash"`
	Signature      string          `json:"signature,omitempty"`
	SignatureKeyID string          `json:"signature_key_id,omitempty"`
}

type MintRequest struct {
	To          string `json:"to"`
	MetadataURI string `json:"metadata_uri"`
	RoyaltyRate uint64 `json:"royalty_rate"`
}

type MintResponse struct {
	ID uint64 `json:"id"`
}

type UpdateRoyaltyRequest struct {
	ID      uint64 `json:"id"`
	NewRate uint64 `json:"new_rate"`
}

type TransferRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	ID   uint64 `json:"id"`
}

type SetMetadataRequest struct {
	ID          uint64 `json:"id"`
	MetadataURI string `json:"metadata_uri"`
}

type ApproveRequest struct {
	Approved string `json:"approved"`
	ID       uint64 `json:"id"`
}

type SetApprovalForAllRequest struct {
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

type TransferAuthorityRequest struct {
	Next string `json:"next"`
}

// TokenRequest addresses a single token.
type TokenRequest struct {
	ID uint64 `json:"id"`
}

type GetTokenResponse struct {
	Token Token `json:"token"`
}

type MetadataResponse struct {
	MetadataURI string `json:"metadata_uri"`
}

// AddressResponse carries one address; empty means none.
type AddressResponse struct {
	Address string `json:"address"`
}

type RoyaltyResponse struct {
	RoyaltyRate uint64 `json:"royalty_rate"`
}

type BalanceOfRequest struct {
	Owner string `json:"owner"`
}

type BalanceOfResponse struct {
	Balance uint64 `json:"balance"`
}

type IsApprovedForAllRequest struct {
	Owner    string `json:"owner"`
	Operator string `json:"operator"`
}

type IsApprovedForAllResponse struct {
	Approved bool `json:"approved"`
}

type GetInfoResponse struct {
	Authority  string `json:"authority"`
	NextID     uint64 `json:"next_id"`
	TokenCount uint64 `json:"token_count"`
	LastSeq    uint64 `json:"last_seq"`
}

type ListEventsRequest struct {
	AfterSeq uint64 `json:"after_seq"`
	PageSize int32  `json:"page_size"`
}

type ListEventsResponse struct {
	Events []Event `json:"events"`
	// NextAfterSeq is the cursor for the next page; zero at the journal head.
	NextAfterSeq uint64 `json:"next_after_seq,omitempty"`
}

type VerifyEventsRequest struct{}

// VerifyEventsResponse reports a full walk of the journal.
type VerifyEventsResponse struct {
	Valid         bool   `json:"valid"`
	Signed        bool   `json:"signed"`
	Checked       uint64 `json:"checked"`
	HeadSeq       uint64 `json:"head_seq"`
	HeadChainHash string `json:"head_chain_hash,omitempty"`
	BrokenSeq     uint64 `json:"broken_seq,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

type WatchEventsRequest struct {
	AfterSeq uint64 `json:"after_seq"`
}
