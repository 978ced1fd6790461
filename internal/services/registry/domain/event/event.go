// Package event defines the registry's append-only journal records.
//
// Every state change the registry commits is described by one or more events.
// Payload structs fix the field order of each event's JSON body; the envelope
// carries ordering and integrity fields assigned by the store at commit time.
package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/token"
)

// Type names an event kind.
type Type string

const (
	TypeRegistryInitialized  Type = "registry.initialized"
	TypeAuthorityTransferred Type = "registry.authority_transferred"
	TypeMinted               Type = "token.minted"
	TypeRoyaltyUpdated       Type = "token.royalty_updated"
	TypeTransferred          Type = "token.transferred"
	TypeTransfer             Type = "custody.transfer"
	TypeApproval             Type = "custody.approval"
	TypeApprovalForAll       Type = "custody.approval_for_all"
)

var knownTypes = map[Type]struct{}{
	TypeRegistryInitialized:  {},
	TypeAuthorityTransferred: {},
	TypeMinted:               {},
	TypeRoyaltyUpdated:       {},
	TypeTransferred:          {},
	TypeTransfer:             {},
	TypeApproval:             {},
	TypeApprovalForAll:       {},
}

// Known reports whether t is an event type the registry emits.
func Known(t Type) bool {
	_, ok := knownTypes[t]
	return ok
}

// Event is one journal entry.
type Event struct {
	// Seq is assigned by the store: 1-based and contiguous in commit order.
	Seq         uint64
	Type        Type
	Timestamp   time.Time
	Actor       token.Address
	TokenID     token.ID
	RequestID   string
	PayloadJSON []byte

	Hash           string
	PrevHash       string
	ChainHash      string
	Signature      string
	SignatureKeyID string
}

// New drafts an unsequenced event with payload encoded as JSON.
func New(eventType Type, at time.Time, actor token.Address, tokenID token.ID, payload any) (Event, error) {
	if !Known(eventType) {
		return Event{}, fmt.Errorf("unknown event type %q", eventType)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Event{
		Type:        eventType,
		Timestamp:   at.UTC(),
		Actor:       actor,
		TokenID:     tokenID,
		PayloadJSON: data,
	}, nil
}

// Decode unmarshals the event payload into target.
func (e Event) Decode(target any) error {
	if err := json.Unmarshal(e.PayloadJSON, target); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}
