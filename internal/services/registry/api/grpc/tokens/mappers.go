package tokens

import (
	"encoding/json"

	registryv1 "github.com/Douglas360/smart-contracts/api/registry/v1"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/event"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/token"
)

// TokenToWire converts a token record to its wire form.
func TokenToWire(tok token.Token) registryv1.Token {
	return registryv1.Token{
		ID:          uint64(tok.ID),
		Holder:      tok.Holder.String(),
		Creator:     tok.Creator.String(),
		MetadataURI: tok.MetadataURI,
		RoyaltyRate: tok.RoyaltyRate,
		Approved:    tok.Approved.String(),
		MintedAt:    tok.MintedAt,
		UpdatedAt:   tok.UpdatedAt,
	}
}

// EventToWire converts a journal event to its wire form.
func EventToWire(evt event.Event) registryv1.Event {
	payload := json.RawMessage(evt.PayloadJSON)
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	return registryv1.Event{
		Seq:            evt.Seq,
		Type:           string(evt.Type),
		Timestamp:      evt.Timestamp,
		Actor:          evt.Actor.String(),
		TokenID:        uint64(evt.TokenID),
		RequestID:      evt.RequestID,
		Payload:        payload,
		Hash:           evt.Hash,
		PrevHash:       evt.PrevHash,
		ChainHash:      evt.ChainHash,
		Signature:      evt.Signature,
		SignatureKeyID: evt.SignatureKeyID,
	}
}

// EventsToWire converts a page of journal events.
func EventsToWire(events []event.Event) []registryv1.Event {
	out := make([]registryv1.Event, 0, len(events))
	for _, evt := range events {
		out = append(out, EventToWire(evt))
	}
	return out
}
