package event

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/encoding"
)

type hashEnvelope struct {
	Type      Type            `json:"type"`
	Timestamp string          `json:"timestamp"`
	Actor     string          `json:"actor"`
	TokenID   uint64          `json:"token_id"`
	RequestID string          `json:"request_id"`
	Payload   json.RawMessage `json:"payload"`
}

type chainEnvelope struct {
	Seq       uint64 `json:"seq"`
	PrevHash  string `json:"prev_hash"`
	EventHash string `json:"event_hash"`
}

// EventHash computes the content hash of an event's envelope and payload.
// Sequence and integrity fields are excluded.
func EventHash(evt Event) (string, error) {
	payload := json.RawMessage(evt.PayloadJSON)
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	return encoding.ContentHash(hashEnvelope{
		Type:      evt.Type,
		Timestamp: evt.Timestamp.UTC().Format(time.RFC3339Nano),
		Actor:     evt.Actor.String(),
		TokenID:   uint64(evt.TokenID),
		RequestID: evt.RequestID,
		Payload:   payload,
	})
}

// ChainHash links evt to its predecessor. evt.Hash must already be set.
func ChainHash(evt Event, prevHash string) (string, error) {
	if strings.TrimSpace(evt.Hash) == "" {
		return "", fmt.Errorf("event hash is required")
	}
	return encoding.ContentHash(chainEnvelope{
		Seq:       evt.Seq,
		PrevHash:  prevHash,
		EventHash: evt.Hash,
	})
}
