package integrity

import (
	"fmt"
	"strconv"

	apperrors "github.com/Douglas360/smart-contracts/internal/platform/errors"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/event"
)

// Head is the tip of a journal: the last sequence and its chain hash.
type Head struct {
	Seq       uint64
	ChainHash string
}

// Seal assigns sequence numbers and integrity fields to drafted events that
// follow head. keyring may be nil, in which case events are left unsigned.
func Seal(head Head, drafts []event.Event, keyring *Keyring) ([]event.Event, error) {
	sealed := make([]event.Event, len(drafts))
	prev := head.ChainHash
	for i, evt := range drafts {
		evt.Seq = head.Seq + uint64(i) + 1
		hash, err := event.EventHash(evt)
		if err != nil {
			return nil, fmt.Errorf("hash event %d: %w", evt.Seq, err)
		}
		evt.Hash = hash
		evt.PrevHash = prev
		chainHash, err := event.ChainHash(evt, prev)
		if err != nil {
			return nil, fmt.Errorf("chain event %d: %w", evt.Seq, err)
		}
		evt.ChainHash = chainHash
		evt.Signature = ""
		evt.SignatureKeyID = ""
		if keyring != nil {
			sig, keyID, err := keyring.Sign(chainHash)
			if err != nil {
				return nil, fmt.Errorf("sign event %d: %w", evt.Seq, err)
			}
			evt.Signature = sig
			evt.SignatureKeyID = keyID
		}
		sealed[i] = evt
		prev = chainHash
	}
	return sealed, nil
}

// Verifier checks a journal one event at a time, in sequence order.
type Verifier struct {
	keyring *Keyring
	head    Head
	checked uint64
}

// NewVerifier returns a verifier for a journal starting at seq 1. With a
// keyring, every event must carry a valid signature.
func NewVerifier(keyring *Keyring) *Verifier {
	return &Verifier{keyring: keyring}
}

// Next verifies evt against the events seen so far.
func (v *Verifier) Next(evt event.Event) error {
	want := v.head.Seq + 1
	if evt.Seq != want {
		return tampered(evt.Seq, fmt.Sprintf("expected sequence %d", want))
	}
	hash, err := event.EventHash(evt)
	if err != nil {
		return tampered(evt.Seq, err.Error())
	}
	if hash != evt.Hash {
		return tampered(evt.Seq, "content hash mismatch")
	}
	if evt.PrevHash != v.head.ChainHash {
		return tampered(evt.Seq, "previous hash mismatch")
	}
	chainHash, err := event.ChainHash(evt, v.head.ChainHash)
	if err != nil {
		return tampered(evt.Seq, err.Error())
	}
	if chainHash != evt.ChainHash {
		return tampered(evt.Seq, "chain hash mismatch")
	}
	if v.keyring != nil {
		if err := v.keyring.Verify(evt.ChainHash, evt.Signature, evt.SignatureKeyID); err != nil {
			return tampered(evt.Seq, err.Error())
		}
	}
	v.head = Head{Seq: evt.Seq, ChainHash: evt.ChainHash}
	v.checked++
	return nil
}

// Head returns the last verified event position.
func (v *Verifier) Head() Head {
	return v.head
}

// Checked returns how many events have been verified.
func (v *Verifier) Checked() uint64 {
	return v.checked
}

// VerifyChain checks a complete journal starting at seq 1.
func VerifyChain(events []event.Event, keyring *Keyring) error {
	verifier := NewVerifier(keyring)
	for _, evt := range events {
		if err := verifier.Next(evt); err != nil {
			return err
		}
	}
	return nil
}

func tampered(seq uint64, reason string) error {
	return apperrors.WithMetadata(apperrors.CodeJournalTampered,
		fmt.Sprintf("journal verification failed at seq %d: %s", seq, reason),
		map[string]string{"Seq": strconv.FormatUint(seq, 10), "Reason": reason})
}
