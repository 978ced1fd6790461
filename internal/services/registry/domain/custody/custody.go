// Package custody implements holder bookkeeping for registry tokens: who may
// move a token, and what changes when they do.
//
// Custodians are pure. They read the current state through a Book and return
// a Move describing the updated records and the custody events to journal.
// The registry commits the move; nothing is mutated here.
package custody

import (
	"time"

	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/event"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/token"
)

// Book is a read-only view of custody state.
type Book interface {
	Token(id token.ID) (token.Token, bool)
	IsApprovedForAll(owner, operator token.Address) bool
}

// Move is the outcome of a custody operation.
type Move struct {
	// Token is the updated record, or nil when no token changed.
	Token     *token.Token
	Operators []token.OperatorApproval
	Events    []event.Event
}

// Custodian authorizes and performs holder changes.
type Custodian interface {
	// Issue assigns a freshly minted token to its first holder.
	Issue(at time.Time, actor token.Address, minted token.Token) (Move, error)
	// Transfer moves id from from to to on behalf of caller.
	Transfer(book Book, at time.Time, caller, from, to token.Address, id token.ID) (Move, error)
	// Approve sets or clears the single-token approval for id.
	Approve(book Book, at time.Time, caller, approved token.Address, id token.ID) (Move, error)
	// SetApprovalForAll grants or revokes operator rights over every token caller holds.
	SetApprovalForAll(at time.Time, caller, operator token.Address, approved bool) (Move, error)
}

// IsAuthorized reports whether caller may move tok: the holder, the approved
// address, or an operator of the holder.
func IsAuthorized(book Book, tok token.Token, caller token.Address) bool {
	if caller.IsZero() {
		return false
	}
	if caller == tok.Holder {
		return true
	}
	if !tok.Approved.IsZero() && caller == tok.Approved {
		return true
	}
	return book.IsApprovedForAll(tok.Holder, caller)
}
