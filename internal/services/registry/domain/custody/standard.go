package custody

import (
	"time"

	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/event"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/token"
)

// Standard is the default custodian: holder, per-token approval, and
// per-owner operators, with the approval cleared on every transfer.
type Standard struct{}

var _ Custodian = Standard{}

// Issue implements Custodian.
func (Standard) Issue(at time.Time, actor token.Address, minted token.Token) (Move, error) {
	if minted.Holder.IsZero() {
		return Move{}, token.InvalidArgument("to", "recipient address is required")
	}
	evt, err := event.New(event.TypeTransfer, at, actor, minted.ID, event.Transfer{
		To: minted.Holder,
		ID: minted.ID,
	})
	if err != nil {
		return Move{}, err
	}
	return Move{Token: &minted, Events: []event.Event{evt}}, nil
}

// Transfer implements Custodian.
func (Standard) Transfer(book Book, at time.Time, caller, from, to token.Address, id token.ID) (Move, error) {
	tok, ok := book.Token(id)
	if !ok {
		return Move{}, token.NotFound(id)
	}
	if tok.Holder != from {
		return Move{}, token.Unauthorized("transfer", caller)
	}
	if !IsAuthorized(book, tok, caller) {
		return Move{}, token.Unauthorized("transfer", caller)
	}
	if to.IsZero() {
		return Move{}, token.InvalidArgument("to", "recipient address is required")
	}

	tok.Holder = to
	tok.Approved = ""
	tok.UpdatedAt = at.UTC()

	evt, err := event.New(event.TypeTransfer, at, caller, id, event.Transfer{From: from, To: to, ID: id})
	if err != nil {
		return Move{}, err
	}
	return Move{Token: &tok, Events: []event.Event{evt}}, nil
}

// Approve implements Custodian.
func (Standard) Approve(book Book, at time.Time, caller, approved token.Address, id token.ID) (Move, error) {
	tok, ok := book.Token(id)
	if !ok {
		return Move{}, token.NotFound(id)
	}
	if approved == tok.Holder {
		return Move{}, token.InvalidArgument("approved", "approval to current holder")
	}
	if caller.IsZero() || (caller != tok.Holder && !book.IsApprovedForAll(tok.Holder, caller)) {
		return Move{}, token.Unauthorized("approve", caller)
	}

	tok.Approved = approved
	tok.UpdatedAt = at.UTC()

	evt, err := event.New(event.TypeApproval, at, caller, id, event.Approval{
		Owner:    tok.Holder,
		Approved: approved,
		ID:       id,
	})
	if err != nil {
		return Move{}, err
	}
	return Move{Token: &tok, Events: []event.Event{evt}}, nil
}

// SetApprovalForAll implements Custodian.
func (Standard) SetApprovalForAll(at time.Time, caller, operator token.Address, approved bool) (Move, error) {
	if caller.IsZero() {
		return Move{}, token.Unauthorized("set approval for all", caller)
	}
	if operator.IsZero() {
		return Move{}, token.InvalidArgument("operator", "operator address is required")
	}
	if operator == caller {
		return Move{}, token.InvalidArgument("operator", "approve to caller")
	}

	evt, err := event.New(event.TypeApprovalForAll, at, caller, 0, event.ApprovalForAll{
		Owner:    caller,
		Operator: operator,
		Approved: approved,
	})
	if err != nil {
		return Move{}, err
	}
	return Move{
		Operators: []token.OperatorApproval{{Owner: caller, Operator: operator, Approved: approved}},
		Events:    []event.Event{evt},
	}, nil
}
