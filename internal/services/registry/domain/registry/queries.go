package registry

import (
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/custody"
	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/token"
)

// Token returns a copy of the full record for id.
func (r *Registry) Token(id token.ID) (token.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tok, ok := r.tokens[id]
	if !ok {
		return token.Token{}, token.NotFound(id)
	}
	return tok, nil
}

// Metadata returns the metadata reference of id.
func (r *Registry) Metadata(id token.ID) (string, error) {
	tok, err := r.Token(id)
	if err != nil {
		return "", err
	}
	return tok.MetadataURI, nil
}

// Creator returns the address id was minted to.
func (r *Registry) Creator(id token.ID) (token.Address, error) {
	tok, err := r.Token(id)
	if err != nil {
		return "", err
	}
	return tok.Creator, nil
}

// Royalty returns the royalty rate of id.
func (r *Registry) Royalty(id token.ID) (uint64, error) {
	tok, err := r.Token(id)
	if err != nil {
		return 0, err
	}
	return tok.RoyaltyRate, nil
}

// Holder returns the current holder of id.
func (r *Registry) Holder(id token.ID) (token.Address, error) {
	tok, err := r.Token(id)
	if err != nil {
		return "", err
	}
	return tok.Holder, nil
}

// Approved returns the single-token approval of id, empty when none.
func (r *Registry) Approved(id token.ID) (token.Address, error) {
	tok, err := r.Token(id)
	if err != nil {
		return "", err
	}
	return tok.Approved, nil
}

// BalanceOf returns the number of tokens owner holds.
func (r *Registry) BalanceOf(owner token.Address) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.balances[owner]
}

// IsApprovedForAll reports whether operator may move every token owner holds.
func (r *Registry) IsApprovedForAll(owner, operator token.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.operators[token.OperatorKey{Owner: owner, Operator: operator}]
	return ok
}

// Authority returns the current administrative authority.
func (r *Registry) Authority() token.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.authority
}

// Info summarizes registry state.
func (r *Registry) Info() Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Info{
		Authority:  r.authority,
		NextID:     r.nextID,
		TokenCount: uint64(len(r.tokens)),
		LastSeq:    r.lastSeq,
	}
}

// lockedBook exposes registry maps to custodians. r.mu must be held.
type lockedBook struct {
	r *Registry
}

func (r *Registry) bookLocked() custody.Book {
	return lockedBook{r: r}
}

func (b lockedBook) Token(id token.ID) (token.Token, bool) {
	tok, ok := b.r.tokens[id]
	return tok, ok
}

func (b lockedBook) IsApprovedForAll(owner, operator token.Address) bool {
	_, ok := b.r.operators[token.OperatorKey{Owner: owner, Operator: operator}]
	return ok
}
