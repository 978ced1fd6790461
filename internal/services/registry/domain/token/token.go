// Package token defines the registry's record types and domain errors.
package token

import (
	"strconv"
	"strings"
	"time"
)

// Address identifies an account that can hold, create, or administer tokens.
// The zero value is the null address.
type Address string

// ParseAddress trims surrounding whitespace from a raw address.
func ParseAddress(raw string) Address {
	return Address(strings.TrimSpace(raw))
}

// IsZero reports whether the address is the null address.
func (a Address) IsZero() bool {
	return a == ""
}

// String returns the address text.
func (a Address) String() string {
	return string(a)
}

// ID is a token identifier. Identifiers start at 1 and are never reused.
type ID uint64

// FirstID is the identifier assigned to the first minted token.
const FirstID ID = 1

// String returns the decimal form of the id.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseID parses a decimal token id.
func ParseID(raw string) (ID, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, InvalidArgument("token id", "must be an unsigned integer")
	}
	return ID(value), nil
}

// Token is one minted record.
type Token struct {
	ID          ID
	Holder      Address
	Creator     Address
	MetadataURI string
	RoyaltyRate uint64
	// Approved may transfer this token on the holder's behalf until the next transfer.
	Approved  Address
	MintedAt  time.Time
	UpdatedAt time.Time
}

// OperatorApproval records whether operator may transfer every token owner holds.
type OperatorApproval struct {
	Owner    Address
	Operator Address
	Approved bool
}

// Key returns the map key for the approval's (owner, operator) pair.
func (a OperatorApproval) Key() OperatorKey {
	return OperatorKey{Owner: a.Owner, Operator: a.Operator}
}

// OperatorKey identifies an (owner, operator) pair.
type OperatorKey struct {
	Owner    Address
	Operator Address
}
