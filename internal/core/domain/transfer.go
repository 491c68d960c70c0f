package domain

import (
	"errors"
	"fmt"
	"time"
)

// TransferKind classifies which party types act as source and destination
// of a monetary movement.
type TransferKind string

const (
	PersonToPerson TransferKind = "person_to_person"
	PersonToPool   TransferKind = "person_to_pool"
	PoolToPerson   TransferKind = "pool_to_person"
	PoolToPool     TransferKind = "pool_to_pool"
	Contribution   TransferKind = "contribution"
)

var (
	ErrInvalidKind       = errors.New("unrecognized transfer kind")
	ErrMissingSender     = errors.New("transfer must have a sender")
	ErrMissingReceiver   = errors.New("transfer must have a receiver")
	ErrKindPartyMismatch = errors.New("populated parties do not match transfer kind")
)

// partySignature records exactly which party fields a transfer kind requires.
// Every field outside the signature must be empty.
type partySignature struct {
	FromUser bool
	FromPool bool
	ToUser   bool
	ToPool   bool
}

var kindSignatures = map[TransferKind]partySignature{
	PersonToPerson: {FromUser: true, ToUser: true},
	PersonToPool:   {FromUser: true, ToPool: true},
	PoolToPerson:   {FromPool: true, ToUser: true},
	PoolToPool:     {FromPool: true, ToPool: true},
	// A contribution is a member paying into a pool; it additionally bumps
	// the member's contribution counter inside the same atomic unit.
	Contribution: {FromUser: true, ToPool: true},
}

// IsValid reports whether the kind is one of the five recognized kinds.
func (k TransferKind) IsValid() bool {
	_, ok := kindSignatures[k]
	return ok
}

// TransferKinds lists all recognized transfer kinds.
func TransferKinds() []TransferKind {
	return []TransferKind{PersonToPerson, PersonToPool, PoolToPerson, PoolToPool, Contribution}
}

// TransferParties holds the optional party references of a transfer.
// A nil pointer means the party is absent.
type TransferParties struct {
	FromUserID *string `json:"fromUserID,omitempty"`
	FromPoolID *string `json:"fromPoolID,omitempty"`
	ToUserID   *string `json:"toUserID,omitempty"`
	ToPoolID   *string `json:"toPoolID,omitempty"`
}

// HasSource reports whether at least one source party is set.
func (p TransferParties) HasSource() bool {
	return p.FromUserID != nil || p.FromPoolID != nil
}

// HasDestination reports whether at least one destination party is set.
func (p TransferParties) HasDestination() bool {
	return p.ToUserID != nil || p.ToPoolID != nil
}

// Validate checks the parties against the exact signature of the given kind.
// Any populated field outside the signature, or any missing required field,
// is rejected.
func (p TransferParties) Validate(kind TransferKind) error {
	if !p.HasSource() {
		return ErrMissingSender
	}
	if !p.HasDestination() {
		return ErrMissingReceiver
	}
	sig, ok := kindSignatures[kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	if (p.FromUserID != nil) != sig.FromUser {
		return fmt.Errorf("%w: kind %s %s a from_user", ErrKindPartyMismatch, kind, requireWord(sig.FromUser))
	}
	if (p.FromPoolID != nil) != sig.FromPool {
		return fmt.Errorf("%w: kind %s %s a from_pool", ErrKindPartyMismatch, kind, requireWord(sig.FromPool))
	}
	if (p.ToUserID != nil) != sig.ToUser {
		return fmt.Errorf("%w: kind %s %s a to_user", ErrKindPartyMismatch, kind, requireWord(sig.ToUser))
	}
	if (p.ToPoolID != nil) != sig.ToPool {
		return fmt.Errorf("%w: kind %s %s a to_pool", ErrKindPartyMismatch, kind, requireWord(sig.ToPool))
	}
	return nil
}

func requireWord(required bool) string {
	if required {
		return "requires"
	}
	return "forbids"
}

// Transfer is the immutable, append-only record of one monetary movement.
// It is created exactly once by the transfer engine, inside the same atomic
// unit as the balance adjustments, and never updated or deleted.
type Transfer struct {
	TransferID string `json:"transferID"` // Primary Key (UUID)
	TransferParties
	Amount         int64        `json:"amount"` // Minor units, strictly positive
	Description    string       `json:"description"`
	Kind           TransferKind `json:"kind"`
	IdempotencyKey *string      `json:"idempotencyKey,omitempty"` // Caller-supplied dedup token
	CreatedAt      time.Time    `json:"createdAt"`
	CreatedBy      string       `json:"createdBy"` // UserID reference
}

// AccountKind distinguishes the two account tables a delta can target.
type AccountKind string

const (
	AccountUser AccountKind = "USER"
	AccountPool AccountKind = "POOL"
)

// BalanceDelta is one relative balance adjustment implied by a transfer.
type BalanceDelta struct {
	AccountKind AccountKind
	AccountID   string
	Delta       int64 // Minor units; negative for sources, positive for destinations
}

// BalanceDeltas expands the transfer into the relative adjustments the
// engine must apply: every source loses Amount, every destination gains it.
func (t Transfer) BalanceDeltas() []BalanceDelta {
	deltas := make([]BalanceDelta, 0, 2)
	if t.FromUserID != nil {
		deltas = append(deltas, BalanceDelta{AccountKind: AccountUser, AccountID: *t.FromUserID, Delta: -t.Amount})
	}
	if t.FromPoolID != nil {
		deltas = append(deltas, BalanceDelta{AccountKind: AccountPool, AccountID: *t.FromPoolID, Delta: -t.Amount})
	}
	if t.ToUserID != nil {
		deltas = append(deltas, BalanceDelta{AccountKind: AccountUser, AccountID: *t.ToUserID, Delta: t.Amount})
	}
	if t.ToPoolID != nil {
		deltas = append(deltas, BalanceDelta{AccountKind: AccountPool, AccountID: *t.ToPoolID, Delta: t.Amount})
	}
	return deltas
}

// AccountBalance is the committed balance of one account after a transfer.
type AccountBalance struct {
	AccountKind AccountKind `json:"accountKind"`
	AccountID   string      `json:"accountID"`
	Balance     int64       `json:"balance"` // Minor units
}
