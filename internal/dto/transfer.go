package dto

import (
	"time"

	"github.com/moneypools/money_pools_app/internal/core/domain"
)

// CreateTransferRequest is the payload for recording a monetary movement.
// Field names follow the external request surface (snake_case) consumed by
// existing clients. Exactly the party fields implied by transaction_type
// may be populated; the service rejects any mismatch.
type CreateTransferRequest struct {
	FromUserID     *string `json:"from_user_id,omitempty"`
	FromPoolID     *string `json:"from_pool_id,omitempty"`
	ToUserID       *string `json:"to_user_id,omitempty"`
	ToPoolID       *string `json:"to_pool_id,omitempty"`
	Amount         int64   `json:"amount" binding:"required,gt=0"` // Minor units
	Description    string  `json:"description"`
	Kind           string  `json:"transaction_type" binding:"required,transferkind"`
	IdempotencyKey *string `json:"idempotency_key,omitempty"`
}

// Parties extracts the request's party fields as domain transfer parties.
func (r CreateTransferRequest) Parties() domain.TransferParties {
	return domain.TransferParties{
		FromUserID: r.FromUserID,
		FromPoolID: r.FromPoolID,
		ToUserID:   r.ToUserID,
		ToPoolID:   r.ToPoolID,
	}
}

// AccountBalanceResponse is the post-commit balance of one affected account.
type AccountBalanceResponse struct {
	AccountKind      domain.AccountKind `json:"account_kind"`
	AccountID        string             `json:"account_id"`
	Balance          int64              `json:"balance"`
	BalanceFormatted string             `json:"balance_formatted"`
}

// TransferResponse is the API representation of a committed transfer.
type TransferResponse struct {
	TransferID      string                   `json:"transfer_id"`
	FromUserID      *string                  `json:"from_user_id,omitempty"`
	FromPoolID      *string                  `json:"from_pool_id,omitempty"`
	ToUserID        *string                  `json:"to_user_id,omitempty"`
	ToPoolID        *string                  `json:"to_pool_id,omitempty"`
	Amount          int64                    `json:"amount"`
	AmountFormatted string                   `json:"amount_formatted"`
	Description     string                   `json:"description"`
	Kind            domain.TransferKind      `json:"transaction_type"`
	CreatedAt       time.Time                `json:"created_at"`
	AccountBalances []AccountBalanceResponse `json:"account_balances,omitempty"`
}

// ListTransfersResponse wraps a page of transfer history.
type ListTransfersResponse struct {
	Transfers []TransferResponse `json:"transfers"`
}

// ToTransferResponse maps a domain transfer (and optional post-commit
// balances) to its API representation.
func ToTransferResponse(t domain.Transfer, balances []domain.AccountBalance, formatAmount func(int64) string) TransferResponse {
	resp := TransferResponse{
		TransferID:      t.TransferID,
		FromUserID:      t.FromUserID,
		FromPoolID:      t.FromPoolID,
		ToUserID:        t.ToUserID,
		ToPoolID:        t.ToPoolID,
		Amount:          t.Amount,
		AmountFormatted: formatAmount(t.Amount),
		Description:     t.Description,
		Kind:            t.Kind,
		CreatedAt:       t.CreatedAt,
	}
	for _, b := range balances {
		resp.AccountBalances = append(resp.AccountBalances, AccountBalanceResponse{
			AccountKind:      b.AccountKind,
			AccountID:        b.AccountID,
			Balance:          b.Balance,
			BalanceFormatted: formatAmount(b.Balance),
		})
	}
	return resp
}
