package models

import "time"

// Transfer is the DB representation of an immutable transfer record.
// Rows are append-only: never updated, never deleted.
type Transfer struct {
	TransferID     string    `db:"transfer_id"`
	FromUserID     *string   `db:"from_user_id"`
	FromPoolID     *string   `db:"from_pool_id"`
	ToUserID       *string   `db:"to_user_id"`
	ToPoolID       *string   `db:"to_pool_id"`
	Amount         int64     `db:"amount"` // Minor units, positive
	Description    string    `db:"description"`
	Kind           string    `db:"kind"`
	IdempotencyKey *string   `db:"idempotency_key"`
	CreatedAt      time.Time `db:"created_at"`
	CreatedBy      string    `db:"created_by"`
}
