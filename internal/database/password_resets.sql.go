package database

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const createPasswordReset = `-- name: CreatePasswordReset :one
INSERT INTO password_resets (id, user_id, hashed_otp, created_at, expires_at)
VALUES (gen_random_uuid(), $1, $2, NOW(), $3)
RETURNING id, user_id, hashed_otp, created_at, expires_at, used_at`

type CreatePasswordResetParams struct {
	UserID    uuid.UUID `json:"user_id"`
	HashedOtp string    `json:"hashed_otp"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (q *Queries) CreatePasswordReset(ctx context.Context, arg CreatePasswordResetParams) (PasswordReset, error) {
	row := q.db.QueryRow(ctx, createPasswordReset, arg.UserID, arg.HashedOtp, arg.ExpiresAt)
	var i PasswordReset
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.HashedOtp,
		&i.CreatedAt,
		&i.ExpiresAt,
		&i.UsedAt,
	)
	return i, err
}

const invalidatePasswordResets = `-- name: InvalidatePasswordResets :exec
UPDATE password_resets SET used_at = NOW()
WHERE user_id = $1 AND used_at IS NULL`

// InvalidatePasswordResets marks all outstanding one time passwords for the user as used
func (q *Queries) InvalidatePasswordResets(ctx context.Context, userID uuid.UUID) error {
	_, err := q.db.Exec(ctx, invalidatePasswordResets, userID)
	return err
}

const consumePasswordReset = `-- name: ConsumePasswordReset :execrows
UPDATE password_resets SET used_at = NOW()
WHERE user_id = $1
  AND hashed_otp = $2
  AND used_at IS NULL
  AND expires_at > NOW()`

type ConsumePasswordResetParams struct {
	UserID    uuid.UUID `json:"user_id"`
	HashedOtp string    `json:"hashed_otp"`
}

// ConsumePasswordReset marks a matching unexpired one time password as used.
// Zero rows affected means the OTP was wrong, expired or already used.
func (q *Queries) ConsumePasswordReset(ctx context.Context, arg ConsumePasswordResetParams) (int64, error) {
	result, err := q.db.Exec(ctx, consumePasswordReset, arg.UserID, arg.HashedOtp)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteExpiredPasswordResets = `-- name: DeleteExpiredPasswordResets :execrows
DELETE FROM password_resets
WHERE expires_at < NOW() OR used_at IS NOT NULL`

func (q *Queries) DeleteExpiredPasswordResets(ctx context.Context) (int64, error) {
	result, err := q.db.Exec(ctx, deleteExpiredPasswordResets)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
