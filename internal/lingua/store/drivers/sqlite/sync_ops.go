package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/lingua/internal/lingua/domain"
)

type syncOpsRepo struct {
	q querier
}

func (r *syncOpsRepo) GetResult(ctx context.Context, userID, opID string) (domain.OpResult, error) {
	var (
		res       domain.OpResult
		appliedAt int64
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT user_id, op_id, kind, status, card_id, error, applied_at
		FROM sync_ops WHERE user_id = ? AND op_id = ?`, userID, opID).
		Scan(&res.UserID, &res.OpID, &res.Kind, &res.Status, &res.CardID, &res.Error, &appliedAt)
	if err != nil {
		return domain.OpResult{}, mapNotFound(err)
	}
	res.AppliedAt = fromMillis(appliedAt)
	return res, nil
}

func (r *syncOpsRepo) RecordResult(ctx context.Context, res domain.OpResult) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO sync_ops (user_id, op_id, kind, status, card_id, error, applied_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		res.UserID, res.OpID, res.Kind, res.Status, res.CardID, res.Error, millis(res.AppliedAt))
	return mapConstraint(err)
}

func (r *syncOpsRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM sync_ops WHERE applied_at < ?`, millis(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
