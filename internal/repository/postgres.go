package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/memberguard/block-registry/internal/db"
	"github.com/memberguard/block-registry/internal/models"
)

// PostgresBlockRepository stores block records in the user_blocks table.
// A NULL expires_at means the block never expires.
type PostgresBlockRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresBlockRepository creates a new PostgresBlockRepository.
func NewPostgresBlockRepository(pool *pgxpool.Pool) *PostgresBlockRepository {
	return &PostgresBlockRepository{pool: pool}
}

// GetRecord retrieves the block record for a user.
func (r *PostgresBlockRepository) GetRecord(ctx context.Context, userID int64) (models.BlockRecord, error) {
	record := models.BlockRecord{UserID: userID}
	if err := ValidateUserID(userID); err != nil {
		return record, err
	}

	query := `
		SELECT blocked, expires_at
		FROM user_blocks
		WHERE user_id = $1
	`

	var expiresAt *time.Time
	err := db.WrapError(r.pool.QueryRow(ctx, query, userID).Scan(&record.Blocked, &expiresAt), "get block record")
	if db.IsNotFound(err) {
		return record, nil
	}
	if err != nil {
		return record, err
	}

	if expiresAt != nil {
		record.ExpiresAt = models.At(*expiresAt)
	}
	return record, nil
}

// SetBlocked upserts the block record in a single statement.
func (r *PostgresBlockRepository) SetBlocked(ctx context.Context, userID int64, exp models.Expiration) error {
	if err := ValidateUserID(userID); err != nil {
		return err
	}

	query := `
		INSERT INTO user_blocks (user_id, blocked, expires_at, updated_at)
		VALUES ($1, TRUE, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET blocked = TRUE, expires_at = EXCLUDED.expires_at, updated_at = NOW()
	`

	var expiresAt *time.Time
	if at, timed := exp.Time(); timed {
		expiresAt = &at
	}

	if _, err := r.pool.Exec(ctx, query, userID, expiresAt); err != nil {
		return db.WrapError(err, "set block record")
	}
	return nil
}

// ClearBlocked deletes the block record.
func (r *PostgresBlockRepository) ClearBlocked(ctx context.Context, userID int64) (bool, error) {
	if err := ValidateUserID(userID); err != nil {
		return false, err
	}

	result, err := r.pool.Exec(ctx, `DELETE FROM user_blocks WHERE user_id = $1`, userID)
	if err != nil {
		return false, db.WrapError(err, "clear block record")
	}
	return result.RowsAffected() > 0, nil
}

// ListBlockedUserIDs retrieves all currently blocked user ids.
func (r *PostgresBlockRepository) ListBlockedUserIDs(ctx context.Context, now time.Time, buffer time.Duration) ([]int64, error) {
	query := `
		SELECT user_id
		FROM user_blocks
		WHERE blocked AND (expires_at IS NULL OR expires_at > $1)
		ORDER BY user_id
	`

	rows, err := r.pool.Query(ctx, query, now.Add(-buffer).UTC())
	if err != nil {
		return nil, db.WrapError(err, "list blocked users")
	}
	defer rows.Close()

	userIDs := make([]int64, 0)
	for rows.Next() {
		var userID int64
		if err := rows.Scan(&userID); err != nil {
			return nil, db.WrapError(err, "scan blocked user id")
		}
		userIDs = append(userIDs, userID)
	}

	if err := rows.Err(); err != nil {
		return nil, db.WrapError(err, "iterate blocked users")
	}

	return userIDs, nil
}

// Ping checks the database connection.
func (r *PostgresBlockRepository) Ping(ctx context.Context) error {
	return db.WrapError(r.pool.Ping(ctx), "ping database")
}
