package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/yigit/learnhub/internal/db"
	"github.com/yigit/learnhub/internal/pkg/logger"
)

// TokenRepository stores revoked access token ids. It satisfies
// auth.Denylist.
type TokenRepository struct {
	db *db.Database
	sb squirrel.StatementBuilderType
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(database *db.Database) *TokenRepository {
	return &TokenRepository{
		db: database,
		sb: database.Builder(),
	}
}

// Revoke records tokenID as revoked until expiresAt. Revoking twice is a
// no-op.
func (r *TokenRepository) Revoke(ctx context.Context, userID int64, tokenID string, expiresAt time.Time) error {
	query, args, err := r.sb.Insert("revoked_tokens").
		Columns("token_id", "user_id", "expires_at", "created_at").
		Values(tokenID, userID, expiresAt.UTC(), time.Now().UTC()).
		Suffix("ON CONFLICT (token_id) DO NOTHING").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building revoke token SQL")
		return fmt.Errorf("failed to build revoke token query: %w", err)
	}

	if _, err := r.db.DB.ExecContext(ctx, query, args...); err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing revoke token query")
		return fmt.Errorf("error revoking token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID was revoked.
func (r *TokenRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	query, args, err := r.sb.Select("1").
		From("revoked_tokens").
		Where(squirrel.Eq{"token_id": tokenID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build revoked token query: %w", err)
	}

	var one int
	err = r.db.DB.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		logger.Error().Err(err).Msg("Error checking revoked token")
		return false, fmt.Errorf("error checking revoked token: %w", err)
	}
	return true, nil
}

// PurgeExpired deletes revocations of tokens that have expired anyway.
func (r *TokenRepository) PurgeExpired(ctx context.Context) (int64, error) {
	query, args, err := r.sb.Delete("revoked_tokens").
		Where(squirrel.Lt{"expires_at": time.Now().UTC()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build purge query: %w", err)
	}

	result, err := r.db.DB.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error purging revoked tokens")
		return 0, fmt.Errorf("error purging revoked tokens: %w", err)
	}
	return result.RowsAffected()
}
