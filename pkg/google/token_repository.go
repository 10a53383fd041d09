package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// TokenRepository keeps one Google authorization per user. A login first stores a nonce which the
// OAuth callback later exchanges for the token.
type TokenRepository interface {
	StartLogin(ctx context.Context, userId int, nonce string) error
	// CompleteLogin stores token for the login started with nonce. It reports false for unknown nonces.
	CompleteLogin(ctx context.Context, nonce string, token *oauth2.Token) (bool, error)
	// GetToken returns nil when the user has not connected Google.
	GetToken(ctx context.Context, userId int) (*oauth2.Token, error)
	Delete(ctx context.Context, userId int) error
}

type TokenRepositoryImpl struct {
	db *pgxpool.Pool
}

func NewTokenRepository(db *pgxpool.Pool) *TokenRepositoryImpl {
	return &TokenRepositoryImpl{db: db}
}

func (r *TokenRepositoryImpl) StartLogin(ctx context.Context, userId int, nonce string) error {
	_, err := r.db.Exec(ctx, `INSERT INTO google_calendar_auth (user_id, nonce) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET nonce = $2, access_token = NULL, refresh_token = NULL, expiry = NULL`,
		userId, nonce)
	if err != nil {
		err := fmt.Errorf("failed to store Google auth nonce for user %d: %w", userId, err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *TokenRepositoryImpl) CompleteLogin(ctx context.Context, nonce string, token *oauth2.Token) (bool, error) {
	result, err := r.db.Exec(ctx,
		`UPDATE google_calendar_auth SET access_token = $1, refresh_token = $2, expiry = $3 WHERE nonce = $4`,
		token.AccessToken, token.RefreshToken, token.Expiry, nonce)
	if err != nil {
		err := fmt.Errorf("unable to store Google auth token: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *TokenRepositoryImpl) GetToken(ctx context.Context, userId int) (*oauth2.Token, error) {
	var token oauth2.Token
	var expiry *time.Time
	err := r.db.QueryRow(ctx,
		`SELECT access_token, COALESCE(refresh_token, ''), expiry FROM google_calendar_auth
		 WHERE user_id = $1 AND access_token IS NOT NULL`, userId).
		Scan(&token.AccessToken, &token.RefreshToken, &expiry)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Google auth token: %w", err)
	}
	if expiry != nil {
		token.Expiry = *expiry
	}
	return &token, nil
}

func (r *TokenRepositoryImpl) Delete(ctx context.Context, userId int) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM google_calendar_auth WHERE user_id = $1`, userId); err != nil {
		err := fmt.Errorf("failed to delete Google auth row for user %d: %w", userId, err)
		log.Error(err)
		return err
	}
	return nil
}
