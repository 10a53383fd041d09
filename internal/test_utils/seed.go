package test_utils

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// SeedUser inserts a plain user and returns its id.
func SeedUser(t *testing.T, db *pgxpool.Pool, username string) int {
	t.Helper()
	var id int
	err := db.QueryRow(context.Background(),
		`INSERT INTO users (uid, username, display_name) VALUES ($1, $2, $2) RETURNING id`,
		uuid.NewString(), username).Scan(&id)
	require.NoError(t, err)
	return id
}

// SeedPlan inserts a plan owned by ownerId and returns its id.
func SeedPlan(t *testing.T, db *pgxpool.Pool, ownerId int, title string) int {
	t.Helper()
	var id int
	err := db.QueryRow(context.Background(),
		`INSERT INTO holiday_plan (owner_id, title, share_slug) VALUES ($1, $2, $3) RETURNING id`,
		ownerId, title, uuid.New()).Scan(&id)
	require.NoError(t, err)
	return id
}

func SeedParticipant(t *testing.T, db *pgxpool.Pool, planId int, name string) int {
	t.Helper()
	var id int
	err := db.QueryRow(context.Background(),
		`INSERT INTO participant (plan_id, name) VALUES ($1, $2) RETURNING id`, planId, name).Scan(&id)
	require.NoError(t, err)
	return id
}
