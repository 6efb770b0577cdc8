package pg

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to a scratch Postgres instance and lays down the
// minimal schema this package's queries touch. Skipped unless
// TEST_DATABASE_URL is set, since CI and most dev boxes don't carry a
// throwaway Postgres by default.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping postgres-backed store tests")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			display_name TEXT NOT NULL,
			email TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS channels (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS channel_permissions (
			user_id BIGINT NOT NULL,
			channel_id BIGINT NOT NULL,
			readable BOOLEAN NOT NULL DEFAULT false,
			sendable BOOLEAN NOT NULL DEFAULT false,
			PRIMARY KEY (user_id, channel_id)
		);
		CREATE TABLE IF NOT EXISTS chat_lines (
			id BIGINT PRIMARY KEY,
			author_id BIGINT NOT NULL,
			channel_id BIGINT NOT NULL,
			body TEXT NOT NULL,
			reply_to BIGINT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS games (
			id BIGINT PRIMARY KEY,
			is_stopped BOOLEAN NOT NULL DEFAULT false
		);
		CREATE TABLE IF NOT EXISTS game_users (
			game_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL,
			PRIMARY KEY (game_id, user_id)
		);
		CREATE TABLE IF NOT EXISTS game_channels (
			game_id BIGINT NOT NULL,
			channel_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (game_id, channel_id)
		);
	`)
	require.NoError(t, err)

	cleanup := func() {
		_, _ = pool.Exec(ctx, `
			TRUNCATE users, channels, channel_permissions, chat_lines,
			         games, game_users, game_channels
		`)
		pool.Close()
	}
	return pool, cleanup
}

func TestStore_CreateAndGetUser(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	s := New(pool)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "villager1", "hash", "Villager One", "v1@example.com")
	require.NoError(t, err)
	require.NotZero(t, u.ID)

	byName, err := s.GetUserByUsername(ctx, "villager1")
	require.NoError(t, err)
	require.Equal(t, u.ID, byName.ID)

	info, err := s.GetUserInfo(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "villager1", info.Username)

	all, err := s.GetAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestStore_ChannelPermissionsRoundTrip(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	s := New(pool)
	ctx := context.Background()

	require.NoError(t, s.CreateChannel(ctx, 1, "lobby"))

	u, err := s.CreateUser(ctx, "wolf1", "hash", "Wolf One", "w1@example.com")
	require.NoError(t, err)

	missing, err := s.GetPermission(ctx, u.ID, 1)
	require.NoError(t, err)
	require.False(t, missing.Readable)
	require.False(t, missing.Sendable)

	require.NoError(t, s.SetPermission(ctx, u.ID, 1, true, true))
	granted, err := s.GetPermission(ctx, u.ID, 1)
	require.NoError(t, err)
	require.True(t, granted.Readable)
	require.True(t, granted.Sendable)

	users, err := s.GetChannelUsers(ctx, 1)
	require.NoError(t, err)
	require.Contains(t, users, u.ID)

	require.NoError(t, s.SetPermission(ctx, u.ID, 1, false, false))
	revoked, err := s.GetPermission(ctx, u.ID, 1)
	require.NoError(t, err)
	require.False(t, revoked.Readable)
}

func TestStore_ActiveGameLifecycle(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	s := New(pool)
	ctx := context.Background()

	_, found, err := s.GetActiveGame(ctx)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, s.CreateGame(ctx, 42))

	active, found, err := s.GetActiveGame(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(42), active.ID)

	u, err := s.CreateUser(ctx, "seer1", "hash", "Seer One", "s1@example.com")
	require.NoError(t, err)
	require.NoError(t, s.AddGameUser(ctx, 42, u.ID))

	gameID, found, err := s.GetGameFromUser(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(42), gameID)

	require.NoError(t, s.AddGameChannel(ctx, 42, 100, "gameplay"))
	channels, err := s.GetGameChannels(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, int64(100), channels["gameplay"])

	fromChannel, found, err := s.GetGameFromChannel(ctx, 100)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(42), fromChannel)

	require.NoError(t, s.RemoveGameUser(ctx, 42, u.ID))
	require.NoError(t, s.DeleteGame(ctx, 42))
}
