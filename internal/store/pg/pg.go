// Package pg is the concrete persistence port implementation, backed by
// pgx/v5 with raw SQL throughout. Wrapping it behind store.Store keeps
// the core game/chat packages free of a pgx import.
package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/duskwatch/werewolf/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) CreateUser(ctx context.Context, username, passwordHash, displayName, email string) (models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (username, password_hash, display_name, email)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, display_name, email, created_at
	`, username, passwordHash, displayName, email).Scan(&u.ID, &u.Username, &u.DisplayName, &u.Email, &u.CreatedAt)
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, display_name, email, created_at
		FROM users WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.DisplayName, &u.Email, &u.CreatedAt)
	if err != nil {
		return models.User{}, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

func (s *Store) GetUserInfo(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, display_name, email, created_at
		FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Username, &u.DisplayName, &u.Email, &u.CreatedAt)
	if err != nil {
		return models.User{}, fmt.Errorf("get user info: %w", err)
	}
	return u, nil
}

func (s *Store) GetAllUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, username, display_name, email, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("get all users: %w", err)
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.DisplayName, &u.Email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) CreateChannel(ctx context.Context, id int64, name string) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO channels (id, name) VALUES ($1, $2)`, id, name)
	if err != nil {
		return fmt.Errorf("create channel: %w", err)
	}
	return nil
}

func (s *Store) GetPermission(ctx context.Context, userID, channelID int64) (models.ChannelPermission, error) {
	var p models.ChannelPermission
	p.UserID, p.ChannelID = userID, channelID
	err := s.pool.QueryRow(ctx, `
		SELECT readable, sendable FROM channel_permissions WHERE user_id = $1 AND channel_id = $2
	`, userID, channelID).Scan(&p.Readable, &p.Sendable)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ChannelPermission{UserID: userID, ChannelID: channelID}, nil
	}
	if err != nil {
		return models.ChannelPermission{}, fmt.Errorf("get permission: %w", err)
	}
	return p, nil
}

func (s *Store) GetAllPermissions(ctx context.Context, userID int64) ([]models.ChannelPermission, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT channel_id, readable, sendable FROM channel_permissions WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("get all permissions: %w", err)
	}
	defer rows.Close()

	var out []models.ChannelPermission
	for rows.Next() {
		p := models.ChannelPermission{UserID: userID}
		if err := rows.Scan(&p.ChannelID, &p.Readable, &p.Sendable); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) SetPermission(ctx context.Context, userID, channelID int64, readable, sendable bool) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO channel_permissions (user_id, channel_id, readable, sendable)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, channel_id) DO UPDATE SET readable = $3, sendable = $4
	`, userID, channelID, readable, sendable)
	if err != nil {
		return fmt.Errorf("set permission: %w", err)
	}
	return nil
}

func (s *Store) SendMessage(ctx context.Context, line models.ChatLine) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO chat_lines (id, author_id, channel_id, body, reply_to, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, line.ID, line.AuthorID, line.ChannelID, line.Body, line.ReplyTo, line.CreatedAt)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (s *Store) GetMessages(ctx context.Context, channelID int64, offset, limit int) ([]models.ChatLine, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, author_id, channel_id, body, reply_to, created_at
		FROM chat_lines WHERE channel_id = $1
		ORDER BY id DESC OFFSET $2 LIMIT $3
	`, channelID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}
	defer rows.Close()

	var out []models.ChatLine
	for rows.Next() {
		var l models.ChatLine
		if err := rows.Scan(&l.ID, &l.AuthorID, &l.ChannelID, &l.Body, &l.ReplyTo, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) GetChannelUsers(ctx context.Context, channelID int64) ([]int64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT user_id FROM channel_permissions WHERE channel_id = $1 AND readable = true
	`, channelID)
	if err != nil {
		return nil, fmt.Errorf("get channel users: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var uid int64
		if err := rows.Scan(&uid); err != nil {
			return nil, fmt.Errorf("scan channel user: %w", err)
		}
		out = append(out, uid)
	}
	return out, rows.Err()
}

func (s *Store) DeleteChannel(ctx context.Context, id int64) error {
	// Permissions cascade with the channel row: revoked by deleting the
	// channel itself rather than clearing grants one by one.
	_, err := s.pool.Exec(ctx, `DELETE FROM channels WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}
	return nil
}

func (s *Store) CreateGame(ctx context.Context, id int64) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO games (id, is_stopped) VALUES ($1, false)`, id)
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	return nil
}

func (s *Store) GetActiveGame(ctx context.Context) (models.GameRow, bool, error) {
	var g models.GameRow
	err := s.pool.QueryRow(ctx, `SELECT id, is_stopped FROM games WHERE is_stopped = false LIMIT 1`).
		Scan(&g.ID, &g.IsStopped)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.GameRow{}, false, nil
	}
	if err != nil {
		return models.GameRow{}, false, fmt.Errorf("get active game: %w", err)
	}
	return g, true, nil
}

func (s *Store) DeleteGame(ctx context.Context, id int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	return nil
}

func (s *Store) AddGameUser(ctx context.Context, gameID, userID int64) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO game_users (game_id, user_id) VALUES ($1, $2)`, gameID, userID)
	if err != nil {
		return fmt.Errorf("add game user: %w", err)
	}
	return nil
}

func (s *Store) RemoveGameUser(ctx context.Context, gameID, userID int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM game_users WHERE game_id = $1 AND user_id = $2`, gameID, userID)
	if err != nil {
		return fmt.Errorf("remove game user: %w", err)
	}
	return nil
}

func (s *Store) AddGameChannel(ctx context.Context, gameID, channelID int64, name string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO game_channels (game_id, channel_id, name) VALUES ($1, $2, $3)
	`, gameID, channelID, name)
	if err != nil {
		return fmt.Errorf("add game channel: %w", err)
	}
	return nil
}

func (s *Store) GetGameChannels(ctx context.Context, gameID int64) (map[string]int64, error) {
	rows, err := s.pool.Query(ctx, `SELECT name, channel_id FROM game_channels WHERE game_id = $1`, gameID)
	if err != nil {
		return nil, fmt.Errorf("get game channels: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var name string
		var channelID int64
		if err := rows.Scan(&name, &channelID); err != nil {
			return nil, fmt.Errorf("scan game channel: %w", err)
		}
		out[name] = channelID
	}
	return out, rows.Err()
}

func (s *Store) GetGameUsers(ctx context.Context, gameID int64) ([]int64, error) {
	rows, err := s.pool.Query(ctx, `SELECT user_id FROM game_users WHERE game_id = $1`, gameID)
	if err != nil {
		return nil, fmt.Errorf("get game users: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var uid int64
		if err := rows.Scan(&uid); err != nil {
			return nil, fmt.Errorf("scan game user: %w", err)
		}
		out = append(out, uid)
	}
	return out, rows.Err()
}

func (s *Store) GetGameFromUser(ctx context.Context, userID int64) (int64, bool, error) {
	var gameID int64
	err := s.pool.QueryRow(ctx, `SELECT game_id FROM game_users WHERE user_id = $1 LIMIT 1`, userID).Scan(&gameID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get game from user: %w", err)
	}
	return gameID, true, nil
}

func (s *Store) GetGameFromChannel(ctx context.Context, channelID int64) (int64, bool, error) {
	var gameID int64
	err := s.pool.QueryRow(ctx, `SELECT game_id FROM game_channels WHERE channel_id = $1 LIMIT 1`, channelID).Scan(&gameID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get game from channel: %w", err)
	}
	return gameID, true, nil
}
