package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/linkup/backend/internal/db"
	"github.com/linkup/backend/internal/models"
	"github.com/linkup/backend/internal/social"
)

// PostgresUserRepository provides PostgreSQL-backed persistence for users
// and serves the public profile projection.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new user record.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, username, password_hash, display_name, avatar_ref, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, user.ID, user.Username, user.Password, user.DisplayName, user.AvatarRef, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return social.ErrUsernameTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// FindByID fetches a user by id.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	return r.findBy(ctx, `WHERE id = $1`, id)
}

// FindByUsername fetches a user by username.
func (r *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return r.findBy(ctx, `WHERE username = $1`, username)
}

func (r *PostgresUserRepository) findBy(ctx context.Context, where string, arg any) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, username, password_hash, display_name, avatar_ref, created_at, updated_at
        FROM users `+where, arg)

	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.Password, &user.DisplayName, &user.AvatarRef, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, social.ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user: %w", err)
	}

	return user, nil
}

// UpdateProfile modifies the mutable public fields of a user record.
func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, id, displayName, avatarRef string, updatedAt time.Time) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET display_name = $2, avatar_ref = $3, updated_at = $4
        WHERE id = $1
    `, id, displayName, avatarRef, updatedAt)
	if err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return social.ErrNotFound
	}

	return nil
}

// Delete removes a user record. Used as the compensating action when
// token issuance fails after account creation.
func (r *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return social.ErrNotFound
	}

	return nil
}

// Project assembles the public profile for a user id: display fields plus
// friends and pending requests resolved to the restricted tuple. The
// credential hash and message bodies are never selected.
func (r *PostgresUserRepository) Project(ctx context.Context, userID string) (models.Profile, error) {
	return r.project(ctx, `WHERE id = $1`, userID)
}

// ProjectByUsername assembles the public profile for a username.
func (r *PostgresUserRepository) ProjectByUsername(ctx context.Context, username string) (models.Profile, error) {
	return r.project(ctx, `WHERE username = $1`, username)
}

func (r *PostgresUserRepository) project(ctx context.Context, where string, arg any) (models.Profile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Profile{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, username, display_name, avatar_ref
        FROM users `+where, arg)

	var profile models.Profile
	if err := row.Scan(&profile.ID, &profile.Username, &profile.DisplayName, &profile.AvatarRef); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Profile{}, social.ErrNotFound
		}
		return models.Profile{}, fmt.Errorf("select profile: %w", err)
	}

	profile.Friends, err = queryPublicUsers(ctx, conn, `
        SELECT u.id, u.username, u.display_name, u.avatar_ref
        FROM friendships f
        JOIN users u ON u.id = f.peer_id
        WHERE f.owner_id = $1
        ORDER BY f.created_at
    `, profile.ID)
	if err != nil {
		return models.Profile{}, fmt.Errorf("resolve friends: %w", err)
	}

	profile.SentRequests, err = queryPublicUsers(ctx, conn, `
        SELECT u.id, u.username, u.display_name, u.avatar_ref
        FROM friend_requests r
        JOIN users u ON u.id = r.target_id
        WHERE r.requester_id = $1
        ORDER BY r.created_at
    `, profile.ID)
	if err != nil {
		return models.Profile{}, fmt.Errorf("resolve sent requests: %w", err)
	}

	profile.ReceivedRequests, err = queryPublicUsers(ctx, conn, `
        SELECT u.id, u.username, u.display_name, u.avatar_ref
        FROM friend_requests r
        JOIN users u ON u.id = r.requester_id
        WHERE r.target_id = $1
        ORDER BY r.created_at
    `, profile.ID)
	if err != nil {
		return models.Profile{}, fmt.Errorf("resolve received requests: %w", err)
	}

	return profile, nil
}

type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryPublicUsers(ctx context.Context, q pgxQuerier, sql string, args ...any) ([]models.PublicUser, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.PublicUser{}
	for rows.Next() {
		var u models.PublicUser
		if err := rows.Scan(&u.ID, &u.Username, &u.DisplayName, &u.AvatarRef); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

var _ social.UserStore = (*PostgresUserRepository)(nil)
var _ social.ProfileStore = (*PostgresUserRepository)(nil)
