package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	crdbpgx "github.com/cockroachdb/cockroach-go/v2/crdb/crdbpgxv5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/linkup/backend/internal/db"
	"github.com/linkup/backend/internal/logging"
	"github.com/linkup/backend/internal/models"
	"github.com/linkup/backend/internal/social"
)

// PostgresGraphRepository persists the friend graph: pending requests,
// symmetric friendship rows, and mirrored message threads. Every mutation
// touching both sides of a pair runs inside one retryable transaction
// holding ordered row locks on the pair, so the symmetry invariant can
// never be observed half-applied.
type PostgresGraphRepository struct {
	pool db.Pool
}

// NewPostgresGraphRepository constructs a graph repository backed by PostgreSQL.
func NewPostgresGraphRepository(pool db.Pool) *PostgresGraphRepository {
	return &PostgresGraphRepository{pool: pool}
}

// lockPair takes FOR UPDATE locks on both users' rows in canonical order,
// serializing concurrent graph operations on the same unordered pair.
// Returns social.ErrNotFound when either user does not exist.
func lockPair(ctx context.Context, tx pgx.Tx, a, b string) error {
	first, second := a, b
	if strings.Compare(first, second) > 0 {
		first, second = second, first
	}

	for _, id := range []string{first, second} {
		var locked string
		err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return social.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock user %s: %w", id, err)
		}
		if first == second {
			return nil
		}
	}
	return nil
}

// CreateRequest records a pending friend request after checking, under
// the pair lock, that the users are not friends and no request is pending
// in either direction.
func (r *PostgresGraphRepository) CreateRequest(ctx context.Context, request models.FriendRequest) error {
	return crdbpgx.ExecuteTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if err := lockPair(ctx, tx, request.RequesterID, request.TargetID); err != nil {
			return err
		}

		var friends bool
		err := tx.QueryRow(ctx, `
            SELECT EXISTS (
                SELECT 1 FROM friendships
                WHERE owner_id = $1 AND peer_id = $2
            )
        `, request.RequesterID, request.TargetID).Scan(&friends)
		if err != nil {
			return fmt.Errorf("check friendship: %w", err)
		}
		if friends {
			return social.ErrAlreadyFriends
		}

		var pending bool
		err = tx.QueryRow(ctx, `
            SELECT EXISTS (
                SELECT 1 FROM friend_requests
                WHERE (requester_id = $1 AND target_id = $2)
                   OR (requester_id = $2 AND target_id = $1)
            )
        `, request.RequesterID, request.TargetID).Scan(&pending)
		if err != nil {
			return fmt.Errorf("check pending request: %w", err)
		}
		if pending {
			return social.ErrAlreadyRequested
		}

		if _, err := tx.Exec(ctx, `
            INSERT INTO friend_requests (requester_id, target_id, created_at)
            VALUES ($1, $2, $3)
        `, request.RequesterID, request.TargetID, request.CreatedAt); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return social.ErrAlreadyRequested
			}
			return fmt.Errorf("insert friend request: %w", err)
		}

		return nil
	})
}

// AcceptRequest converts the pending request into two symmetric
// friendship rows sharing conversationID. The pending bookkeeping is
// cleared in both directions so no stale entry can survive acceptance,
// whichever way the original request was keyed.
func (r *PostgresGraphRepository) AcceptRequest(ctx context.Context, accepterID, requesterID, conversationID string, at time.Time) error {
	ctx, span := logging.StartSpan(ctx, "graph.accept_request")
	defer span.End()

	return crdbpgx.ExecuteTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if err := lockPair(ctx, tx, accepterID, requesterID); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
            DELETE FROM friend_requests
            WHERE requester_id = $1 AND target_id = $2
        `, requesterID, accepterID)
		if err != nil {
			return fmt.Errorf("clear pending request: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return social.ErrNoSuchRequest
		}

		if _, err := tx.Exec(ctx, `
            DELETE FROM friend_requests
            WHERE requester_id = $1 AND target_id = $2
        `, accepterID, requesterID); err != nil {
			return fmt.Errorf("clear reversed request: %w", err)
		}

		return insertFriendshipPair(ctx, tx, accepterID, requesterID, conversationID, at)
	})
}

// Establish inserts a symmetric friendship without a preceding request.
func (r *PostgresGraphRepository) Establish(ctx context.Context, ownerID, peerID, conversationID string, at time.Time) error {
	if ownerID == peerID {
		return social.ErrSelfRequest
	}
	return crdbpgx.ExecuteTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if err := lockPair(ctx, tx, ownerID, peerID); err != nil {
			return err
		}
		return insertFriendshipPair(ctx, tx, ownerID, peerID, conversationID, at)
	})
}

func insertFriendshipPair(ctx context.Context, tx pgx.Tx, a, b, conversationID string, at time.Time) error {
	if _, err := tx.Exec(ctx, `
        INSERT INTO friendships (owner_id, peer_id, conversation_id, created_at)
        VALUES ($1, $2, $3, $4), ($2, $1, $3, $4)
    `, a, b, conversationID, at); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return social.ErrAlreadyFriends
			case "23503":
				return social.ErrNotFound
			}
		}
		return fmt.Errorf("insert friendship pair: %w", err)
	}
	return nil
}

// Friendship returns owner's side of the relation with peer.
func (r *PostgresGraphRepository) Friendship(ctx context.Context, ownerID, peerID string) (models.Friendship, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Friendship{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT owner_id, peer_id, conversation_id, created_at
        FROM friendships
        WHERE owner_id = $1 AND peer_id = $2
    `, ownerID, peerID)

	var f models.Friendship
	if err := row.Scan(&f.OwnerID, &f.PeerID, &f.ConversationID, &f.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Friendship{}, social.ErrNotFriends
		}
		return models.Friendship{}, fmt.Errorf("select friendship: %w", err)
	}

	return f, nil
}

// AppendMessage appends the message to both participants' threads in one
// transaction. The insert is idempotent on the message id, so a retried
// append cannot produce duplicate delivery.
func (r *PostgresGraphRepository) AppendMessage(ctx context.Context, msg models.Message) error {
	ctx, span := logging.StartSpan(ctx, "graph.append_message")
	defer span.End()

	return crdbpgx.ExecuteTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var sides int
		err := tx.QueryRow(ctx, `
            SELECT COUNT(*) FROM friendships
            WHERE conversation_id = $1
              AND ((owner_id = $2 AND peer_id = $3) OR (owner_id = $3 AND peer_id = $2))
        `, msg.ConversationID, msg.SenderID, msg.ReceiverID).Scan(&sides)
		if err != nil {
			return fmt.Errorf("verify conversation: %w", err)
		}
		if sides != 2 {
			return social.ErrNotFriends
		}

		if _, err := tx.Exec(ctx, `
            INSERT INTO messages (id, owner_id, conversation_id, sender_id, receiver_id, body, sent_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7), ($1, $5, $3, $4, $5, $6, $7)
            ON CONFLICT (id, owner_id) DO NOTHING
        `, msg.ID, msg.SenderID, msg.ConversationID, msg.SenderID, msg.ReceiverID, msg.Body, msg.SentAt); err != nil {
			return fmt.Errorf("insert mirrored message: %w", err)
		}

		return nil
	})
}

// Messages lists owner's copy of the conversation with peer in send order.
func (r *PostgresGraphRepository) Messages(ctx context.Context, ownerID, peerID string) ([]models.Message, error) {
	if _, err := r.Friendship(ctx, ownerID, peerID); err != nil {
		return nil, err
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT m.id, m.conversation_id, m.sender_id, m.receiver_id, m.body, m.sent_at
        FROM messages m
        JOIN friendships f ON f.conversation_id = m.conversation_id AND f.owner_id = m.owner_id
        WHERE m.owner_id = $1 AND f.peer_id = $2
        ORDER BY m.sent_at, m.id
    `, ownerID, peerID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.ReceiverID, &m.Body, &m.SentAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return msgs, nil
}

// CountAsymmetricFriendships reports friendship rows whose mirror is
// missing. A non-zero count means the symmetry invariant was violated and
// needs operator reconciliation; it should be alerted on, never silently
// repaired.
func (r *PostgresGraphRepository) CountAsymmetricFriendships(ctx context.Context) (int, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var count int
	err = conn.QueryRow(ctx, `
        SELECT COUNT(*)
        FROM friendships f
        WHERE NOT EXISTS (
            SELECT 1 FROM friendships mirror
            WHERE mirror.owner_id = f.peer_id
              AND mirror.peer_id = f.owner_id
              AND mirror.conversation_id = f.conversation_id
        )
    `).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count asymmetric friendships: %w", err)
	}

	return count, nil
}

var _ social.GraphStore = (*PostgresGraphRepository)(nil)
