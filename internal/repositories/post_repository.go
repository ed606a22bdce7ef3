package repositories

import (
	"context"
	"errors"
	"fmt"

	crdbpgx "github.com/cockroachdb/cockroach-go/v2/crdb/crdbpgxv5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/linkup/backend/internal/db"
	"github.com/linkup/backend/internal/models"
	"github.com/linkup/backend/internal/social"
)

// PostgresPostRepository provides PostgreSQL-backed persistence for posts
// and their engagement state. Like toggles run inside one transaction so
// the add-if-absent/remove-if-present rule holds under concurrent calls.
type PostgresPostRepository struct {
	pool db.Pool
}

// NewPostgresPostRepository constructs a post repository backed by PostgreSQL.
func NewPostgresPostRepository(pool db.Pool) *PostgresPostRepository {
	return &PostgresPostRepository{pool: pool}
}

// CreatePost stores a new post record.
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post models.Post) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO posts (id, author_id, body, media_ref, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, post.ID, post.AuthorID, post.Body, post.MediaRef, post.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return social.ErrNotFound
		}
		return fmt.Errorf("insert post: %w", err)
	}

	return nil
}

// GetPost fetches the bare post record.
func (r *PostgresPostRepository) GetPost(ctx context.Context, postID string) (models.Post, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Post{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, author_id, body, media_ref, created_at
        FROM posts
        WHERE id = $1
    `, postID)

	var post models.Post
	if err := row.Scan(&post.ID, &post.AuthorID, &post.Body, &post.MediaRef, &post.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Post{}, social.ErrNotFound
		}
		return models.Post{}, fmt.Errorf("select post: %w", err)
	}

	return post, nil
}

// DeletePost removes a post. Likes and comments cascade at the schema level.
func (r *PostgresPostRepository) DeletePost(ctx context.Context, postID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM posts WHERE id = $1`, postID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return social.ErrNotFound
	}

	return nil
}

// TogglePostLike adds the user to the post's like set when absent and
// removes them when present.
func (r *PostgresPostRepository) TogglePostLike(ctx context.Context, postID, userID string) error {
	return crdbpgx.ExecuteTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, postID).Scan(&exists); err != nil {
			return fmt.Errorf("check post: %w", err)
		}
		if !exists {
			return social.ErrNotFound
		}

		tag, err := tx.Exec(ctx, `
            INSERT INTO post_likes (post_id, user_id)
            VALUES ($1, $2)
            ON CONFLICT (post_id, user_id) DO NOTHING
        `, postID, userID)
		if err != nil {
			return fmt.Errorf("insert post like: %w", err)
		}
		if tag.RowsAffected() > 0 {
			return nil
		}

		if _, err := tx.Exec(ctx, `
            DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2
        `, postID, userID); err != nil {
			return fmt.Errorf("delete post like: %w", err)
		}
		return nil
	})
}

// ToggleCommentLike toggles the user's membership in a comment's like
// set. The comment must belong to the given post.
func (r *PostgresPostRepository) ToggleCommentLike(ctx context.Context, postID, commentID, userID string) error {
	return crdbpgx.ExecuteTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `
            SELECT EXISTS (SELECT 1 FROM comments WHERE id = $1 AND post_id = $2)
        `, commentID, postID).Scan(&exists); err != nil {
			return fmt.Errorf("check comment: %w", err)
		}
		if !exists {
			return social.ErrNotFound
		}

		tag, err := tx.Exec(ctx, `
            INSERT INTO comment_likes (comment_id, user_id)
            VALUES ($1, $2)
            ON CONFLICT (comment_id, user_id) DO NOTHING
        `, commentID, userID)
		if err != nil {
			return fmt.Errorf("insert comment like: %w", err)
		}
		if tag.RowsAffected() > 0 {
			return nil
		}

		if _, err := tx.Exec(ctx, `
            DELETE FROM comment_likes WHERE comment_id = $1 AND user_id = $2
        `, commentID, userID); err != nil {
			return fmt.Errorf("delete comment like: %w", err)
		}
		return nil
	})
}

// AddComment appends a comment to a post.
func (r *PostgresPostRepository) AddComment(ctx context.Context, comment models.Comment) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO comments (id, post_id, author_id, body, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, comment.ID, comment.PostID, comment.AuthorID, comment.Body, comment.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return social.ErrNotFound
		}
		return fmt.Errorf("insert comment: %w", err)
	}

	return nil
}

// GetPostView assembles a single post with author, likes, and comments resolved.
func (r *PostgresPostRepository) GetPostView(ctx context.Context, postID string) (models.PostView, error) {
	views, err := r.listViews(ctx, `WHERE p.id = $1`, postID)
	if err != nil {
		return models.PostView{}, err
	}
	if len(views) == 0 {
		return models.PostView{}, social.ErrNotFound
	}
	return views[0], nil
}

// ListPosts returns all posts in reverse chronological order with authors
// and engagement resolved.
func (r *PostgresPostRepository) ListPosts(ctx context.Context) ([]models.PostView, error) {
	return r.listViews(ctx, ``)
}

func (r *PostgresPostRepository) listViews(ctx context.Context, where string, args ...any) ([]models.PostView, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT p.id, p.body, p.media_ref, p.created_at,
               u.id, u.username, u.display_name, u.avatar_ref
        FROM posts p
        JOIN users u ON u.id = p.author_id
        `+where+`
        ORDER BY p.created_at DESC
    `, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}

	var views []models.PostView
	index := make(map[string]int)
	for rows.Next() {
		var v models.PostView
		if err := rows.Scan(&v.ID, &v.Body, &v.MediaRef, &v.CreatedAt,
			&v.Author.ID, &v.Author.Username, &v.Author.DisplayName, &v.Author.AvatarRef); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan post: %w", err)
		}
		v.Likes = []string{}
		v.Comments = []models.CommentView{}
		index[v.ID] = len(views)
		views = append(views, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	if len(views) == 0 {
		return []models.PostView{}, nil
	}

	ids := make([]string, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}

	likeRows, err := conn.Query(ctx, `
        SELECT post_id, user_id FROM post_likes WHERE post_id = ANY($1)
    `, ids)
	if err != nil {
		return nil, fmt.Errorf("query post likes: %w", err)
	}
	for likeRows.Next() {
		var postID, userID string
		if err := likeRows.Scan(&postID, &userID); err != nil {
			likeRows.Close()
			return nil, fmt.Errorf("scan post like: %w", err)
		}
		if i, ok := index[postID]; ok {
			views[i].Likes = append(views[i].Likes, userID)
		}
	}
	likeRows.Close()
	if err := likeRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate post likes: %w", err)
	}

	commentRows, err := conn.Query(ctx, `
        SELECT c.id, c.post_id, c.body, c.created_at,
               u.id, u.username, u.display_name, u.avatar_ref
        FROM comments c
        JOIN users u ON u.id = c.author_id
        WHERE c.post_id = ANY($1)
        ORDER BY c.created_at, c.id
    `, ids)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	commentIndex := make(map[string][2]int)
	for commentRows.Next() {
		var cv models.CommentView
		var postID string
		if err := commentRows.Scan(&cv.ID, &postID, &cv.Body, &cv.CreatedAt,
			&cv.Author.ID, &cv.Author.Username, &cv.Author.DisplayName, &cv.Author.AvatarRef); err != nil {
			commentRows.Close()
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		cv.Likes = []string{}
		if i, ok := index[postID]; ok {
			commentIndex[cv.ID] = [2]int{i, len(views[i].Comments)}
			views[i].Comments = append(views[i].Comments, cv)
		}
	}
	commentRows.Close()
	if err := commentRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	clRows, err := conn.Query(ctx, `
        SELECT cl.comment_id, cl.user_id
        FROM comment_likes cl
        JOIN comments c ON c.id = cl.comment_id
        WHERE c.post_id = ANY($1)
    `, ids)
	if err != nil {
		return nil, fmt.Errorf("query comment likes: %w", err)
	}
	for clRows.Next() {
		var commentID, userID string
		if err := clRows.Scan(&commentID, &userID); err != nil {
			clRows.Close()
			return nil, fmt.Errorf("scan comment like: %w", err)
		}
		if pos, ok := commentIndex[commentID]; ok {
			c := &views[pos[0]].Comments[pos[1]]
			c.Likes = append(c.Likes, userID)
		}
	}
	clRows.Close()
	if err := clRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comment likes: %w", err)
	}

	return views, nil
}

var _ social.PostStore = (*PostgresPostRepository)(nil)
