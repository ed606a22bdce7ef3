package social

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/linkup/backend/internal/models"
)

// MinPostLength is the shortest accepted post body.
const MinPostLength = 4

// PostStore is the persistence contract for posts and their engagement
// state. Toggle operations are expected to be atomic per row so that
// repeated calls alternate membership (like, then unlike).
type PostStore interface {
	CreatePost(ctx context.Context, post models.Post) error
	ListPosts(ctx context.Context) ([]models.PostView, error)
	GetPost(ctx context.Context, postID string) (models.Post, error)
	GetPostView(ctx context.Context, postID string) (models.PostView, error)
	DeletePost(ctx context.Context, postID string) error
	TogglePostLike(ctx context.Context, postID, userID string) error
	ToggleCommentLike(ctx context.Context, postID, commentID, userID string) error
	AddComment(ctx context.Context, comment models.Comment) error
}

// BlobStore persists binary assets and returns a stable reference.
type BlobStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// Posts owns the post lifecycle and the engagement state machine.
type Posts struct {
	store PostStore
	blobs BlobStore
	now   func() time.Time
}

// NewPosts constructs the post service. The blob store may be nil when
// media uploads are disabled.
func NewPosts(store PostStore, blobs BlobStore) *Posts {
	return &Posts{
		store: store,
		blobs: blobs,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithNowFunc overrides the time source. Useful for tests.
func (p *Posts) WithNowFunc(now func() time.Time) *Posts {
	p.now = now
	return p
}

// Create validates and persists a new post, uploading media first when
// provided so a stored post never references a missing asset.
func (p *Posts) Create(ctx context.Context, authorID, body string, media io.Reader, mediaName string) (models.PostView, error) {
	body = strings.TrimSpace(body)
	if len(body) < MinPostLength {
		return models.PostView{}, fmt.Errorf("%w: post body must be at least %d characters", ErrValidation, MinPostLength)
	}

	post := models.Post{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: p.now(),
	}

	if media != nil {
		if p.blobs == nil {
			return models.PostView{}, fmt.Errorf("%w: media uploads are not configured", ErrValidation)
		}
		ref, err := p.blobs.Save(ctx, fmt.Sprintf("posts/%s/%s", post.ID, mediaName), media)
		if err != nil {
			return models.PostView{}, fmt.Errorf("store post media: %w", err)
		}
		post.MediaRef = ref
	}

	if err := p.store.CreatePost(ctx, post); err != nil {
		return models.PostView{}, fmt.Errorf("create post: %w", err)
	}

	return p.store.GetPostView(ctx, post.ID)
}

// List returns all posts in reverse chronological order with authors and
// comment authors resolved to their public tuples.
func (p *Posts) List(ctx context.Context) ([]models.PostView, error) {
	return p.store.ListPosts(ctx)
}

// Delete removes a post. Only the author may delete; anyone else gets
// ErrNotAuthor and the post is left untouched.
func (p *Posts) Delete(ctx context.Context, callerID, postID string) error {
	post, err := p.store.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != callerID {
		return ErrNotAuthor
	}
	return p.store.DeletePost(ctx, postID)
}

// Engage applies exactly one resolved engagement action against a post
// and returns the updated post view.
func (p *Posts) Engage(ctx context.Context, callerID, postID string, action Action) (models.PostView, error) {
	switch a := action.(type) {
	case ToggleLike:
		if err := p.store.TogglePostLike(ctx, postID, callerID); err != nil {
			return models.PostView{}, err
		}
	case ToggleCommentLike:
		if err := p.store.ToggleCommentLike(ctx, postID, a.CommentID, callerID); err != nil {
			return models.PostView{}, err
		}
	case AddComment:
		comment := models.Comment{
			ID:        uuid.NewString(),
			PostID:    postID,
			AuthorID:  callerID,
			Body:      a.Body,
			CreatedAt: p.now(),
		}
		if err := p.store.AddComment(ctx, comment); err != nil {
			return models.PostView{}, err
		}
	default:
		return models.PostView{}, ErrNoAction
	}

	return p.store.GetPostView(ctx, postID)
}
