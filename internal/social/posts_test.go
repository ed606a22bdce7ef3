package social

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/linkup/backend/internal/models"
)

type fakePostStore struct {
	posts        map[string]models.Post
	postLikes    map[string]map[string]bool
	comments     map[string][]models.Comment
	commentLikes map[string]map[string]bool
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{
		posts:        make(map[string]models.Post),
		postLikes:    make(map[string]map[string]bool),
		comments:     make(map[string][]models.Comment),
		commentLikes: make(map[string]map[string]bool),
	}
}

func (s *fakePostStore) CreatePost(_ context.Context, post models.Post) error {
	s.posts[post.ID] = post
	return nil
}

func (s *fakePostStore) GetPost(_ context.Context, postID string) (models.Post, error) {
	post, ok := s.posts[postID]
	if !ok {
		return models.Post{}, ErrNotFound
	}
	return post, nil
}

func (s *fakePostStore) DeletePost(_ context.Context, postID string) error {
	if _, ok := s.posts[postID]; !ok {
		return ErrNotFound
	}
	delete(s.posts, postID)
	delete(s.postLikes, postID)
	delete(s.comments, postID)
	return nil
}

func (s *fakePostStore) TogglePostLike(_ context.Context, postID, userID string) error {
	if _, ok := s.posts[postID]; !ok {
		return ErrNotFound
	}
	likes := s.postLikes[postID]
	if likes == nil {
		likes = make(map[string]bool)
		s.postLikes[postID] = likes
	}
	if likes[userID] {
		delete(likes, userID)
	} else {
		likes[userID] = true
	}
	return nil
}

func (s *fakePostStore) ToggleCommentLike(_ context.Context, postID, commentID, userID string) error {
	found := false
	for _, c := range s.comments[postID] {
		if c.ID == commentID {
			found = true
			break
		}
	}
	if !found {
		return ErrNotFound
	}
	likes := s.commentLikes[commentID]
	if likes == nil {
		likes = make(map[string]bool)
		s.commentLikes[commentID] = likes
	}
	if likes[userID] {
		delete(likes, userID)
	} else {
		likes[userID] = true
	}
	return nil
}

func (s *fakePostStore) AddComment(_ context.Context, comment models.Comment) error {
	if _, ok := s.posts[comment.PostID]; !ok {
		return ErrNotFound
	}
	s.comments[comment.PostID] = append(s.comments[comment.PostID], comment)
	return nil
}

func (s *fakePostStore) GetPostView(_ context.Context, postID string) (models.PostView, error) {
	post, ok := s.posts[postID]
	if !ok {
		return models.PostView{}, ErrNotFound
	}
	view := models.PostView{
		ID:        post.ID,
		Author:    models.PublicUser{ID: post.AuthorID},
		Body:      post.Body,
		MediaRef:  post.MediaRef,
		CreatedAt: post.CreatedAt,
		Likes:     []string{},
		Comments:  []models.CommentView{},
	}
	for userID := range s.postLikes[postID] {
		view.Likes = append(view.Likes, userID)
	}
	for _, c := range s.comments[postID] {
		cv := models.CommentView{
			ID:        c.ID,
			Author:    models.PublicUser{ID: c.AuthorID},
			Body:      c.Body,
			CreatedAt: c.CreatedAt,
			Likes:     []string{},
		}
		for userID := range s.commentLikes[c.ID] {
			cv.Likes = append(cv.Likes, userID)
		}
		view.Comments = append(view.Comments, cv)
	}
	return view, nil
}

func (s *fakePostStore) ListPosts(_ context.Context) ([]models.PostView, error) {
	views := []models.PostView{}
	for id := range s.posts {
		view, err := s.GetPostView(context.Background(), id)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func TestPostsCreate(t *testing.T) {
	ctx := context.Background()
	store := newFakePostStore()
	posts := NewPosts(store, nil)

	view, err := posts.Create(ctx, "u1", "  hello world  ", nil, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.Body != "hello world" {
		t.Fatalf("expected trimmed body, got %q", view.Body)
	}
	if view.Author.ID != "u1" {
		t.Fatalf("expected author u1, got %q", view.Author.ID)
	}

	if _, err := posts.Create(ctx, "u1", "hi", nil, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for short body, got %v", err)
	}
}

func TestPostsCreateWithMedia(t *testing.T) {
	ctx := context.Background()
	store := newFakePostStore()
	blobs := newFakeBlobStore()
	posts := NewPosts(store, blobs)

	view, err := posts.Create(ctx, "u1", "look at this", strings.NewReader("image-bytes"), "photo.jpg")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.MediaRef == "" {
		t.Fatal("expected media reference after upload")
	}
	if len(blobs.saved) != 1 {
		t.Fatalf("expected one stored blob, got %d", len(blobs.saved))
	}

	// Upload failures must leave no post behind.
	blobs.err = errors.New("bucket unavailable")
	if _, err := posts.Create(ctx, "u1", "another post", strings.NewReader("bytes"), "photo.jpg"); err == nil {
		t.Fatal("expected error when upload fails")
	}
	if len(store.posts) != 1 {
		t.Fatalf("expected only the first post to exist, got %d", len(store.posts))
	}
}

func TestPostsDeleteAuthorOnly(t *testing.T) {
	ctx := context.Background()
	store := newFakePostStore()
	posts := NewPosts(store, nil)

	view, err := posts.Create(ctx, "u1", "my post here", nil, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := posts.Delete(ctx, "u2", view.ID); !errors.Is(err, ErrNotAuthor) {
		t.Fatalf("expected ErrNotAuthor, got %v", err)
	}
	if _, err := store.GetPost(ctx, view.ID); err != nil {
		t.Fatalf("post must survive a rejected delete: %v", err)
	}

	if err := posts.Delete(ctx, "u1", view.ID); err != nil {
		t.Fatalf("author delete: %v", err)
	}
	if err := posts.Delete(ctx, "u1", view.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPostsEngageToggleLike(t *testing.T) {
	ctx := context.Background()
	store := newFakePostStore()
	posts := NewPosts(store, nil)

	view, err := posts.Create(ctx, "u1", "toggle me please", nil, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	liked, err := posts.Engage(ctx, "u2", view.ID, ToggleLike{})
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if len(liked.Likes) != 1 || liked.Likes[0] != "u2" {
		t.Fatalf("expected u2 in like set, got %+v", liked.Likes)
	}

	unliked, err := posts.Engage(ctx, "u2", view.ID, ToggleLike{})
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if len(unliked.Likes) != 0 {
		t.Fatalf("expected empty like set after second toggle, got %+v", unliked.Likes)
	}
}

func TestPostsEngageComments(t *testing.T) {
	ctx := context.Background()
	store := newFakePostStore()
	posts := NewPosts(store, nil)

	view, err := posts.Create(ctx, "u1", "discuss below", nil, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// The post-body minimum does not apply to comments; any non-empty
	// comment is accepted.
	short, err := posts.Engage(ctx, "u2", view.ID, AddComment{Body: "ok"})
	if err != nil {
		t.Fatalf("add short comment: %v", err)
	}
	if len(short.Comments) != 1 || short.Comments[0].Body != "ok" {
		t.Fatalf("expected the short comment appended, got %+v", short.Comments)
	}

	commented, err := posts.Engage(ctx, "u2", view.ID, AddComment{Body: "great point"})
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if len(commented.Comments) != 2 {
		t.Fatalf("expected two comments, got %d", len(commented.Comments))
	}
	commentID := commented.Comments[1].ID

	likedComment, err := posts.Engage(ctx, "u1", view.ID, ToggleCommentLike{CommentID: commentID})
	if err != nil {
		t.Fatalf("toggle comment like: %v", err)
	}
	if len(likedComment.Comments[1].Likes) != 1 {
		t.Fatalf("expected one comment like, got %+v", likedComment.Comments[1].Likes)
	}

	if _, err := posts.Engage(ctx, "u1", view.ID, ToggleCommentLike{CommentID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown comment, got %v", err)
	}
}

func TestPostsEngageUnknownAction(t *testing.T) {
	posts := NewPosts(newFakePostStore(), nil)

	if _, err := posts.Engage(context.Background(), "u1", "p1", nil); !errors.Is(err, ErrNoAction) {
		t.Fatalf("expected ErrNoAction, got %v", err)
	}
}
