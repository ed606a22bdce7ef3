package handlers

import (
	"context"
	"io"

	"github.com/linkup/backend/internal/models"
	"github.com/linkup/backend/internal/social"
)

// AccountService captures the account operations required by the auth
// and user handlers.
type AccountService interface {
	SignUp(ctx context.Context, username, password, displayName string) (models.User, models.SessionTokens, error)
	Login(ctx context.Context, username, password string) (models.SessionTokens, error)
	Fetch(ctx context.Context, userID string) (models.User, error)
	UpdateProfile(ctx context.Context, userID, displayName string, avatar io.Reader, avatarName string) (models.User, error)
}

// SessionManager refreshes authentication tokens for users.
type SessionManager interface {
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
}

// SessionVerifier resolves an access token to a caller id before any
// mutating operation executes.
type SessionVerifier interface {
	Verify(ctx context.Context, accessToken string) (string, error)
}

// GraphService captures the friend-request lifecycle operations.
type GraphService interface {
	RequestFriend(ctx context.Context, requesterID, targetID string) error
	AcceptFriendRequest(ctx context.Context, accepterID, requesterID string) (models.Friendship, error)
}

// MessageService captures mirrored messaging operations.
type MessageService interface {
	Send(ctx context.Context, fromID, toID, text string) (models.Message, error)
	Conversation(ctx context.Context, ownerID, peerID string) ([]models.Message, error)
}

// PostService captures post lifecycle and engagement operations.
type PostService interface {
	Create(ctx context.Context, authorID, body string, media io.Reader, mediaName string) (models.PostView, error)
	List(ctx context.Context) ([]models.PostView, error)
	Delete(ctx context.Context, callerID, postID string) error
	Engage(ctx context.Context, callerID, postID string, action social.Action) (models.PostView, error)
}

// ProfileService serves public profile projections.
type ProfileService interface {
	Project(ctx context.Context, userID string) (models.Profile, error)
	ProjectByUsername(ctx context.Context, username string) (models.Profile, error)
	Invalidate(userIDs ...string)
}

// FriendNotifier is told when a friendship is established so the
// requester can be notified in real time.
type FriendNotifier interface {
	FriendAccepted(recipientID string, friendship models.Friendship)
}
