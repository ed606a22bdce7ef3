package social

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/linkup/backend/internal/logging"
	"github.com/linkup/backend/internal/models"
)

// MinCredentialLength is the shortest accepted username, password, and
// display name.
const MinCredentialLength = 4

// UserStore is the persistence contract for account records.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	UpdateProfile(ctx context.Context, id, displayName, avatarRef string, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// TokenIssuer issues session tokens for a freshly authenticated user.
type TokenIssuer interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
}

// Accounts owns account creation and profile maintenance. Creation and
// token issuance form one recoverable unit: if issuing fails, the new
// account is compensated away rather than left unusable.
type Accounts struct {
	users         UserStore
	graph         *Graph
	issuer        TokenIssuer
	blobs         BlobStore
	bootstrapID   string
	defaultAvatar string
	now           func() time.Time
}

// NewAccounts constructs the account service. bootstrapID may be empty to
// disable the bootstrap friendship; blobs may be nil to disable avatar
// uploads.
func NewAccounts(users UserStore, graph *Graph, issuer TokenIssuer, blobs BlobStore, bootstrapID, defaultAvatar string) *Accounts {
	return &Accounts{
		users:         users,
		graph:         graph,
		issuer:        issuer,
		blobs:         blobs,
		bootstrapID:   bootstrapID,
		defaultAvatar: defaultAvatar,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// WithNowFunc overrides the time source. Useful for tests.
func (a *Accounts) WithNowFunc(now func() time.Time) *Accounts {
	a.now = now
	return a
}

// SignUp validates and creates the account, optionally establishes the
// configured bootstrap friendship, and issues the first session tokens.
func (a *Accounts) SignUp(ctx context.Context, username, password, displayName string) (models.User, models.SessionTokens, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	displayName = strings.TrimSpace(displayName)

	if len(username) < MinCredentialLength {
		return models.User{}, models.SessionTokens{}, fmt.Errorf("%w: username must be at least %d characters", ErrValidation, MinCredentialLength)
	}
	if len(password) < MinCredentialLength {
		return models.User{}, models.SessionTokens{}, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinCredentialLength)
	}
	if len(displayName) < MinCredentialLength {
		return models.User{}, models.SessionTokens{}, fmt.Errorf("%w: display name must be at least %d characters", ErrValidation, MinCredentialLength)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, models.SessionTokens{}, fmt.Errorf("hash password: %w", err)
	}

	now := a.now()
	user := models.User{
		ID:          uuid.NewString(),
		Username:    username,
		Password:    string(hashed),
		DisplayName: displayName,
		AvatarRef:   a.defaultAvatar,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := a.users.Create(ctx, user); err != nil {
		return models.User{}, models.SessionTokens{}, err
	}

	logger := logging.FromContext(ctx)

	if a.bootstrapID != "" && a.graph != nil {
		if err := a.graph.Bootstrap(ctx, a.bootstrapID, user.ID); err != nil {
			// Bootstrap is deployment-owned convenience, not part of the
			// account's consistency unit.
			logger.Warn("bootstrap friendship failed", "userId", user.ID, "error", err)
		}
	}

	tokens, err := a.issuer.Issue(ctx, user.ID)
	if err != nil {
		if delErr := a.users.Delete(ctx, user.ID); delErr != nil {
			logger.Error("compensating delete failed after token issuance error",
				"userId", user.ID, "issueError", err, "deleteError", delErr)
		}
		return models.User{}, models.SessionTokens{}, fmt.Errorf("%w: %v", ErrTokenIssue, err)
	}

	return user, tokens, nil
}

// Login verifies the credentials and issues fresh session tokens.
func (a *Accounts) Login(ctx context.Context, username, password string) (models.SessionTokens, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return models.SessionTokens{}, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	user, err := a.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.SessionTokens{}, ErrNotFound
		}
		return models.SessionTokens{}, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return models.SessionTokens{}, ErrNotFound
	}

	return a.issuer.Issue(ctx, user.ID)
}

// Fetch returns the full account record for the caller.
func (a *Accounts) Fetch(ctx context.Context, userID string) (models.User, error) {
	return a.users.FindByID(ctx, userID)
}

// UpdateProfile changes the caller's display name and, when an avatar
// stream is supplied, uploads it to the blob store first so the record
// never references a missing asset.
func (a *Accounts) UpdateProfile(ctx context.Context, userID, displayName string, avatar io.Reader, avatarName string) (models.User, error) {
	current, err := a.users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = current.DisplayName
	} else if len(displayName) < MinCredentialLength {
		return models.User{}, fmt.Errorf("%w: display name must be at least %d characters", ErrValidation, MinCredentialLength)
	}

	avatarRef := current.AvatarRef
	if avatar != nil {
		if a.blobs == nil {
			return models.User{}, fmt.Errorf("%w: avatar uploads are not configured", ErrValidation)
		}
		ref, err := a.blobs.Save(ctx, fmt.Sprintf("avatars/%s/%s", userID, avatarName), avatar)
		if err != nil {
			return models.User{}, fmt.Errorf("store avatar: %w", err)
		}
		avatarRef = ref
	}

	updatedAt := a.now()
	if err := a.users.UpdateProfile(ctx, userID, displayName, avatarRef, updatedAt); err != nil {
		return models.User{}, err
	}

	current.DisplayName = displayName
	current.AvatarRef = avatarRef
	current.UpdatedAt = updatedAt
	return current, nil
}
