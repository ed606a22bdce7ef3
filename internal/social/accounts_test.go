package social

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/linkup/backend/internal/models"
)

type fakeUserStore struct {
	users map[string]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.User)}
}

func (s *fakeUserStore) Create(_ context.Context, user models.User) error {
	for _, existing := range s.users {
		if existing.Username == user.Username {
			return ErrUsernameTaken
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

func (s *fakeUserStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *fakeUserStore) UpdateProfile(_ context.Context, id, displayName, avatarRef string, updatedAt time.Time) error {
	user, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	user.DisplayName = displayName
	user.AvatarRef = avatarRef
	user.UpdatedAt = updatedAt
	s.users[id] = user
	return nil
}

func (s *fakeUserStore) Delete(_ context.Context, id string) error {
	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

type fakeIssuer struct {
	err    error
	issued []string
}

func (i *fakeIssuer) Issue(_ context.Context, userID string) (models.SessionTokens, error) {
	if i.err != nil {
		return models.SessionTokens{}, i.err
	}
	i.issued = append(i.issued, userID)
	return models.SessionTokens{AccessToken: "access-" + userID, RefreshToken: "refresh-" + userID}, nil
}

type fakeBlobStore struct {
	saved map[string][]byte
	err   error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{saved: make(map[string][]byte)}
}

func (b *fakeBlobStore) Save(_ context.Context, name string, r io.Reader) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	b.saved[name] = data
	return "https://cdn.example.com/" + name, nil
}

func TestAccountsSignUp(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	issuer := &fakeIssuer{}
	accounts := NewAccounts(users, nil, issuer, nil, "", "")

	user, tokens, err := accounts.SignUp(ctx, "  Alice  ", "password", "Alice Example")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if user.Username != "alice" {
		t.Fatalf("expected normalized username, got %q", user.Username)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected tokens, got %+v", tokens)
	}

	stored, err := users.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("expected user to be stored: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("password")) != nil {
		t.Fatal("stored password is not hashed")
	}
}

func TestAccountsSignUpValidation(t *testing.T) {
	accounts := NewAccounts(newFakeUserStore(), nil, &fakeIssuer{}, nil, "", "")

	cases := []struct {
		name        string
		username    string
		password    string
		displayName string
	}{
		{"short username", "ab", "password", "Display Name"},
		{"short password", "alice", "pw", "Display Name"},
		{"short display name", "alice", "password", "ab"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := accounts.SignUp(context.Background(), tc.username, tc.password, tc.displayName)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestAccountsSignUpDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	accounts := NewAccounts(newFakeUserStore(), nil, &fakeIssuer{}, nil, "", "")

	if _, _, err := accounts.SignUp(ctx, "alice", "password", "Alice One"); err != nil {
		t.Fatalf("first sign up: %v", err)
	}
	if _, _, err := accounts.SignUp(ctx, "ALICE", "password", "Alice Two"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestAccountsSignUpCompensatesOnTokenFailure(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	issuer := &fakeIssuer{err: errors.New("session store down")}
	accounts := NewAccounts(users, nil, issuer, nil, "", "")

	_, _, err := accounts.SignUp(ctx, "alice", "password", "Alice Example")
	if !errors.Is(err, ErrTokenIssue) {
		t.Fatalf("expected ErrTokenIssue, got %v", err)
	}

	if len(users.users) != 0 {
		t.Fatalf("expected created account to be compensated away, %d users remain", len(users.users))
	}
}

func TestAccountsSignUpBootstrapFriendship(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	graphStore := newFakeGraphStore()
	graph := NewGraph(graphStore)
	accounts := NewAccounts(users, graph, &fakeIssuer{}, nil, "seed-user", "")

	user, _, err := accounts.SignUp(ctx, "alice", "password", "Alice Example")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if _, err := graphStore.Friendship(ctx, user.ID, "seed-user"); err != nil {
		t.Fatalf("expected bootstrap friendship, got %v", err)
	}
}

func TestAccountsLogin(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	issuer := &fakeIssuer{}
	accounts := NewAccounts(users, nil, issuer, nil, "", "")

	if _, _, err := accounts.SignUp(ctx, "alice", "password", "Alice Example"); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	tokens, err := accounts.Login(ctx, "alice", "password")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tokens.AccessToken == "" {
		t.Fatal("expected access token on login")
	}

	if _, err := accounts.Login(ctx, "alice", "wrong-password"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on bad password, got %v", err)
	}
	if _, err := accounts.Login(ctx, "nobody", "password"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestAccountsUpdateProfile(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	blobs := newFakeBlobStore()
	accounts := NewAccounts(users, nil, &fakeIssuer{}, blobs, "", "")

	user, _, err := accounts.SignUp(ctx, "alice", "password", "Alice Example")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	updated, err := accounts.UpdateProfile(ctx, user.ID, "Alice Renamed", strings.NewReader("image-bytes"), "avatar.png")
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}

	if updated.DisplayName != "Alice Renamed" {
		t.Fatalf("expected new display name, got %q", updated.DisplayName)
	}
	if updated.AvatarRef == "" {
		t.Fatal("expected avatar reference after upload")
	}
	if len(blobs.saved) != 1 {
		t.Fatalf("expected one stored blob, got %d", len(blobs.saved))
	}

	// A blank display name keeps the current one.
	kept, err := accounts.UpdateProfile(ctx, user.ID, "", nil, "")
	if err != nil {
		t.Fatalf("update with blank name: %v", err)
	}
	if kept.DisplayName != "Alice Renamed" {
		t.Fatalf("expected display name to be kept, got %q", kept.DisplayName)
	}
}
