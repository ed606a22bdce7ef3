package models

import "time"

// User represents an account within the LinkUp platform. Password holds
// the bcrypt hash, never the plaintext credential.
type User struct {
	ID          string
	Username    string
	Password    string
	DisplayName string
	AvatarRef   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PublicUser is the restricted field set exposed when resolving user
// references inside profiles, posts, and comments.
type PublicUser struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	AvatarRef   string `json:"avatarRef"`
}

// Friendship is one side of the symmetric relation between two users.
// Both sides carry the same conversation id.
type Friendship struct {
	OwnerID        string
	PeerID         string
	ConversationID string
	CreatedAt      time.Time
}

// FriendRequest records a pending one-directional intent to befriend.
type FriendRequest struct {
	RequesterID string
	TargetID    string
	CreatedAt   time.Time
}

// Message is a single chat message. It is stored twice, once per thread
// owner, and the two copies are field-identical apart from the owning side.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	ReceiverID     string    `json:"receiverId"`
	Body           string    `json:"body"`
	SentAt         time.Time `json:"sentAt"`
}

// Profile is the public-facing projection of a user: friend and request
// references resolved to PublicUser tuples, nothing else.
type Profile struct {
	ID               string       `json:"id"`
	Username         string       `json:"username"`
	DisplayName      string       `json:"displayName"`
	AvatarRef        string       `json:"avatarRef"`
	Friends          []PublicUser `json:"friends"`
	SentRequests     []PublicUser `json:"sentRequests"`
	ReceivedRequests []PublicUser `json:"receivedRequests"`
}

// Post is a user-authored post record.
type Post struct {
	ID        string
	AuthorID  string
	Body      string
	MediaRef  string
	CreatedAt time.Time
}

// Comment belongs to a post and carries its own like set.
type Comment struct {
	ID        string
	PostID    string
	AuthorID  string
	Body      string
	CreatedAt time.Time
}

// CommentView resolves a comment's author and likes for responses.
type CommentView struct {
	ID        string     `json:"id"`
	Author    PublicUser `json:"author"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"createdAt"`
	Likes     []string   `json:"likes"`
}

// PostView is a post with its author resolved and engagement attached,
// as returned by listing and engagement operations.
type PostView struct {
	ID        string        `json:"id"`
	Author    PublicUser    `json:"author"`
	Body      string        `json:"body"`
	MediaRef  string        `json:"mediaRef,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	Likes     []string      `json:"likes"`
	Comments  []CommentView `json:"comments"`
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
