package social

import "errors"

var (
	// ErrValidation indicates malformed or too-short input.
	ErrValidation = errors.New("invalid input")
	// ErrNotFound indicates a missing user, post, or comment.
	ErrNotFound = errors.New("record not found")
	// ErrUsernameTaken indicates the requested username is already in use.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrSelfRequest indicates a user tried to befriend themselves.
	ErrSelfRequest = errors.New("cannot send a friend request to yourself")
	// ErrAlreadyFriends indicates a friendship already exists between the pair.
	ErrAlreadyFriends = errors.New("users are already friends")
	// ErrAlreadyRequested indicates a pending request already exists between
	// the pair, in either direction.
	ErrAlreadyRequested = errors.New("friend request already pending")
	// ErrNoSuchRequest indicates no pending request exists to accept.
	ErrNoSuchRequest = errors.New("no pending friend request")
	// ErrNotFriends indicates the symmetric friendship required for messaging
	// is absent on at least one side.
	ErrNotFriends = errors.New("users are not friends")
	// ErrNotAuthor indicates a mutation attempted by someone other than the
	// resource author.
	ErrNotAuthor = errors.New("caller is not the author")
	// ErrMissingCommentID indicates a comment-like action without a comment id.
	ErrMissingCommentID = errors.New("comment id is required to like a comment")
	// ErrNoAction indicates an engagement payload that selects no action.
	ErrNoAction = errors.New("no engagement action specified")
	// ErrTokenIssue indicates the token issuer failed after account creation.
	ErrTokenIssue = errors.New("token issuance failed")
)
