package social

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/linkup/backend/internal/logging"
	"github.com/linkup/backend/internal/models"
)

// GraphStore is the persistence contract for the friend graph. Mutating
// methods must apply both sides of the relation as one atomic unit and
// serialize concurrent operations on the same user pair; they report the
// precondition failures from this package's error set.
type GraphStore interface {
	// CreateRequest records a pending request on both sides' bookkeeping.
	// Fails with ErrNotFound (target missing), ErrAlreadyFriends, or
	// ErrAlreadyRequested (pending in either direction).
	CreateRequest(ctx context.Context, request models.FriendRequest) error

	// AcceptRequest turns a pending request into two symmetric friendship
	// rows sharing conversationID and removes the pending bookkeeping from
	// both sides. Fails with ErrNoSuchRequest.
	AcceptRequest(ctx context.Context, accepterID, requesterID, conversationID string, at time.Time) error

	// Establish inserts a symmetric friendship directly, bypassing the
	// request lifecycle. Used by the deployment bootstrap step.
	Establish(ctx context.Context, ownerID, peerID, conversationID string, at time.Time) error

	// Friendship returns owner's side of the relation with peer, or
	// ErrNotFriends when absent.
	Friendship(ctx context.Context, ownerID, peerID string) (models.Friendship, error)

	// AppendMessage appends the message to both participants' threads as
	// one atomic unit, keyed idempotently by the message id. Fails with
	// ErrNotFriends when either symmetric entry is absent.
	AppendMessage(ctx context.Context, msg models.Message) error

	// Messages lists owner's copy of the conversation with peer in send
	// order. Fails with ErrNotFriends when the relation is absent.
	Messages(ctx context.Context, ownerID, peerID string) ([]models.Message, error)
}

// Graph owns the friend-request lifecycle: NONE -> REQUESTED -> FRIENDS.
// There is no decline transition; a pending request is accepted or stays
// pending.
type Graph struct {
	store GraphStore
	now   func() time.Time
}

// NewGraph constructs the friend graph service.
func NewGraph(store GraphStore) *Graph {
	return &Graph{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithNowFunc overrides the time source. Useful for tests.
func (g *Graph) WithNowFunc(now func() time.Time) *Graph {
	g.now = now
	return g
}

// RequestFriend records requesterID's intent to befriend targetID.
func (g *Graph) RequestFriend(ctx context.Context, requesterID, targetID string) error {
	if requesterID == targetID {
		return ErrSelfRequest
	}
	if requesterID == "" || targetID == "" {
		return fmt.Errorf("%w: requester and target ids are required", ErrValidation)
	}

	request := models.FriendRequest{
		RequesterID: requesterID,
		TargetID:    targetID,
		CreatedAt:   g.now(),
	}

	if err := g.store.CreateRequest(ctx, request); err != nil {
		return err
	}

	logging.FromContext(ctx).Info("friend request created",
		"requesterId", requesterID, "targetId", targetID)
	return nil
}

// AcceptFriendRequest converts the pending request from requesterID to
// accepterID into a symmetric friendship. One conversation id is minted
// here and shared by both sides; it also serves as the idempotency token
// should the write ever need repair. The returned relation is the
// requester's side of the freshly established friendship.
func (g *Graph) AcceptFriendRequest(ctx context.Context, accepterID, requesterID string) (models.Friendship, error) {
	if accepterID == "" || requesterID == "" {
		return models.Friendship{}, fmt.Errorf("%w: accepter and requester ids are required", ErrValidation)
	}

	friendship := models.Friendship{
		OwnerID:        requesterID,
		PeerID:         accepterID,
		ConversationID: uuid.NewString(),
		CreatedAt:      g.now(),
	}
	if err := g.store.AcceptRequest(ctx, accepterID, requesterID, friendship.ConversationID, friendship.CreatedAt); err != nil {
		return models.Friendship{}, err
	}

	logging.FromContext(ctx).Info("friend request accepted",
		"accepterId", accepterID, "requesterId", requesterID, "conversationId", friendship.ConversationID)
	return friendship, nil
}

// Bootstrap befriends newUserID with the configured bootstrap user. It is
// invoked by account creation when a bootstrap friend is configured and
// is best-effort: deployment setup owns making the bootstrap user exist.
func (g *Graph) Bootstrap(ctx context.Context, bootstrapID, newUserID string) error {
	if bootstrapID == "" || bootstrapID == newUserID {
		return nil
	}
	return g.store.Establish(ctx, bootstrapID, newUserID, uuid.NewString(), g.now())
}
