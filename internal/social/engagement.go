package social

import "strings"

// EngagementPayload is the raw edit-post request body. A payload may set
// fields for several actions at once; only the highest-priority one runs.
type EngagementPayload struct {
	PostLike    bool   `json:"postLike"`
	CommentLike bool   `json:"commentLike"`
	CommentID   string `json:"commentId"`
	Comment     string `json:"comment"`
}

// Action is the resolved engagement intent. Exactly one variant is
// constructed per request at the boundary; dispatch is an exhaustive
// switch, never field fallthrough.
type Action interface {
	isAction()
}

// ToggleLike flips the caller's membership in the post's like set.
type ToggleLike struct{}

// ToggleCommentLike flips the caller's membership in a comment's like set.
type ToggleCommentLike struct {
	CommentID string
}

// AddComment appends a new comment authored by the caller.
type AddComment struct {
	Body string
}

func (ToggleLike) isAction()        {}
func (ToggleCommentLike) isAction() {}
func (AddComment) isAction()        {}

// ParseEngagement resolves a payload to a single action by strict
// priority: post like, then comment like, then new comment. Fields
// belonging to lower-priority actions are ignored once a match is found.
func ParseEngagement(p EngagementPayload) (Action, error) {
	if p.PostLike {
		return ToggleLike{}, nil
	}
	if p.CommentLike {
		id := strings.TrimSpace(p.CommentID)
		if id == "" {
			return nil, ErrMissingCommentID
		}
		return ToggleCommentLike{CommentID: id}, nil
	}
	if body := strings.TrimSpace(p.Comment); body != "" {
		return AddComment{Body: body}, nil
	}
	return nil, ErrNoAction
}
