package social

import (
	"errors"
	"testing"
)

func TestParseEngagementPriority(t *testing.T) {
	tests := []struct {
		name    string
		payload EngagementPayload
		want    Action
		wantErr error
	}{
		{
			name:    "post like wins over everything",
			payload: EngagementPayload{PostLike: true, CommentLike: true, CommentID: "c1", Comment: "nice post"},
			want:    ToggleLike{},
		},
		{
			name:    "comment like wins over comment text",
			payload: EngagementPayload{CommentLike: true, CommentID: "c1", Comment: "nice post"},
			want:    ToggleCommentLike{CommentID: "c1"},
		},
		{
			name:    "comment text alone",
			payload: EngagementPayload{Comment: "nice post"},
			want:    AddComment{Body: "nice post"},
		},
		{
			name:    "comment like without comment id",
			payload: EngagementPayload{CommentLike: true},
			wantErr: ErrMissingCommentID,
		},
		{
			name:    "comment like with blank comment id",
			payload: EngagementPayload{CommentLike: true, CommentID: "   "},
			wantErr: ErrMissingCommentID,
		},
		{
			name:    "comment like without id does not fall through to comment text",
			payload: EngagementPayload{CommentLike: true, Comment: "nice post"},
			wantErr: ErrMissingCommentID,
		},
		{
			name:    "whitespace comment is no action",
			payload: EngagementPayload{Comment: "   "},
			wantErr: ErrNoAction,
		},
		{
			name:    "empty payload is no action",
			payload: EngagementPayload{},
			wantErr: ErrNoAction,
		},
		{
			name:    "comment text is trimmed",
			payload: EngagementPayload{Comment: "  hello there  "},
			want:    AddComment{Body: "hello there"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseEngagement(tc.payload)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected action %#v, got %#v", tc.want, got)
			}
		})
	}
}
