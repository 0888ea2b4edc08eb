package model

import (
	"slices"
	"time"
)

// Kinds of news item.
const (
	KindStory = "story"
	KindJob   = "job"
)

// NewsItem is a submitted story or job posting.
// Upvotes and Hides hold user ids; CommentIDs holds the ids of top-level comments.
type NewsItem struct {
	ID           int64     `json:"id"`
	Kind         string    `json:"kind"`
	Title        string    `json:"title"`
	URL          string    `json:"url,omitempty"`
	Text         string    `json:"text,omitempty"`
	SubmitterID  string    `json:"submitter_id"`
	UpvoteCount  int       `json:"upvote_count"`
	Upvotes      []string  `json:"-"`
	Hides        []string  `json:"-"`
	CommentIDs   []int64   `json:"-"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// UpvotedBy reports whether userID is among the item's upvoters.
// The empty id never matches.
func (n *NewsItem) UpvotedBy(userID string) bool {
	return userID != "" && slices.Contains(n.Upvotes, userID)
}

// HiddenBy reports whether userID has hidden the item.
func (n *NewsItem) HiddenBy(userID string) bool {
	return userID != "" && slices.Contains(n.Hides, userID)
}
