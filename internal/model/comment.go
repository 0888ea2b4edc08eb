package model

import "time"

// Comment is a reply to a news item or to another comment.
// ParentID is the id of whichever item it replies to; comments and news items share one id space.
type Comment struct {
	ID          int64     `json:"id"`
	NewsItemID  int64     `json:"news_item_id"`
	ParentID    int64     `json:"parent_id"`
	SubmitterID string    `json:"submitter_id"`
	Text        string    `json:"text"`
	CommentIDs  []int64   `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
