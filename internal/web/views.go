package web

import (
	"hackernews/internal/model"
	"hackernews/internal/search"
)

// ItemRow is one story line as seen by the viewer.
type ItemRow struct {
	*model.NewsItem
	Rank    int
	Upvoted bool
	Hidden  bool
	Own     bool
	Goto    string
}

// NewItemRow computes the viewer flags for n.
func NewItemRow(n *model.NewsItem, rank int, viewer, gotoURL string) ItemRow {
	return ItemRow{
		NewsItem: n,
		Rank:     rank,
		Upvoted:  n.UpvotedBy(viewer),
		Hidden:   n.HiddenBy(viewer),
		Own:      viewer != "" && n.SubmitterID == viewer,
		Goto:     gotoURL,
	}
}

type FeedView struct {
	Rows    []ItemRow
	MoreURL string
	Notice  string
}

// CommentNode is a comment with its loaded replies.
type CommentNode struct {
	*model.Comment
	Children []CommentNode
	CanReply bool
}

type ItemView struct {
	Row      ItemRow
	Comments []CommentNode
	Error    string
}

type UserView struct {
	User *model.User
	Own  bool
}

type SubmitView struct {
	Title string
	URL   string
	Text  string
	Error string
}

type LoginView struct {
	Goto        string
	Username    string
	LoginError  string
	SignupError string
}

type FrontView struct {
	Day    string
	Prev   string
	Next   string
	Rows   []ItemRow
	Notice string
}

type SearchView struct {
	Query   string
	Hits    []search.Document
	Total   int
	Offset  int
	MoreURL string
	Notice  string
}

type ErrorView struct {
	Status  int
	Message string
}
