package gql

import (
	"context"

	"hackernews/internal/model"
)

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func int32s(ids []int64) []int32 {
	out := make([]int32, len(ids))
	for i, id := range ids {
		out[i] = int32(id)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// loadComments resolves comment ids in order, skipping ids that no longer resolve.
func (r *Resolver) loadComments(ctx context.Context, ids []int64) ([]*CommentResolver, error) {
	out := make([]*CommentResolver, 0, len(ids))
	for _, id := range ids {
		c, err := r.comments.Get(ctx, id)
		if err != nil {
			if nullIfMissing(err) == nil {
				continue
			}
			return nil, err
		}
		out = append(out, r.comment(c))
	}
	return out, nil
}

func (r *Resolver) author(ctx context.Context, id string) (*UserResolver, error) {
	return r.User(ctx, struct{ ID string }{ID: id})
}

type NewsItemResolver struct {
	root *Resolver
	n    *model.NewsItem
}

func (r *NewsItemResolver) ID() int32 { return int32(r.n.ID) }

func (r *NewsItemResolver) Comments(ctx context.Context) ([]*CommentResolver, error) {
	return r.root.loadComments(ctx, r.n.CommentIDs)
}

func (r *NewsItemResolver) CommentCount() int32 { return int32(r.n.CommentCount) }

func (r *NewsItemResolver) CreationTime() Date { return newDate(r.n.CreatedAt) }

func (r *NewsItemResolver) Author(ctx context.Context) (*UserResolver, error) {
	return r.root.author(ctx, r.n.SubmitterID)
}

func (r *NewsItemResolver) Hides() []string { return nonNil(r.n.Hides) }

// Hidden reports whether the viewer hid the item.
func (r *NewsItemResolver) Hidden(ctx context.Context) bool {
	return r.n.HiddenBy(viewer(ctx))
}

func (r *NewsItemResolver) SubmitterID() string { return r.n.SubmitterID }

func (r *NewsItemResolver) Text() *string { return optional(r.n.Text) }

func (r *NewsItemResolver) Title() string { return r.n.Title }

func (r *NewsItemResolver) UpvoteCount() int32 { return int32(r.n.UpvoteCount) }

func (r *NewsItemResolver) Upvotes() []string { return nonNil(r.n.Upvotes) }

// Upvoted reports whether the viewer upvoted the item.
func (r *NewsItemResolver) Upvoted(ctx context.Context) bool {
	return r.n.UpvotedBy(viewer(ctx))
}

func (r *NewsItemResolver) URL() *string { return optional(r.n.URL) }

type CommentResolver struct {
	root *Resolver
	c    *model.Comment
}

func (r *CommentResolver) ID() int32 { return int32(r.c.ID) }

func (r *CommentResolver) CreationTime() Date { return newDate(r.c.CreatedAt) }

func (r *CommentResolver) Author(ctx context.Context) (*UserResolver, error) {
	return r.root.author(ctx, r.c.SubmitterID)
}

func (r *CommentResolver) Comments(ctx context.Context) ([]*CommentResolver, error) {
	return r.root.loadComments(ctx, r.c.CommentIDs)
}

func (r *CommentResolver) Parent() int32 { return int32(r.c.ParentID) }

func (r *CommentResolver) SubmitterID() string { return r.c.SubmitterID }

func (r *CommentResolver) Text() string { return r.c.Text }

type UserResolver struct {
	u *model.User
}

func (r *UserResolver) ID() string { return r.u.ID }

func (r *UserResolver) About() *string { return optional(r.u.About) }

func (r *UserResolver) CreationTime() Date { return newDate(r.u.CreatedAt) }

func (r *UserResolver) DateOfBirth() *Date {
	if r.u.DateOfBirth == nil {
		return nil
	}
	d := newDate(*r.u.DateOfBirth)
	return &d
}

func (r *UserResolver) Email() *string { return optional(r.u.Email) }

func (r *UserResolver) FirstName() *string { return optional(r.u.FirstName) }

func (r *UserResolver) Hides() []int32 { return int32s(r.u.Hides) }

func (r *UserResolver) Karma() int32 { return int32(r.u.Karma) }

func (r *UserResolver) LastName() *string { return optional(r.u.LastName) }

func (r *UserResolver) Likes() []int32 { return int32s(r.u.Likes) }

func (r *UserResolver) Posts() []int32 { return int32s(r.u.Posts) }
