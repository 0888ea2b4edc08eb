package gql

import (
	"context"
	"errors"

	"hackernews/internal/auth"
	"hackernews/internal/model"
	"hackernews/internal/service"
)

// Resolver is the root of both Query and Mutation.
type Resolver struct {
	items    service.NewsItemService
	comments service.CommentService
	users    service.UserService
}

// NewResolver wires the root resolver to the services it forwards to.
func NewResolver(items service.NewsItemService, comments service.CommentService, users service.UserService) *Resolver {
	return &Resolver{items: items, comments: comments, users: users}
}

// errReadOnly rejects mutations on requests marked with auth.WithReadOnly.
var errReadOnly = errors.New("mutations require POST")

// mutator returns the user allowed to run a mutation, or the reason none is.
func mutator(ctx context.Context, action string) (string, error) {
	if auth.IsReadOnly(ctx) {
		return "", errReadOnly
	}
	userID := viewer(ctx)
	if userID == "" {
		return "", mustLogIn(action)
	}
	return userID, nil
}

func mustLogIn(action string) error {
	return errors.New("must be logged in to " + action)
}

// viewer returns the logged-in user id, or "" for anonymous requests.
func viewer(ctx context.Context) string {
	id, _ := auth.UserIDFrom(ctx)
	return id
}

// nullIfMissing turns ErrNotFound into a null result.
func nullIfMissing(err error) error {
	if errors.Is(err, service.ErrNotFound) {
		return nil
	}
	return err
}

func (r *Resolver) newsItem(n *model.NewsItem) *NewsItemResolver {
	return &NewsItemResolver{root: r, n: n}
}

func (r *Resolver) comment(c *model.Comment) *CommentResolver {
	return &CommentResolver{root: r, c: c}
}

// Queries

func (r *Resolver) Comment(ctx context.Context, args struct{ ID int32 }) (*CommentResolver, error) {
	c, err := r.comments.Get(ctx, int64(args.ID))
	if err != nil {
		return nil, nullIfMissing(err)
	}
	return r.comment(c), nil
}

func (r *Resolver) Feed(ctx context.Context, args struct {
	Type  string
	First *int32
	Skip  *int32
}) ([]*NewsItemResolver, error) {
	var first, skip int
	if args.First != nil {
		first = int(*args.First)
	}
	if args.Skip != nil {
		skip = int(*args.Skip)
	}
	items, err := r.items.Feed(ctx, model.FeedType(args.Type), first, skip)
	if err != nil {
		return nil, err
	}
	out := make([]*NewsItemResolver, len(items))
	for i := range items {
		out[i] = r.newsItem(&items[i])
	}
	return out, nil
}

func (r *Resolver) Me(ctx context.Context) (*UserResolver, error) {
	id := viewer(ctx)
	if id == "" {
		return nil, nil
	}
	return r.User(ctx, struct{ ID string }{ID: id})
}

func (r *Resolver) NewsItem(ctx context.Context, args struct{ ID int32 }) (*NewsItemResolver, error) {
	n, err := r.items.Get(ctx, int64(args.ID))
	if err != nil {
		return nil, nullIfMissing(err)
	}
	return r.newsItem(n), nil
}

func (r *Resolver) User(ctx context.Context, args struct{ ID string }) (*UserResolver, error) {
	u, err := r.users.Get(ctx, args.ID)
	if err != nil {
		return nil, nullIfMissing(err)
	}
	return &UserResolver{u: u}, nil
}

// Mutations

type itemArgs struct{ ID int32 }

func (r *Resolver) changeItem(
	ctx context.Context,
	action string,
	id int32,
	apply func(context.Context, int64, string) (*model.NewsItem, error),
) (*NewsItemResolver, error) {
	userID, err := mutator(ctx, action)
	if err != nil {
		return nil, err
	}
	n, err := apply(ctx, int64(id), userID)
	if err != nil {
		return nil, err
	}
	return r.newsItem(n), nil
}

func (r *Resolver) UpvoteNewsItem(ctx context.Context, args itemArgs) (*NewsItemResolver, error) {
	return r.changeItem(ctx, "upvote", args.ID, r.items.Upvote)
}

func (r *Resolver) UnvoteNewsItem(ctx context.Context, args itemArgs) (*NewsItemResolver, error) {
	return r.changeItem(ctx, "unvote", args.ID, r.items.Unvote)
}

func (r *Resolver) HideNewsItem(ctx context.Context, args itemArgs) (*NewsItemResolver, error) {
	return r.changeItem(ctx, "hide", args.ID, r.items.Hide)
}

func (r *Resolver) UnhideNewsItem(ctx context.Context, args itemArgs) (*NewsItemResolver, error) {
	return r.changeItem(ctx, "unhide", args.ID, r.items.Unhide)
}

func (r *Resolver) SubmitNewsItem(ctx context.Context, args struct {
	Title string
	URL   *string
	Text  *string
}) (*NewsItemResolver, error) {
	userID, err := mutator(ctx, "submit news items")
	if err != nil {
		return nil, err
	}
	in := service.SubmitNewsItemInput{Title: args.Title}
	if args.URL != nil {
		in.URL = *args.URL
	}
	if args.Text != nil {
		in.Text = *args.Text
	}
	n, err := r.items.Submit(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	return r.newsItem(n), nil
}

func (r *Resolver) SubmitComment(ctx context.Context, args struct {
	ParentID int32
	Text     string
}) (*CommentResolver, error) {
	userID, err := mutator(ctx, "comment")
	if err != nil {
		return nil, err
	}
	c, err := r.comments.Submit(ctx, userID, int64(args.ParentID), args.Text)
	if err != nil {
		return nil, err
	}
	return r.comment(c), nil
}
