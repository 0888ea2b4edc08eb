package handler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"hackernews/internal/http/middleware"
	"hackernews/internal/model"
	"hackernews/internal/service"
	"hackernews/internal/web"
)

// maxThreadDepth stops comment tree loading on pathological nesting.
const maxThreadDepth = 32

// render writes page name with the common layout fields filled in.
func render(c *fiber.Ctx, view *web.Renderer, status int, name, title string, body any) error {
	c.Status(status).Type("html", "utf-8")
	return view.Render(c, name, &web.Page{
		Title:  title,
		Path:   c.Path(),
		Viewer: middleware.UserIDFrom(c),
		Goto:   c.OriginalURL(),
		Body:   body,
	})
}

// pageNumber reads the 1-based ?p= parameter.
func pageNumber(c *fiber.Ctx) int {
	p := c.QueryInt("p", 1)
	if p < 1 {
		return 1
	}
	return p
}

// safeGoto keeps redirects on this site.
func safeGoto(raw, fallback string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return fallback
	}
	return raw
}

func queryID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Query("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// FeedPage lists one page of a feed, leaving out items the viewer hid.
func FeedPage(items service.NewsItemService, view *web.Renderer, feed model.FeedType, title string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := pageNumber(c)
		offset := (page - 1) * service.MaxFeedPageSize

		list, err := items.Feed(c.UserContext(), feed, service.MaxFeedPageSize, offset)
		if err != nil {
			return err
		}

		viewer := middleware.UserIDFrom(c)
		rows := make([]web.ItemRow, 0, len(list))
		for i := range list {
			if list[i].HiddenBy(viewer) {
				continue
			}
			rows = append(rows, web.NewItemRow(&list[i], offset+i+1, viewer, c.OriginalURL()))
		}

		v := web.FeedView{Rows: rows}
		if len(list) == service.MaxFeedPageSize {
			v.MoreURL = fmt.Sprintf("%s?p=%d", c.Path(), page+1)
		}
		return render(c, view, fiber.StatusOK, "feed", title, v)
	}
}

// ItemPage shows a news item and its comment tree. A comment id redirects to its thread.
func ItemPage(items service.NewsItemService, comments service.CommentService, view *web.Renderer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := queryID(c)
		if err != nil {
			return err
		}
		ctx := c.UserContext()

		item, err := items.Get(ctx, id)
		if errors.Is(err, service.ErrNotFound) {
			cm, cerr := comments.Get(ctx, id)
			if cerr != nil {
				return cerr
			}
			return c.Redirect(fmt.Sprintf("/item?id=%d#%d", cm.NewsItemID, cm.ID), fiber.StatusFound)
		}
		if err != nil {
			return err
		}

		viewer := middleware.UserIDFrom(c)
		tree, err := loadThread(ctx, comments, item.CommentIDs, viewer != "", 0)
		if err != nil {
			return err
		}

		return render(c, view, fiber.StatusOK, "item", item.Title, web.ItemView{
			Row:      web.NewItemRow(item, 0, viewer, c.OriginalURL()),
			Comments: tree,
		})
	}
}

func loadThread(ctx context.Context, comments service.CommentService, ids []int64, canReply bool, depth int) ([]web.CommentNode, error) {
	if depth >= maxThreadDepth {
		return nil, nil
	}
	out := make([]web.CommentNode, 0, len(ids))
	for _, id := range ids {
		cm, err := comments.Get(ctx, id)
		if errors.Is(err, service.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		children, err := loadThread(ctx, comments, cm.CommentIDs, canReply, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, web.CommentNode{Comment: cm, Children: children, CanReply: canReply})
	}
	return out, nil
}

// UserPage shows a profile.
func UserPage(users service.UserService, view *web.Renderer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Query("id")
		if id == "" {
			return fiber.NewError(fiber.StatusBadRequest, "missing id")
		}
		u, err := users.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return render(c, view, fiber.StatusOK, "user", "Profile: "+u.ID, web.UserView{
			User: u,
			Own:  middleware.UserIDFrom(c) == u.ID,
		})
	}
}

// SubmitForm renders the empty submission form.
func SubmitForm(view *web.Renderer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return render(c, view, fiber.StatusOK, "submit", "Submit", web.SubmitView{})
	}
}

// Submit stores a story and sends the submitter to /newest. Invalid input re-renders the form.
func Submit(items service.NewsItemService, view *web.Renderer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in := service.SubmitNewsItemInput{
			Title: c.FormValue("title"),
			URL:   c.FormValue("url"),
			Text:  c.FormValue("text"),
		}
		_, err := items.Submit(c.UserContext(), middleware.UserIDFrom(c), in)
		if service.IsValidation(err) {
			return render(c, view, fiber.StatusBadRequest, "submit", "Submit", web.SubmitView{
				Title: in.Title,
				URL:   in.URL,
				Text:  in.Text,
				Error: err.Error(),
			})
		}
		if err != nil {
			return err
		}
		return c.Redirect("/newest", fiber.StatusSeeOther)
	}
}

// Comment stores a reply and returns to the thread.
func Comment(comments service.CommentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		parent, err := strconv.ParseInt(c.FormValue("parent"), 10, 64)
		if err != nil || parent <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid parent")
		}
		cm, err := comments.Submit(c.UserContext(), middleware.UserIDFrom(c), parent, c.FormValue("text"))
		if err != nil {
			return err
		}
		fallback := fmt.Sprintf("/item?id=%d", cm.NewsItemID)
		return c.Redirect(safeGoto(c.FormValue("goto"), fallback), fiber.StatusSeeOther)
	}
}

// Vote upvotes (how=up) or withdraws a vote (how=un).
func Vote(items service.NewsItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := queryID(c)
		if err != nil {
			return err
		}
		userID := middleware.UserIDFrom(c)
		switch c.Query("how", "up") {
		case "up":
			_, err = items.Upvote(c.UserContext(), id, userID)
		case "un":
			_, err = items.Unvote(c.UserContext(), id, userID)
		default:
			return fiber.NewError(fiber.StatusBadRequest, "how must be up or un")
		}
		if err != nil {
			return err
		}
		return c.Redirect(safeGoto(c.Query("goto"), "/news"), fiber.StatusSeeOther)
	}
}

// Hide hides the item for the viewer, or un-hides it with how=un.
func Hide(items service.NewsItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := queryID(c)
		if err != nil {
			return err
		}
		userID := middleware.UserIDFrom(c)
		if c.Query("how") == "un" {
			_, err = items.Unhide(c.UserContext(), id, userID)
		} else {
			_, err = items.Hide(c.UserContext(), id, userID)
		}
		if err != nil {
			return err
		}
		return c.Redirect(safeGoto(c.Query("goto"), "/news"), fiber.StatusSeeOther)
	}
}

// FrontPage shows the archived top stories of ?day=YYYY-MM-DD, yesterday by default.
func FrontPage(front service.FrontPageService, view *web.Renderer, now func() time.Time) fiber.Handler {
	return func(c *fiber.Ctx) error {
		today := now().UTC().Truncate(24 * time.Hour)
		day := today.AddDate(0, 0, -1)
		if raw := c.Query("day"); raw != "" {
			d, err := time.Parse(service.DayLayout, raw)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "day must be YYYY-MM-DD")
			}
			day = d
		}

		v := web.FrontView{
			Day:  day.Format(service.DayLayout),
			Prev: day.AddDate(0, 0, -1).Format(service.DayLayout),
		}
		if next := day.AddDate(0, 0, 1); !next.After(today) {
			v.Next = next.Format(service.DayLayout)
		}

		snap, err := front.Get(c.UserContext(), day)
		switch {
		case errors.Is(err, service.ErrArchiveDisabled):
			v.Notice = "The front page archive is not enabled."
		case errors.Is(err, service.ErrNotFound):
			v.Notice = "No front page was archived for this day."
		case err != nil:
			return err
		default:
			viewer := middleware.UserIDFrom(c)
			for i := range snap.Items {
				v.Rows = append(v.Rows, web.NewItemRow(&snap.Items[i], i+1, viewer, c.OriginalURL()))
			}
		}
		return render(c, view, fiber.StatusOK, "front", v.Day+" front page", v)
	}
}

// StaticPage renders a page with no data.
func StaticPage(view *web.Renderer, name, title string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return render(c, view, fiber.StatusOK, name, title, nil)
	}
}

// SearchPage runs a full-text story search.
func SearchPage(search service.SearchService, view *web.Renderer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := strings.TrimSpace(c.Query("q"))
		v := web.SearchView{Query: q}
		if q == "" {
			return render(c, view, fiber.StatusOK, "search", "Search", v)
		}

		page := pageNumber(c)
		res, err := search.Search(c.UserContext(), q, page-1)
		if errors.Is(err, service.ErrSearchUnavailable) {
			v.Notice = "Search is not available right now."
			return render(c, view, fiber.StatusOK, "search", "Search", v)
		}
		if errors.Is(err, service.ErrSearchExhausted) {
			v.Notice = "No more results."
			return render(c, view, fiber.StatusOK, "search", "Search: "+q, v)
		}
		if err != nil {
			return err
		}

		v.Hits = res.Items
		v.Total = int(res.Total)
		v.Offset = (page - 1) * service.MaxFeedPageSize
		next := v.Offset + len(res.Items)
		if int64(next) < res.Total && next < service.MaxSearchWindow {
			v.MoreURL = fmt.Sprintf("/search?q=%s&p=%d", url.QueryEscape(q), page+1)
		}
		return render(c, view, fiber.StatusOK, "search", "Search: "+q, v)
	}
}
