package handler

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/graph-gophers/graphql-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hackernews/internal/http/middleware"
	"hackernews/internal/model"
	"hackernews/internal/service"
	"hackernews/internal/web"
)

// Deps are the collaborators the routes forward to.
type Deps struct {
	DB            *sql.DB
	Schema        *graphql.Schema
	Gatherer      prometheus.Gatherer
	Items         service.NewsItemService
	Comments      service.CommentService
	Users         service.UserService
	Sessions      service.SessionService
	Front         service.FrontPageService
	Search        service.SearchService
	View          *web.Renderer
	SecureCookies bool
	Now           func() time.Time
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// The session middleware must already be installed for page routes to see the viewer.
func RegisterRoutes(app *fiber.App, d Deps) {
	if d.Now == nil {
		d.Now = time.Now
	}

	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())
	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	gql := GraphQL(d.Schema)
	app.Get("/graphql", gql)
	app.Post("/graphql", gql)

	feeds := []struct {
		path  string
		feed  model.FeedType
		title string
	}{
		{"/", model.FeedTop, ""},
		{"/news", model.FeedTop, ""},
		{"/newest", model.FeedNew, "New Links"},
		{"/best", model.FeedBest, "Top Links"},
		{"/show", model.FeedShow, "Show"},
		{"/shownew", model.FeedShowNew, "New Show"},
		{"/ask", model.FeedAsk, "Ask"},
		{"/jobs", model.FeedJob, "Jobs"},
	}
	for _, f := range feeds {
		app.Get(f.path, FeedPage(d.Items, d.View, f.feed, f.title))
	}

	app.Get("/front", FrontPage(d.Front, d.View, d.Now))
	app.Get("/showhn", StaticPage(d.View, "showhn", "Show HN Guidelines"))
	app.Get("/item", ItemPage(d.Items, d.Comments, d.View))
	app.Get("/user", UserPage(d.Users, d.View))
	app.Get("/search", SearchPage(d.Search, d.View))

	app.Get("/login", LoginForm(d.View))
	app.Post("/login", Login(d.Users, d.Sessions, d.View, d.SecureCookies))
	app.Post("/logout", Logout(d.Sessions))

	requireUser := middleware.RequireUser("/login")
	app.Get("/submit", requireUser, SubmitForm(d.View))
	app.Post("/submit", requireUser, Submit(d.Items, d.View))
	app.Post("/comment", requireUser, Comment(d.Comments))
	app.Post("/vote", requireUser, Vote(d.Items))
	app.Post("/hide", requireUser, Hide(d.Items))
}
