package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ahmednasr/blogsage/internal/service"
	"github.com/ahmednasr/blogsage/internal/session"
)

func RegisterRoutes(app *fiber.App,
	blogSvc service.BlogService,
	answerer service.Answerer,
	authSvc service.AuthService,
	sessions *session.Manager,
	healthChecks map[string]Pinger,
) {
	NewBlogHandler(blogSvc, sessions).Register(app)
	NewAskHandler(blogSvc, answerer, sessions).Register(app)
	NewSearchHandler(blogSvc, sessions).Register(app)
	NewAuthHandler(authSvc, blogSvc, sessions).Register(app)
	NewHealthHandler(healthChecks).Register(app)
}
