package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmednasr/blogsage/internal/logger"
	"github.com/ahmednasr/blogsage/internal/middleware"
	"github.com/ahmednasr/blogsage/internal/service"
	"github.com/ahmednasr/blogsage/internal/session"
	"github.com/ahmednasr/blogsage/web"
)

// view renders pages inside the shared layout, which needs the navigation
// categories and the signed-in user on every page.
type view struct {
	blog     service.BlogService
	sessions *session.Manager
}

func (v *view) render(c *fiber.Ctx, status int, name string, data fiber.Map) error {
	page := fiber.Map{"Title": "", "Keyword": ""}
	if u, ok := v.sessions.CurrentUser(c); ok {
		page["User"] = u
	}
	cats, err := v.blog.Categories(c.UserContext())
	if err != nil {
		logger.Log.Warnf("[View] categories unavailable: %v", err)
	}
	page["Categories"] = cats
	for k, val := range data {
		page[k] = val
	}
	return c.Status(status).Render(name, page, web.Layout)
}

// ErrorHandler maps service errors to status codes and renders the error page.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status, msg := classify(err)
	fields := logger.Fields{
		"path":       c.Path(),
		"status":     status,
		"error":      err.Error(),
		"request_id": c.Locals(middleware.RequestIDKey),
	}
	if status >= fiber.StatusInternalServerError {
		logger.ErrorWithFields("request failed", fields)
	} else {
		logger.WarnWithFields("request rejected", fields)
	}

	c.Status(status)
	renderErr := c.Render("error", fiber.Map{
		"Title":   msg,
		"Keyword": "",
		"Status":  status,
		"Message": msg,
	}, web.Layout)
	if renderErr != nil {
		return c.Status(status).SendString(msg)
	}
	return nil
}

func classify(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound, "Page not found"
	case errors.Is(err, service.ErrValidation):
		return fiber.StatusBadRequest, userMessage(err)
	case errors.Is(err, service.ErrConflict):
		return fiber.StatusConflict, "That already exists"
	case errors.Is(err, service.ErrUpstream):
		return fiber.StatusServiceUnavailable, service.UnavailableAnswer
	default:
		return fiber.StatusInternalServerError, "Something went wrong"
	}
}

// userMessage strips the sentinel prefix from a validation error.
func userMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, service.ErrValidation.Error()+": "); i >= 0 {
		return msg[i+len(service.ErrValidation.Error())+2:]
	}
	return msg
}
