package handler

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmednasr/blogsage/internal/logger"
	"github.com/ahmednasr/blogsage/internal/service"
	"github.com/ahmednasr/blogsage/internal/session"
)

// AuthHandler wires HTTP → AuthService and the session user.
type AuthHandler struct {
	view
	auth service.AuthService
}

// NewAuthHandler returns a handler instance.
func NewAuthHandler(auth service.AuthService, blog service.BlogService, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{view: view{blog: blog, sessions: sessions}, auth: auth}
}

// Register mounts the sign-in routes on the given router.
func (h *AuthHandler) Register(r fiber.Router) {
	r.Get("/login", h.loginForm)
	r.Post("/login", h.login)
	r.Get("/register", h.registerForm)
	r.Post("/register", h.register)
	r.Post("/logout", h.logout)
}

func (h *AuthHandler) loginForm(c *fiber.Ctx) error {
	return h.render(c, fiber.StatusOK, "login", fiber.Map{
		"Title": "Log in",
		"Next":  safeNext(c.Query("next")),
	})
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	username := c.FormValue("username")
	next := safeNext(c.FormValue("next"))

	user, err := h.auth.Authenticate(c.UserContext(), username, c.FormValue("password"))
	if errors.Is(err, service.ErrInvalidCredentials) {
		logger.Log.Infof("[Auth Handler] failed login for %q", username)
		return h.render(c, fiber.StatusUnauthorized, "login", fiber.Map{
			"Title":    "Log in",
			"Error":    "Invalid username or password",
			"Username": username,
			"Next":     next,
		})
	}
	if err != nil {
		return err
	}

	if err := h.sessions.SetUser(c, user); err != nil {
		return err
	}
	return c.Redirect(next, fiber.StatusFound)
}

func (h *AuthHandler) registerForm(c *fiber.Ctx) error {
	return h.render(c, fiber.StatusOK, "register", fiber.Map{"Title": "Register"})
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	username := c.FormValue("username")

	user, err := h.auth.Register(c.UserContext(), username, c.FormValue("password"))
	if err != nil {
		var status int
		var msg string
		switch {
		case errors.Is(err, service.ErrValidation):
			status, msg = fiber.StatusBadRequest, userMessage(err)
		case errors.Is(err, service.ErrConflict):
			status, msg = fiber.StatusConflict, "That username is already taken"
		default:
			return err
		}
		return h.render(c, status, "register", fiber.Map{
			"Title":    "Register",
			"Error":    msg,
			"Username": username,
		})
	}

	if err := h.sessions.SetUser(c, user); err != nil {
		return err
	}
	return c.Redirect("/", fiber.StatusFound)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	if err := h.sessions.Clear(c); err != nil {
		return err
	}
	return c.Redirect("/", fiber.StatusFound)
}

// safeNext only allows local absolute paths as a post-login destination.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func loginURL(next string) string {
	return "/login?next=" + url.QueryEscape(next)
}
