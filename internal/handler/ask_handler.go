package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmednasr/blogsage/internal/models"
	"github.com/ahmednasr/blogsage/internal/service"
	"github.com/ahmednasr/blogsage/internal/session"
)

// AskHandler wires HTTP → Answerer for "ask the AI about this post".
type AskHandler struct {
	view
	answerer service.Answerer
	now      func() time.Time
}

// NewAskHandler returns a handler instance.
func NewAskHandler(blog service.BlogService, answerer service.Answerer, sessions *session.Manager) *AskHandler {
	return &AskHandler{
		view:     view{blog: blog, sessions: sessions},
		answerer: answerer,
		now:      time.Now,
	}
}

// Register mounts POST /blogs/:slug/ask on the given router.
func (h *AskHandler) Register(r fiber.Router) {
	r.Post("/blogs/:slug/ask", h.ask)
}

// ask handles POST /blogs/:slug/ask  form: question=...
//
// A successful answer, including the fixed not-relevant sentence, is appended
// to the session history. When the assistant is unavailable the page is
// rendered with a 503 and a notice, and the history is left untouched.
func (h *AskHandler) ask(c *fiber.Ctx) error {
	ctx := c.UserContext()
	post, err := h.blog.PostBySlug(ctx, c.Params("slug"))
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	var answer *service.AnswerResult
	var notice string

	res, err := h.answerer.Answer(ctx, post, c.FormValue("question"))
	switch {
	case errors.Is(err, service.ErrUpstream):
		status = fiber.StatusServiceUnavailable
		notice = res.Text
	case err != nil:
		return err
	default:
		answer = &res
		turn := models.ChatTurn{
			PostSlug: post.Slug,
			Question: res.Question,
			Answer:   res.Text,
			AskedAt:  h.now().UTC(),
		}
		if err := h.sessions.Append(c, turn); err != nil {
			return err
		}
	}

	data, err := h.postPage(ctx, c, post)
	if err != nil {
		return err
	}
	data["Answer"] = answer
	data["Notice"] = notice
	return h.render(c, status, "blog", data)
}
