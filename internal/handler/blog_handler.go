package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmednasr/blogsage/internal/logger"
	"github.com/ahmednasr/blogsage/internal/models"
	"github.com/ahmednasr/blogsage/internal/service"
	"github.com/ahmednasr/blogsage/internal/session"
)

// homeLimit is the number of posts on the home page.
const homeLimit = 20

// BlogHandler wires HTTP → BlogService for the reader pages.
type BlogHandler struct {
	view
}

// NewBlogHandler returns a handler instance.
func NewBlogHandler(blog service.BlogService, sessions *session.Manager) *BlogHandler {
	return &BlogHandler{view: view{blog: blog, sessions: sessions}}
}

// Register mounts the reader pages on the given router.
func (h *BlogHandler) Register(r fiber.Router) {
	r.Get("/", h.home)
	r.Get("/category/:id", h.category)
	r.Get("/blogs/:slug", h.show)
	r.Post("/blogs/:slug", h.comment)
}

// home handles GET /
func (h *BlogHandler) home(c *fiber.Ctx) error {
	posts, err := h.blog.Latest(c.UserContext(), homeLimit)
	if err != nil {
		return err
	}
	return h.render(c, fiber.StatusOK, "index", fiber.Map{"Posts": posts})
}

// category handles GET /category/:id
func (h *BlogHandler) category(c *fiber.Ctx) error {
	cat, posts, err := h.blog.PostsByCategory(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return h.render(c, fiber.StatusOK, "category", fiber.Map{
		"Title":    cat.Name,
		"Category": cat,
		"Posts":    posts,
	})
}

// show handles GET /blogs/:slug
func (h *BlogHandler) show(c *fiber.Ctx) error {
	ctx := c.UserContext()
	post, err := h.blog.PostBySlug(ctx, c.Params("slug"))
	if err != nil {
		return err
	}

	data, err := h.postPage(ctx, c, post)
	if err != nil {
		return err
	}
	data["Recommendations"] = h.recommendations(ctx, post)
	return h.render(c, fiber.StatusOK, "blog", data)
}

// comment handles POST /blogs/:slug  form: comment=...
func (h *BlogHandler) comment(c *fiber.Ctx) error {
	user, ok := h.sessions.CurrentUser(c)
	if !ok {
		return c.Redirect(loginURL(c.Path()), fiber.StatusFound)
	}

	ctx := c.UserContext()
	post, err := h.blog.PostBySlug(ctx, c.Params("slug"))
	if err != nil {
		return err
	}
	if _, err := h.blog.AddComment(ctx, post, user, c.FormValue("comment")); err != nil {
		return err
	}
	return c.Redirect(c.Path(), fiber.StatusFound)
}

// postPage loads what every rendering of a post shows: comments and the
// session chat history.
func (h *view) postPage(ctx context.Context, c *fiber.Ctx, post models.Post) (fiber.Map, error) {
	comments, count, err := h.blog.Comments(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	history, err := h.sessions.List(c)
	if err != nil {
		return nil, err
	}
	return fiber.Map{
		"Title":        post.Title,
		"Post":         post,
		"Comments":     comments,
		"CommentCount": count,
		"History":      history,
	}, nil
}

// recommendations never fails the page; errors are logged and the section is
// left out.
func (h *BlogHandler) recommendations(ctx context.Context, post models.Post) []models.Post {
	recs, err := h.blog.Recommended(ctx, post)
	if err != nil {
		logger.ErrorWithFields("[Blog Handler] recommendations unavailable", logger.Fields{
			"post_id": post.ID,
			"error":   err.Error(),
		})
		return nil
	}
	return recs
}
