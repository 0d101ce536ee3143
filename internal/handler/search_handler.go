package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmednasr/blogsage/internal/service"
	"github.com/ahmednasr/blogsage/internal/session"
)

// SearchHandler wires HTTP → BlogService.Search.
type SearchHandler struct {
	view
}

// NewSearchHandler returns a handler instance.
func NewSearchHandler(blog service.BlogService, sessions *session.Manager) *SearchHandler {
	return &SearchHandler{view: view{blog: blog, sessions: sessions}}
}

// Register mounts GET /search on the given router.
func (h *SearchHandler) Register(r fiber.Router) {
	r.Get("/search", h.search)
}

// search handles GET /search?keyword=some+text
func (h *SearchHandler) search(c *fiber.Ctx) error {
	keyword := strings.TrimSpace(c.Query("keyword"))

	posts, err := h.blog.Search(c.UserContext(), keyword)
	if err != nil {
		return err
	}
	return h.render(c, fiber.StatusOK, "search", fiber.Map{
		"Title":   "Search",
		"Keyword": keyword,
		"Posts":   posts,
	})
}
