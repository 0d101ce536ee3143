package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ahmednasr/blogsage/internal/logger"
	"github.com/ahmednasr/blogsage/internal/models"
)

// ---- Repository layer contracts -------------------------------------------

// BlogRepository reads posts and categories and stores comments.
// Lookups of absent records return ErrNotFound.
type BlogRepository interface {
	FindPostBySlug(ctx context.Context, slug string) (models.Post, error)
	// ListPublished returns Published posts matching filter, newest first.
	ListPublished(ctx context.Context, filter models.PostFilter) ([]models.Post, error)
	CreatePost(ctx context.Context, p *models.Post) error

	FindCategory(ctx context.Context, id string) (models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error

	// ListComments returns the comments of a post, oldest first.
	ListComments(ctx context.Context, postID string) ([]models.Comment, error)
	CountComments(ctx context.Context, postID string) (int64, error)
	CreateComment(ctx context.Context, c *models.Comment) error
}

// ---- Service interface + implementation ------------------------------------

// BlogService serves the reader-facing pages.
type BlogService interface {
	Latest(ctx context.Context, limit int) ([]models.Post, error)
	Categories(ctx context.Context) ([]models.Category, error)
	PostsByCategory(ctx context.Context, categoryID string) (models.Category, []models.Post, error)
	PostBySlug(ctx context.Context, slug string) (models.Post, error)
	Comments(ctx context.Context, postID string) ([]models.Comment, int64, error)
	AddComment(ctx context.Context, post models.Post, user models.User, text string) (models.Comment, error)
	Search(ctx context.Context, keyword string) ([]models.Post, error)
	Recommended(ctx context.Context, post models.Post) ([]models.Post, error)
}

type blogService struct {
	repo        BlogRepository
	recommender Recommender
	now         func() time.Time
}

// NewBlogService wires dependencies.
func NewBlogService(repo BlogRepository, recommender Recommender) BlogService {
	return &blogService{repo: repo, recommender: recommender, now: time.Now}
}

func (s *blogService) Latest(ctx context.Context, limit int) ([]models.Post, error) {
	return s.repo.ListPublished(ctx, models.PostFilter{Limit: limit})
}

func (s *blogService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.repo.ListCategories(ctx)
}

// PostsByCategory returns the category and its Published posts.
func (s *blogService) PostsByCategory(ctx context.Context, categoryID string) (models.Category, []models.Post, error) {
	category, err := s.repo.FindCategory(ctx, categoryID)
	if err != nil {
		return models.Category{}, nil, err
	}
	posts, err := s.repo.ListPublished(ctx, models.PostFilter{CategoryID: category.ID})
	if err != nil {
		return models.Category{}, nil, err
	}
	for i := range posts {
		posts[i].CategoryName = category.Name
	}
	return category, posts, nil
}

// PostBySlug returns a Published post with its category name resolved.
// Drafts are reported as ErrNotFound.
func (s *blogService) PostBySlug(ctx context.Context, slug string) (models.Post, error) {
	post, err := s.repo.FindPostBySlug(ctx, slug)
	if err != nil {
		return models.Post{}, err
	}
	if !post.IsPublished() {
		return models.Post{}, fmt.Errorf("post %q: %w", slug, ErrNotFound)
	}

	if post.CategoryID != "" {
		category, err := s.repo.FindCategory(ctx, post.CategoryID)
		if err != nil {
			logger.Log.Warnf("[Blog Service] post %s: category %s not resolved: %v", post.ID, post.CategoryID, err)
		} else {
			post.CategoryName = category.Name
		}
	}
	return post, nil
}

func (s *blogService) Comments(ctx context.Context, postID string) ([]models.Comment, int64, error) {
	comments, err := s.repo.ListComments(ctx, postID)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.repo.CountComments(ctx, postID)
	if err != nil {
		return nil, 0, err
	}
	return comments, count, nil
}

// AddComment stores one comment attributed to user.
func (s *blogService) AddComment(ctx context.Context, post models.Post, user models.User, text string) (models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Comment{}, validationError("comment is required")
	}
	if user.ID == "" {
		return models.Comment{}, validationError("a signed-in user is required")
	}

	c := models.Comment{
		PostID:    post.ID,
		UserID:    user.ID,
		Username:  user.Username,
		Text:      text,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateComment(ctx, &c); err != nil {
		return models.Comment{}, err
	}
	logger.Log.Infof("[Blog Service] comment %s added to post %s by %s", c.ID, post.ID, user.Username)
	return c, nil
}

// Search matches keyword case-insensitively in title, short description and
// body. A blank keyword matches nothing.
func (s *blogService) Search(ctx context.Context, keyword string) ([]models.Post, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []models.Post{}, nil
	}
	return s.repo.ListPublished(ctx, models.PostFilter{Keyword: keyword})
}

// Recommended loads every other Published post and returns the recommender's
// picks in ranked order.
func (s *blogService) Recommended(ctx context.Context, post models.Post) ([]models.Post, error) {
	others, err := s.repo.ListPublished(ctx, models.PostFilter{ExcludeID: post.ID})
	if err != nil {
		return nil, err
	}

	ids, err := s.recommender.Recommend(ctx, post, others)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Post, len(others))
	for _, p := range others {
		byID[p.ID] = p
	}
	out := make([]models.Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
