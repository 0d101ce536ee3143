package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahmednasr/blogsage/internal/database"
	"github.com/ahmednasr/blogsage/internal/models"
	"github.com/ahmednasr/blogsage/internal/service"
)

// keywordClause matches a lowercased LIKE pattern against every searchable
// column, folding the columns the same way strings.ToLower folds the keyword.
var keywordClause = fmt.Sprintf(
	`(%[1]s(title) LIKE ? ESCAPE '\' OR %[1]s(short_description) LIKE ? ESCAPE '\' OR %[1]s(body) LIKE ? ESCAPE '\')`,
	database.LowerFunc,
)

// BlogGorm is the relational BlogRepository and UserRepository.
type BlogGorm struct {
	db *gorm.DB
}

var (
	_ service.BlogRepository = (*BlogGorm)(nil)
	_ service.UserRepository = (*BlogGorm)(nil)
)

// NewBlogGorm wraps an already migrated database.
func NewBlogGorm(db *gorm.DB) *BlogGorm {
	return &BlogGorm{db: db}
}

// -------------------------- posts ------------------------------------------

func (r *BlogGorm) FindPostBySlug(ctx context.Context, slug string) (models.Post, error) {
	var p models.Post
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&p).Error
	if err != nil {
		return models.Post{}, notFound(err, "post %q", slug)
	}
	return p, nil
}

func (r *BlogGorm) ListPublished(ctx context.Context, f models.PostFilter) ([]models.Post, error) {
	q := r.db.WithContext(ctx).Where("status = ?", models.StatusPublished)
	if f.CategoryID != "" {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.ExcludeID != "" {
		q = q.Where("id <> ?", f.ExcludeID)
	}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		like := "%" + escapeLike(strings.ToLower(kw)) + "%"
		q = q.Where(keywordClause, like, like, like)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	posts := []models.Post{}
	if err := q.Order("created_at DESC").Order("id").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *BlogGorm) CreatePost(ctx context.Context, p *models.Post) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return conflict(err, "post %q", p.Slug)
	}
	return nil
}

// -------------------------- categories -------------------------------------

func (r *BlogGorm) FindCategory(ctx context.Context, id string) (models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return models.Category{}, notFound(err, "category %q", id)
	}
	return c, nil
}

func (r *BlogGorm) ListCategories(ctx context.Context) ([]models.Category, error) {
	cats := []models.Category{}
	if err := r.db.WithContext(ctx).Order("name").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *BlogGorm) CreateCategory(ctx context.Context, c *models.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return conflict(err, "category %q", c.Name)
	}
	return nil
}

// -------------------------- comments ---------------------------------------

func (r *BlogGorm) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at").Order("id").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *BlogGorm) CountComments(ctx context.Context, postID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Count(&n).Error
	return n, err
}

func (r *BlogGorm) CreateComment(ctx context.Context, c *models.Comment) error {
	c.ID = uuid.NewString()
	return r.db.WithContext(ctx).Create(c).Error
}

// -------------------------- users ------------------------------------------

func (r *BlogGorm) CreateUser(ctx context.Context, u *models.User) error {
	u.ID = uuid.NewString()
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return conflict(err, "user %q", u.Username)
	}
	return nil
}

func (r *BlogGorm) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return models.User{}, notFound(err, "user %q", username)
	}
	return u, nil
}

// -------------------------- helpers ----------------------------------------

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf(format+": %w", append(args, service.ErrNotFound)...)
	}
	return err
}

// conflict maps unique-constraint violations to service.ErrConflict. The
// sqlite driver does not translate them to gorm.ErrDuplicatedKey unless
// TranslateError is on, so the message is checked too.
func conflict(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf(format+": %w", append(args, service.ErrConflict)...)
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
