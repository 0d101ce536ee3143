package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ahmednasr/blogsage/internal/logger"
	"github.com/ahmednasr/blogsage/internal/models"
	"github.com/ahmednasr/blogsage/internal/service"
)

// BlogMongo satisfies both repository interfaces used by the service layer:
//   - BlogRepository – posts, categories, comments
//   - UserRepository – readers who sign in to comment
type BlogMongo struct {
	postCol     *mongo.Collection // "posts"
	categoryCol *mongo.Collection // "categories"
	commentCol  *mongo.Collection // "comments"
	userCol     *mongo.Collection // "users"
}

var (
	_ service.BlogRepository = (*BlogMongo)(nil)
	_ service.UserRepository = (*BlogMongo)(nil)
)

// NewBlogMongo wires the collections.
//
// Expected schema:
//
//	posts       { _id: uuid, title, slug, short_description, body, author, category_id, status, created_at, updated_at }
//	categories  { _id: uuid, name }
//	comments    { _id: uuid, post_id, user_id, username, text, created_at }
//	users       { _id: uuid, username, password_hash, created_at }
func NewBlogMongo(db *mongo.Database) *BlogMongo {
	return &BlogMongo{
		postCol:     db.Collection("posts"),
		categoryCol: db.Collection("categories"),
		commentCol:  db.Collection("comments"),
		userCol:     db.Collection("users"),
	}
}

// EnsureIndexes creates the unique and lookup indexes. It is idempotent.
func (r *BlogMongo) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	specs := []struct {
		col   *mongo.Collection
		model mongo.IndexModel
	}{
		{r.postCol, mongo.IndexModel{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique}},
		{r.postCol, mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}}},
		{r.categoryCol, mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique}},
		{r.commentCol, mongo.IndexModel{Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "created_at", Value: 1}}}},
		{r.userCol, mongo.IndexModel{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique}},
	}
	for _, s := range specs {
		if _, err := s.col.Indexes().CreateOne(ctx, s.model); err != nil {
			return fmt.Errorf("create index on %s: %w", s.col.Name(), err)
		}
	}
	return nil
}

// -------------------------- posts ------------------------------------------

func (r *BlogMongo) FindPostBySlug(ctx context.Context, slug string) (models.Post, error) {
	var p models.Post
	err := r.postCol.FindOne(ctx, bson.M{"slug": slug}).Decode(&p)
	if err != nil {
		return models.Post{}, mongoNotFound(err, "post %q", slug)
	}
	return p, nil
}

func (r *BlogMongo) ListPublished(ctx context.Context, f models.PostFilter) ([]models.Post, error) {
	filter := bson.M{"status": models.StatusPublished}
	if f.CategoryID != "" {
		filter["category_id"] = f.CategoryID
	}
	if f.ExcludeID != "" {
		filter["_id"] = bson.M{"$ne": f.ExcludeID}
	}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(kw), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"short_description": pattern},
			bson.M{"body": pattern},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}

	cur, err := r.postCol.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	posts := []models.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *BlogMongo) CreatePost(ctx context.Context, p *models.Post) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = models.StatusDraft
	}
	if _, err := r.postCol.InsertOne(ctx, p); err != nil {
		return mongoConflict(err, "post %q", p.Slug)
	}
	return nil
}

// -------------------------- categories -------------------------------------

func (r *BlogMongo) FindCategory(ctx context.Context, id string) (models.Category, error) {
	var c models.Category
	if err := r.categoryCol.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.Category{}, mongoNotFound(err, "category %q", id)
	}
	return c, nil
}

func (r *BlogMongo) ListCategories(ctx context.Context) ([]models.Category, error) {
	cur, err := r.categoryCol.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	cats := []models.Category{}
	if err := cur.All(ctx, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *BlogMongo) CreateCategory(ctx context.Context, c *models.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, err := r.categoryCol.InsertOne(ctx, c); err != nil {
		return mongoConflict(err, "category %q", c.Name)
	}
	return nil
}

// -------------------------- comments ---------------------------------------

func (r *BlogMongo) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.commentCol.Find(ctx, bson.M{"post_id": postID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	comments := []models.Comment{}
	if err := cur.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *BlogMongo) CountComments(ctx context.Context, postID string) (int64, error) {
	return r.commentCol.CountDocuments(ctx, bson.M{"post_id": postID})
}

func (r *BlogMongo) CreateComment(ctx context.Context, c *models.Comment) error {
	c.ID = uuid.NewString()
	_, err := r.commentCol.InsertOne(ctx, c)
	if err != nil {
		logger.Log.Errorf("[Blog Repository] Error inserting comment for post %s: %v", c.PostID, err)
	}
	return err
}

// -------------------------- users ------------------------------------------

func (r *BlogMongo) CreateUser(ctx context.Context, u *models.User) error {
	u.ID = uuid.NewString()
	if _, err := r.userCol.InsertOne(ctx, u); err != nil {
		return mongoConflict(err, "user %q", u.Username)
	}
	return nil
}

func (r *BlogMongo) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	if err := r.userCol.FindOne(ctx, bson.M{"username": username}).Decode(&u); err != nil {
		return models.User{}, mongoNotFound(err, "user %q", username)
	}
	return u, nil
}

// -------------------------- helpers ----------------------------------------

func mongoNotFound(err error, format string, args ...any) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf(format+": %w", append(args, service.ErrNotFound)...)
	}
	return err
}

func mongoConflict(err error, format string, args ...any) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf(format+": %w", append(args, service.ErrConflict)...)
	}
	return err
}
