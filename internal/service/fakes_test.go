package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ahmednasr/blogsage/internal/models"
)

// keywordEmbedder maps each known word to its own dimension. Texts with no
// known word embed to a zero vector, which scores 0 against everything.
type keywordEmbedder struct {
	vocab []string
	calls atomic.Int64
	err   error
}

func newKeywordEmbedder(vocab ...string) *keywordEmbedder {
	return &keywordEmbedder{vocab: vocab}
}

func (k *keywordEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	k.calls.Add(1)
	if k.err != nil {
		return nil, k.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float32, len(k.vocab))
	for _, tok := range tokenize(text) {
		for i, w := range k.vocab {
			if tok == w {
				vec[i]++
			}
		}
	}
	return vec, nil
}

type fakeLLM struct {
	mu      sync.Mutex
	answer  string
	err     error
	prompts []string
}

func (f *fakeLLM) GenerateResponse(_ context.Context, _ string, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakeBlogRepo struct {
	mu         sync.Mutex
	posts      []models.Post
	categories []models.Category
	comments   []models.Comment
	listErr    error
}

var _ BlogRepository = (*fakeBlogRepo)(nil)

func (r *fakeBlogRepo) FindPostBySlug(_ context.Context, slug string) (models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return models.Post{}, ErrNotFound
}

func (r *fakeBlogRepo) ListPublished(_ context.Context, f models.PostFilter) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	kw := strings.ToLower(f.Keyword)
	out := []models.Post{}
	for _, p := range r.posts {
		if !p.IsPublished() || p.ID == f.ExcludeID {
			continue
		}
		if f.CategoryID != "" && p.CategoryID != f.CategoryID {
			continue
		}
		if kw != "" && !strings.Contains(strings.ToLower(p.Title+"\n"+p.ShortDescription+"\n"+p.Body), kw) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *fakeBlogRepo) CreatePost(_ context.Context, p *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	r.posts = append(r.posts, *p)
	return nil
}

func (r *fakeBlogRepo) FindCategory(_ context.Context, id string) (models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Category{}, ErrNotFound
}

func (r *fakeBlogRepo) ListCategories(_ context.Context) ([]models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Category(nil), r.categories...), nil
}

func (r *fakeBlogRepo) CreateCategory(_ context.Context, c *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	r.categories = append(r.categories, *c)
	return nil
}

func (r *fakeBlogRepo) ListComments(_ context.Context, postID string) ([]models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Comment{}
	for _, c := range r.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeBlogRepo) CountComments(ctx context.Context, postID string) (int64, error) {
	c, err := r.ListComments(ctx, postID)
	return int64(len(c)), err
}

func (r *fakeBlogRepo) CreateComment(_ context.Context, c *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = uuid.NewString()
	r.comments = append(r.comments, *c)
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]models.User{}}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Username]; ok {
		return ErrConflict
	}
	u.ID = uuid.NewString()
	r.users[u.Username] = *u
	return nil
}

func (r *fakeUserRepo) FindUserByUsername(_ context.Context, username string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

var errBoom = errors.New("boom")
