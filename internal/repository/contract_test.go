package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmednasr/blogsage/internal/models"
	"github.com/ahmednasr/blogsage/internal/service"
)

type store interface {
	service.BlogRepository
	service.UserRepository
}

// runStoreContract checks the behavior every backend must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) store) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	seed := func(t *testing.T, s store) (models.Category, []models.Post) {
		t.Helper()
		pets := models.Category{Name: "Pets"}
		require.NoError(t, s.CreateCategory(ctx, &pets))
		space := models.Category{Name: "Space"}
		require.NoError(t, s.CreateCategory(ctx, &space))

		posts := []models.Post{
			{Title: "Dogs", Slug: "dogs", ShortDescription: "Good dogs", Body: "Walk them", CategoryID: pets.ID, Status: models.StatusPublished, CreatedAt: base, UpdatedAt: base},
			{Title: "Cats", Slug: "cats", ShortDescription: "100% cats", Body: "They nap", CategoryID: pets.ID, Status: models.StatusPublished, CreatedAt: base.Add(time.Hour), UpdatedAt: base},
			{Title: "Rockets", Slug: "rockets", ShortDescription: "Lift off", Body: "Dog-free zone", CategoryID: space.ID, Status: models.StatusPublished, CreatedAt: base.Add(2 * time.Hour), UpdatedAt: base},
			{Title: "Hidden dogs", Slug: "hidden", Body: "draft", CategoryID: pets.ID, Status: models.StatusDraft, CreatedAt: base.Add(3 * time.Hour), UpdatedAt: base},
		}
		for i := range posts {
			require.NoError(t, s.CreatePost(ctx, &posts[i]))
			require.NotEmpty(t, posts[i].ID)
		}
		return pets, posts
	}

	slugs := func(posts []models.Post) []string {
		out := make([]string, len(posts))
		for i, p := range posts {
			out[i] = p.Slug
		}
		return out
	}

	t.Run("find post by slug", func(t *testing.T) {
		s := newStore(t)
		_, posts := seed(t, s)

		got, err := s.FindPostBySlug(ctx, "cats")
		require.NoError(t, err)
		assert.Equal(t, posts[1].ID, got.ID)
		assert.Equal(t, "100% cats", got.ShortDescription)

		_, err = s.FindPostBySlug(ctx, "nope")
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("list published newest first", func(t *testing.T) {
		s := newStore(t)
		pets, posts := seed(t, s)

		all, err := s.ListPublished(ctx, models.PostFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"rockets", "cats", "dogs"}, slugs(all))

		byCat, err := s.ListPublished(ctx, models.PostFilter{CategoryID: pets.ID})
		require.NoError(t, err)
		assert.Equal(t, []string{"cats", "dogs"}, slugs(byCat))

		others, err := s.ListPublished(ctx, models.PostFilter{ExcludeID: posts[1].ID})
		require.NoError(t, err)
		assert.Equal(t, []string{"rockets", "dogs"}, slugs(others))

		limited, err := s.ListPublished(ctx, models.PostFilter{Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{"rockets"}, slugs(limited))
	})

	t.Run("keyword search", func(t *testing.T) {
		s := newStore(t)
		seed(t, s)

		got, err := s.ListPublished(ctx, models.PostFilter{Keyword: "DOG"})
		require.NoError(t, err)
		assert.Equal(t, []string{"rockets", "dogs"}, slugs(got), "title or body, case-insensitive, drafts hidden")

		got, err = s.ListPublished(ctx, models.PostFilter{Keyword: "100%"})
		require.NoError(t, err)
		assert.Equal(t, []string{"cats"}, slugs(got))

		got, err = s.ListPublished(ctx, models.PostFilter{Keyword: "%"})
		require.NoError(t, err)
		assert.Equal(t, []string{"cats"}, slugs(got), "wildcards are literal")

		got, err = s.ListPublished(ctx, models.PostFilter{Keyword: "zebra"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("keyword search folds non-ascii case", func(t *testing.T) {
		s := newStore(t)
		pets, _ := seed(t, s)
		cafe := models.Post{Title: "Über Café", Slug: "cafe", ShortDescription: "Coffee", Body: "Espresso in Zürich", CategoryID: pets.ID, Status: models.StatusPublished, CreatedAt: base.Add(4 * time.Hour), UpdatedAt: base}
		require.NoError(t, s.CreatePost(ctx, &cafe))

		for _, kw := range []string{"über", "Über", "ÜBER", "café", "CAFÉ", "zÜrich"} {
			got, err := s.ListPublished(ctx, models.PostFilter{Keyword: kw})
			require.NoError(t, err)
			assert.Equal(t, []string{"cafe"}, slugs(got), "keyword %q", kw)
		}
	})

	t.Run("categories", func(t *testing.T) {
		s := newStore(t)
		pets, _ := seed(t, s)

		got, err := s.FindCategory(ctx, pets.ID)
		require.NoError(t, err)
		assert.Equal(t, "Pets", got.Name)

		_, err = s.FindCategory(ctx, "missing")
		assert.ErrorIs(t, err, service.ErrNotFound)

		cats, err := s.ListCategories(ctx)
		require.NoError(t, err)
		require.Len(t, cats, 2)
		assert.Equal(t, "Pets", cats[0].Name)

		dup := models.Category{Name: "Pets"}
		assert.ErrorIs(t, s.CreateCategory(ctx, &dup), service.ErrConflict)
	})

	t.Run("comments", func(t *testing.T) {
		s := newStore(t)
		_, posts := seed(t, s)

		for i, text := range []string{"first", "second"} {
			c := models.Comment{PostID: posts[0].ID, UserID: "u1", Username: "sam", Text: text, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
			require.NoError(t, s.CreateComment(ctx, &c))
			assert.NotEmpty(t, c.ID)
		}

		got, err := s.ListComments(ctx, posts[0].ID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "first", got[0].Text)
		assert.Equal(t, "sam", got[1].Username)

		n, err := s.CountComments(ctx, posts[0].ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		n, err = s.CountComments(ctx, posts[1].ID)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("users", func(t *testing.T) {
		s := newStore(t)

		u := models.User{Username: "sam", PasswordHash: "hash", CreatedAt: base}
		require.NoError(t, s.CreateUser(ctx, &u))
		assert.NotEmpty(t, u.ID)

		got, err := s.FindUserByUsername(ctx, "sam")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, "hash", got.PasswordHash)

		_, err = s.FindUserByUsername(ctx, "bob")
		assert.ErrorIs(t, err, service.ErrNotFound)

		dup := models.User{Username: "sam", PasswordHash: "x"}
		assert.ErrorIs(t, s.CreateUser(ctx, &dup), service.ErrConflict)
	})
}
