// Command seed loads categories and posts from a YAML file into the
// configured store. Existing slugs and category names are skipped, so the
// command can be re-run.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ahmednasr/blogsage/internal/config"
	"github.com/ahmednasr/blogsage/internal/logger"
	"github.com/ahmednasr/blogsage/internal/models"
	"github.com/ahmednasr/blogsage/internal/repository"
	"github.com/ahmednasr/blogsage/internal/service"
)

type seedFile struct {
	Categories []string   `yaml:"categories"`
	Posts      []seedPost `yaml:"posts"`
}

type seedPost struct {
	Title            string    `yaml:"title"`
	Slug             string    `yaml:"slug"`
	ShortDescription string    `yaml:"short_description"`
	Body             string    `yaml:"body"`
	Author           string    `yaml:"author"`
	Category         string    `yaml:"category"`
	Status           string    `yaml:"status"`
	CreatedAt        time.Time `yaml:"created_at"`
}

func main() {
	path := flag.String("file", "data/seed.yaml", "YAML file with categories and posts")
	flag.Parse()

	logger.InitFromEnv("LOG_LEVEL")
	if err := run(context.Background(), *path); err != nil {
		logger.Log.Errorf("Seed failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var data seedFile
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	st, err := repository.Open(ctx, repository.Options{
		Driver:     cfg.StoreDriver,
		SQLitePath: cfg.SQLitePath,
		MongoURI:   cfg.MongoURI,
		MongoDB:    cfg.DBName,
	})
	if err != nil {
		return err
	}
	defer st.Close()

	categoryIDs, err := seedCategories(ctx, st.Blog, data.Categories)
	if err != nil {
		return err
	}

	created := 0
	for _, sp := range data.Posts {
		catID, ok := categoryIDs[sp.Category]
		if !ok {
			return fmt.Errorf("post %q: unknown category %q", sp.Slug, sp.Category)
		}
		if sp.Status == "" {
			sp.Status = models.StatusPublished
		}
		if sp.CreatedAt.IsZero() {
			sp.CreatedAt = time.Now().UTC()
		}
		p := models.Post{
			Title:            sp.Title,
			Slug:             sp.Slug,
			ShortDescription: sp.ShortDescription,
			Body:             sp.Body,
			Author:           sp.Author,
			CategoryID:       catID,
			Status:           sp.Status,
			CreatedAt:        sp.CreatedAt,
			UpdatedAt:        sp.CreatedAt,
		}
		err := st.Blog.CreatePost(ctx, &p)
		if errors.Is(err, service.ErrConflict) {
			logger.Log.Infof("[Seed] post %s exists, skipping", sp.Slug)
			continue
		}
		if err != nil {
			return err
		}
		created++
	}
	logger.Log.Infof("[Seed] %d categories, %d new posts", len(categoryIDs), created)
	return nil
}

// seedCategories creates missing categories and returns name → id for all.
func seedCategories(ctx context.Context, repo service.BlogRepository, names []string) (map[string]string, error) {
	existing, err := repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]string, len(existing)+len(names))
	for _, c := range existing {
		ids[c.Name] = c.ID
	}
	for _, name := range names {
		if _, ok := ids[name]; ok {
			continue
		}
		c := models.Category{Name: name}
		if err := repo.CreateCategory(ctx, &c); err != nil {
			return nil, err
		}
		ids[name] = c.ID
	}
	return ids, nil
}
