package repository

import (
	"context"
	"fmt"

	"github.com/ahmednasr/blogsage/internal/database"
	"github.com/ahmednasr/blogsage/internal/logger"
	"github.com/ahmednasr/blogsage/internal/service"
)

// Store drivers accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Options selects and locates the backing database.
type Options struct {
	Driver     string
	SQLitePath string
	MongoURI   string
	MongoDB    string
}

// Store bundles an opened backend with its health check and closer.
type Store struct {
	Blog  service.BlogRepository
	Users service.UserRepository
	// Pinger reports reachability; it satisfies handler.Pinger.
	Pinger interface {
		Ping(ctx context.Context) error
	}
	Close func() error
}

// Open connects the selected backend and prepares its schema.
func Open(ctx context.Context, opts Options) (*Store, error) {
	switch opts.Driver {
	case DriverMongo:
		client, err := database.NewMongo(ctx, opts.MongoURI)
		if err != nil {
			return nil, err
		}
		repo := NewBlogMongo(client.Database(opts.MongoDB))
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		logger.Log.Infof("[Store] connected to MongoDB, database %s", opts.MongoDB)
		return &Store{
			Blog:   repo,
			Users:  repo,
			Pinger: database.MongoPinger{Client: client},
			Close:  func() error { return client.Disconnect(context.Background()) },
		}, nil

	case DriverSQLite:
		db, err := database.OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		repo := NewBlogGorm(db)
		logger.Log.Infof("[Store] opened SQLite database %s", opts.SQLitePath)
		return &Store{
			Blog:   repo,
			Users:  repo,
			Pinger: database.SQLPinger{DB: db},
			Close:  sqlDB.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", opts.Driver)
	}
}
