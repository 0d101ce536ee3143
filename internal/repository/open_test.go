package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmednasr/blogsage/internal/database"
)

func TestOpenSQLite(t *testing.T) {
	st, err := Open(context.Background(), Options{Driver: DriverSQLite, SQLitePath: database.InMemorySQLite})
	require.NoError(t, err)
	defer st.Close()

	assert.NoError(t, st.Pinger.Ping(context.Background()))
	cats, err := st.Blog.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cats)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "csv"})
	assert.Error(t, err)
}
