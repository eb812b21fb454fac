package db

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-studio/internal/storage"
)

func TestTable_KnownCollections(t *testing.T) {
	for _, c := range storage.Collections {
		tbl, err := table(c)
		require.NoError(t, err)
		assert.Equal(t, `"`+c+`"`, tbl)
	}
}

func TestTable_RejectsUnknownCollection(t *testing.T) {
	_, err := table("users; DROP TABLE resumes")
	assert.Error(t, err)
}

func TestSelectQuery(t *testing.T) {
	query, args := selectQuery(`"resumes"`, storage.Filter{UserID: "u1"})
	assert.Contains(t, query, `FROM "resumes" WHERE user_id = $1`)
	assert.Contains(t, query, "ORDER BY created_at ASC")
	assert.NotContains(t, query, "LIMIT")
	assert.Equal(t, []any{"u1"}, args)

	query, args = selectQuery(`"resumes"`, storage.Filter{UserID: "u1", NewestFirst: true, Limit: 1})
	assert.Contains(t, query, "ORDER BY created_at DESC")
	assert.Contains(t, query, "LIMIT $2")
	assert.Equal(t, []any{"u1", 1}, args)
}

func TestMigrationsAreEmbedded(t *testing.T) {
	files, err := fs.Glob(migrationFiles, "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	content, err := fs.ReadFile(migrationFiles, files[0])
	require.NoError(t, err)
	for _, c := range storage.Collections {
		assert.Contains(t, string(content), "CREATE TABLE IF NOT EXISTS "+c)
	}
	assert.Contains(t, string(content), "-- +goose Up")
	assert.Contains(t, string(content), "-- +goose Down")
}
